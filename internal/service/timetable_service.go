package service

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campus-forge/timetable-api/internal/engine"
	"github.com/campus-forge/timetable-api/internal/models"
	appErrors "github.com/campus-forge/timetable-api/pkg/errors"
)

const timetableCachePrefix = "timetable:"

type timetableCalendarRepository interface {
	Latest(ctx context.Context) (*models.CalendarConfig, error)
}

type timetableDivisionRepository interface {
	ListAll(ctx context.Context) ([]models.Division, error)
}

type timetableSubjectRepository interface {
	ListAll(ctx context.Context) ([]models.Subject, error)
}

type timetableFacultyRepository interface {
	ListAllWithSubjects(ctx context.Context) ([]models.Faculty, error)
}

type timetableRoomRepository interface {
	List(ctx context.Context, departmentID string, roomType models.RoomType) ([]models.Room, error)
}

type timetableSemesterRepository interface {
	List(ctx context.Context, departmentID string) ([]models.Semester, error)
}

type timetableRepository interface {
	BeginTx(ctx context.Context) (*sqlx.Tx, error)
	ResetAll(ctx context.Context, tx *sqlx.Tx) error
	BulkInsert(ctx context.Context, tx *sqlx.Tx, assignments []models.Assignment) error
	ListDetails(ctx context.Context, filter models.TimetableFilter) ([]models.AssignmentDetail, error)
	Count(ctx context.Context) (int, error)
}

// GenerateResult summarises one completed generation run.
type GenerateResult struct {
	Seed      int64                 `json:"seed"`
	Attempted int                   `json:"attempted"`
	Placed    int                   `json:"placed"`
	Unplaced  []engine.UnplacedUnit `json:"unplaced"`
	Duration  string                `json:"duration"`
}

// TimetableService is the boundary around the generation engine: it
// snapshots the catalog, runs the engine, and replaces the stored timetable
// atomically. Runs are serialized; concurrent Generate calls queue behind
// the mutex rather than interleave.
type TimetableService struct {
	calendarRepo timetableCalendarRepository
	divisionRepo timetableDivisionRepository
	subjectRepo  timetableSubjectRepository
	facultyRepo  timetableFacultyRepository
	roomRepo     timetableRoomRepository
	semesterRepo timetableSemesterRepository
	repo         timetableRepository
	cache        *CacheService
	metrics      *MetricsService
	logger       *zap.Logger

	seed       int64
	runTimeout time.Duration

	mu sync.Mutex
}

// NewTimetableService creates the timetable boundary service. A non-zero
// seed makes every run reproducible; zero seeds each run from the clock.
func NewTimetableService(
	calendarRepo timetableCalendarRepository,
	divisionRepo timetableDivisionRepository,
	subjectRepo timetableSubjectRepository,
	facultyRepo timetableFacultyRepository,
	roomRepo timetableRoomRepository,
	semesterRepo timetableSemesterRepository,
	repo timetableRepository,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
	seed int64,
	runTimeout time.Duration,
) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if runTimeout <= 0 {
		runTimeout = 2 * time.Minute
	}
	return &TimetableService{
		calendarRepo: calendarRepo,
		divisionRepo: divisionRepo,
		subjectRepo:  subjectRepo,
		facultyRepo:  facultyRepo,
		roomRepo:     roomRepo,
		semesterRepo: semesterRepo,
		repo:         repo,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
		seed:         seed,
		runTimeout:   runTimeout,
	}
}

// Generate runs a full generation pass and replaces the stored timetable.
// The previous timetable is discarded even when the new one is degraded;
// unplaced units are reported in the result, never treated as failure.
func (s *TimetableService) Generate(ctx context.Context) (*GenerateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	start := time.Now()

	cal, cat, err := s.snapshot(ctx)
	if err != nil {
		s.metrics.ObserveGenerationRun(time.Since(start), 0, nil, true)
		return nil, err
	}
	seed := s.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	eng := engine.New(cal, cat, rand.New(rand.NewSource(seed)))
	res := eng.Run()

	assignments := make([]models.Assignment, 0, len(res.Assignments))
	for _, a := range res.Assignments {
		assignments = append(assignments, models.Assignment{
			DivisionID: a.DivisionID,
			Day:        a.Day,
			Slot:       a.Slot,
			SubjectID:  a.SubjectID,
			FacultyID:  a.FacultyID,
			RoomID:     a.RoomID,
		})
	}

	if err := s.replaceAll(ctx, assignments); err != nil {
		s.metrics.ObserveGenerationRun(time.Since(start), 0, nil, true)
		return nil, err
	}

	duration := time.Since(start)
	unplacedByReason := make(map[string]int)
	for _, u := range res.Unplaced {
		unplacedByReason[u.Reason]++
	}
	s.metrics.ObserveGenerationRun(duration, res.Placed, unplacedByReason, false)

	if err := s.cache.Invalidate(ctx, timetableCachePrefix+"*"); err != nil {
		s.logger.Warn("timetable cache invalidation failed", zap.Error(err))
	}

	s.logger.Info("timetable generated",
		zap.Int64("seed", seed),
		zap.Int("attempted", res.Attempted),
		zap.Int("placed", res.Placed),
		zap.Int("unplaced", len(res.Unplaced)),
		zap.Duration("duration", duration))

	unplaced := res.Unplaced
	if unplaced == nil {
		unplaced = []engine.UnplacedUnit{}
	}
	return &GenerateResult{
		Seed:      seed,
		Attempted: res.Attempted,
		Placed:    res.Placed,
		Unplaced:  unplaced,
		Duration:  duration.String(),
	}, nil
}

// Reset deletes the stored timetable without generating a new one.
func (s *TimetableService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	discarded, err := s.repo.Count(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count timetable")
	}

	if err := s.replaceAll(ctx, nil); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, timetableCachePrefix+"*"); err != nil {
		s.logger.Warn("timetable cache invalidation failed", zap.Error(err))
	}
	s.logger.Info("timetable reset", zap.Int("discarded", discarded))
	return nil
}

// List returns assignment details for the whole institution, one division,
// or one faculty member's personal timetable.
func (s *TimetableService) List(ctx context.Context, filter models.TimetableFilter) ([]models.AssignmentDetail, error) {
	key := timetableCachePrefix + "list:all"
	switch {
	case filter.DivisionID != "" && filter.FacultyID != "":
		key = timetableCachePrefix + "list:div:" + filter.DivisionID + ":fac:" + filter.FacultyID
	case filter.DivisionID != "":
		key = timetableCachePrefix + "list:div:" + filter.DivisionID
	case filter.FacultyID != "":
		key = timetableCachePrefix + "list:fac:" + filter.FacultyID
	}

	var cached []models.AssignmentDetail
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	details, err := s.repo.ListDetails(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable")
	}
	if details == nil {
		details = []models.AssignmentDetail{}
	}

	if err := s.cache.Set(ctx, key, details, 0); err != nil {
		s.logger.Warn("timetable cache store failed", zap.Error(err))
	}
	return details, nil
}

// Grid returns one division's timetable as a day-by-slot grid.
func (s *TimetableService) Grid(ctx context.Context, divisionID string) (*models.TimetableGrid, error) {
	key := timetableCachePrefix + "grid:" + divisionID

	var cached models.TimetableGrid
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	cal, err := s.calendar(ctx)
	if err != nil {
		return nil, err
	}

	details, err := s.repo.ListDetails(ctx, models.TimetableFilter{DivisionID: divisionID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	grid := models.NewTimetableGrid(divisionID, cal.WorkingDays, cal.PeriodsPerDay)
	for i := range details {
		grid.Place(&details[i])
	}

	if err := s.cache.Set(ctx, key, grid, 0); err != nil {
		s.logger.Warn("timetable cache store failed", zap.Error(err))
	}
	return grid, nil
}

// replaceAll swaps the whole timetable inside one transaction.
func (s *TimetableService) replaceAll(ctx context.Context, assignments []models.Assignment) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open transaction")
	}
	defer tx.Rollback()

	if err := s.repo.ResetAll(ctx, tx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear timetable")
	}
	if err := s.repo.BulkInsert(ctx, tx, assignments); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store timetable")
	}
	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable")
	}
	return nil
}

// calendar loads the latest calendar config, defaulting when none exists.
func (s *TimetableService) calendar(ctx context.Context) (models.CalendarConfig, error) {
	cfg, err := s.calendarRepo.Latest(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.DefaultCalendarConfig(), nil
		}
		return models.CalendarConfig{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load calendar config")
	}
	return *cfg, nil
}

// snapshot loads the catalog into the engine's input types. The engine
// never touches storage mid-run, so a generation sees one consistent view.
func (s *TimetableService) snapshot(ctx context.Context) (engine.Calendar, engine.Catalog, error) {
	var cal engine.Calendar
	var cat engine.Catalog

	calendarCfg, err := s.calendar(ctx)
	if err != nil {
		return cal, cat, err
	}
	cal = engine.Calendar{
		WorkingDays:    calendarCfg.WorkingDays,
		PeriodsPerDay:  calendarCfg.PeriodsPerDay,
		LabBlockLength: calendarCfg.LabBlockLength,
	}

	semesters, err := s.semesterRepo.List(ctx, "")
	if err != nil {
		return cal, cat, fmt.Errorf("snapshot semesters: %w", err)
	}
	departmentBySemester := make(map[string]string, len(semesters))
	for _, sem := range semesters {
		departmentBySemester[sem.ID] = sem.DepartmentID
	}

	divisions, err := s.divisionRepo.ListAll(ctx)
	if err != nil {
		return cal, cat, fmt.Errorf("snapshot divisions: %w", err)
	}
	for _, d := range divisions {
		cat.Divisions = append(cat.Divisions, engine.Division{
			ID:           d.ID,
			Name:         d.Name,
			SemesterID:   d.SemesterID,
			DepartmentID: departmentBySemester[d.SemesterID],
			Size:         d.NumStudents,
		})
	}

	subjects, err := s.subjectRepo.ListAll(ctx)
	if err != nil {
		return cal, cat, fmt.Errorf("snapshot subjects: %w", err)
	}
	for _, sub := range subjects {
		cat.Subjects = append(cat.Subjects, engine.Subject{
			ID:           sub.ID,
			Code:         sub.Code,
			Name:         sub.Name,
			Credits:      sub.Credits,
			DepartmentID: sub.DepartmentID,
			SemesterID:   sub.SemesterID,
		})
	}

	faculty, err := s.facultyRepo.ListAllWithSubjects(ctx)
	if err != nil {
		return cal, cat, fmt.Errorf("snapshot faculty: %w", err)
	}
	for _, f := range faculty {
		cat.Faculty = append(cat.Faculty, engine.Faculty{
			ID:         f.ID,
			Name:       f.Name,
			SubjectIDs: f.SubjectIDs,
		})
	}

	rooms, err := s.roomRepo.List(ctx, "", "")
	if err != nil {
		return cal, cat, fmt.Errorf("snapshot rooms: %w", err)
	}
	for _, r := range rooms {
		cat.Rooms = append(cat.Rooms, engine.Room{
			ID:           r.ID,
			RoomNumber:   r.RoomNumber,
			DepartmentID: r.DepartmentID,
			IsLab:        r.Type == models.RoomTypeLab,
			Capacity:     r.Capacity,
		})
	}

	return cal, cat, nil
}
