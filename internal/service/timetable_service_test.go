package service

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campus-forge/timetable-api/internal/models"
)

type fakeCalendarRepo struct {
	cfg *models.CalendarConfig
}

func (f *fakeCalendarRepo) Latest(context.Context) (*models.CalendarConfig, error) {
	if f.cfg == nil {
		return nil, sql.ErrNoRows
	}
	return f.cfg, nil
}

type fakeDivisionRepo struct {
	divisions []models.Division
}

func (f *fakeDivisionRepo) ListAll(context.Context) ([]models.Division, error) {
	return f.divisions, nil
}

type fakeSubjectRepo struct {
	subjects []models.Subject
}

func (f *fakeSubjectRepo) ListAll(context.Context) ([]models.Subject, error) {
	return f.subjects, nil
}

type fakeFacultyRepo struct {
	faculty []models.Faculty
}

func (f *fakeFacultyRepo) ListAllWithSubjects(context.Context) ([]models.Faculty, error) {
	return f.faculty, nil
}

type fakeRoomRepo struct {
	rooms []models.Room
}

func (f *fakeRoomRepo) List(context.Context, string, models.RoomType) ([]models.Room, error) {
	return f.rooms, nil
}

type fakeSemesterRepo struct {
	semesters []models.Semester
}

func (f *fakeSemesterRepo) List(context.Context, string) ([]models.Semester, error) {
	return f.semesters, nil
}

// fakeTimetableRepo hands out real transactions from sqlmock but records
// writes in memory.
type fakeTimetableRepo struct {
	db         *sqlx.DB
	resets     int
	stored     []models.Assignment
	details    []models.AssignmentDetail
	lastFilter models.TimetableFilter
}

func (f *fakeTimetableRepo) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return f.db.BeginTxx(ctx, nil)
}

func (f *fakeTimetableRepo) ResetAll(context.Context, *sqlx.Tx) error {
	f.resets++
	f.stored = nil
	return nil
}

func (f *fakeTimetableRepo) BulkInsert(_ context.Context, _ *sqlx.Tx, assignments []models.Assignment) error {
	f.stored = append(f.stored, assignments...)
	return nil
}

func (f *fakeTimetableRepo) ListDetails(_ context.Context, filter models.TimetableFilter) ([]models.AssignmentDetail, error) {
	f.lastFilter = filter
	return f.details, nil
}

func (f *fakeTimetableRepo) Count(context.Context) (int, error) {
	return len(f.stored), nil
}

func newTimetableFixture(t *testing.T) (*TimetableService, *fakeTimetableRepo, sqlmock.Sqlmock, func()) {
	rawDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	db := sqlx.NewDb(rawDB, "sqlmock")

	repo := &fakeTimetableRepo{db: db}
	svc := NewTimetableService(
		&fakeCalendarRepo{},
		&fakeDivisionRepo{divisions: []models.Division{
			{ID: "div-1", SemesterID: "sem-1", Name: "CS-5A", NumStudents: 40},
		}},
		&fakeSubjectRepo{subjects: []models.Subject{
			{ID: "sub-1", Code: "CS301", Name: "Operating Systems", Credits: 3, DepartmentID: "dept-1", SemesterID: "sem-1"},
		}},
		&fakeFacultyRepo{faculty: []models.Faculty{
			{ID: "fac-1", Name: "Dr. Rao", SubjectIDs: []string{"sub-1"}},
		}},
		&fakeRoomRepo{rooms: []models.Room{
			{ID: "room-1", RoomNumber: "301", DepartmentID: "dept-1", Type: models.RoomTypeClassroom, Capacity: 60},
		}},
		&fakeSemesterRepo{semesters: []models.Semester{
			{ID: "sem-1", DepartmentID: "dept-1", Number: 5, Name: "Semester 5"},
		}},
		repo,
		NewCacheService(nil, nil, 0, zap.NewNop(), false),
		NewMetricsService(),
		zap.NewNop(),
		42,
		0,
	)
	return svc, repo, mock, func() { rawDB.Close() }
}

func TestTimetableServiceGenerate(t *testing.T) {
	svc, repo, mock, cleanup := newTimetableFixture(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectCommit()

	res, err := svc.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(42), res.Seed)
	assert.Equal(t, 3, res.Attempted)
	assert.Equal(t, 3, res.Placed)
	assert.Empty(t, res.Unplaced)
	assert.Equal(t, 1, repo.resets)
	assert.Len(t, repo.stored, 3)
	for _, a := range repo.stored {
		assert.Equal(t, "div-1", a.DivisionID)
		assert.Equal(t, "sub-1", a.SubjectID)
		assert.Equal(t, "fac-1", a.FacultyID)
		assert.Equal(t, "room-1", a.RoomID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableServiceGenerateReportsUnplaced(t *testing.T) {
	svc, repo, mock, cleanup := newTimetableFixture(t)
	defer cleanup()

	// No faculty can teach the subject.
	svc.facultyRepo = &fakeFacultyRepo{}

	mock.ExpectBegin()
	mock.ExpectCommit()

	res, err := svc.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Attempted)
	assert.Equal(t, 0, res.Placed)
	assert.Len(t, res.Unplaced, 3)
	assert.Empty(t, repo.stored)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableServiceGenerateEmptyCatalogCompletesTrivially(t *testing.T) {
	svc, repo, mock, cleanup := newTimetableFixture(t)
	defer cleanup()

	svc.divisionRepo = &fakeDivisionRepo{}

	mock.ExpectBegin()
	mock.ExpectCommit()

	result, err := svc.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Attempted)
	assert.Equal(t, 0, result.Placed)
	assert.Empty(t, result.Unplaced)

	// The prior timetable is still discarded.
	assert.Equal(t, 1, repo.resets)
	assert.Empty(t, repo.stored)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableServiceReset(t *testing.T) {
	svc, repo, mock, cleanup := newTimetableFixture(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, svc.Reset(context.Background()))
	assert.Equal(t, 1, repo.resets)
	assert.Empty(t, repo.stored)

	// Resetting an already-empty timetable succeeds and stays empty.
	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, svc.Reset(context.Background()))
	assert.Equal(t, 2, repo.resets)
	assert.Empty(t, repo.stored)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableServiceGridShapesAssignments(t *testing.T) {
	svc, repo, _, cleanup := newTimetableFixture(t)
	defer cleanup()

	repo.details = []models.AssignmentDetail{
		{
			Assignment:  models.Assignment{DivisionID: "div-1", Day: 1, Slot: 2},
			SubjectCode: "CS301", SubjectName: "Operating Systems",
			FacultyName: "Dr. Rao", RoomNumber: "301", DivisionName: "CS-5A",
		},
	}

	grid, err := svc.Grid(context.Background(), "div-1")
	require.NoError(t, err)

	assert.Equal(t, models.DefaultWorkingDays, grid.WorkingDays)
	assert.Equal(t, models.DefaultPeriodsPerDay, grid.PeriodsPerDay)
	require.Len(t, grid.Days, models.DefaultWorkingDays)

	cell := grid.Days[0].Cells[1]
	require.NotNil(t, cell)
	assert.Equal(t, "CS301", cell.SubjectCode)
	assert.Nil(t, grid.Days[0].Cells[0])
}

func TestTimetableServiceGenerateDeterministicSeed(t *testing.T) {
	run := func() []models.Assignment {
		svc, repo, mock, cleanup := newTimetableFixture(t)
		defer cleanup()
		mock.ExpectBegin()
		mock.ExpectCommit()
		_, err := svc.Generate(context.Background())
		require.NoError(t, err)
		return repo.stored
	}

	first := run()
	second := run()

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Day, second[i].Day)
		assert.Equal(t, first[i].Slot, second[i].Slot)
	}
}
