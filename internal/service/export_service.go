package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-forge/timetable-api/internal/models"
	appErrors "github.com/campus-forge/timetable-api/pkg/errors"
	"github.com/campus-forge/timetable-api/pkg/export"
	"github.com/campus-forge/timetable-api/pkg/jobs"
	"github.com/campus-forge/timetable-api/pkg/storage"
)

const exportJobType = "timetable_export"

type exportJobRepository interface {
	Create(ctx context.Context, job *models.ExportJob) error
	FindByID(ctx context.Context, id string) (*models.ExportJob, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkFinished(ctx context.Context, id, filePath, resultURL string) error
	MarkFailed(ctx context.Context, id, message string) error
	ListOlderThan(ctx context.Context, cutoff time.Time) ([]models.ExportJob, error)
	ClearFile(ctx context.Context, id string) error
}

type exportTimetableReader interface {
	ListDetails(ctx context.Context, filter models.TimetableFilter) ([]models.AssignmentDetail, error)
}

// ExportRequest captures one export submission.
type ExportRequest struct {
	DivisionID string `json:"division_id"`
	Format     string `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportService runs timetable exports asynchronously: submissions are
// persisted, queued, rendered by a worker pool, and served back through
// signed download tokens.
type ExportService struct {
	repo      exportJobRepository
	timetable exportTimetableReader
	store     *storage.LocalStorage
	signer    *storage.SignedURLSigner
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	queue     *jobs.Queue
	validator *validator.Validate
	logger    *zap.Logger

	downloadBasePath string
	cleanupInterval  time.Duration
	fileTTL          time.Duration
}

// ExportServiceConfig wires the export pipeline.
type ExportServiceConfig struct {
	Store            *storage.LocalStorage
	Signer           *storage.SignedURLSigner
	Workers          int
	MaxRetries       int
	DownloadBasePath string
	CleanupInterval  time.Duration
	FileTTL          time.Duration
}

// NewExportService constructs the export pipeline. Start must be called
// before submissions are accepted.
func NewExportService(repo exportJobRepository, timetable exportTimetableReader, cfg ExportServiceConfig, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DownloadBasePath == "" {
		cfg.DownloadBasePath = "/api/v1/exports/download"
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Hour
	}
	if cfg.FileTTL <= 0 {
		cfg.FileTTL = 24 * time.Hour
	}

	s := &ExportService{
		repo:             repo,
		timetable:        timetable,
		store:            cfg.Store,
		signer:           cfg.Signer,
		csv:              export.NewCSVExporter(),
		pdf:              export.NewPDFExporter(),
		validator:        validate,
		logger:           logger,
		downloadBasePath: cfg.DownloadBasePath,
		cleanupInterval:  cfg.CleanupInterval,
		fileTTL:          cfg.FileTTL,
	}
	s.queue = jobs.NewQueue("exports", s.process, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the worker pool and the cleanup loop.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	go s.cleanupLoop(ctx)
}

// Stop drains the worker pool.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Submit persists a new export job and queues it for rendering.
func (s *ExportService) Submit(ctx context.Context, userID string, req ExportRequest) (*models.ExportJob, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}

	job := &models.ExportJob{
		Params: models.ExportJobParams{
			DivisionID: req.DivisionID,
			Format:     models.ExportFormat(req.Format),
		},
		Status:    models.ExportStatusQueued,
		CreatedBy: userID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: exportJobType, Payload: job.ID}); err != nil {
		s.markFailed(ctx, job.ID, "queue unavailable")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue export job")
	}
	return job, nil
}

// Status returns an export job visible to the requesting user. Admins see
// every job; other users only their own.
func (s *ExportService) Status(ctx context.Context, id, userID string, role models.UserRole) (*models.ExportJob, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	if role != models.RoleAdmin && job.CreatedBy != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export job belongs to another user")
	}
	return job, nil
}

// Download validates a signed token and opens the referenced file.
func (s *ExportService) Download(ctx context.Context, token string) (*os.File, *models.ExportJob, error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}

	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	if job.Status != models.ExportStatusFinished || job.FilePath == nil || *job.FilePath != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}

	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file no longer available")
	}
	return file, job, nil
}

// process renders one queued export. Failures surface to the queue for
// retry; the terminal failure is recorded when retries run out.
func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	jobID, _ := job.Payload.(string)
	if jobID == "" {
		jobID = job.ID
	}

	record, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load export job %s: %w", jobID, err)
	}

	if err := s.repo.MarkProcessing(ctx, jobID); err != nil {
		s.logger.Warn("failed to mark export processing", zap.String("job_id", jobID), zap.Error(err))
	}

	data, err := s.buildDataset(ctx, record.Params.DivisionID)
	if err != nil {
		s.markFailed(ctx, jobID, err.Error())
		return err
	}

	var payload []byte
	filename := jobID + "." + string(record.Params.Format)
	switch record.Params.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(*data)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(*data, "Timetable")
	default:
		err = fmt.Errorf("unsupported export format %q", record.Params.Format)
	}
	if err != nil {
		s.markFailed(ctx, jobID, err.Error())
		return err
	}

	relPath, err := s.store.Save(filename, payload)
	if err != nil {
		s.markFailed(ctx, jobID, "failed to store export file")
		return err
	}

	token, _, err := s.signer.Generate(jobID, relPath)
	if err != nil {
		s.markFailed(ctx, jobID, "failed to sign download url")
		return err
	}
	resultURL := s.downloadBasePath + "?token=" + token

	if err := s.repo.MarkFinished(ctx, jobID, relPath, resultURL); err != nil {
		return fmt.Errorf("finish export job %s: %w", jobID, err)
	}

	s.logger.Info("export finished",
		zap.String("job_id", jobID),
		zap.String("format", string(record.Params.Format)),
		zap.Int("bytes", len(payload)))
	return nil
}

// buildDataset flattens timetable details into a tabular dataset.
func (s *ExportService) buildDataset(ctx context.Context, divisionID string) (*export.Dataset, error) {
	details, err := s.timetable.ListDetails(ctx, models.TimetableFilter{DivisionID: divisionID})
	if err != nil {
		return nil, fmt.Errorf("load timetable for export: %w", err)
	}

	headers := []string{"Day", "Period", "Division", "Subject Code", "Subject", "Faculty", "Room"}
	rows := make([]map[string]string, 0, len(details))
	for _, d := range details {
		rows = append(rows, map[string]string{
			"Day":          models.DayName(d.Day),
			"Period":       strconv.Itoa(d.Slot),
			"Division":     d.DivisionName,
			"Subject Code": d.SubjectCode,
			"Subject":      d.SubjectName,
			"Faculty":      d.FacultyName,
			"Room":         d.RoomNumber,
		})
	}
	return &export.Dataset{Headers: headers, Rows: rows}, nil
}

func (s *ExportService) markFailed(ctx context.Context, jobID, message string) {
	if err := s.repo.MarkFailed(ctx, jobID, message); err != nil {
		s.logger.Warn("failed to mark export failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

// cleanupLoop deletes expired export files and clears their references.
func (s *ExportService) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanup(ctx)
		}
	}
}

func (s *ExportService) cleanup(ctx context.Context) {
	deleted, err := s.store.CleanupOlderThan(s.fileTTL)
	if err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
	} else if len(deleted) > 0 {
		s.logger.Info("export files cleaned up", zap.Int("count", len(deleted)))
	}

	stale, err := s.repo.ListOlderThan(ctx, time.Now().UTC().Add(-s.fileTTL))
	if err != nil {
		s.logger.Warn("stale export lookup failed", zap.Error(err))
		return
	}
	for _, job := range stale {
		if job.FilePath != nil {
			if err := s.store.Delete(*job.FilePath); err != nil {
				s.logger.Warn("failed to delete export file", zap.String("job_id", job.ID), zap.Error(err))
			}
		}
		if err := s.repo.ClearFile(ctx, job.ID); err != nil {
			s.logger.Warn("failed to clear export file reference", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
}
