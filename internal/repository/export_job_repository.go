package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-forge/timetable-api/internal/models"
)

// ExportJobRepository handles persistence for export job metadata.
type ExportJobRepository struct {
	db *sqlx.DB
}

// NewExportJobRepository creates a new repository instance.
func NewExportJobRepository(db *sqlx.DB) *ExportJobRepository {
	return &ExportJobRepository{db: db}
}

// Create persists a new queued job.
func (r *ExportJobRepository) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ExportStatusQueued
	}
	job.CreatedAt = time.Now().UTC()

	const query = `
		INSERT INTO export_jobs (id, params, status, file_path, result_url, created_by, created_at, finished_at, error_message)
		VALUES (:id, :params, :status, :file_path, :result_url, :created_by, :created_at, :finished_at, :error_message)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create export job: %w", err)
	}
	return nil
}

// FindByID returns a job by id.
func (r *ExportJobRepository) FindByID(ctx context.Context, id string) (*models.ExportJob, error) {
	const query = `
		SELECT id, params, status, file_path, result_url, created_by, created_at, finished_at, error_message
		FROM export_jobs WHERE id = $1`
	var job models.ExportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, err
	}
	return &job, nil
}

// MarkProcessing transitions a job into the processing state.
func (r *ExportJobRepository) MarkProcessing(ctx context.Context, id string) error {
	const query = `UPDATE export_jobs SET status = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, models.ExportStatusProcessing, id); err != nil {
		return fmt.Errorf("mark export job processing: %w", err)
	}
	return nil
}

// MarkFinished records a successful export result.
func (r *ExportJobRepository) MarkFinished(ctx context.Context, id, filePath, resultURL string) error {
	const query = `
		UPDATE export_jobs
		SET status = $1, file_path = $2, result_url = $3, finished_at = $4, error_message = NULL
		WHERE id = $5`
	if _, err := r.db.ExecContext(ctx, query, models.ExportStatusFinished, filePath, resultURL, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("mark export job finished: %w", err)
	}
	return nil
}

// MarkFailed records a terminal failure with its message.
func (r *ExportJobRepository) MarkFailed(ctx context.Context, id, message string) error {
	const query = `
		UPDATE export_jobs
		SET status = $1, finished_at = $2, error_message = $3
		WHERE id = $4`
	if _, err := r.db.ExecContext(ctx, query, models.ExportStatusFailed, time.Now().UTC(), message, id); err != nil {
		return fmt.Errorf("mark export job failed: %w", err)
	}
	return nil
}

// ListOlderThan returns finished jobs whose files are due for cleanup.
func (r *ExportJobRepository) ListOlderThan(ctx context.Context, cutoff time.Time) ([]models.ExportJob, error) {
	const query = `
		SELECT id, params, status, file_path, result_url, created_by, created_at, finished_at, error_message
		FROM export_jobs
		WHERE status = $1 AND finished_at < $2 AND file_path IS NOT NULL`
	var jobs []models.ExportJob
	if err := r.db.SelectContext(ctx, &jobs, query, models.ExportStatusFinished, cutoff); err != nil {
		return nil, fmt.Errorf("list stale export jobs: %w", err)
	}
	return jobs, nil
}

// ClearFile removes the file reference after cleanup deleted the artifact.
func (r *ExportJobRepository) ClearFile(ctx context.Context, id string) error {
	const query = `UPDATE export_jobs SET file_path = NULL, result_url = NULL WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("clear export job file: %w", err)
	}
	return nil
}
