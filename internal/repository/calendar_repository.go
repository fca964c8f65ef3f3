package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-forge/timetable-api/internal/models"
)

// CalendarRepository handles persistence for calendar configurations.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository creates a new repository instance.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// Latest returns the most recently created configuration.
// Returns sql.ErrNoRows when none exists; defaulting is the caller's concern.
func (r *CalendarRepository) Latest(ctx context.Context) (*models.CalendarConfig, error) {
	const query = `SELECT id, working_days, periods_per_day, lab_block_length, created_at, updated_at FROM calendar_configs ORDER BY created_at DESC LIMIT 1`
	var cfg models.CalendarConfig
	if err := r.db.GetContext(ctx, &cfg, query); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// List returns all configurations, newest first.
func (r *CalendarRepository) List(ctx context.Context) ([]models.CalendarConfig, error) {
	const query = `SELECT id, working_days, periods_per_day, lab_block_length, created_at, updated_at FROM calendar_configs ORDER BY created_at DESC`
	var configs []models.CalendarConfig
	if err := r.db.SelectContext(ctx, &configs, query); err != nil {
		return nil, fmt.Errorf("list calendar configs: %w", err)
	}
	return configs, nil
}

// Create persists a new configuration.
func (r *CalendarRepository) Create(ctx context.Context, cfg *models.CalendarConfig) error {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now

	const query = `INSERT INTO calendar_configs (id, working_days, periods_per_day, lab_block_length, created_at, updated_at) VALUES (:id, :working_days, :periods_per_day, :lab_block_length, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, cfg); err != nil {
		return fmt.Errorf("create calendar config: %w", err)
	}
	return nil
}

// Update modifies an existing configuration.
func (r *CalendarRepository) Update(ctx context.Context, cfg *models.CalendarConfig) error {
	cfg.UpdatedAt = time.Now().UTC()
	const query = `UPDATE calendar_configs SET working_days = :working_days, periods_per_day = :periods_per_day, lab_block_length = :lab_block_length, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, cfg); err != nil {
		return fmt.Errorf("update calendar config: %w", err)
	}
	return nil
}
