package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-forge/timetable-api/internal/models"
)

// DivisionRepository handles persistence for divisions.
type DivisionRepository struct {
	db *sqlx.DB
}

// NewDivisionRepository creates a new repository instance.
func NewDivisionRepository(db *sqlx.DB) *DivisionRepository {
	return &DivisionRepository{db: db}
}

// List returns division details joined with semester and department names,
// optionally filtered by semester.
func (r *DivisionRepository) List(ctx context.Context, semesterID string) ([]models.DivisionDetail, error) {
	query := `
		SELECT d.id, d.semester_id, d.name, d.num_students, d.created_at, d.updated_at,
		       s.department_id, s.name AS semester_name, dep.name AS department_name
		FROM divisions d
		JOIN semesters s ON s.id = d.semester_id
		JOIN departments dep ON dep.id = s.department_id`
	args := []interface{}{}
	if semesterID != "" {
		query += " WHERE d.semester_id = $1"
		args = append(args, semesterID)
	}
	query += " ORDER BY dep.name, s.number, d.name"

	var divisions []models.DivisionDetail
	if err := r.db.SelectContext(ctx, &divisions, query, args...); err != nil {
		return nil, fmt.Errorf("list divisions: %w", err)
	}
	return divisions, nil
}

// ListAll returns every division without joins, ordered stably for scheduling.
func (r *DivisionRepository) ListAll(ctx context.Context) ([]models.Division, error) {
	const query = `SELECT id, semester_id, name, num_students, created_at, updated_at FROM divisions ORDER BY created_at, id`
	var divisions []models.Division
	if err := r.db.SelectContext(ctx, &divisions, query); err != nil {
		return nil, fmt.Errorf("list divisions: %w", err)
	}
	return divisions, nil
}

// FindByID returns a division detail by id.
func (r *DivisionRepository) FindByID(ctx context.Context, id string) (*models.DivisionDetail, error) {
	const query = `
		SELECT d.id, d.semester_id, d.name, d.num_students, d.created_at, d.updated_at,
		       s.department_id, s.name AS semester_name, dep.name AS department_name
		FROM divisions d
		JOIN semesters s ON s.id = d.semester_id
		JOIN departments dep ON dep.id = s.department_id
		WHERE d.id = $1`
	var division models.DivisionDetail
	if err := r.db.GetContext(ctx, &division, query, id); err != nil {
		return nil, err
	}
	return &division, nil
}

// Create persists a new division.
func (r *DivisionRepository) Create(ctx context.Context, division *models.Division) error {
	if division.ID == "" {
		division.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	division.CreatedAt = now
	division.UpdatedAt = now

	const query = `
		INSERT INTO divisions (id, semester_id, name, num_students, created_at, updated_at)
		VALUES (:id, :semester_id, :name, :num_students, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, division); err != nil {
		return fmt.Errorf("create division: %w", err)
	}
	return nil
}

// Update modifies a division.
func (r *DivisionRepository) Update(ctx context.Context, division *models.Division) error {
	division.UpdatedAt = time.Now().UTC()
	const query = `
		UPDATE divisions
		SET semester_id = :semester_id, name = :name, num_students = :num_students, updated_at = :updated_at
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, division); err != nil {
		return fmt.Errorf("update division: %w", err)
	}
	return nil
}

// Delete removes a division record.
func (r *DivisionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM divisions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete division: %w", err)
	}
	return nil
}
