package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-forge/timetable-api/internal/models"
)

// FacultyRepository handles persistence for faculty and their subject eligibility.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository creates a new repository instance.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

// List returns faculty, optionally filtered by department. Eligibility sets
// are not loaded here; use FindByID or ListAllWithSubjects when they matter.
func (r *FacultyRepository) List(ctx context.Context, departmentID string) ([]models.Faculty, error) {
	query := `SELECT id, name, email, department_id, created_at, updated_at FROM faculty`
	args := []interface{}{}
	if departmentID != "" {
		query += " WHERE department_id = $1"
		args = append(args, departmentID)
	}
	query += " ORDER BY name"

	var faculty []models.Faculty
	if err := r.db.SelectContext(ctx, &faculty, query, args...); err != nil {
		return nil, fmt.Errorf("list faculty: %w", err)
	}
	return faculty, nil
}

// FindByID returns one faculty member with their subject ids loaded.
func (r *FacultyRepository) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	const query = `SELECT id, name, email, department_id, created_at, updated_at FROM faculty WHERE id = $1`
	var faculty models.Faculty
	if err := r.db.GetContext(ctx, &faculty, query, id); err != nil {
		return nil, err
	}

	subjectIDs, err := r.subjectIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	faculty.SubjectIDs = subjectIDs
	return &faculty, nil
}

// ListAllWithSubjects returns every faculty member with eligibility loaded in
// two queries. Used when snapshotting the catalog for a generation run.
func (r *FacultyRepository) ListAllWithSubjects(ctx context.Context) ([]models.Faculty, error) {
	const query = `SELECT id, name, email, department_id, created_at, updated_at FROM faculty ORDER BY created_at, id`
	var faculty []models.Faculty
	if err := r.db.SelectContext(ctx, &faculty, query); err != nil {
		return nil, fmt.Errorf("list faculty: %w", err)
	}

	type link struct {
		FacultyID string `db:"faculty_id"`
		SubjectID string `db:"subject_id"`
	}
	var links []link
	if err := r.db.SelectContext(ctx, &links, `SELECT faculty_id, subject_id FROM faculty_subjects ORDER BY faculty_id, subject_id`); err != nil {
		return nil, fmt.Errorf("list faculty subjects: %w", err)
	}

	bySubjects := make(map[string][]string, len(faculty))
	for _, l := range links {
		bySubjects[l.FacultyID] = append(bySubjects[l.FacultyID], l.SubjectID)
	}
	for i := range faculty {
		faculty[i].SubjectIDs = bySubjects[faculty[i].ID]
	}
	return faculty, nil
}

// ExistsByEmail checks uniqueness of the faculty email.
func (r *FacultyRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM faculty WHERE LOWER(email) = LOWER($1)"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check faculty email: %w", err)
	}
	return true, nil
}

// Create persists a new faculty member and their eligibility set atomically.
func (r *FacultyRepository) Create(ctx context.Context, faculty *models.Faculty) error {
	if faculty.ID == "" {
		faculty.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	faculty.CreatedAt = now
	faculty.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO faculty (id, name, email, department_id, created_at, updated_at)
		VALUES (:id, :name, :email, :department_id, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, faculty); err != nil {
		return fmt.Errorf("create faculty: %w", err)
	}
	if err := r.replaceSubjects(ctx, tx, faculty.ID, faculty.SubjectIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// Update modifies a faculty member, replacing the eligibility set.
func (r *FacultyRepository) Update(ctx context.Context, faculty *models.Faculty) error {
	faculty.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const query = `
		UPDATE faculty
		SET name = :name, email = :email, department_id = :department_id, updated_at = :updated_at
		WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, faculty); err != nil {
		return fmt.Errorf("update faculty: %w", err)
	}
	if err := r.replaceSubjects(ctx, tx, faculty.ID, faculty.SubjectIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a faculty member; faculty_subjects rows cascade.
func (r *FacultyRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM faculty WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete faculty: %w", err)
	}
	return nil
}

func (r *FacultyRepository) subjectIDs(ctx context.Context, facultyID string) ([]string, error) {
	var ids []string
	const query = `SELECT subject_id FROM faculty_subjects WHERE faculty_id = $1 ORDER BY subject_id`
	if err := r.db.SelectContext(ctx, &ids, query, facultyID); err != nil {
		return nil, fmt.Errorf("list faculty subjects: %w", err)
	}
	return ids, nil
}

func (r *FacultyRepository) replaceSubjects(ctx context.Context, tx *sqlx.Tx, facultyID string, subjectIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM faculty_subjects WHERE faculty_id = $1`, facultyID); err != nil {
		return fmt.Errorf("clear faculty subjects: %w", err)
	}
	for _, subjectID := range subjectIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO faculty_subjects (faculty_id, subject_id) VALUES ($1, $2)`,
			facultyID, subjectID); err != nil {
			return fmt.Errorf("link faculty subject: %w", err)
		}
	}
	return nil
}
