package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-forge/timetable-api/internal/models"
)

// TimetableRepository handles persistence for committed assignments.
// Generation replaces the whole timetable atomically, so the write path is
// transactional: ResetAll followed by BulkInsert inside one tx.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository creates a new repository instance.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// BeginTx opens a transaction for a replace-all write.
func (r *TimetableRepository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}

// ResetAll deletes every assignment within the given transaction.
func (r *TimetableRepository) ResetAll(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM timetable_assignments`); err != nil {
		return fmt.Errorf("reset timetable: %w", err)
	}
	return nil
}

// BulkInsert writes all assignments within the given transaction.
func (r *TimetableRepository) BulkInsert(ctx context.Context, tx *sqlx.Tx, assignments []models.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for i := range assignments {
		if assignments[i].ID == "" {
			assignments[i].ID = uuid.NewString()
		}
		assignments[i].CreatedAt = now
	}

	const query = `
		INSERT INTO timetable_assignments (id, division_id, day, slot, subject_id, faculty_id, room_id, created_at)
		VALUES (:id, :division_id, :day, :slot, :subject_id, :faculty_id, :room_id, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, assignments); err != nil {
		return fmt.Errorf("insert assignments: %w", err)
	}
	return nil
}

// ListDetails returns assignments joined with display names, narrowed by
// the filter's division and faculty when set.
func (r *TimetableRepository) ListDetails(ctx context.Context, filter models.TimetableFilter) ([]models.AssignmentDetail, error) {
	query := `
		SELECT t.id, t.division_id, t.day, t.slot, t.subject_id, t.faculty_id, t.room_id, t.created_at,
		       s.code AS subject_code, s.name AS subject_name,
		       f.name AS faculty_name, r.room_number, d.name AS division_name
		FROM timetable_assignments t
		JOIN subjects s ON s.id = t.subject_id
		JOIN faculty f ON f.id = t.faculty_id
		JOIN rooms r ON r.id = t.room_id
		JOIN divisions d ON d.id = t.division_id`
	where := " WHERE 1=1"
	args := []interface{}{}
	idx := 1

	if filter.DivisionID != "" {
		where += fmt.Sprintf(" AND t.division_id = $%d", idx)
		args = append(args, filter.DivisionID)
		idx++
	}
	if filter.FacultyID != "" {
		where += fmt.Sprintf(" AND t.faculty_id = $%d", idx)
		args = append(args, filter.FacultyID)
		idx++
	}
	query += where + " ORDER BY t.day, t.slot, d.name"

	var details []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return details, nil
}

// Count returns the number of committed assignments.
func (r *TimetableRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM timetable_assignments`); err != nil {
		return 0, fmt.Errorf("count assignments: %w", err)
	}
	return count, nil
}
