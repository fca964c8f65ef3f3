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

// RoomRepository handles persistence for rooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a new repository instance.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// List returns rooms ordered by capacity, optionally filtered by department
// and type. The capacity ordering matters to the scheduler, which tries
// smaller rooms first.
func (r *RoomRepository) List(ctx context.Context, departmentID string, roomType models.RoomType) ([]models.Room, error) {
	query := `SELECT id, room_number, department_id, type, capacity, created_at, updated_at FROM rooms WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if departmentID != "" {
		query += fmt.Sprintf(" AND department_id = $%d", idx)
		args = append(args, departmentID)
		idx++
	}
	if roomType != "" {
		query += fmt.Sprintf(" AND type = $%d", idx)
		args = append(args, roomType)
		idx++
	}
	query += " ORDER BY capacity, room_number"

	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query, args...); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// FindByID returns a room by id.
func (r *RoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	const query = `SELECT id, room_number, department_id, type, capacity, created_at, updated_at FROM rooms WHERE id = $1`
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// ExistsByNumber checks uniqueness of the room number within a department.
func (r *RoomRepository) ExistsByNumber(ctx context.Context, departmentID, roomNumber string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM rooms WHERE department_id = $1 AND LOWER(room_number) = LOWER($2)"
	args := []interface{}{departmentID, roomNumber}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check room number: %w", err)
	}
	return true, nil
}

// Create persists a new room.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now

	const query = `
		INSERT INTO rooms (id, room_number, department_id, type, capacity, created_at, updated_at)
		VALUES (:id, :room_number, :department_id, :type, :capacity, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// Update modifies a room.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	room.UpdatedAt = time.Now().UTC()
	const query = `
		UPDATE rooms
		SET room_number = :room_number, department_id = :department_id,
		    type = :type, capacity = :capacity, updated_at = :updated_at
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	return nil
}

// Delete removes a room record.
func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}
