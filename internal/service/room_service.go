package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-forge/timetable-api/internal/models"
	appErrors "github.com/campus-forge/timetable-api/pkg/errors"
)

type roomRepository interface {
	List(ctx context.Context, departmentID string, roomType models.RoomType) ([]models.Room, error)
	FindByID(ctx context.Context, id string) (*models.Room, error)
	ExistsByNumber(ctx context.Context, departmentID, roomNumber string, excludeID string) (bool, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id string) error
}

// RoomRequest captures fields for creating or updating rooms.
type RoomRequest struct {
	RoomNumber   string `json:"room_number" validate:"required"`
	DepartmentID string `json:"department_id" validate:"required"`
	Type         string `json:"type" validate:"required,oneof=CLASSROOM LAB"`
	Capacity     int    `json:"capacity" validate:"required,min=1"`
}

// RoomService handles room domain workflows.
type RoomService struct {
	repo      roomRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoomService creates a new room service.
func NewRoomService(repo roomRepository, validate *validator.Validate, logger *zap.Logger) *RoomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{repo: repo, validator: validate, logger: logger}
}

// List returns rooms, optionally filtered by department and type.
func (s *RoomService) List(ctx context.Context, departmentID string, roomType models.RoomType) ([]models.Room, error) {
	if roomType != "" && roomType != models.RoomTypeClassroom && roomType != models.RoomTypeLab {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid room type")
	}
	rooms, err := s.repo.List(ctx, departmentID, roomType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	return rooms, nil
}

// Get returns a room by identifier.
func (s *RoomService) Get(ctx context.Context, id string) (*models.Room, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	return room, nil
}

// Create adds a new room ensuring number uniqueness within the department.
func (s *RoomService) Create(ctx context.Context, req RoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}

	req.RoomNumber = strings.TrimSpace(req.RoomNumber)

	exists, err := s.repo.ExistsByNumber(ctx, req.DepartmentID, req.RoomNumber, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "room number already exists in department")
	}

	room := &models.Room{
		RoomNumber:   req.RoomNumber,
		DepartmentID: req.DepartmentID,
		Type:         models.RoomType(req.Type),
		Capacity:     req.Capacity,
	}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}
	return room, nil
}

// Update modifies an existing room.
func (s *RoomService) Update(ctx context.Context, id string, req RoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}

	room, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.RoomNumber = strings.TrimSpace(req.RoomNumber)

	exists, err := s.repo.ExistsByNumber(ctx, req.DepartmentID, req.RoomNumber, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "room number already exists in department")
	}

	room.RoomNumber = req.RoomNumber
	room.DepartmentID = req.DepartmentID
	room.Type = models.RoomType(req.Type)
	room.Capacity = req.Capacity

	if err := s.repo.Update(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update room")
	}
	return room, nil
}

// Delete removes a room.
func (s *RoomService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete room")
	}
	return nil
}
