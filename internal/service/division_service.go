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

type divisionRepository interface {
	List(ctx context.Context, semesterID string) ([]models.DivisionDetail, error)
	FindByID(ctx context.Context, id string) (*models.DivisionDetail, error)
	Create(ctx context.Context, division *models.Division) error
	Update(ctx context.Context, division *models.Division) error
	Delete(ctx context.Context, id string) error
}

type divisionSemesterLookup interface {
	FindByID(ctx context.Context, id string) (*models.Semester, error)
}

// DivisionRequest captures fields for creating or updating divisions.
type DivisionRequest struct {
	SemesterID  string `json:"semester_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	NumStudents int    `json:"num_students" validate:"required,min=1"`
}

// DivisionService handles division domain workflows.
type DivisionService struct {
	repo      divisionRepository
	semesters divisionSemesterLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDivisionService creates a new division service.
func NewDivisionService(repo divisionRepository, semesters divisionSemesterLookup, validate *validator.Validate, logger *zap.Logger) *DivisionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DivisionService{repo: repo, semesters: semesters, validator: validate, logger: logger}
}

// List returns division details, optionally scoped to one semester.
func (s *DivisionService) List(ctx context.Context, semesterID string) ([]models.DivisionDetail, error) {
	divisions, err := s.repo.List(ctx, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list divisions")
	}
	return divisions, nil
}

// Get returns a division detail by identifier.
func (s *DivisionService) Get(ctx context.Context, id string) (*models.DivisionDetail, error) {
	division, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "division not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load division")
	}
	return division, nil
}

// Create adds a new division under an existing semester.
func (s *DivisionService) Create(ctx context.Context, req DivisionRequest) (*models.Division, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid division payload")
	}
	if err := s.checkSemester(ctx, req.SemesterID); err != nil {
		return nil, err
	}

	division := &models.Division{
		SemesterID:  req.SemesterID,
		Name:        strings.TrimSpace(req.Name),
		NumStudents: req.NumStudents,
	}
	if err := s.repo.Create(ctx, division); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create division")
	}
	return division, nil
}

// Update modifies an existing division.
func (s *DivisionService) Update(ctx context.Context, id string, req DivisionRequest) (*models.Division, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid division payload")
	}

	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkSemester(ctx, req.SemesterID); err != nil {
		return nil, err
	}

	division := detail.Division
	division.SemesterID = req.SemesterID
	division.Name = strings.TrimSpace(req.Name)
	division.NumStudents = req.NumStudents

	if err := s.repo.Update(ctx, &division); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update division")
	}
	return &division, nil
}

// Delete removes a division.
func (s *DivisionService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete division")
	}
	return nil
}

func (s *DivisionService) checkSemester(ctx context.Context, id string) error {
	if _, err := s.semesters.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrValidation, "semester does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}
	return nil
}
