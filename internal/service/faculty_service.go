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

type facultyRepository interface {
	List(ctx context.Context, departmentID string) ([]models.Faculty, error)
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Create(ctx context.Context, faculty *models.Faculty) error
	Update(ctx context.Context, faculty *models.Faculty) error
	Delete(ctx context.Context, id string) error
}

type facultySubjectLookup interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// FacultyRequest captures fields for creating or updating faculty members.
// SubjectIDs is the full eligibility set; updates replace it wholesale.
type FacultyRequest struct {
	Name         string   `json:"name" validate:"required"`
	Email        string   `json:"email" validate:"required,email"`
	DepartmentID string   `json:"department_id" validate:"required"`
	SubjectIDs   []string `json:"subject_ids" validate:"dive,required"`
}

// FacultyService handles faculty domain workflows.
type FacultyService struct {
	repo      facultyRepository
	subjects  facultySubjectLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFacultyService creates a new faculty service.
func NewFacultyService(repo facultyRepository, subjects facultySubjectLookup, validate *validator.Validate, logger *zap.Logger) *FacultyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyService{repo: repo, subjects: subjects, validator: validate, logger: logger}
}

// List returns faculty, optionally scoped to one department.
func (s *FacultyService) List(ctx context.Context, departmentID string) ([]models.Faculty, error) {
	faculty, err := s.repo.List(ctx, departmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculty")
	}
	return faculty, nil
}

// Get returns one faculty member with their eligibility set.
func (s *FacultyService) Get(ctx context.Context, id string) (*models.Faculty, error) {
	faculty, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	return faculty, nil
}

// Create adds a new faculty member with their eligibility set.
func (s *FacultyService) Create(ctx context.Context, req FacultyRequest) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty payload")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check faculty email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "faculty email already exists")
	}

	subjectIDs, err := s.checkSubjects(ctx, req.SubjectIDs)
	if err != nil {
		return nil, err
	}

	faculty := &models.Faculty{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		DepartmentID: req.DepartmentID,
		SubjectIDs:   subjectIDs,
	}
	if err := s.repo.Create(ctx, faculty); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create faculty")
	}
	return faculty, nil
}

// Update modifies a faculty member, replacing the eligibility set.
func (s *FacultyService) Update(ctx context.Context, id string, req FacultyRequest) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty payload")
	}

	faculty, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.repo.ExistsByEmail(ctx, req.Email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check faculty email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "faculty email already exists")
	}

	subjectIDs, err := s.checkSubjects(ctx, req.SubjectIDs)
	if err != nil {
		return nil, err
	}

	faculty.Name = strings.TrimSpace(req.Name)
	faculty.Email = req.Email
	faculty.DepartmentID = req.DepartmentID
	faculty.SubjectIDs = subjectIDs

	if err := s.repo.Update(ctx, faculty); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update faculty")
	}
	return faculty, nil
}

// Delete removes a faculty member.
func (s *FacultyService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete faculty")
	}
	return nil
}

// checkSubjects validates every referenced subject exists, dropping
// duplicates while preserving order.
func (s *FacultyService) checkSubjects(ctx context.Context, ids []string) ([]string, error) {
	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := s.subjects.FindByID(ctx, id); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrValidation, "subject does not exist: "+id)
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
		}
		result = append(result, id)
	}
	return result, nil
}
