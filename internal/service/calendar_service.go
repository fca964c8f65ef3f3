package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-forge/timetable-api/internal/models"
	appErrors "github.com/campus-forge/timetable-api/pkg/errors"
)

type calendarRepository interface {
	Latest(ctx context.Context) (*models.CalendarConfig, error)
	List(ctx context.Context) ([]models.CalendarConfig, error)
	Create(ctx context.Context, cfg *models.CalendarConfig) error
	Update(ctx context.Context, cfg *models.CalendarConfig) error
}

// CalendarRequest captures the institution-wide scheduling parameters.
type CalendarRequest struct {
	WorkingDays    int `json:"working_days" validate:"required,min=5,max=6"`
	PeriodsPerDay  int `json:"periods_per_day" validate:"required,min=1,max=12"`
	LabBlockLength int `json:"lab_block_length" validate:"required,min=1,max=4"`
}

// CalendarService handles the calendar configuration workflow. There is one
// effective config; reads fall back to defaults when none was ever saved.
type CalendarService struct {
	repo      calendarRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCalendarService creates a new calendar service.
func NewCalendarService(repo calendarRepository, validate *validator.Validate, logger *zap.Logger) *CalendarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{repo: repo, validator: validate, logger: logger}
}

// Get returns the effective calendar configuration.
func (s *CalendarService) Get(ctx context.Context) (*models.CalendarConfig, error) {
	cfg, err := s.repo.Latest(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			fallback := models.DefaultCalendarConfig()
			return &fallback, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load calendar config")
	}
	return cfg, nil
}

// History returns every saved configuration, newest first.
func (s *CalendarService) History(ctx context.Context) ([]models.CalendarConfig, error) {
	configs, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list calendar configs")
	}
	return configs, nil
}

// Put replaces the calendar configuration, creating it on first use.
func (s *CalendarService) Put(ctx context.Context, req CalendarRequest) (*models.CalendarConfig, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid calendar payload")
	}

	existing, err := s.repo.Latest(ctx)
	if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load calendar config")
	}

	if existing == nil {
		cfg := &models.CalendarConfig{
			WorkingDays:    req.WorkingDays,
			PeriodsPerDay:  req.PeriodsPerDay,
			LabBlockLength: req.LabBlockLength,
		}
		if err := s.repo.Create(ctx, cfg); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create calendar config")
		}
		return cfg, nil
	}

	existing.WorkingDays = req.WorkingDays
	existing.PeriodsPerDay = req.PeriodsPerDay
	existing.LabBlockLength = req.LabBlockLength
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update calendar config")
	}
	return existing, nil
}
