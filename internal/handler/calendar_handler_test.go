package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	internalmiddleware "github.com/campus-forge/timetable-api/internal/middleware"
	"github.com/campus-forge/timetable-api/internal/models"
	"github.com/campus-forge/timetable-api/internal/service"
)

type calendarRepoStub struct {
	latest  *models.CalendarConfig
	created *models.CalendarConfig
	updated *models.CalendarConfig
}

func (s *calendarRepoStub) Latest(context.Context) (*models.CalendarConfig, error) {
	if s.latest == nil {
		return nil, sql.ErrNoRows
	}
	return s.latest, nil
}

func (s *calendarRepoStub) List(context.Context) ([]models.CalendarConfig, error) {
	if s.latest == nil {
		return nil, nil
	}
	return []models.CalendarConfig{*s.latest}, nil
}

func (s *calendarRepoStub) Create(_ context.Context, cfg *models.CalendarConfig) error {
	cfg.ID = "cal-1"
	s.created = cfg
	return nil
}

func (s *calendarRepoStub) Update(_ context.Context, cfg *models.CalendarConfig) error {
	s.updated = cfg
	return nil
}

func newCalendarRouter(repo *calendarRepoStub, role models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewCalendarHandler(service.NewCalendarService(repo, nil, zap.NewNop()))

	router := gin.New()
	if role != "" {
		router.Use(func(c *gin.Context) {
			c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: role})
			c.Next()
		})
	}
	router.GET("/calendar", handler.Get)
	router.PUT("/calendar", internalmiddleware.RequireRoles(models.RoleAdmin), handler.Put)
	return router
}

func TestCalendarHandlerGetDefaults(t *testing.T) {
	router := newCalendarRouter(&calendarRepoStub{}, models.RoleViewer)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/calendar", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.CalendarConfig `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, models.DefaultWorkingDays, envelope.Data.WorkingDays)
	require.Equal(t, models.DefaultPeriodsPerDay, envelope.Data.PeriodsPerDay)
}

func TestCalendarHandlerPutCreates(t *testing.T) {
	repo := &calendarRepoStub{}
	router := newCalendarRouter(repo, models.RoleAdmin)

	payload := []byte(`{"working_days":6,"periods_per_day":7,"lab_block_length":2}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/calendar", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, repo.created)
	require.Equal(t, 6, repo.created.WorkingDays)
	require.Equal(t, 7, repo.created.PeriodsPerDay)
}

func TestCalendarHandlerPutRejectsInvalidRange(t *testing.T) {
	router := newCalendarRouter(&calendarRepoStub{}, models.RoleAdmin)

	payload := []byte(`{"working_days":4,"periods_per_day":7,"lab_block_length":2}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/calendar", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalendarHandlerPutForbiddenForViewer(t *testing.T) {
	router := newCalendarRouter(&calendarRepoStub{}, models.RoleViewer)

	payload := []byte(`{"working_days":5,"periods_per_day":6,"lab_block_length":2}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/calendar", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestCalendarHandlerPutUnauthorizedWithoutClaims(t *testing.T) {
	router := newCalendarRouter(&calendarRepoStub{}, "")

	payload := []byte(`{"working_days":5,"periods_per_day":6,"lab_block_length":2}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/calendar", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
