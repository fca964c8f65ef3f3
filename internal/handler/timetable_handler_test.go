package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campus-forge/timetable-api/internal/models"
	"github.com/campus-forge/timetable-api/internal/service"
)

type timetableCalendarStub struct{}

func (timetableCalendarStub) Latest(context.Context) (*models.CalendarConfig, error) {
	return nil, sql.ErrNoRows
}

type timetableDivisionStub struct{}

func (timetableDivisionStub) ListAll(context.Context) ([]models.Division, error) { return nil, nil }

type timetableSubjectStub struct{}

func (timetableSubjectStub) ListAll(context.Context) ([]models.Subject, error) { return nil, nil }

type timetableFacultyStub struct{}

func (timetableFacultyStub) ListAllWithSubjects(context.Context) ([]models.Faculty, error) {
	return nil, nil
}

type timetableRoomStub struct{}

func (timetableRoomStub) List(context.Context, string, models.RoomType) ([]models.Room, error) {
	return nil, nil
}

type timetableSemesterStub struct{}

func (timetableSemesterStub) List(context.Context, string) ([]models.Semester, error) {
	return nil, nil
}

type timetableRepoStub struct {
	details    []models.AssignmentDetail
	lastFilter models.TimetableFilter
}

func (s *timetableRepoStub) BeginTx(context.Context) (*sqlx.Tx, error) { return nil, nil }

func (s *timetableRepoStub) ResetAll(context.Context, *sqlx.Tx) error { return nil }

func (s *timetableRepoStub) BulkInsert(context.Context, *sqlx.Tx, []models.Assignment) error {
	return nil
}

func (s *timetableRepoStub) ListDetails(_ context.Context, filter models.TimetableFilter) ([]models.AssignmentDetail, error) {
	s.lastFilter = filter
	return s.details, nil
}

func (s *timetableRepoStub) Count(context.Context) (int, error) { return len(s.details), nil }

func newTimetableRouter(repo *timetableRepoStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewTimetableService(
		timetableCalendarStub{},
		timetableDivisionStub{},
		timetableSubjectStub{},
		timetableFacultyStub{},
		timetableRoomStub{},
		timetableSemesterStub{},
		repo,
		service.NewCacheService(nil, nil, 0, zap.NewNop(), false),
		service.NewMetricsService(),
		zap.NewNop(),
		0,
		0,
	)
	handler := NewTimetableHandler(svc)

	router := gin.New()
	router.GET("/timetable", handler.List)
	return router
}

func TestTimetableHandlerListByFaculty(t *testing.T) {
	repo := &timetableRepoStub{details: []models.AssignmentDetail{
		{
			Assignment:   models.Assignment{ID: "a-1", DivisionID: "div-1", Day: 1, Slot: 2, FacultyID: "fac-1"},
			SubjectCode:  "CS301",
			SubjectName:  "Operating Systems",
			FacultyName:  "Dr. Rao",
			RoomNumber:   "301",
			DivisionName: "CS-5A",
		},
	}}
	router := newTimetableRouter(repo)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/timetable?faculty_id=fac-1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fac-1", repo.lastFilter.FacultyID)
	assert.Empty(t, repo.lastFilter.DivisionID)

	var envelope struct {
		Data []models.AssignmentDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "Dr. Rao", envelope.Data[0].FacultyName)
}

func TestTimetableHandlerListByDivision(t *testing.T) {
	repo := &timetableRepoStub{}
	router := newTimetableRouter(repo)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/timetable?division_id=div-1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "div-1", repo.lastFilter.DivisionID)
	assert.Empty(t, repo.lastFilter.FacultyID)
}
