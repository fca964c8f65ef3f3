package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campus-forge/timetable-api/internal/models"
	appErrors "github.com/campus-forge/timetable-api/pkg/errors"
	"github.com/campus-forge/timetable-api/pkg/jobs"
	"github.com/campus-forge/timetable-api/pkg/storage"
)

type fakeExportJobRepo struct {
	jobs map[string]*models.ExportJob
}

func newFakeExportJobRepo() *fakeExportJobRepo {
	return &fakeExportJobRepo{jobs: map[string]*models.ExportJob{}}
}

func (r *fakeExportJobRepo) Create(_ context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = "job-" + time.Now().Format("150405.000000000")
	}
	copied := *job
	r.jobs[job.ID] = &copied
	return nil
}

func (r *fakeExportJobRepo) FindByID(_ context.Context, id string) (*models.ExportJob, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (r *fakeExportJobRepo) MarkProcessing(_ context.Context, id string) error {
	r.jobs[id].Status = models.ExportStatusProcessing
	return nil
}

func (r *fakeExportJobRepo) MarkFinished(_ context.Context, id, filePath, resultURL string) error {
	job := r.jobs[id]
	job.Status = models.ExportStatusFinished
	job.FilePath = &filePath
	job.ResultURL = &resultURL
	now := time.Now().UTC()
	job.FinishedAt = &now
	return nil
}

func (r *fakeExportJobRepo) MarkFailed(_ context.Context, id, message string) error {
	job := r.jobs[id]
	job.Status = models.ExportStatusFailed
	job.ErrorMessage = &message
	return nil
}

func (r *fakeExportJobRepo) ListOlderThan(_ context.Context, cutoff time.Time) ([]models.ExportJob, error) {
	var stale []models.ExportJob
	for _, job := range r.jobs {
		if job.Status == models.ExportStatusFinished && job.FilePath != nil && job.CreatedAt.Before(cutoff) {
			stale = append(stale, *job)
		}
	}
	return stale, nil
}

func (r *fakeExportJobRepo) ClearFile(_ context.Context, id string) error {
	job := r.jobs[id]
	job.FilePath = nil
	job.ResultURL = nil
	return nil
}

type fakeTimetableReader struct {
	details []models.AssignmentDetail
	err     error
}

func (r *fakeTimetableReader) ListDetails(_ context.Context, _ models.TimetableFilter) ([]models.AssignmentDetail, error) {
	return r.details, r.err
}

func newExportFixture(t *testing.T, reader *fakeTimetableReader) (*ExportService, *fakeExportJobRepo) {
	t.Helper()

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	repo := newFakeExportJobRepo()
	svc := NewExportService(repo, reader, ExportServiceConfig{
		Store:   store,
		Signer:  storage.NewSignedURLSigner("test-secret", time.Hour),
		Workers: 1,
	}, nil, nil)
	return svc, repo
}

func sampleDetails() []models.AssignmentDetail {
	return []models.AssignmentDetail{
		{
			Assignment:   models.Assignment{DivisionID: "div-1", Day: 1, Slot: 1},
			SubjectCode:  "CS301",
			SubjectName:  "Operating Systems",
			FacultyName:  "A. Rao",
			RoomNumber:   "101",
			DivisionName: "SE-A",
		},
		{
			Assignment:   models.Assignment{DivisionID: "div-1", Day: 1, Slot: 2},
			SubjectCode:  "CS302",
			SubjectName:  "Databases",
			FacultyName:  "B. Iyer",
			RoomNumber:   "102",
			DivisionName: "SE-A",
		},
	}
}

func TestExportServiceSubmitRejectsUnknownFormat(t *testing.T) {
	svc, _ := newExportFixture(t, &fakeTimetableReader{})

	_, err := svc.Submit(context.Background(), "user-1", ExportRequest{Format: "xlsx"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServiceProcessRendersCSV(t *testing.T) {
	svc, repo := newExportFixture(t, &fakeTimetableReader{details: sampleDetails()})

	job := &models.ExportJob{
		ID:        "job-1",
		Params:    models.ExportJobParams{DivisionID: "div-1", Format: models.ExportFormatCSV},
		Status:    models.ExportStatusQueued,
		CreatedBy: "user-1",
	}
	require.NoError(t, repo.Create(context.Background(), job))

	err := svc.process(context.Background(), jobs.Job{ID: "job-1", Payload: "job-1"})
	require.NoError(t, err)

	stored, err := repo.FindByID(context.Background(), "job-1")
	require.NoError(t, err)
	require.Equal(t, models.ExportStatusFinished, stored.Status)
	require.NotNil(t, stored.FilePath)
	require.NotNil(t, stored.ResultURL)
	require.Contains(t, *stored.ResultURL, "/exports/download?token=")

	file, _, err := svc.Download(context.Background(), tokenFromURL(t, *stored.ResultURL))
	require.NoError(t, err)
	defer file.Close()

	content, err := io.ReadAll(file)
	require.NoError(t, err)
	require.Contains(t, string(content), "Day,Period,Division,Subject Code,Subject,Faculty,Room")
	require.Contains(t, string(content), "CS301")
	require.Contains(t, string(content), "Monday")
}

func TestExportServiceProcessRendersPDF(t *testing.T) {
	svc, repo := newExportFixture(t, &fakeTimetableReader{details: sampleDetails()})

	job := &models.ExportJob{
		ID:        "job-2",
		Params:    models.ExportJobParams{DivisionID: "div-1", Format: models.ExportFormatPDF},
		Status:    models.ExportStatusQueued,
		CreatedBy: "user-1",
	}
	require.NoError(t, repo.Create(context.Background(), job))

	require.NoError(t, svc.process(context.Background(), jobs.Job{ID: "job-2", Payload: "job-2"}))

	stored, err := repo.FindByID(context.Background(), "job-2")
	require.NoError(t, err)
	require.Equal(t, models.ExportStatusFinished, stored.Status)
	require.NotNil(t, stored.FilePath)
	require.True(t, strings.HasSuffix(*stored.FilePath, ".pdf"))
}

func TestExportServiceStatusOwnership(t *testing.T) {
	svc, repo := newExportFixture(t, &fakeTimetableReader{})

	job := &models.ExportJob{ID: "job-3", CreatedBy: "user-1", Status: models.ExportStatusQueued}
	require.NoError(t, repo.Create(context.Background(), job))

	_, err := svc.Status(context.Background(), "job-3", "user-2", models.RoleViewer)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	got, err := svc.Status(context.Background(), "job-3", "user-2", models.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, "job-3", got.ID)

	got, err = svc.Status(context.Background(), "job-3", "user-1", models.RoleViewer)
	require.NoError(t, err)
	require.Equal(t, "job-3", got.ID)
}

func TestExportServiceDownloadRejectsBadToken(t *testing.T) {
	svc, _ := newExportFixture(t, &fakeTimetableReader{})

	_, _, err := svc.Download(context.Background(), "not-a-token")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func tokenFromURL(t *testing.T, url string) string {
	t.Helper()
	idx := strings.Index(url, "token=")
	require.NotEqual(t, -1, idx)
	return url[idx+len("token="):]
}
