package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campus-forge/timetable-api/internal/models"
	appErrors "github.com/campus-forge/timetable-api/pkg/errors"
)

type fakeDepartmentRepo struct {
	byID    map[string]*models.Department
	names   map[string]bool
	created *models.Department
	updated *models.Department
	deleted string
}

func newFakeDepartmentRepo() *fakeDepartmentRepo {
	return &fakeDepartmentRepo{byID: map[string]*models.Department{}, names: map[string]bool{}}
}

func (f *fakeDepartmentRepo) List(context.Context) ([]models.Department, error) {
	out := make([]models.Department, 0, len(f.byID))
	for _, d := range f.byID {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeDepartmentRepo) FindByID(_ context.Context, id string) (*models.Department, error) {
	if d, ok := f.byID[id]; ok {
		copy := *d
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeDepartmentRepo) ExistsByName(_ context.Context, name string, _ string) (bool, error) {
	return f.names[name], nil
}

func (f *fakeDepartmentRepo) Create(_ context.Context, d *models.Department) error {
	d.ID = "dept-new"
	f.created = d
	return nil
}

func (f *fakeDepartmentRepo) Update(_ context.Context, d *models.Department) error {
	f.updated = d
	return nil
}

func (f *fakeDepartmentRepo) Delete(_ context.Context, id string) error {
	f.deleted = id
	return nil
}

func TestDepartmentServiceCreate(t *testing.T) {
	repo := newFakeDepartmentRepo()
	svc := NewDepartmentService(repo, nil, zap.NewNop())

	department, err := svc.Create(context.Background(), DepartmentRequest{Name: "  Computer Engineering "})
	require.NoError(t, err)
	assert.Equal(t, "Computer Engineering", department.Name)
	assert.Equal(t, "dept-new", department.ID)
}

func TestDepartmentServiceCreateRejectsDuplicateName(t *testing.T) {
	repo := newFakeDepartmentRepo()
	repo.names["Computer Engineering"] = true
	svc := NewDepartmentService(repo, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), DepartmentRequest{Name: "Computer Engineering"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestDepartmentServiceCreateValidatesPayload(t *testing.T) {
	svc := NewDepartmentService(newFakeDepartmentRepo(), nil, zap.NewNop())

	_, err := svc.Create(context.Background(), DepartmentRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDepartmentServiceGetNotFound(t *testing.T) {
	svc := NewDepartmentService(newFakeDepartmentRepo(), nil, zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDepartmentServiceDelete(t *testing.T) {
	repo := newFakeDepartmentRepo()
	repo.byID["dept-1"] = &models.Department{ID: "dept-1", Name: "Computer Engineering"}
	svc := NewDepartmentService(repo, nil, zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "dept-1"))
	assert.Equal(t, "dept-1", repo.deleted)
}
