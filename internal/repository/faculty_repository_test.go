package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-forge/timetable-api/internal/models"
)

func newFacultyRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestFacultyRepositoryCreateReplacesEligibility(t *testing.T) {
	db, mock, cleanup := newFacultyRepoMock(t)
	defer cleanup()
	repo := NewFacultyRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO faculty ")).
		WithArgs(sqlmock.AnyArg(), "Dr. Rao", "rao@example.edu", "dept-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM faculty_subjects")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO faculty_subjects")).
		WithArgs(sqlmock.AnyArg(), "sub-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO faculty_subjects")).
		WithArgs(sqlmock.AnyArg(), "sub-2").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	faculty := &models.Faculty{
		Name:         "Dr. Rao",
		Email:        "rao@example.edu",
		DepartmentID: "dept-1",
		SubjectIDs:   []string{"sub-1", "sub-2"},
	}
	require.NoError(t, repo.Create(context.Background(), faculty))
	assert.NotEmpty(t, faculty.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacultyRepositoryListAllWithSubjects(t *testing.T) {
	db, mock, cleanup := newFacultyRepoMock(t)
	defer cleanup()
	repo := NewFacultyRepository(db)

	facultyRows := sqlmock.NewRows([]string{"id", "name", "email", "department_id", "created_at", "updated_at"}).
		AddRow("fac-1", "Dr. Rao", "rao@example.edu", "dept-1", time.Now(), time.Now()).
		AddRow("fac-2", "Dr. Iyer", "iyer@example.edu", "dept-1", time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, name, email, department_id, created_at, updated_at FROM faculty").
		WillReturnRows(facultyRows)

	linkRows := sqlmock.NewRows([]string{"faculty_id", "subject_id"}).
		AddRow("fac-1", "sub-1").
		AddRow("fac-1", "sub-2").
		AddRow("fac-2", "sub-2")
	mock.ExpectQuery("SELECT faculty_id, subject_id FROM faculty_subjects").
		WillReturnRows(linkRows)

	faculty, err := repo.ListAllWithSubjects(context.Background())
	require.NoError(t, err)
	require.Len(t, faculty, 2)
	assert.Equal(t, []string{"sub-1", "sub-2"}, faculty[0].SubjectIDs)
	assert.Equal(t, []string{"sub-2"}, faculty[1].SubjectIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
