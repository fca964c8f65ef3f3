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

func newSubjectRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSubjectRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newSubjectRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO subjects")).
		WithArgs(sqlmock.AnyArg(), "CS301", "Operating Systems", 4, "dept-1", "sem-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	subject := &models.Subject{
		Code:         "CS301",
		Name:         "Operating Systems",
		Credits:      4,
		DepartmentID: "dept-1",
		SemesterID:   "sem-1",
	}
	require.NoError(t, repo.Create(context.Background(), subject))
	assert.NotEmpty(t, subject.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryListBySemester(t *testing.T) {
	db, mock, cleanup := newSubjectRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	rows := sqlmock.NewRows([]string{"id", "code", "name", "credits", "department_id", "semester_id", "created_at", "updated_at"}).
		AddRow("sub-1", "CS301", "Operating Systems", 4, "dept-1", "sem-1", time.Now(), time.Now()).
		AddRow("sub-2", "CS302L", "OS Lab", 2, "dept-1", "sem-1", time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, code, name, credits, department_id, semester_id, created_at, updated_at").
		WithArgs("sem-1").
		WillReturnRows(rows)

	subjects, err := repo.ListBySemester(context.Background(), "sem-1")
	require.NoError(t, err)
	assert.Len(t, subjects, 2)
	assert.Equal(t, "CS301", subjects[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryListWithFilter(t *testing.T) {
	db, mock, cleanup := newSubjectRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM subjects")).
		WithArgs("dept-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows([]string{"id", "code", "name", "credits", "department_id", "semester_id", "created_at", "updated_at"}).
		AddRow("sub-1", "CS301", "Operating Systems", 4, "dept-1", "sem-1", time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, code, name, credits, department_id, semester_id, created_at, updated_at").
		WithArgs("dept-1", 20, 0).
		WillReturnRows(rows)

	subjects, total, err := repo.List(context.Background(), models.SubjectFilter{
		DepartmentID: "dept-1",
		Page:         1,
		PageSize:     20,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, subjects, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryExistsByCode(t *testing.T) {
	db, mock, cleanup := newSubjectRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery("SELECT 1 FROM subjects").
		WithArgs("CS301").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByCode(context.Background(), "CS301", "")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery("SELECT 1 FROM subjects").
		WithArgs("CS999").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err = repo.ExistsByCode(context.Background(), "CS999", "")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
