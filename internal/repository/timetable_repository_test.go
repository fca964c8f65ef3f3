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

func newTimetableRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTimetableRepositoryReplaceAll(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_assignments")).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_assignments")).
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.ResetAll(ctx, tx))

	assignments := []models.Assignment{
		{DivisionID: "div-1", Day: 1, Slot: 1, SubjectID: "sub-1", FacultyID: "fac-1", RoomID: "room-1"},
		{DivisionID: "div-1", Day: 1, Slot: 2, SubjectID: "sub-1", FacultyID: "fac-1", RoomID: "room-1"},
	}
	require.NoError(t, repo.BulkInsert(ctx, tx, assignments))
	require.NoError(t, tx.Commit())

	assert.NotEmpty(t, assignments[0].ID)
	assert.NotEmpty(t, assignments[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryBulkInsertEmpty(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.BulkInsert(ctx, tx, nil))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListDetails(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "division_id", "day", "slot", "subject_id", "faculty_id", "room_id", "created_at",
		"subject_code", "subject_name", "faculty_name", "room_number", "division_name",
	}).AddRow("a-1", "div-1", 1, 1, "sub-1", "fac-1", "room-1", time.Now(),
		"CS301", "Operating Systems", "Dr. Rao", "301", "CS-5A")

	mock.ExpectQuery("SELECT t.id, t.division_id, t.day, t.slot").
		WithArgs("div-1").
		WillReturnRows(rows)

	details, err := repo.ListDetails(context.Background(), models.TimetableFilter{DivisionID: "div-1"})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "CS301", details[0].SubjectCode)
	assert.Equal(t, "CS-5A", details[0].DivisionName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListDetailsByFaculty(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "division_id", "day", "slot", "subject_id", "faculty_id", "room_id", "created_at",
		"subject_code", "subject_name", "faculty_name", "room_number", "division_name",
	}).AddRow("a-1", "div-1", 1, 1, "sub-1", "fac-1", "room-1", time.Now(),
		"CS301", "Operating Systems", "Dr. Rao", "301", "CS-5A")

	mock.ExpectQuery(regexp.QuoteMeta("AND t.faculty_id = $1")).
		WithArgs("fac-1").
		WillReturnRows(rows)

	details, err := repo.ListDetails(context.Background(), models.TimetableFilter{FacultyID: "fac-1"})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "fac-1", details[0].FacultyID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
