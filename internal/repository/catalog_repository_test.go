package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classgotcha-api/internal/models"
	appErrors "github.com/noah-isme/classgotcha-api/pkg/errors"
)

func newCatalogRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestMajorRepositoryCreateAndFind(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()

	repo := NewMajorRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO majors")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	major := &models.Major{ShortCode: "CSCI"}
	require.NoError(t, repo.Create(context.Background(), major))
	require.NotEmpty(t, major.ID)

	rows := sqlmock.NewRows([]string{"id", "short_code", "full_name", "created_at"}).
		AddRow(major.ID, "CSCI", "", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, short_code, full_name, created_at FROM majors WHERE short_code")).
		WithArgs("CSCI").
		WillReturnRows(rows)

	found, err := repo.FindByShortCode(context.Background(), "CSCI")
	require.NoError(t, err)
	assert.Equal(t, major.ID, found.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMajorRepositoryCreateSkippedRowIsUniqueViolation(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO majors")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewMajorRepository(db).Create(context.Background(), &models.Major{ShortCode: "CSCI"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUniqueConstraintViolation))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterRepositoryPqUniqueViolation(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO semesters")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := NewSemesterRepository(db).Create(context.Background(), &models.Semester{Name: "Spring 2017"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUniqueConstraintViolation))
}

func TestSemesterRepositoryFindByNameNoRows(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM semesters WHERE name")).
		WithArgs("Fall 2099").
		WillReturnError(sql.ErrNoRows)

	_, err := NewSemesterRepository(db).FindByName(context.Background(), "Fall 2099")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestProfessorRepositoryMajors(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()

	repo := NewProfessorRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO professor_majors")).
		WithArgs("prof-1", "major-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, repo.AddMajor(context.Background(), "prof-1", "major-1"))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT major_id FROM professor_majors")).
		WithArgs("prof-1").
		WillReturnRows(sqlmock.NewRows([]string{"major_id"}).AddRow("major-1").AddRow("major-2"))
	ids, err := repo.ListMajorIDs(context.Background(), "prof-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"major-1", "major-2"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassroomRepositorySearchBuildsFilters(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{
		"id", "class_code", "semester_id", "class_number", "class_name", "description", "section", "credit", "location",
		"time_slot_id", "major_id", "created_at", "major_short_code", "semester_name", "weekday_mask", "start_minute", "end_minute", "professors",
	}).AddRow("class-1", "30262", "sem-1", "104", "Data Structures", "", "1", "4", "SAL 101",
		"slot-1", "major-1", time.Now(), "CSCI", "Spring 2017", 21, 540, 590, "Ada Lovelace")
	mock.ExpectQuery(`FROM classrooms c .* WHERE c.semester_id = \$1 AND m.short_code = \$2 AND c.class_number = \$3 GROUP BY`).
		WithArgs("sem-1", "CSCI", "104").
		WillReturnRows(rows)

	details, err := NewClassroomRepository(db).Search(context.Background(), models.ClassroomFilter{
		SemesterID:     "sem-1",
		MajorShortCode: "csci",
		ClassNumber:    "104",
	})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "CSCI", details[0].MajorShortCode)
	require.NotNil(t, details[0].WeekdayMask)
	assert.Equal(t, "MoWeFr", details[0].WeekdayMask.String())
	assert.Equal(t, "Ada Lovelace", details[0].Professors)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleItemRepositoryCreateWithParticipants(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_items")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_item_participants")).
		WithArgs(sqlmock.AnyArg(), "acct-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	due := time.Date(2017, 3, 1, 23, 59, 0, 0, time.UTC)
	item := &models.ScheduleItem{
		Name:         "HW1",
		Category:     models.CategoryHomework,
		Kind:         models.KindTask,
		DueAt:        &due,
		Participants: []string{"acct-1"},
	}
	require.NoError(t, NewScheduleItemRepository(db).Create(context.Background(), item))
	require.NotEmpty(t, item.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleItemRepositoryListByClassroomKinds(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "name", "description", "category", "kind", "start_at", "end_at", "due_at",
		"weekday_mask", "start_minute", "end_minute", "location", "classroom_id", "group_id", "time_slot_id", "created_at"}).
		AddRow("item-1", "HW1", "", "HOMEWORK", "TASK", nil, nil, time.Now(), nil, nil, nil, "", "class-1", nil, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM schedule_items WHERE classroom_id = ? AND kind IN (?, ?)")).
		WithArgs("class-1", "TASK", "EVENT").
		WillReturnRows(rows)

	items, err := NewScheduleItemRepository(db).ListByClassroom(context.Background(), "class-1", models.KindTask, models.KindEvent)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.CategoryHomework, items[0].Category)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMomentRepositoryListRecent(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "classroom_id", "creator_id", "content", "deleted", "created_at"}).
		AddRow("m-1", "class-1", nil, "hello", false, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM moments")).
		WithArgs("class-1", 20).
		WillReturnRows(rows)

	moments, err := NewMomentRepository(db).ListRecentByClassroom(context.Background(), "class-1", 20)
	require.NoError(t, err)
	require.Len(t, moments, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogTxManagerCommitAndRollback(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()

	manager := NewPostgresCatalogTxManager(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO majors")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	err := manager.WithTx(context.Background(), func(ctx context.Context, repos CatalogRepositories) error {
		return repos.Majors.Create(ctx, &models.Major{ShortCode: "MATH"})
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()
	err = manager.WithTx(context.Background(), func(ctx context.Context, repos CatalogRepositories) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
