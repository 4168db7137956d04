package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classgotcha-api/internal/dto"
	"github.com/noah-isme/classgotcha-api/internal/models"
	appErrors "github.com/noah-isme/classgotcha-api/pkg/errors"
)

func seedClassroom(t *testing.T, catalog *memCatalog, meeting string) *models.Classroom {
	t.Helper()
	summary, err := newIngestion(catalog).Ingest(context.Background(),
		[]byte(`[{"major": "CSCI", "number": "30262", "name": "CSCI 104", "fullName": "Data Structures", "section": "1", "room": "SAL 101", "time": "`+meeting+`", "instructor1": "Ada Lovelace"}]`), "")
	require.NoError(t, err)
	require.Equal(t, 1, summary.Processed)
	return catalog.classroomByCode("30262")
}

func newTaskService(catalog *memCatalog) *TaskService {
	feed := NewFeedService(memItems{catalog}, &stubMoments{}, nil, nil)
	return NewTaskService(memClassrooms{catalog}, memItems{catalog}, NewScheduleClassifier(time.UTC), feed, NewMetricsService(), nil, nil)
}

func TestTaskServiceCreateInClassQuiz(t *testing.T) {
	catalog := newMemCatalog()
	classroom := seedClassroom(t, catalog, "MoWeFr 09:00am - 09:50am")

	item, err := newTaskService(catalog).Create(context.Background(), classroom.ID, dto.CreateTaskRequest{
		TaskName:     "Quiz 1",
		DueDate:      strPtr("2017-02-06T00:00:00"),
		Participants: []string{"acct-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.CategoryQuiz, item.Category)
	assert.Equal(t, time.Date(2017, 2, 6, 9, 0, 0, 0, time.UTC), *item.StartAt)
	assert.Equal(t, "SAL 101", item.Location)
	assert.Equal(t, classroom.ID, *item.ClassroomID)
	stored := catalog.state.items[item.ID]
	assert.Equal(t, []string{"acct-1"}, stored.Participants)
}

func TestTaskServiceCreateWithoutClassTime(t *testing.T) {
	catalog := newMemCatalog()
	classroom := seedClassroom(t, catalog, "TBA")

	_, err := newTaskService(catalog).Create(context.Background(), classroom.ID, dto.CreateTaskRequest{
		TaskName: "Quiz 1",
		DueDate:  strPtr("2017-02-06T00:00:00"),
	})
	assert.True(t, errors.Is(err, appErrors.ErrMissingClassTimeWindow))
}

func TestTaskServiceCreateValidation(t *testing.T) {
	catalog := newMemCatalog()
	classroom := seedClassroom(t, catalog, "MoWeFr 09:00am - 09:50am")
	service := newTaskService(catalog)

	_, err := service.Create(context.Background(), classroom.ID, dto.CreateTaskRequest{DueDateTime: strPtr("2017-02-06T00:00:00")})
	assert.True(t, errors.Is(err, appErrors.ErrValidation), "task name required")

	_, err = service.Create(context.Background(), classroom.ID, dto.CreateTaskRequest{TaskName: "x"})
	assert.True(t, errors.Is(err, appErrors.ErrAmbiguousScheduleInput))

	_, err = service.Create(context.Background(), "missing", dto.CreateTaskRequest{TaskName: "x", DueDateTime: strPtr("2017-02-06T00:00:00")})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestTaskServiceListHidesExpired(t *testing.T) {
	catalog := newMemCatalog()
	classroom := seedClassroom(t, catalog, "MoWeFr 09:00am - 09:50am")
	service := newTaskService(catalog)
	ctx := context.Background()

	past := time.Now().Add(-48 * time.Hour).UTC().Format("2006-01-02T15:04:05")
	future := time.Now().Add(48 * time.Hour).UTC().Format("2006-01-02T15:04:05")
	_, err := service.Create(ctx, classroom.ID, dto.CreateTaskRequest{TaskName: "old", DueDateTime: &past})
	require.NoError(t, err)
	_, err = service.Create(ctx, classroom.ID, dto.CreateTaskRequest{TaskName: "new", DueDateTime: &future})
	require.NoError(t, err)

	items, err := service.List(ctx, classroom.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "new", items[0].Name)
}
