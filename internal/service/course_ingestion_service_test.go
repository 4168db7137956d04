package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/classgotcha-api/internal/dto"
	"github.com/noah-isme/classgotcha-api/internal/models"
	appErrors "github.com/noah-isme/classgotcha-api/pkg/errors"
)

func newIngestion(catalog *memCatalog) *CourseIngestionService {
	return NewCourseIngestionService(catalog, CourseIngestionConfig{DefaultSemester: "Spring 2017", RoomCreatorID: "admin"}, NewMetricsService(), zap.NewNop())
}

const collisionBatch = `[
	{"major": "CSCI", "number": "30262", "name": "CSCI 104", "fullName": "Data Structures", "section": "1", "unit": 4, "room": "SAL 101", "time": "MoWeFr 09:00am - 09:50am", "instructor1": "Ada Lovelace"},
	{"major": "MATH", "number": "30001", "name": "MATH 225", "fullName": "Linear Algebra", "section": "2", "unit": 4, "room": "KAP 140", "time": "TuTh 2:00pm - 3:20pm"},
	{"major": "EE", "number": "30262", "name": "EE 109", "fullName": "Digital Logic", "section": "1", "unit": 4, "room": "VHE 210", "time": "MoWe 10:00am - 11:20am"},
	{"major": "CSCI", "number": "30263", "name": "CSCI 170", "fullName": "Discrete Methods", "section": "1", "unit": 4, "room": "SGM 123", "time": "TuTh 11:00am - 12:20pm"},
	{"major": "PHYS", "number": "30300", "name": "PHYS 151", "fullName": "Mechanics", "section": "3", "unit": 4, "room": "SSC 101", "time": "MoWeFr 01:00pm - 01:50pm"}
]`

func TestIngestCollidingClassCodeWithDifferentMajorFailsRecord(t *testing.T) {
	catalog := newMemCatalog()
	summary, err := newIngestion(catalog).Ingest(context.Background(), []byte(collisionBatch), "")
	require.NoError(t, err)

	assert.Equal(t, "Spring 2017", summary.Semester)
	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, 4, summary.Processed)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, 2, summary.Failures[0].RecordIndex)
	assert.Equal(t, "30262", summary.Failures[0].ClassCode)
	assert.Equal(t, appErrors.ErrClassroomMajorConflict.Code, summary.Failures[0].Code)

	assert.Len(t, catalog.state.classrooms, 4)
	assert.Equal(t, 4, summary.Created.Classrooms)
	winner := catalog.classroomByCode("30262")
	require.NotNil(t, winner)
	assert.Equal(t, "Data Structures", winner.ClassName)
	assert.Equal(t, catalog.majorByCode("CSCI").ID, winner.MajorID)
	assert.Nil(t, catalog.majorByCode("EE"), "failed record rolls back its major")
	assert.Len(t, catalog.state.timeSlots, 4)
	assert.Len(t, catalog.state.chatRooms, 4)
}

func TestIngestCollidingClassCodeWithSameMajorAttachesProfessors(t *testing.T) {
	catalog := newMemCatalog()
	batch := `[
		{"major": "CSCI", "number": "30262", "name": "CSCI 104", "section": "1", "time": "MoWeFr 09:00am - 09:50am", "instructor1": "Ada Lovelace"},
		{"major": "CSCI", "number": "30262", "name": "CSCI 104", "section": "1", "time": "TuTh 09:00am - 09:50am", "instructor1": "Ada Lovelace", "instructor2": "Alan Turing"}
	]`
	summary, err := newIngestion(catalog).Ingest(context.Background(), []byte(batch), "")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 0, summary.Failed)
	assert.Len(t, catalog.state.classrooms, 1)
	assert.Len(t, catalog.state.timeSlots, 1, "existing classroom keeps its slot")
	classroom := catalog.classroomByCode("30262")
	assert.Len(t, catalog.state.classroomProfs[classroom.ID], 2)
	assert.Equal(t, 2, summary.Created.Professors)
}

func TestIngestTwiceCreatesNothingNew(t *testing.T) {
	catalog := newMemCatalog()
	service := newIngestion(catalog)
	batch := []byte(`[{"major": "CS", "number": "101", "name": "CS 101", "fullName": "Intro", "section": "1", "time": "MoWe 09:00am - 09:50am", "instructor1": "Grace Hopper"}]`)

	first, err := service.Ingest(context.Background(), batch, "")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Processed)
	assert.Equal(t, 0, first.Failed)
	assert.Equal(t, models.IngestionCounters{Majors: 1, Semesters: 1, Classrooms: 1, Professors: 1, TimeSlots: 1, ChatRooms: 1}, first.Created)

	second, err := service.Ingest(context.Background(), batch, "")
	require.NoError(t, err)
	assert.Equal(t, 1, second.Processed)
	assert.Equal(t, 0, second.Failed)
	assert.Equal(t, models.IngestionCounters{}, second.Created)
	assert.Empty(t, second.ReviewFlags)

	assert.Len(t, catalog.state.classrooms, 1)
	assert.Len(t, catalog.state.majors, 1)
	assert.Len(t, catalog.state.professors, 1)
	assert.Len(t, catalog.state.timeSlots, 1)
	assert.Len(t, catalog.state.items, 1)
}

func TestIngestCreatesClassSessionAndChatRoom(t *testing.T) {
	catalog := newMemCatalog()
	batch := []byte(`[{"course_short_name": "csci", "class_number": 30262, "name": "CSCI 104", "course_full_name": "Data Structures", "course_description": "Lists, trees and graphs", "section": "1", "credit": "4", "room": "SAL 101", "datetime": "MoWeFr 09:00am - 09:50am"}]`)
	_, err := newIngestion(catalog).Ingest(context.Background(), batch, "Fall 2017")
	require.NoError(t, err)

	classroom := catalog.classroomByCode("30262")
	require.NotNil(t, classroom)
	assert.Equal(t, "104", classroom.ClassNumber)
	assert.Equal(t, "Data Structures", classroom.ClassName)
	assert.Equal(t, "Lists, trees and graphs", classroom.Description)
	assert.Equal(t, "4", classroom.Credit)
	assert.Equal(t, "SAL 101", classroom.Location)
	require.NotNil(t, classroom.TimeSlotID)

	require.Len(t, catalog.state.items, 1)
	for _, item := range catalog.state.items {
		assert.Equal(t, models.CategoryClassSession, item.Category)
		assert.Equal(t, models.KindRecurring, item.Kind)
		assert.Equal(t, "CSCI 104 - 1", item.Name)
		assert.Equal(t, models.Monday|models.Wednesday|models.Friday, *item.WeekdayMask)
		assert.Equal(t, classroom.ID, *item.ClassroomID)
	}
	require.Len(t, catalog.state.chatRooms, 1)
	for _, room := range catalog.state.chatRooms {
		assert.Equal(t, "CSCI 104 - 1 Chat Room", room.Name)
		require.NotNil(t, room.CreatorID)
		assert.Equal(t, "admin", *room.CreatorID)
	}
	_, err = memSemesters{catalog}.FindByName(context.Background(), "Fall 2017")
	assert.NoError(t, err)
}

func TestIngestMalformedMeetingStringDegrades(t *testing.T) {
	catalog := newMemCatalog()
	batch := []byte(`[{"major": "CSCI", "number": "1", "name": "CSCI 1", "time": "09:00am - 09:50am"}, {"major": "CSCI", "number": "2", "name": "CSCI 2", "time": "TBA"}]`)
	summary, err := newIngestion(catalog).Ingest(context.Background(), batch, "")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	require.Len(t, summary.Warnings, 2)
	assert.Equal(t, appErrors.ErrMalformedScheduleString.Code, summary.Warnings[0].Code)
	assert.Equal(t, 1, summary.Warnings[1].RecordIndex)
	assert.Empty(t, catalog.state.timeSlots)
	assert.Empty(t, catalog.state.items)
	assert.Nil(t, catalog.classroomByCode("1").TimeSlotID)
}

func TestIngestV1ObjectInKeyOrder(t *testing.T) {
	catalog := newMemCatalog()
	batch := []byte(`{
		"b": {"major": "EE", "number": "500", "name": "EE 109"},
		"a": {"major": "CSCI", "number": "500", "name": "CSCI 104"}
	}`)
	summary, err := newIngestion(catalog).Ingest(context.Background(), batch, "")
	require.NoError(t, err)

	require.Len(t, summary.Failures, 1)
	assert.Equal(t, 1, summary.Failures[0].RecordIndex)
	assert.Equal(t, catalog.majorByCode("CSCI").ID, catalog.classroomByCode("500").MajorID)
}

func TestIngestProfessorAcrossMajorsIsFlagged(t *testing.T) {
	catalog := newMemCatalog()
	batch := []byte(`[
		{"major": "CSCI", "number": "1", "name": "CSCI 1", "instructor1": "Ada Lovelace"},
		{"major": "MATH", "number": "2", "name": "MATH 2", "instructor2": "ada LOVELACE", "instructor2_email": "ada@example.edu"}
	]`)
	summary, err := newIngestion(catalog).Ingest(context.Background(), batch, "")
	require.NoError(t, err)

	assert.Len(t, catalog.state.professors, 1)
	require.Len(t, summary.ReviewFlags, 1)
	assert.Equal(t, 1, summary.ReviewFlags[0].RecordIndex)
	assert.Equal(t, "MATH", summary.ReviewFlags[0].MajorCode)
	assert.Equal(t, "ADA LOVELACE", summary.ReviewFlags[0].Professor)
	for id := range catalog.state.professors {
		assert.Len(t, catalog.state.professorMajors[id], 2)
	}
}

func TestIngestRecordErrorsAreIsolated(t *testing.T) {
	catalog := newMemCatalog()
	core, logs := observer.New(zap.WarnLevel)
	service := NewCourseIngestionService(catalog, CourseIngestionConfig{}, nil, zap.New(core))
	batch := []byte(`[
		{"major": "CSCI", "name": "CSCI 1"},
		"not a record",
		{"number": "7"},
		{"major": "CSCI", "number": "8", "name": "CSCI 8", "instructor1": "Cher"}
	]`)
	summary, err := service.Ingest(context.Background(), batch, "")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 3, summary.Failed)
	for i, failure := range summary.Failures {
		assert.Equal(t, i, failure.RecordIndex)
		assert.Equal(t, appErrors.ErrValidation.Code, failure.Code)
	}
	require.Len(t, summary.Warnings, 1, "single-token instructor name is skipped")
	assert.Equal(t, 3, logs.FilterMessage("course record rejected").Len())
}

func TestIngestRejectsInvalidBatchFormat(t *testing.T) {
	for _, raw := range []string{``, `null`, `42`, `"text"`, `{"major": "CSCI"}`, `[{"major": }`} {
		catalog := newMemCatalog()
		_, err := newIngestion(catalog).Ingest(context.Background(), []byte(raw), "")
		assert.True(t, errors.Is(err, appErrors.ErrInvalidBatchFormat), "input %q", raw)
		assert.Empty(t, catalog.state.semesters, "nothing is touched for %q", raw)
	}
}

func TestIngestEmptyBatch(t *testing.T) {
	summary, err := newIngestion(newMemCatalog()).Ingest(context.Background(), []byte(`[]`), "")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	assert.NotNil(t, summary.Failures)
}

func TestIngestV2FieldNamesWithoutShortName(t *testing.T) {
	catalog := newMemCatalog()
	batch := []byte(`[{"course_short_name": "CSCI 104", "class_number": "30262", "course_full_name": "Data Structures", "section": "1", "datetime": "MoWeFr 09:00am - 09:50am", "instructor1": "Ada Lovelace"}]`)
	summary, err := newIngestion(catalog).Ingest(context.Background(), batch, "")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Empty(t, summary.Failures)
	classroom := catalog.classroomByCode("30262")
	require.NotNil(t, classroom)
	assert.Equal(t, "104", classroom.ClassNumber)
	assert.NotNil(t, catalog.majorByCode("CSCI"))
	require.Len(t, catalog.state.chatRooms, 1)
	for _, room := range catalog.state.chatRooms {
		assert.Equal(t, "Data Structures - 1 Chat Room", room.Name)
	}
}

func TestIngestLongTitleKeepsNamesWithinColumns(t *testing.T) {
	catalog := newMemCatalog()
	title := strings.Repeat("Advanced Topics in Distributed Systems ", 6)
	batch := []byte(`[{"major": "CSCI", "number": "40001", "fullName": "` + title + `", "section": "2", "time": "TuTh 2:00pm - 3:20pm"}]`)
	summary, err := newIngestion(catalog).Ingest(context.Background(), batch, "")
	require.NoError(t, err)
	require.Equal(t, 1, summary.Processed)

	for _, item := range catalog.state.items {
		assert.LessOrEqual(t, utf8.RuneCountInString(item.Name), dto.MaxDisplayNameLength)
		assert.True(t, strings.HasSuffix(item.Name, " - 2"), item.Name)
	}
	for _, room := range catalog.state.chatRooms {
		assert.LessOrEqual(t, utf8.RuneCountInString(room.Name), 128)
		assert.True(t, strings.HasSuffix(room.Name, " - 2 Chat Room"), room.Name)
	}
}
