package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/classgotcha-api/internal/dto"
	"github.com/noah-isme/classgotcha-api/internal/models"
	"github.com/noah-isme/classgotcha-api/internal/repository"
	appErrors "github.com/noah-isme/classgotcha-api/pkg/errors"
)

// CourseIngestionConfig tunes catalog ingestion.
type CourseIngestionConfig struct {
	DefaultSemester string
	RoomCreatorID   string
}

// CourseIngestionService imports course catalogs record by record. Each record
// commits or rolls back on its own; one bad record never aborts the batch.
type CourseIngestionService struct {
	tx      repository.CatalogTxManager
	cfg     CourseIngestionConfig
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewCourseIngestionService constructs the ingestion pipeline.
func NewCourseIngestionService(tx repository.CatalogTxManager, cfg CourseIngestionConfig, metrics *MetricsService, logger *zap.Logger) *CourseIngestionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultSemester == "" {
		cfg.DefaultSemester = "Spring 2017"
	}
	return &CourseIngestionService{tx: tx, cfg: cfg, metrics: metrics, logger: logger, now: time.Now}
}

type recordOutcome struct {
	created  models.IngestionCounters
	warnings []models.IngestionWarning
	flags    []models.ReviewFlag
}

// IngestFile reads a catalog file fully and ingests it.
func (s *CourseIngestionService) IngestFile(ctx context.Context, path, semesterName string) (*models.IngestionSummary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return s.Ingest(ctx, raw, semesterName)
}

// Ingest decodes a v1 object or v2 array batch and ingests every record into
// semesterName (the configured default when empty).
func (s *CourseIngestionService) Ingest(ctx context.Context, raw []byte, semesterName string) (*models.IngestionSummary, error) {
	records, err := decodeCourseBatch(raw)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(semesterName) == "" {
		semesterName = s.cfg.DefaultSemester
	}

	started := s.now()
	summary := &models.IngestionSummary{
		Total:    len(records),
		Failures: []models.IngestionFailure{},
	}

	var semester *models.Semester
	err = s.tx.WithTx(ctx, func(ctx context.Context, repos repository.CatalogRepositories) error {
		resolved, created, err := NewEntityResolver(repos).ResolveSemester(ctx, semesterName)
		if err != nil {
			return err
		}
		semester = resolved
		if created {
			summary.Created.Semesters++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	summary.Semester = semester.Name

	for index, rawRecord := range records {
		var record dto.CourseRecord
		if err := json.Unmarshal(rawRecord, &record); err != nil {
			s.recordFailure(summary, index, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "undecodable course record"))
			continue
		}

		var outcome recordOutcome
		err := s.tx.WithTx(ctx, func(ctx context.Context, repos repository.CatalogRepositories) error {
			outcome = recordOutcome{}
			return s.ingestRecord(ctx, NewEntityResolver(repos), repos, index, record, semester, &outcome)
		})
		if err != nil {
			s.recordFailure(summary, index, record.ClassCode, err)
			continue
		}

		summary.Processed++
		mergeCounters(&summary.Created, outcome.created)
		summary.Warnings = append(summary.Warnings, outcome.warnings...)
		summary.ReviewFlags = append(summary.ReviewFlags, outcome.flags...)
	}

	elapsed := s.now().Sub(started)
	s.metrics.RecordIngestion(*summary, elapsed)
	s.logger.Info("catalog ingestion finished",
		zap.String("semester", summary.Semester),
		zap.Int("total", summary.Total),
		zap.Int("processed", summary.Processed),
		zap.Int("failed", summary.Failed),
		zap.Int("classrooms_created", summary.Created.Classrooms),
		zap.Duration("elapsed", elapsed),
	)
	return summary, nil
}

func (s *CourseIngestionService) ingestRecord(ctx context.Context, resolver *EntityResolver, repos repository.CatalogRepositories, index int, record dto.CourseRecord, semester *models.Semester, out *recordOutcome) error {
	classCode := strings.TrimSpace(record.ClassCode)
	if classCode == "" {
		return appErrors.Clone(appErrors.ErrValidation, "class code is required")
	}

	major, created, err := resolver.ResolveMajor(ctx, record.MajorShortCode(), "")
	if err != nil {
		return err
	}
	if created {
		out.created.Majors++
	}

	var window *TimeWindow
	if strings.TrimSpace(record.Time) != "" {
		parsed, err := ParseTimeWindow(record.Time)
		if err != nil {
			appErr := appErrors.FromError(err)
			out.warnings = append(out.warnings, models.IngestionWarning{RecordIndex: index, Code: appErr.Code, Reason: appErr.Error()})
		} else {
			window = &parsed
		}
	}

	classroom, err := resolver.FindClassroom(ctx, classCode, semester.ID)
	if err != nil {
		return err
	}
	if classroom == nil {
		classroom, err = s.createClassroom(ctx, resolver, repos, record, classCode, major, semester, window, out)
		if err != nil {
			return err
		}
	}
	if classroom.MajorID != major.ID {
		return appErrors.Clone(appErrors.ErrClassroomMajorConflict,
			fmt.Sprintf("class code %s in %s is already registered under another major than %s", classCode, semester.Name, major.ShortCode))
	}

	for _, instructor := range record.Instructors() {
		if err := s.attachInstructor(ctx, resolver, index, classroom, major, instructor[0], instructor[1], out); err != nil {
			return err
		}
	}
	return nil
}

func (s *CourseIngestionService) createClassroom(ctx context.Context, resolver *EntityResolver, repos repository.CatalogRepositories, record dto.CourseRecord, classCode string, major *models.Major, semester *models.Semester, window *TimeWindow, out *recordOutcome) (*models.Classroom, error) {
	var slot *models.TimeSlot
	if window != nil {
		slot = window.TimeSlot()
		if err := repos.TimeSlots.Create(ctx, slot); err != nil {
			return nil, err
		}
		out.created.TimeSlots++
	}

	candidate := models.Classroom{
		ClassCode:   classCode,
		SemesterID:  semester.ID,
		ClassNumber: record.Number(),
		ClassName:   record.Title(),
		Description: record.Description,
		Section:     record.Section,
		Credit:      record.Credit,
		Location:    record.Room,
		MajorID:     major.ID,
	}
	if slot != nil {
		candidate.TimeSlotID = &slot.ID
	}

	classroom, created, err := resolver.ResolveClassroom(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if !created {
		return classroom, nil
	}
	out.created.Classrooms++

	if slot != nil {
		session := &models.ScheduleItem{
			Name:        record.DisplayName(),
			Category:    models.CategoryClassSession,
			Kind:        models.KindRecurring,
			WeekdayMask: &slot.WeekdayMask,
			StartMinute: &slot.StartMinute,
			EndMinute:   &slot.EndMinute,
			Location:    record.Room,
			ClassroomID: &classroom.ID,
			TimeSlotID:  &slot.ID,
		}
		if err := repos.ScheduleItems.Create(ctx, session); err != nil {
			return nil, err
		}
	}

	room := &models.ChatRoom{ClassroomID: classroom.ID, Name: record.DisplayName() + " Chat Room"}
	if s.cfg.RoomCreatorID != "" {
		creator := s.cfg.RoomCreatorID
		room.CreatorID = &creator
	}
	switch err := repos.ChatRooms.Create(ctx, room); {
	case err == nil:
		out.created.ChatRooms++
	case !errors.Is(err, appErrors.ErrUniqueConstraintViolation):
		return nil, err
	}
	return classroom, nil
}

func (s *CourseIngestionService) attachInstructor(ctx context.Context, resolver *EntityResolver, index int, classroom *models.Classroom, major *models.Major, name, email string, out *recordOutcome) error {
	first, last, ok := splitInstructorName(name)
	if !ok {
		out.warnings = append(out.warnings, models.IngestionWarning{
			RecordIndex: index,
			Code:        appErrors.ErrValidation.Code,
			Reason:      fmt.Sprintf("instructor %q needs a first and last name", name),
		})
		return nil
	}

	candidate := models.Professor{FirstName: first, LastName: last}
	if email = strings.TrimSpace(email); email != "" {
		candidate.Email = &email
	}
	professor, created, err := resolver.ResolveProfessor(ctx, candidate)
	if err != nil {
		return err
	}
	extended, err := resolver.AffiliateProfessor(ctx, professor.ID, major.ID)
	if err != nil {
		return err
	}
	if created {
		out.created.Professors++
	} else if extended {
		out.flags = append(out.flags, models.ReviewFlag{
			RecordIndex: index,
			ProfessorID: professor.ID,
			Professor:   professor.FullName(),
			MajorCode:   major.ShortCode,
			Reason:      "existing professor matched by name was affiliated with an additional major",
		})
	}
	return resolver.AttachProfessor(ctx, classroom.ID, professor.ID)
}

func (s *CourseIngestionService) recordFailure(summary *models.IngestionSummary, index int, classCode string, err error) {
	appErr := appErrors.FromError(err)
	summary.Failed++
	summary.Failures = append(summary.Failures, models.IngestionFailure{
		RecordIndex: index,
		ClassCode:   classCode,
		Code:        appErr.Code,
		Reason:      appErr.Error(),
	})
	s.logger.Warn("course record rejected",
		zap.Int("record_index", index),
		zap.String("class_code", classCode),
		zap.String("code", appErr.Code),
		zap.String("reason", appErr.Error()),
	)
}

// decodeCourseBatch splits a batch into raw records: a JSON array as is, or the
// values of a JSON object in ascending key order.
func decodeCourseBatch(raw []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, appErrors.ErrInvalidBatchFormat
	}

	switch trimmed[0] {
	case '[':
		var records []json.RawMessage
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInvalidBatchFormat.Code, appErrors.ErrInvalidBatchFormat.Status, appErrors.ErrInvalidBatchFormat.Message)
		}
		return records, nil
	case '{':
		var keyed map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &keyed); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInvalidBatchFormat.Code, appErrors.ErrInvalidBatchFormat.Status, appErrors.ErrInvalidBatchFormat.Message)
		}
		keys := make([]string, 0, len(keyed))
		for key, value := range keyed {
			if v := bytes.TrimSpace(value); len(v) == 0 || v[0] != '{' {
				return nil, appErrors.Clone(appErrors.ErrInvalidBatchFormat, fmt.Sprintf("entry %q is not a course record", key))
			}
			keys = append(keys, key)
		}
		sort.Strings(keys)
		records := make([]json.RawMessage, 0, len(keys))
		for _, key := range keys {
			records = append(records, keyed[key])
		}
		return records, nil
	default:
		return nil, appErrors.ErrInvalidBatchFormat
	}
}

// splitInstructorName takes the first token as the first name and the rest as the last name.
func splitInstructorName(name string) (string, string, bool) {
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[0], strings.Join(parts[1:], " "), true
}

func mergeCounters(dst *models.IngestionCounters, src models.IngestionCounters) {
	dst.Majors += src.Majors
	dst.Semesters += src.Semesters
	dst.Classrooms += src.Classrooms
	dst.Professors += src.Professors
	dst.TimeSlots += src.TimeSlots
	dst.ChatRooms += src.ChatRooms
}
