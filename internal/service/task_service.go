package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/classgotcha-api/internal/dto"
	"github.com/noah-isme/classgotcha-api/internal/models"
	appErrors "github.com/noah-isme/classgotcha-api/pkg/errors"
)

type classroomDetailReader interface {
	FindDetailByID(ctx context.Context, id string) (*models.ClassroomDetail, error)
}

type scheduleItemWriter interface {
	Create(ctx context.Context, item *models.ScheduleItem) error
}

// TaskService schedules tasks and events on classrooms.
type TaskService struct {
	classrooms classroomDetailReader
	items      scheduleItemWriter
	classifier *ScheduleClassifier
	feed       *FeedService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewTaskService constructs a task service.
func NewTaskService(classrooms classroomDetailReader, items scheduleItemWriter, classifier *ScheduleClassifier, feed *FeedService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *TaskService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if classifier == nil {
		classifier = NewScheduleClassifier(nil)
	}
	return &TaskService{classrooms: classrooms, items: items, classifier: classifier, feed: feed, metrics: metrics, validator: validate, logger: logger}
}

// ClassroomWindow returns the classroom's weekly meeting window, or nil when it has none.
func ClassroomWindow(detail *models.ClassroomDetail) *TimeWindow {
	if detail == nil || detail.WeekdayMask == nil || detail.StartMinute == nil || detail.EndMinute == nil {
		return nil
	}
	return &TimeWindow{Weekdays: *detail.WeekdayMask, Start: *detail.StartMinute, End: *detail.EndMinute}
}

func (s *TaskService) loadClassroom(ctx context.Context, classroomID string) (*models.ClassroomDetail, error) {
	detail, err := s.classrooms.FindDetailByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	return detail, nil
}

// Create classifies the submission against the classroom's meeting window and persists it.
func (s *TaskService) Create(ctx context.Context, classroomID string, req dto.CreateTaskRequest) (*models.ScheduleItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload")
	}
	detail, err := s.loadClassroom(ctx, classroomID)
	if err != nil {
		return nil, err
	}

	item, err := s.classifier.Classify(ScheduleInput{
		Name:        req.TaskName,
		Description: req.Description,
		Category:    models.ScheduleCategory(strings.ToUpper(req.Category)),
		Location:    req.Location,
		DueDateTime: req.DueDateTime,
		DueDate:     req.DueDate,
		Start:       req.Start,
		End:         req.End,
	}, ClassroomWindow(detail))
	if err != nil {
		return nil, err
	}
	if item.Location == "" && item.Kind == models.KindEvent && req.DueDate != nil {
		item.Location = detail.Location
	}
	item.ClassroomID = &detail.ID
	item.GroupID = req.GroupID
	item.Participants = req.Participants

	if err := s.items.Create(ctx, item); err != nil {
		s.logger.Error("failed to create schedule item", zap.String("classroom_id", classroomID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create task")
	}
	s.feed.InvalidateTasks(ctx, detail.ID)
	s.metrics.RecordClassification(item)
	return item, nil
}

// List returns the classroom's items that have not expired.
func (s *TaskService) List(ctx context.Context, classroomID string) ([]models.ScheduleItem, error) {
	if _, err := s.loadClassroom(ctx, classroomID); err != nil {
		return nil, err
	}
	items, err := s.feed.ActiveTasks(ctx, classroomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tasks")
	}
	return items, nil
}
