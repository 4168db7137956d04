package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/classgotcha-api/internal/models"
	appErrors "github.com/noah-isme/classgotcha-api/pkg/errors"
)

// timestampLayouts are tried in order when reading submitted timestamps.
var timestampLayouts = []string{"2006-01-02T15:04:05", time.RFC3339, "2006-01-02"}

// ScheduleInput carries the optional temporal fields of a task or event submission.
type ScheduleInput struct {
	Name        string
	Description string
	Category    models.ScheduleCategory
	Location    string
	DueDateTime *string
	DueDate     *string
	Start       *string
	End         *string
}

type scheduleRule struct {
	name       string
	matches    func(ScheduleInput) bool
	fallback   models.ScheduleCategory
	categories []models.ScheduleCategory
	build      func(c *ScheduleClassifier, in ScheduleInput, window *TimeWindow, item *models.ScheduleItem) error
}

// scheduleRules are evaluated in order and the first match wins.
var scheduleRules = []scheduleRule{
	{
		name:       "due_datetime",
		matches:    func(in ScheduleInput) bool { return present(in.DueDateTime) },
		fallback:   models.CategoryHomework,
		categories: []models.ScheduleCategory{models.CategoryHomework, models.CategoryQuiz, models.CategoryExam, models.CategoryTodo},
		build:      (*ScheduleClassifier).buildTask,
	},
	{
		name:       "due_date",
		matches:    func(in ScheduleInput) bool { return present(in.DueDate) },
		fallback:   models.CategoryQuiz,
		categories: []models.ScheduleCategory{models.CategoryQuiz, models.CategoryHomework, models.CategoryExam},
		build:      (*ScheduleClassifier).buildInClass,
	},
	{
		name:       "start_end",
		matches:    func(in ScheduleInput) bool { return present(in.Start) && present(in.End) },
		fallback:   models.CategoryExam,
		categories: []models.ScheduleCategory{models.CategoryExam, models.CategoryGroupMeeting},
		build:      (*ScheduleClassifier).buildEvent,
	},
}

// ScheduleClassifier turns raw submissions into normalized schedule items.
type ScheduleClassifier struct {
	location *time.Location
}

// NewScheduleClassifier builds a classifier reading timestamps in loc.
func NewScheduleClassifier(loc *time.Location) *ScheduleClassifier {
	if loc == nil {
		loc = time.UTC
	}
	return &ScheduleClassifier{location: loc}
}

// Classify picks the first matching rule and builds the item. window is the
// owning classroom's weekly meeting, if any; it is only read.
func (c *ScheduleClassifier) Classify(in ScheduleInput, window *TimeWindow) (*models.ScheduleItem, error) {
	for _, rule := range scheduleRules {
		if !rule.matches(in) {
			continue
		}
		category, err := rule.category(in.Category)
		if err != nil {
			return nil, err
		}
		item := &models.ScheduleItem{
			Name:        strings.TrimSpace(in.Name),
			Description: in.Description,
			Category:    category,
			Location:    in.Location,
		}
		if err := rule.build(c, in, window, item); err != nil {
			return nil, err
		}
		return item, nil
	}
	return nil, appErrors.ErrAmbiguousScheduleInput
}

func (r scheduleRule) category(requested models.ScheduleCategory) (models.ScheduleCategory, error) {
	if requested == "" {
		return r.fallback, nil
	}
	requested = models.ScheduleCategory(strings.ToUpper(string(requested)))
	for _, allowed := range r.categories {
		if allowed == requested {
			return requested, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("category %s is not allowed with %s", requested, r.name))
}

func (c *ScheduleClassifier) buildTask(in ScheduleInput, _ *TimeWindow, item *models.ScheduleItem) error {
	due, err := c.parseTimestamp("due_datetime", *in.DueDateTime)
	if err != nil {
		return err
	}
	item.Kind = models.KindTask
	item.DueAt = &due
	return nil
}

func (c *ScheduleClassifier) buildInClass(in ScheduleInput, window *TimeWindow, item *models.ScheduleItem) error {
	if window == nil {
		return appErrors.ErrMissingClassTimeWindow
	}
	day, err := c.parseTimestamp("due_date", *in.DueDate)
	if err != nil {
		return err
	}
	start := window.Start.On(day)
	end := window.End.On(day)
	item.Kind = models.KindEvent
	item.StartAt = &start
	item.EndAt = &end
	return nil
}

func (c *ScheduleClassifier) buildEvent(in ScheduleInput, _ *TimeWindow, item *models.ScheduleItem) error {
	start, err := c.parseTimestamp("start", *in.Start)
	if err != nil {
		return err
	}
	end, err := c.parseTimestamp("end", *in.End)
	if err != nil {
		return err
	}
	if !start.Before(end) {
		return appErrors.Clone(appErrors.ErrInvertedTimeWindow, "start must be before end")
	}
	item.Kind = models.KindEvent
	item.StartAt = &start
	item.EndAt = &end
	return nil
}

func (c *ScheduleClassifier) parseTimestamp(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, raw, c.location); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s: unrecognised timestamp %q", field, raw))
}

func present(value *string) bool {
	return value != nil && strings.TrimSpace(*value) != ""
}
