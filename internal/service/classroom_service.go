package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/noah-isme/classgotcha-api/internal/models"
	appErrors "github.com/noah-isme/classgotcha-api/pkg/errors"
)

var (
	digitsPattern       = regexp.MustCompile(`^[0-9]+$`)
	majorNumberPattern  = regexp.MustCompile(`^([a-z]+) *([0-9]+)`)
	maxSessionWindow    = 366 * 24 * time.Hour
	icsByDay            = map[time.Weekday]string{time.Monday: "MO", time.Tuesday: "TU", time.Wednesday: "WE", time.Thursday: "TH", time.Friday: "FR", time.Saturday: "SA", time.Sunday: "SU"}
	calendarProductID   = "-//classgotcha//catalog//EN"
	defaultTaskDuration = 30 * time.Minute
)

type classroomSearcher interface {
	FindDetailByID(ctx context.Context, id string) (*models.ClassroomDetail, error)
	Search(ctx context.Context, filter models.ClassroomFilter) ([]models.ClassroomDetail, error)
}

type majorLister interface {
	List(ctx context.Context) ([]models.Major, error)
}

type semesterReader interface {
	FindByName(ctx context.Context, name string) (*models.Semester, error)
	FindByID(ctx context.Context, id string) (*models.Semester, error)
}

// ClassSession is one concrete meeting of a classroom.
type ClassSession struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ClassroomService serves catalog lookups, session expansion and calendar export.
type ClassroomService struct {
	classrooms classroomSearcher
	majors     majorLister
	semesters  semesterReader
	items      scheduleItemReader
	location   *time.Location
	logger     *zap.Logger
	now        func() time.Time
}

// NewClassroomService constructs a classroom service.
func NewClassroomService(classrooms classroomSearcher, majors majorLister, semesters semesterReader, items scheduleItemReader, loc *time.Location, logger *zap.Logger) *ClassroomService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassroomService{classrooms: classrooms, majors: majors, semesters: semesters, items: items, location: loc, logger: logger, now: time.Now}
}

// Majors lists every major ordered by short code.
func (s *ClassroomService) Majors(ctx context.Context) ([]models.Major, error) {
	majors, err := s.majors.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list majors")
	}
	return majors, nil
}

// Search resolves a free-text query: digits match a class code, "csci 104"
// matches major and class number. Trailing text after the number ("csci 104l")
// is ignored. Anything else matches nothing.
func (s *ClassroomService) Search(ctx context.Context, query, semesterName string) ([]models.ClassroomDetail, error) {
	query = strings.ToLower(strings.TrimSpace(query))

	var filter models.ClassroomFilter
	switch {
	case digitsPattern.MatchString(query):
		filter.ClassCode = query
	case majorNumberPattern.MatchString(query):
		groups := majorNumberPattern.FindStringSubmatch(query)
		filter.MajorShortCode = strings.ToUpper(groups[1])
		filter.ClassNumber = groups[2]
	default:
		return []models.ClassroomDetail{}, nil
	}

	if semesterName = strings.TrimSpace(semesterName); semesterName != "" {
		semester, err := s.semesters.FindByName(ctx, semesterName)
		if errors.Is(err, sql.ErrNoRows) {
			return []models.ClassroomDetail{}, nil
		}
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
		}
		filter.SemesterID = semester.ID
	}

	results, err := s.classrooms.Search(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search classrooms")
	}
	if results == nil {
		results = []models.ClassroomDetail{}
	}
	return results, nil
}

// Get returns one classroom with its details.
func (s *ClassroomService) Get(ctx context.Context, id string) (*models.ClassroomDetail, error) {
	detail, err := s.classrooms.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	return detail, nil
}

// weeklyRule builds the RRULE of a window, bounded by until when set.
func weeklyRule(window TimeWindow, until *time.Time) string {
	days := make([]string, 0, 7)
	for _, day := range window.Weekdays.Weekdays() {
		days = append(days, icsByDay[day])
	}
	rule := "FREQ=WEEKLY;BYDAY=" + strings.Join(days, ",")
	if until != nil {
		rule += ";UNTIL=" + until.UTC().Format("20060102T150405Z")
	}
	return rule
}

func (s *ClassroomService) semesterBounds(ctx context.Context, semesterID string) (*time.Time, *time.Time) {
	semester, err := s.semesters.FindByID(ctx, semesterID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("failed to load semester bounds", zap.String("semester_id", semesterID), zap.Error(err))
		}
		return nil, nil
	}
	var start, end *time.Time
	if semester.StartDate != nil {
		t := time.Date(semester.StartDate.Year(), semester.StartDate.Month(), semester.StartDate.Day(), 0, 0, 0, 0, s.location)
		start = &t
	}
	if semester.EndDate != nil {
		t := time.Date(semester.EndDate.Year(), semester.EndDate.Month(), semester.EndDate.Day(), 23, 59, 59, 0, s.location)
		end = &t
	}
	return start, end
}

// Sessions expands the classroom's weekly meeting into concrete sessions in [from, to].
func (s *ClassroomService) Sessions(ctx context.Context, classroomID string, from, to time.Time) ([]ClassSession, error) {
	if !from.Before(to) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "from must be before to")
	}
	if to.Sub(from) > maxSessionWindow {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session range must not exceed one year")
	}
	detail, err := s.Get(ctx, classroomID)
	if err != nil {
		return nil, err
	}
	window := ClassroomWindow(detail)
	if window == nil {
		return []ClassSession{}, nil
	}

	semesterStart, semesterEnd := s.semesterBounds(ctx, detail.SemesterID)
	if semesterStart != nil && semesterStart.After(from) {
		from = *semesterStart
	}
	if semesterEnd != nil && semesterEnd.Before(to) {
		to = *semesterEnd
	}
	if !from.Before(to) {
		return []ClassSession{}, nil
	}

	rule, err := rrule.StrToRRule(weeklyRule(*window, nil))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build recurrence")
	}
	local := from.In(s.location)
	rule.DTStart(window.Start.On(local))

	duration := time.Duration(window.End-window.Start) * time.Minute
	occurrences := rule.Between(from.In(s.location), to.In(s.location), true)
	sessions := make([]ClassSession, 0, len(occurrences))
	for _, start := range occurrences {
		sessions = append(sessions, ClassSession{Start: start, End: start.Add(duration)})
	}
	return sessions, nil
}

// Calendar renders the classroom's weekly sessions and scheduled items as iCalendar text.
func (s *ClassroomService) Calendar(ctx context.Context, classroomID string) (string, error) {
	detail, err := s.Get(ctx, classroomID)
	if err != nil {
		return "", err
	}
	items, err := s.items.ListByClassroom(ctx, classroomID, models.KindTask, models.KindEvent)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classroom items")
	}

	stamp := s.now().UTC()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName(fmt.Sprintf("%s %s", detail.MajorShortCode, detail.ClassNumber))

	if window := ClassroomWindow(detail); window != nil {
		semesterStart, semesterEnd := s.semesterBounds(ctx, detail.SemesterID)
		anchor := detail.CreatedAt.In(s.location)
		if semesterStart != nil {
			anchor = *semesterStart
		}
		first := firstMeeting(*window, anchor)

		event := cal.AddEvent(fmt.Sprintf("session-%s@classgotcha", detail.ID))
		event.SetDtStampTime(stamp)
		event.SetStartAt(first)
		event.SetEndAt(first.Add(time.Duration(window.End-window.Start) * time.Minute))
		event.SetSummary(fmt.Sprintf("%s - %s", detail.ClassName, detail.Section))
		event.SetLocation(detail.Location)
		event.AddProperty(ics.ComponentPropertyRrule, weeklyRule(*window, semesterEnd))
	}

	for _, item := range items {
		start, end := item.StartAt, item.EndAt
		if start == nil && item.DueAt != nil {
			begin := item.DueAt.Add(-defaultTaskDuration)
			start, end = &begin, item.DueAt
		}
		if start == nil || end == nil {
			continue
		}
		event := cal.AddEvent(fmt.Sprintf("item-%s@classgotcha", item.ID))
		event.SetDtStampTime(stamp)
		event.SetStartAt(*start)
		event.SetEndAt(*end)
		event.SetSummary(fmt.Sprintf("[%s] %s", item.Category, item.Name))
		if item.Description != "" {
			event.SetDescription(item.Description)
		}
		if item.Location != "" {
			event.SetLocation(item.Location)
		}
	}

	return cal.Serialize(), nil
}

// firstMeeting is the first session start on or after anchor's calendar day.
func firstMeeting(window TimeWindow, anchor time.Time) time.Time {
	day := window.Start.On(anchor)
	for i := 0; i < 7; i++ {
		if window.Weekdays.Has(day.Weekday()) {
			return day
		}
		day = day.AddDate(0, 0, 1)
	}
	return day
}
