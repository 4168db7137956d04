package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/classgotcha-api/internal/models"
)

// MomentsPageSize is the number of moments added per feed page.
const MomentsPageSize = 20

type scheduleItemReader interface {
	ListByClassroom(ctx context.Context, classroomID string, kinds ...models.ScheduleKind) ([]models.ScheduleItem, error)
}

type momentReader interface {
	ListRecentByClassroom(ctx context.Context, classroomID string, limit int) ([]models.Moment, error)
}

// IsExpired reports whether the item's terminal instant (end, else due) is
// strictly before now. Items with neither never expire.
func IsExpired(item models.ScheduleItem, now time.Time) bool {
	terminal := item.TerminalAt()
	return terminal != nil && terminal.Before(now)
}

// MomentView is a moment with its relative age label.
type MomentView struct {
	models.Moment
	Age string `json:"age"`
}

// FeedService assembles the read-only classroom feeds.
type FeedService struct {
	items   scheduleItemReader
	moments momentReader
	cache   *CacheService
	logger  *zap.Logger
	now     func() time.Time
}

// NewFeedService constructs a feed service. cache may be nil.
func NewFeedService(items scheduleItemReader, moments momentReader, cache *CacheService, logger *zap.Logger) *FeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedService{items: items, moments: moments, cache: cache, logger: logger, now: time.Now}
}

func tasksCacheKey(classroomID string) string {
	return fmt.Sprintf("feed:tasks:%s", classroomID)
}

// ActiveTasks returns the classroom's tasks and events that have not expired,
// soonest terminal instant first.
func (s *FeedService) ActiveTasks(ctx context.Context, classroomID string) ([]models.ScheduleItem, error) {
	var items []models.ScheduleItem
	key := tasksCacheKey(classroomID)
	hit, err := s.cache.Get(ctx, key, &items)
	if err != nil || !hit {
		items, err = s.items.ListByClassroom(ctx, classroomID, models.KindTask, models.KindEvent)
		if err != nil {
			return nil, err
		}
		_ = s.cache.Set(ctx, key, items, 0)
	}

	now := s.now()
	active := make([]models.ScheduleItem, 0, len(items))
	for _, item := range items {
		if !IsExpired(item, now) {
			active = append(active, item)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		a, b := active[i].TerminalAt(), active[j].TerminalAt()
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return active, nil
}

// InvalidateTasks drops the cached task list of a classroom.
func (s *FeedService) InvalidateTasks(ctx context.Context, classroomID string) {
	if s == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, tasksCacheKey(classroomID)); err != nil {
		s.logger.Warn("tasks feed invalidation failed", zap.String("classroom_id", classroomID), zap.Error(err))
	}
}

// RecentMoments returns the newest live moments, 20 more per page; page < 1 reads as 1.
func (s *FeedService) RecentMoments(ctx context.Context, classroomID string, page int) ([]MomentView, error) {
	if page < 1 {
		page = 1
	}
	moments, err := s.moments.ListRecentByClassroom(ctx, classroomID, MomentsPageSize*page)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]MomentView, 0, len(moments))
	for _, moment := range moments {
		if moment.Deleted {
			continue
		}
		views = append(views, MomentView{Moment: moment, Age: RelativeAge(moment.CreatedAt, now)})
	}
	return views, nil
}

// RelativeAge renders the distance from then to now as "Just now", "3 hours ago"
// and so on. Months count 30 days and years 12 months.
func RelativeAge(then, now time.Time) string {
	const (
		day   = 24 * time.Hour
		month = 30 * day
		year  = 12 * month
	)
	elapsed := now.Sub(then)
	units := []struct {
		size time.Duration
		name string
	}{
		{year, "year"},
		{month, "month"},
		{day, "day"},
		{time.Hour, "hour"},
		{time.Minute, "minute"},
	}
	for _, unit := range units {
		if elapsed >= unit.size {
			n := int(elapsed / unit.size)
			if n == 1 {
				return fmt.Sprintf("1 %s ago", unit.name)
			}
			return fmt.Sprintf("%d %ss ago", n, unit.name)
		}
	}
	return "Just now"
}
