package models

import "time"

// ScheduleCategory classifies what a scheduled item is.
type ScheduleCategory string

const (
	CategoryHomework     ScheduleCategory = "HOMEWORK"
	CategoryQuiz         ScheduleCategory = "QUIZ"
	CategoryTodo         ScheduleCategory = "TODO"
	CategoryGroupMeeting ScheduleCategory = "GROUP_MEETING"
	CategoryExam         ScheduleCategory = "EXAM"
	CategoryClassSession ScheduleCategory = "CLASS_SESSION"
)

// ScheduleKind describes which temporal fields an item carries.
type ScheduleKind string

const (
	// KindTask items only carry DueAt.
	KindTask ScheduleKind = "TASK"
	// KindEvent items carry StartAt and EndAt.
	KindEvent ScheduleKind = "EVENT"
	// KindRecurring items carry a weekday mask with start and end clocks.
	KindRecurring ScheduleKind = "RECURRING"
)

// ScheduleItem is the canonical task or event record.
type ScheduleItem struct {
	ID          string           `db:"id" json:"id"`
	Name        string           `db:"name" json:"name"`
	Description string           `db:"description" json:"description"`
	Category    ScheduleCategory `db:"category" json:"category"`
	Kind        ScheduleKind     `db:"kind" json:"kind"`
	StartAt     *time.Time       `db:"start_at" json:"start,omitempty"`
	EndAt       *time.Time       `db:"end_at" json:"end,omitempty"`
	DueAt       *time.Time       `db:"due_at" json:"due,omitempty"`
	WeekdayMask *WeekdayMask     `db:"weekday_mask" json:"weekday_mask,omitempty"`
	StartMinute *Clock           `db:"start_minute" json:"start_minute,omitempty"`
	EndMinute   *Clock           `db:"end_minute" json:"end_minute,omitempty"`
	Location    string           `db:"location" json:"location,omitempty"`
	ClassroomID *string          `db:"classroom_id" json:"classroom_id,omitempty"`
	GroupID     *string          `db:"group_id" json:"group_id,omitempty"`
	TimeSlotID  *string          `db:"time_slot_id" json:"time_slot_id,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`

	Participants []string `db:"-" json:"participants,omitempty"`
}

// TerminalAt is the instant after which the item is over: EndAt, else DueAt.
func (s ScheduleItem) TerminalAt() *time.Time {
	if s.EndAt != nil {
		return s.EndAt
	}
	return s.DueAt
}

// Moment is a short classroom post shown in the activity feed.
type Moment struct {
	ID          string    `db:"id" json:"id"`
	ClassroomID string    `db:"classroom_id" json:"classroom_id"`
	CreatorID   *string   `db:"creator_id" json:"creator_id,omitempty"`
	Content     string    `db:"content" json:"content"`
	Deleted     bool      `db:"deleted" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
