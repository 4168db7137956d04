package models

import "time"

// Major is a field of study identified by its short code (e.g. "CSCI").
type Major struct {
	ID        string    `db:"id" json:"id"`
	ShortCode string    `db:"short_code" json:"short_code"`
	FullName  string    `db:"full_name" json:"full_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Semester is an academic term identified by name.
type Semester struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	StartDate *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Professor is an instructor keyed by upper-cased first and last name.
type Professor struct {
	ID        string    `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Office    *string   `db:"office" json:"office,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// FullName joins first and last name.
func (p Professor) FullName() string {
	return p.FirstName + " " + p.LastName
}

// TimeSlot is the recurring weekly meeting window of one classroom.
type TimeSlot struct {
	ID          string      `db:"id" json:"id"`
	WeekdayMask WeekdayMask `db:"weekday_mask" json:"weekday_mask"`
	StartMinute Clock       `db:"start_minute" json:"start_minute"`
	EndMinute   Clock       `db:"end_minute" json:"end_minute"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// Classroom is a course section within a semester, keyed by (class_code, semester).
type Classroom struct {
	ID          string    `db:"id" json:"id"`
	ClassCode   string    `db:"class_code" json:"class_code"`
	SemesterID  string    `db:"semester_id" json:"semester_id"`
	ClassNumber string    `db:"class_number" json:"class_number"`
	ClassName   string    `db:"class_name" json:"class_name"`
	Description string    `db:"description" json:"description"`
	Section     string    `db:"section" json:"section"`
	Credit      string    `db:"credit" json:"credit"`
	Location    string    `db:"location" json:"location"`
	TimeSlotID  *string   `db:"time_slot_id" json:"time_slot_id,omitempty"`
	MajorID     string    `db:"major_id" json:"major_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ClassroomDetail joins a classroom with its major, semester, meeting window and instructors.
type ClassroomDetail struct {
	Classroom
	MajorShortCode string       `db:"major_short_code" json:"major_short_code"`
	SemesterName   string       `db:"semester_name" json:"semester_name"`
	WeekdayMask    *WeekdayMask `db:"weekday_mask" json:"weekday_mask,omitempty"`
	StartMinute    *Clock       `db:"start_minute" json:"start_minute,omitempty"`
	EndMinute      *Clock       `db:"end_minute" json:"end_minute,omitempty"`
	Professors     string       `db:"professors" json:"professors"`
}

// ClassroomFilter narrows classroom lookups.
type ClassroomFilter struct {
	SemesterID     string
	ClassCode      string
	MajorShortCode string
	ClassNumber    string
}

// ChatRoom is the discussion room opened for an imported classroom.
type ChatRoom struct {
	ID          string    `db:"id" json:"id"`
	ClassroomID string    `db:"classroom_id" json:"classroom_id"`
	Name        string    `db:"name" json:"name"`
	CreatorID   *string   `db:"creator_id" json:"creator_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
