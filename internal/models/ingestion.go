package models

// IngestionFailure records why one course record was not committed.
type IngestionFailure struct {
	RecordIndex int    `json:"record_index"`
	ClassCode   string `json:"class_code,omitempty"`
	Code        string `json:"code"`
	Reason      string `json:"reason"`
}

// IngestionWarning records a degraded but committed record.
type IngestionWarning struct {
	RecordIndex int    `json:"record_index"`
	Code        string `json:"code"`
	Reason      string `json:"reason"`
}

// ReviewFlag marks a professor matched by name across majors.
type ReviewFlag struct {
	RecordIndex int    `json:"record_index"`
	ProfessorID string `json:"professor_id"`
	Professor   string `json:"professor"`
	MajorCode   string `json:"major_code"`
	Reason      string `json:"reason"`
}

// IngestionCounters counts entities created by a batch.
type IngestionCounters struct {
	Majors     int `json:"majors"`
	Semesters  int `json:"semesters"`
	Classrooms int `json:"classrooms"`
	Professors int `json:"professors"`
	TimeSlots  int `json:"time_slots"`
	ChatRooms  int `json:"chat_rooms"`
}

// IngestionSummary is the outcome of one catalog batch.
type IngestionSummary struct {
	Semester    string             `json:"semester"`
	Total       int                `json:"total"`
	Processed   int                `json:"processed"`
	Failed      int                `json:"failed"`
	Failures    []IngestionFailure `json:"failures"`
	Warnings    []IngestionWarning `json:"warnings,omitempty"`
	ReviewFlags []ReviewFlag       `json:"review_flags,omitempty"`
	Created     IngestionCounters  `json:"created"`
}
