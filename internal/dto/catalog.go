package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FlexString decodes a JSON string or number into its textual form.
type FlexString string

// UnmarshalJSON accepts "101", 101 and null.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(data))
	}
	*f = FlexString(n.String())
	return nil
}

// courseFieldAliases lists accepted keys per field, in order of preference.
var courseFieldAliases = map[string][]string{
	"major":             {"major", "course_short_name"},
	"class_code":        {"number", "class_number", "class_code"},
	"name":              {"name"},
	"full_name":         {"fullName", "course_full_name", "full_name"},
	"description":       {"description", "course_description"},
	"section":           {"section"},
	"credit":            {"unit", "credit"},
	"room":              {"room", "location"},
	"time":              {"time", "datetime"},
	"instructor1":       {"instructor1"},
	"instructor1_email": {"instructor1_email"},
	"instructor2":       {"instructor2"},
	"instructor2_email": {"instructor2_email"},
}

// CourseRecord is one course of an imported catalog, with legacy field aliases resolved.
type CourseRecord struct {
	Major            string `json:"major"`
	ClassCode        string `json:"class_code"`
	Name             string `json:"name"`
	FullName         string `json:"full_name"`
	Description      string `json:"description"`
	Section          string `json:"section"`
	Credit           string `json:"credit"`
	Room             string `json:"room"`
	Time             string `json:"time"`
	Instructor1      string `json:"instructor1"`
	Instructor1Email string `json:"instructor1_email"`
	Instructor2      string `json:"instructor2"`
	Instructor2Email string `json:"instructor2_email"`
}

// UnmarshalJSON reads a record from any of its accepted key spellings.
func (r *CourseRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("course record must be a JSON object: %w", err)
	}

	targets := map[string]*string{
		"major":             &r.Major,
		"class_code":        &r.ClassCode,
		"name":              &r.Name,
		"full_name":         &r.FullName,
		"description":       &r.Description,
		"section":           &r.Section,
		"credit":            &r.Credit,
		"room":              &r.Room,
		"time":              &r.Time,
		"instructor1":       &r.Instructor1,
		"instructor1_email": &r.Instructor1Email,
		"instructor2":       &r.Instructor2,
		"instructor2_email": &r.Instructor2Email,
	}
	for field, target := range targets {
		for _, key := range courseFieldAliases[field] {
			value, ok := raw[key]
			if !ok {
				continue
			}
			var s FlexString
			if err := json.Unmarshal(value, &s); err != nil {
				return fmt.Errorf("field %s: %w", key, err)
			}
			if s != "" {
				*target = string(s)
				break
			}
		}
	}
	return nil
}

// MajorShortCode is the first token of the major field or, failing that, of the
// short course name ("CSCI 104" -> "CSCI").
func (r CourseRecord) MajorShortCode() string {
	for _, source := range []string{r.Major, r.Name} {
		if parts := strings.Fields(source); len(parts) > 0 {
			return strings.ToUpper(parts[0])
		}
	}
	return ""
}

// Number is the class number: the second token of the short course name, or of
// the major field when it carries one ("CSCI 104").
func (r CourseRecord) Number() string {
	for _, source := range []string{r.Name, r.Major} {
		if parts := strings.Fields(source); len(parts) > 1 {
			return parts[1]
		}
	}
	return ""
}

// Title is the long course title, falling back to the short name.
func (r CourseRecord) Title() string {
	if r.FullName != "" {
		return r.FullName
	}
	return r.Name
}

// MaxDisplayNameLength bounds DisplayName to what session and chat room names can hold.
const MaxDisplayNameLength = 100

// DisplayName is "<name> - <section>", the label used for sessions and chat rooms.
// Long titles are cut so the label never exceeds MaxDisplayNameLength runes.
func (r CourseRecord) DisplayName() string {
	name := r.Name
	if name == "" {
		name = r.Title()
	}
	suffix := ""
	if r.Section != "" {
		suffix = " - " + r.Section
	}
	runes := []rune(name)
	if keep := MaxDisplayNameLength - len([]rune(suffix)); len(runes) > keep {
		if keep < 0 {
			keep = 0
		}
		runes = []rune(strings.TrimSpace(string(runes[:keep])))
	}
	label := []rune(string(runes) + suffix)
	if len(label) > MaxDisplayNameLength {
		label = label[:MaxDisplayNameLength]
	}
	return string(label)
}

// Instructors returns the present (name, email) pairs in field order.
func (r CourseRecord) Instructors() [][2]string {
	var out [][2]string
	if r.Instructor1 != "" {
		out = append(out, [2]string{r.Instructor1, r.Instructor1Email})
	}
	if r.Instructor2 != "" {
		out = append(out, [2]string{r.Instructor2, r.Instructor2Email})
	}
	return out
}

// ImportRequest carries the options of a catalog upload.
type ImportRequest struct {
	Semester string `form:"semester" json:"semester" validate:"omitempty,max=64"`
}

// ClassroomSearchRequest is the body of a classroom search.
type ClassroomSearchRequest struct {
	Query    string `json:"query" validate:"required,max=64"`
	Semester string `json:"semester" validate:"omitempty,max=64"`
}

// CreateTaskRequest is the body accepted when scheduling a classroom task or event.
type CreateTaskRequest struct {
	TaskName     string   `json:"task_name" validate:"required,max=128"`
	Description  string   `json:"description" validate:"max=500"`
	Category     string   `json:"category" validate:"omitempty,oneof=HOMEWORK QUIZ TODO GROUP_MEETING EXAM homework quiz todo group_meeting exam"`
	Location     string   `json:"location" validate:"max=128"`
	DueDateTime  *string  `json:"due_datetime"`
	DueDate      *string  `json:"due_date"`
	Start        *string  `json:"start"`
	End          *string  `json:"end"`
	GroupID      *string  `json:"group_id" validate:"omitempty,uuid"`
	Participants []string `json:"participants" validate:"omitempty,dive,max=64"`
}
