package models

import (
	"fmt"
	"strings"
	"time"
)

// WeekdayMask is a set of weekdays, Monday in the lowest bit.
type WeekdayMask uint8

const (
	Monday WeekdayMask = 1 << iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

type weekdayCode struct {
	code    string
	mask    WeekdayMask
	weekday time.Weekday
}

// weekdayCodes is ordered Monday first, matching how meeting strings are written.
var weekdayCodes = []weekdayCode{
	{"Mo", Monday, time.Monday},
	{"Tu", Tuesday, time.Tuesday},
	{"We", Wednesday, time.Wednesday},
	{"Th", Thursday, time.Thursday},
	{"Fr", Friday, time.Friday},
	{"Sa", Saturday, time.Saturday},
	{"Su", Sunday, time.Sunday},
}

// ParseWeekdayCode resolves a two letter code such as "Mo" or "TH".
func ParseWeekdayCode(code string) (WeekdayMask, bool) {
	for _, wc := range weekdayCodes {
		if strings.EqualFold(wc.code, code) {
			return wc.mask, true
		}
	}
	return 0, false
}

// WeekdayOf converts a time.Weekday into its single-day mask.
func WeekdayOf(day time.Weekday) WeekdayMask {
	for _, wc := range weekdayCodes {
		if wc.weekday == day {
			return wc.mask
		}
	}
	return 0
}

// Has reports whether day is part of the mask.
func (m WeekdayMask) Has(day time.Weekday) bool {
	return m&WeekdayOf(day) != 0
}

// IsEmpty reports whether no weekday is set.
func (m WeekdayMask) IsEmpty() bool {
	return m&(Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday) == 0
}

// Weekdays lists the set days Monday first.
func (m WeekdayMask) Weekdays() []time.Weekday {
	days := make([]time.Weekday, 0, 7)
	for _, wc := range weekdayCodes {
		if m&wc.mask != 0 {
			days = append(days, wc.weekday)
		}
	}
	return days
}

// String encodes the mask as concatenated codes, e.g. "MoWeFr".
func (m WeekdayMask) String() string {
	var b strings.Builder
	for _, wc := range weekdayCodes {
		if m&wc.mask != 0 {
			b.WriteString(wc.code)
		}
	}
	return b.String()
}

// Clock is a time of day in minutes after midnight.
type Clock int

// NewClock builds a Clock from an hour and minute on a 24 hour dial.
func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// Hour returns the 24 hour component.
func (c Clock) Hour() int { return int(c) / 60 }

// Minute returns the minute component.
func (c Clock) Minute() int { return int(c) % 60 }

// String renders 24 hour "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// Format12 renders the meeting string form, e.g. "09:00am".
func (c Clock) Format12() string {
	hour := c.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	suffix := "am"
	if c.Hour() >= 12 {
		suffix = "pm"
	}
	return fmt.Sprintf("%02d:%02d%s", hour, c.Minute(), suffix)
}

// On places the clock on the calendar day of date, in date's location.
func (c Clock) On(date time.Time) time.Time {
	y, mo, d := date.Date()
	return time.Date(y, mo, d, c.Hour(), c.Minute(), 0, 0, date.Location())
}
