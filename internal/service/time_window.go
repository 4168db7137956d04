package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/classgotcha-api/internal/models"
	appErrors "github.com/noah-isme/classgotcha-api/pkg/errors"
)

// TimeWindow is a recurring weekly meeting: a set of weekdays and a clock range.
type TimeWindow struct {
	Weekdays models.WeekdayMask `json:"weekdays"`
	Start    models.Clock       `json:"start"`
	End      models.Clock       `json:"end"`
}

// String re-encodes the window in meeting string form, e.g. "MoWeFr 09:00am - 09:50am".
func (w TimeWindow) String() string {
	return fmt.Sprintf("%s %s - %s", w.Weekdays.String(), w.Start.Format12(), w.End.Format12())
}

// TimeSlot converts the window into its stored form.
func (w TimeWindow) TimeSlot() *models.TimeSlot {
	return &models.TimeSlot{WeekdayMask: w.Weekdays, StartMinute: w.Start, EndMinute: w.End}
}

// ParseTimeWindow parses "<weekday-run> <start> - <end>", e.g. "TuTh 2:00pm - 3:20pm".
func ParseTimeWindow(raw string) (TimeWindow, error) {
	tokens := strings.Fields(raw)
	if len(tokens) != 4 || tokens[2] != "-" {
		return TimeWindow{}, appErrors.Clone(appErrors.ErrMalformedScheduleString, fmt.Sprintf("malformed meeting string %q", raw))
	}

	mask, err := parseWeekdayRun(tokens[0])
	if err != nil {
		return TimeWindow{}, err
	}
	start, err := parseClock(tokens[1])
	if err != nil {
		return TimeWindow{}, err
	}
	end, err := parseClock(tokens[3])
	if err != nil {
		return TimeWindow{}, err
	}
	if start >= end {
		return TimeWindow{}, appErrors.Clone(appErrors.ErrInvertedTimeWindow, fmt.Sprintf("meeting starts at %s but ends at %s", start, end))
	}

	return TimeWindow{Weekdays: mask, Start: start, End: end}, nil
}

func parseWeekdayRun(run string) (models.WeekdayMask, error) {
	if len(run)%2 != 0 {
		return 0, appErrors.Clone(appErrors.ErrUnknownWeekdayCode, fmt.Sprintf("weekday run %q is not a sequence of two letter codes", run))
	}
	var mask models.WeekdayMask
	for i := 0; i < len(run); i += 2 {
		day, ok := models.ParseWeekdayCode(run[i : i+2])
		if !ok {
			return 0, appErrors.Clone(appErrors.ErrUnknownWeekdayCode, fmt.Sprintf("unknown weekday code %q", run[i:i+2]))
		}
		mask |= day
	}
	return mask, nil
}

// parseClock reads a 12-hour "hh:mmam" token. Hours run 1-12; "00:30am" is rejected.
func parseClock(token string) (models.Clock, error) {
	malformed := fmt.Sprintf("malformed clock time %q", token)
	parsed, err := time.Parse("3:04PM", strings.ToUpper(token))
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrMalformedClockTime.Code, appErrors.ErrMalformedClockTime.Status, malformed)
	}
	hour, _, _ := strings.Cut(token, ":")
	if n, err := strconv.Atoi(hour); err != nil || n < 1 || n > 12 {
		return 0, appErrors.Clone(appErrors.ErrMalformedClockTime, malformed)
	}
	return models.NewClock(parsed.Hour(), parsed.Minute()), nil
}
