package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// ActiveLabel is shown in place of a duration while a shift is in progress
	ActiveLabel = "Active"

	dateLayout    = "2006-01-02"
	timeLayout    = "15:04"
	minutesPerDay = 24 * 60
)

// IsActive reports whether the shift has not been marked out yet
func IsActive(r AttendanceRecord) bool {
	return r.OutTime == nil
}

// ActiveCount returns the number of shifts still in progress
func ActiveCount(records []AttendanceRecord) int {
	n := 0
	for _, r := range records {
		if IsActive(r) {
			n++
		}
	}
	return n
}

// FormatDisplayTime converts "HH:mm" to a 12-hour clock string such as "1:05 PM".
// Empty input yields "". Input without a colon is returned unchanged.
func FormatDisplayTime(time24 string) string {
	if time24 == "" {
		return ""
	}
	hours, minutes, ok := strings.Cut(time24, ":")
	if !ok {
		return time24
	}
	h, err := strconv.Atoi(hours)
	if err != nil {
		return time24
	}

	meridiem := "AM"
	if h >= 12 {
		meridiem = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%s %s", h12, minutes, meridiem)
}

// FormatDisplayTimePtr is FormatDisplayTime for an optional out-time
func FormatDisplayTimePtr(time24 *string) string {
	if time24 == nil {
		return ""
	}
	return FormatDisplayTime(*time24)
}

// ShiftMinutes returns the shift length in minutes, wrapping past midnight
// when outTime is earlier than inTime.
func ShiftMinutes(inTime, outTime string) (int, error) {
	in, err := minuteOfDay(inTime)
	if err != nil {
		return 0, err
	}
	out, err := minuteOfDay(outTime)
	if err != nil {
		return 0, err
	}
	return ((out-in)%minutesPerDay + minutesPerDay) % minutesPerDay, nil
}

// ComputeDuration formats the length of a shift as "8h 30m", "4h" or "45m".
// A nil outTime yields ActiveLabel. Unparseable times yield "".
func ComputeDuration(inTime string, outTime *string) string {
	if outTime == nil {
		return ActiveLabel
	}
	total, err := ShiftMinutes(inTime, *outTime)
	if err != nil {
		return ""
	}

	h, m := total/60, total%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

// TodayKey returns the local calendar date used to partition records
func TodayKey() string {
	return DateKey(time.Now())
}

// DateKey formats t in its own location as YYYY-MM-DD
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// CurrentTime returns the local wall clock as HH:mm
func CurrentTime() string {
	return time.Now().Format(timeLayout)
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date
func ValidDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// ValidTime reports whether s is a zero-padded 24-hour HH:mm time
func ValidTime(s string) bool {
	_, err := minuteOfDay(s)
	return err == nil
}

// CleanName trims a sewadar or counter name and reports whether anything is left
func CleanName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	return name, name != ""
}

// minuteOfDay parses a zero-padded HH:mm; time.Parse alone also takes "9:05"
func minuteOfDay(s string) (int, error) {
	if len(s) != len(timeLayout) {
		return 0, fmt.Errorf("invalid time %q: want HH:mm", s)
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
