package schedule

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// clockLayouts are the textual time forms accepted from API bodies and
// spreadsheet cells. Hours may be written with one digit. Date-time forms
// come from cells formatted as dates; only their clock part is kept.
var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04:05 PM",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"1/2/06 15:04",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
}

// ParseClock normalizes a time of day to zero-padded HH:MM.
// Spreadsheet cells without a time format arrive as a fraction of a day
// (0.375 is 09:00); those are accepted too.
// PRE: none
// POST: Returns "HH:MM" or ErrEmptyTime / ErrInvalidTime
func ParseClock(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyTime
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(s)); err == nil {
			return t.Format("15:04"), nil
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 && f < 1 {
		minutes := int(math.Round(f*24*60)) % (24 * 60)
		return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60), nil
	}
	return "", ErrInvalidTime
}

// ParseDay converts a day-of-week cell to an integer. Whole-number floats
// ("3.0") are accepted because spreadsheets store every number as a float.
// PRE: none
// POST: Returns a day within [MinDay, MaxDay] or ErrInvalidDay
func ParseDay(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if !IsValidDay(n) {
			return 0, ErrInvalidDay
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || !IsValidDay(int(f)) {
		return 0, ErrInvalidDay
	}
	return int(f), nil
}
