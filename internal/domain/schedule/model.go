package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Day-of-week bounds. Both 0-6 (Sunday first) and 1-7 (Monday first)
// numbering are in use, so the accepted range covers both.
const (
	MinDay = 0
	MaxDay = 7
)

// Domain errors
var (
	ErrInvalidGroupID   = errors.New("group_id must be a positive integer")
	ErrInvalidTeacherID = errors.New("teacher_id must be a positive integer")
	ErrInvalidCampusID  = errors.New("campus_id must be a positive integer")
	ErrEmptySubject     = errors.New("subject cannot be empty")
	ErrInvalidDay       = fmt.Errorf("day_of_week must be between %d and %d", MinDay, MaxDay)
	ErrEmptyTime        = errors.New("time cannot be empty")
	ErrInvalidTime      = errors.New("time must look like HH:MM")
)

// ValidationError reports which field of an Entry is invalid.
type ValidationError struct {
	Field string
	Err   error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

// Unwrap exposes the underlying domain error to errors.Is.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Entry is a single scheduled class: one subject taught by one teacher to
// one group in one room, recurring weekly on DayOfWeek.
type Entry struct {
	ID        int64      `json:"id"`
	GroupID   int64      `json:"group_id"`
	TeacherID int64      `json:"teacher_id"`
	CampusID  int64      `json:"campus_id"`
	Subject   string     `json:"subject"`
	Room      string     `json:"room"`
	DayOfWeek int        `json:"day_of_week"`
	StartTime string     `json:"start_time"` // HH:MM
	EndTime   string     `json:"end_time"`   // HH:MM
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// EntryView is an Entry joined with the display names of its references.
// Names are nil when the referenced row no longer exists.
type EntryView struct {
	Entry
	GroupName   *string `json:"group_name"`
	TeacherName *string `json:"teacher_name"`
	CampusName  *string `json:"campus_name"`
}

// Validate checks the Entry and normalizes its text fields in place.
// PRE: Entry struct is populated
// POST: Returns nil if valid, *ValidationError otherwise; on success
// Subject and Room are trimmed and times are rewritten as HH:MM
func (e *Entry) Validate() error {
	if e.GroupID <= 0 {
		return &ValidationError{Field: "group_id", Err: ErrInvalidGroupID}
	}
	if e.TeacherID <= 0 {
		return &ValidationError{Field: "teacher_id", Err: ErrInvalidTeacherID}
	}
	if e.CampusID <= 0 {
		return &ValidationError{Field: "campus_id", Err: ErrInvalidCampusID}
	}
	e.Subject = strings.TrimSpace(e.Subject)
	if e.Subject == "" {
		return &ValidationError{Field: "subject", Err: ErrEmptySubject}
	}
	e.Room = strings.TrimSpace(e.Room)
	if !IsValidDay(e.DayOfWeek) {
		return &ValidationError{Field: "day_of_week", Err: ErrInvalidDay}
	}
	start, err := ParseClock(e.StartTime)
	if err != nil {
		return &ValidationError{Field: "start_time", Err: err}
	}
	end, err := ParseClock(e.EndTime)
	if err != nil {
		return &ValidationError{Field: "end_time", Err: err}
	}
	e.StartTime, e.EndTime = start, end
	return nil
}

// IsValidDay reports whether day is an accepted day-of-week number.
func IsValidDay(day int) bool {
	return day >= MinDay && day <= MaxDay
}
