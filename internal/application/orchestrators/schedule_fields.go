package orchestrators

import (
	"errors"

	domain "timetable/internal/domain/schedule"
)

// ErrMissingField is matched by every *MissingFieldError.
var ErrMissingField = errors.New("missing required field")

// ErrUnknownReference is returned when an entry points at a group, teacher
// or campus row that does not exist.
var ErrUnknownReference = errors.New("schedule references a missing row")

// MissingFieldError names the first absent key of a request body.
type MissingFieldError struct {
	Field string
}

// Error implements the error interface.
func (e *MissingFieldError) Error() string {
	return "Missing required field: " + e.Field
}

// Is reports ErrMissingField as a match.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// ScheduleFields carries the writable fields of an entry as decoded from a
// JSON body. A nil field means the key was absent or null.
type ScheduleFields struct {
	GroupID   *int64  `json:"group_id"`
	TeacherID *int64  `json:"teacher_id"`
	CampusID  *int64  `json:"campus_id"`
	Subject   *string `json:"subject"`
	Room      *string `json:"room"`
	DayOfWeek *int    `json:"day_of_week"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

// entry checks presence in column order and builds an unvalidated Entry.
func (f ScheduleFields) entry() (domain.Entry, error) {
	switch {
	case f.GroupID == nil:
		return domain.Entry{}, &MissingFieldError{Field: "group_id"}
	case f.TeacherID == nil:
		return domain.Entry{}, &MissingFieldError{Field: "teacher_id"}
	case f.CampusID == nil:
		return domain.Entry{}, &MissingFieldError{Field: "campus_id"}
	case f.Subject == nil:
		return domain.Entry{}, &MissingFieldError{Field: "subject"}
	case f.Room == nil:
		return domain.Entry{}, &MissingFieldError{Field: "room"}
	case f.DayOfWeek == nil:
		return domain.Entry{}, &MissingFieldError{Field: "day_of_week"}
	case f.StartTime == nil:
		return domain.Entry{}, &MissingFieldError{Field: "start_time"}
	case f.EndTime == nil:
		return domain.Entry{}, &MissingFieldError{Field: "end_time"}
	}
	return domain.Entry{
		GroupID:   *f.GroupID,
		TeacherID: *f.TeacherID,
		CampusID:  *f.CampusID,
		Subject:   *f.Subject,
		Room:      *f.Room,
		DayOfWeek: *f.DayOfWeek,
		StartTime: *f.StartTime,
		EndTime:   *f.EndTime,
	}, nil
}
