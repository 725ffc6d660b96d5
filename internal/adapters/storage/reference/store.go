package reference

import (
	"context"
	"errors"

	"timetable/internal/domain/campus"
	"timetable/internal/domain/group"
	"timetable/internal/domain/teacher"
)

// ErrNotFound is returned when a name lookup matches no row.
var ErrNotFound = errors.New("reference not found")

// Store reads the lookup tables. Rows are owned by another system, so
// there are no write methods.
type Store interface {
	ListCampuses(ctx context.Context) ([]campus.Campus, error)
	ListTeachers(ctx context.Context) ([]teacher.Teacher, error)
	ListGroups(ctx context.Context) ([]group.Group, error)

	FindGroupID(ctx context.Context, name string) (int64, error)
	FindTeacherID(ctx context.Context, fullName string) (int64, error)
	FindCampusID(ctx context.Context, name string) (int64, error)
}
