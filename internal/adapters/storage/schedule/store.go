package schedule

import (
	"context"
	"time"

	domain "timetable/internal/domain/schedule"
)

// ListFilter narrows List. Nil fields do not filter.
type ListFilter struct {
	GroupID        *int64
	TeacherID      *int64
	IncludeDeleted bool
}

// Store persists schedule entries.
type Store interface {
	List(ctx context.Context, filter ListFilter) ([]domain.EntryView, error)
	Create(ctx context.Context, e domain.Entry) (domain.Entry, error)
	Update(ctx context.Context, e domain.Entry) (domain.Entry, bool, error)
	SoftDelete(ctx context.Context, id int64, at time.Time) (bool, error)
}
