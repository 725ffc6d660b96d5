package projections

import (
	"context"

	scheduleStore "timetable/internal/adapters/storage/schedule"
	"timetable/internal/domain/schedule"
)

// ListScheduleStore defines the store interface needed by this projection.
type ListScheduleStore interface {
	List(ctx context.Context, filter scheduleStore.ListFilter) ([]schedule.EntryView, error)
}

// ListScheduleDeps holds dependencies for the projection.
type ListScheduleDeps struct {
	ScheduleStore ListScheduleStore
}

// ListScheduleQuery narrows the listing. Nil fields match everything.
type ListScheduleQuery struct {
	GroupID   *int64
	TeacherID *int64
}

// QueryListSchedule returns live entries with their joined names, ordered
// by day, start time and id.
// PRE: deps.ScheduleStore is set
// POST: Returns a non-nil slice; soft-deleted entries are never included
func QueryListSchedule(ctx context.Context, query ListScheduleQuery, deps ListScheduleDeps) ([]schedule.EntryView, error) {
	entries, err := deps.ScheduleStore.List(ctx, scheduleStore.ListFilter{
		GroupID:   query.GroupID,
		TeacherID: query.TeacherID,
	})
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []schedule.EntryView{}
	}
	return entries, nil
}
