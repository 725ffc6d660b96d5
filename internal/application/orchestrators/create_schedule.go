package orchestrators

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"timetable/internal/adapters/storage"
	domain "timetable/internal/domain/schedule"
)

// CreateScheduleStore defines the store interface needed by this orchestrator.
type CreateScheduleStore interface {
	Create(ctx context.Context, e domain.Entry) (domain.Entry, error)
}

// CreateScheduleInput carries the body of a create request.
type CreateScheduleInput struct {
	ScheduleFields
}

// CreateScheduleDeps holds dependencies for ExecuteCreateSchedule.
type CreateScheduleDeps struct {
	ScheduleStore CreateScheduleStore
	Now           func() time.Time
}

// ExecuteCreateSchedule validates and inserts a new schedule entry.
// PRE: deps.ScheduleStore is set
// POST: Returns the stored entry with its generated id, or
// *MissingFieldError, *schedule.ValidationError, ErrUnknownReference or a
// store error; nothing is written on error
func ExecuteCreateSchedule(ctx context.Context, input CreateScheduleInput, deps CreateScheduleDeps) (domain.Entry, error) {
	e, err := input.entry()
	if err != nil {
		return domain.Entry{}, err
	}
	if err := e.Validate(); err != nil {
		return domain.Entry{}, err
	}

	now := nowUTC(deps.Now)
	e.CreatedAt, e.UpdatedAt = now, now

	created, err := deps.ScheduleStore.Create(ctx, e)
	if err != nil {
		if storage.IsForeignKeyViolation(err) {
			return domain.Entry{}, fmt.Errorf("%w: %v", ErrUnknownReference, err)
		}
		return domain.Entry{}, err
	}

	zerolog.Ctx(ctx).Info().Int64("schedule_id", created.ID).Int64("group_id", created.GroupID).Msg("schedule_created")
	return created, nil
}

// nowUTC calls now, or time.Now when it is nil, and drops sub-microsecond
// precision so values survive a database round trip unchanged.
func nowUTC(now func() time.Time) time.Time {
	if now == nil {
		now = time.Now
	}
	return now().UTC().Truncate(time.Microsecond)
}
