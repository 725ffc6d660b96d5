package orchestrators

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"timetable/internal/adapters/storage"
	domain "timetable/internal/domain/schedule"
)

// UpdateScheduleStore defines the store interface needed by this orchestrator.
type UpdateScheduleStore interface {
	Update(ctx context.Context, e domain.Entry) (domain.Entry, bool, error)
}

// UpdateScheduleInput carries the body of an update request: the id plus
// the full field set.
type UpdateScheduleInput struct {
	ID *int64 `json:"id"`
	ScheduleFields
}

// UpdateScheduleDeps holds dependencies for ExecuteUpdateSchedule.
type UpdateScheduleDeps struct {
	ScheduleStore UpdateScheduleStore
	Now           func() time.Time
}

// ExecuteUpdateSchedule overwrites every field of a live entry.
// PRE: deps.ScheduleStore is set
// POST: Returns the updated entry, or nil when no live entry has the id.
// Soft-deleted entries are never updated.
func ExecuteUpdateSchedule(ctx context.Context, input UpdateScheduleInput, deps UpdateScheduleDeps) (*domain.Entry, error) {
	if input.ID == nil {
		return nil, &MissingFieldError{Field: "id"}
	}
	e, err := input.entry()
	if err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	e.ID = *input.ID
	e.UpdatedAt = nowUTC(deps.Now)

	updated, ok, err := deps.ScheduleStore.Update(ctx, e)
	if err != nil {
		if storage.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: %v", ErrUnknownReference, err)
		}
		return nil, err
	}
	if !ok {
		zerolog.Ctx(ctx).Debug().Int64("schedule_id", e.ID).Msg("schedule_update_missed")
		return nil, nil
	}
	zerolog.Ctx(ctx).Info().Int64("schedule_id", updated.ID).Msg("schedule_updated")
	return &updated, nil
}
