package orchestrators

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DeleteScheduleStore defines the store interface needed by this orchestrator.
type DeleteScheduleStore interface {
	SoftDelete(ctx context.Context, id int64, at time.Time) (bool, error)
}

// DeleteScheduleInput names the entry to remove.
type DeleteScheduleInput struct {
	ID int64
}

// DeleteScheduleDeps holds dependencies for ExecuteDeleteSchedule.
type DeleteScheduleDeps struct {
	ScheduleStore DeleteScheduleStore
	Now           func() time.Time
}

// DeleteScheduleResult reports what the soft delete touched.
type DeleteScheduleResult struct {
	ID      int64
	Deleted bool
}

// ExecuteDeleteSchedule soft-deletes an entry by stamping deleted_at and
// updated_at. The row stays in the table.
// PRE: deps.ScheduleStore is set
// POST: The entry no longer appears in listings; Deleted is false when no
// live entry had the id, which is not an error
func ExecuteDeleteSchedule(ctx context.Context, input DeleteScheduleInput, deps DeleteScheduleDeps) (DeleteScheduleResult, error) {
	deleted, err := deps.ScheduleStore.SoftDelete(ctx, input.ID, nowUTC(deps.Now))
	if err != nil {
		return DeleteScheduleResult{}, err
	}
	zerolog.Ctx(ctx).Info().Int64("schedule_id", input.ID).Bool("matched", deleted).Msg("schedule_deleted")
	return DeleteScheduleResult{ID: input.ID, Deleted: deleted}, nil
}
