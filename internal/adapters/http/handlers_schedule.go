package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	scheduleStore "timetable/internal/adapters/storage/schedule"
	"timetable/internal/application/orchestrators"
	"timetable/internal/application/projections"
)

// deleteResponse is the body of a successful DELETE.
type deleteResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// handleSchedule lists, creates, updates and soft-deletes schedule entries.
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		methodNotAllowed(w)
		return
	}

	ctx := r.Context()
	conn, err := s.conn(ctx)
	if err != nil {
		fail(w, r, err)
		return
	}
	defer conn.Close()
	store := scheduleStore.NewSQLStore(conn)

	switch r.Method {
	case http.MethodGet:
		var query projections.ListScheduleQuery
		q := r.URL.Query()
		if query.GroupID, err = optionalID(q, "group_id"); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if query.TeacherID, err = optionalID(q, "teacher_id"); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		entries, err := projections.QueryListSchedule(ctx, query, projections.ListScheduleDeps{ScheduleStore: store})
		if err != nil {
			internalError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)

	case http.MethodPost:
		var input orchestrators.CreateScheduleInput
		if err := decodeJSON(r, &input); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
			return
		}
		created, err := orchestrators.ExecuteCreateSchedule(ctx, input, orchestrators.CreateScheduleDeps{
			ScheduleStore: store,
			Now:           s.now,
		})
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodPut:
		var input orchestrators.UpdateScheduleInput
		if err := decodeJSON(r, &input); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
			return
		}
		updated, err := orchestrators.ExecuteUpdateSchedule(ctx, input, orchestrators.UpdateScheduleDeps{
			ScheduleStore: store,
			Now:           s.now,
		})
		if err != nil {
			fail(w, r, err)
			return
		}
		// a nil pointer encodes as null
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		raw := strings.TrimSpace(r.URL.Query().Get("id"))
		if raw == "" {
			writeError(w, http.StatusBadRequest, "Missing id parameter")
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "id must be an integer")
			return
		}
		res, err := orchestrators.ExecuteDeleteSchedule(ctx, orchestrators.DeleteScheduleInput{ID: id}, orchestrators.DeleteScheduleDeps{
			ScheduleStore: store,
			Now:           s.now,
		})
		if err != nil {
			internalError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, deleteResponse{Message: "Schedule deleted", ID: res.ID})
	}
}

// optionalID parses an integer query parameter. Absent or empty means no filter.
func optionalID(q url.Values, name string) (*int64, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &id, nil
}
