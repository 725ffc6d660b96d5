package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"timetable/internal/adapters/storage"
	"timetable/internal/application/orchestrators"
	"timetable/internal/domain/schedule"
)

// errorBody is the envelope of every error response.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// fail maps an error from the application layer onto a status code.
// Unexpected errors are logged and their text is returned to the caller.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *schedule.ValidationError
	switch {
	case errors.Is(err, storage.ErrNotConfigured):
		writeError(w, http.StatusInternalServerError, storage.ErrNotConfigured.Error())
	case errors.Is(err, orchestrators.ErrMissingField),
		errors.Is(err, orchestrators.ErrUnknownReference),
		errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		internalError(w, r, err)
	}
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("internal_error")
	writeError(w, http.StatusInternalServerError, err.Error())
}

// decodeJSON decodes the request body into v. Unknown keys are ignored and
// an empty body decodes as {}.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
