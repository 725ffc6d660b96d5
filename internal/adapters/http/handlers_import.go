package web

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"timetable/internal/adapters/spreadsheet"
	"timetable/internal/adapters/storage"
	"timetable/internal/adapters/storage/reference"
	scheduleStore "timetable/internal/adapters/storage/schedule"
	"timetable/internal/application/orchestrators"
)

// importRequest is the body of POST /api/import.
type importRequest struct {
	File   string `json:"file"`
	DryRun bool   `json:"dry_run"`
}

// importResponse reports an import run. Errors is never null.
type importResponse struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
	Message  string   `json:"message"`
}

// handleImport bulk-inserts schedule entries from a base64 workbook.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if s.db == nil {
		fail(w, r, storage.ErrNotConfigured)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxImportBytes)
	var req importRequest
	if err := decodeJSON(r, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if req.File == "" {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}

	data, err := spreadsheet.DecodeBase64(req.File)
	if err != nil {
		fileError(w, r, err)
		return
	}

	ctx := r.Context()
	conn, err := s.conn(ctx)
	if err != nil {
		fail(w, r, err)
		return
	}
	defer conn.Close()

	result, err := orchestrators.ExecuteImportSchedule(ctx,
		orchestrators.ImportScheduleInput{Data: data, DryRun: req.DryRun},
		orchestrators.ImportScheduleDeps{
			ScheduleStore:  scheduleStore.NewSQLStore(conn),
			ReferenceStore: reference.NewSQLStore(conn),
			Now:            s.now,
			Metrics:        s.metrics,
		})
	if err != nil {
		if errors.Is(err, spreadsheet.ErrMalformed) {
			fileError(w, r, err)
			return
		}
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, importResponse{
		Imported: result.Imported,
		Errors:   result.ErrorMessages(),
		Message:  result.Summary(),
	})
}

// fileError reports an upload that could not be read as a workbook.
func fileError(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Warn().Err(err).Msg("schedule_import_bad_file")
	writeError(w, http.StatusInternalServerError, "Ошибка обработки файла: "+err.Error())
}
