package web

import (
	"net/http"

	"timetable/internal/adapters/storage/reference"
	"timetable/internal/application/projections"
)

// handleData serves the three lookup tables.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
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

	data, err := projections.QueryGetReferenceData(ctx, projections.GetReferenceDataDeps{
		ReferenceStore: reference.NewSQLStore(conn),
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}
