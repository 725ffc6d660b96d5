package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"timetable/internal/adapters/spreadsheet"
	"timetable/internal/adapters/storage/reference"
	domain "timetable/internal/domain/schedule"
	"timetable/internal/metrics"
)

// ImportScheduleStore defines the schedule store interface needed by the importer.
type ImportScheduleStore interface {
	Create(ctx context.Context, e domain.Entry) (domain.Entry, error)
}

// ImportReferenceStore defines the lookup interface needed by the importer.
type ImportReferenceStore interface {
	FindGroupID(ctx context.Context, name string) (int64, error)
	FindTeacherID(ctx context.Context, fullName string) (int64, error)
	FindCampusID(ctx context.Context, name string) (int64, error)
}

// ImportScheduleInput carries the raw workbook and import options.
// PRE: Data is a complete .xlsx or .xls file whose first sheet has a header row.
// POST: Valid rows are inserted one statement each; DryRun performs no writes.
// INVARIANT: A failed row never leaves a partial entry behind.
type ImportScheduleInput struct {
	Data   []byte
	DryRun bool
}

// ImportScheduleRowError describes why a single sheet row was not imported.
// Row is the 1-based sheet row number; the header is row 1.
type ImportScheduleRowError struct {
	Row     int
	Message string
}

// String renders the error the way it is shown to users.
func (e ImportScheduleRowError) String() string {
	return fmt.Sprintf("Строка %d: %s", e.Row, e.Message)
}

// ImportScheduleResult holds aggregate counts and per-row errors from an import run.
type ImportScheduleResult struct {
	Total    int
	Imported int
	Skipped  int
	Errors   []ImportScheduleRowError
	DryRun   bool
}

// Summary is the user-facing one-line outcome.
func (r ImportScheduleResult) Summary() string {
	if r.DryRun {
		return fmt.Sprintf("Проверено занятий: %d (без сохранения)", r.Imported)
	}
	return fmt.Sprintf("Импортировано занятий: %d", r.Imported)
}

// ErrorMessages renders every row error; never nil.
func (r ImportScheduleResult) ErrorMessages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.String())
	}
	return out
}

// ImportScheduleDeps holds external dependencies for the import orchestrator.
type ImportScheduleDeps struct {
	ScheduleStore  ImportScheduleStore
	ReferenceStore ImportReferenceStore
	Now            func() time.Time
	Metrics        *metrics.Metrics
}

// ExecuteImportSchedule reads the first sheet of a workbook and inserts one
// schedule entry per data row.
// PRE: deps.ScheduleStore and deps.ReferenceStore are set
// POST: Returns counts and per-row errors. A workbook that cannot be read
// returns an error wrapping spreadsheet.ErrMalformed and nothing is written.
// INVARIANT: Rows are processed in sheet order; the first unresolved name of
// a row is the one reported.
func ExecuteImportSchedule(ctx context.Context, input ImportScheduleInput, deps ImportScheduleDeps) (ImportScheduleResult, error) {
	rows, err := spreadsheet.ReadFirstSheet(input.Data)
	if err != nil {
		return ImportScheduleResult{}, err
	}

	result := ImportScheduleResult{DryRun: input.DryRun, Errors: []ImportScheduleRowError{}}
	resolve := newNameResolver(deps.ReferenceStore)
	now := nowUTC(deps.Now)

	for i := 1; i < len(rows); i++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		cells := rows[i]
		rowNum := i + 1

		if domain.Cell(cells, domain.ColGroup) == "" {
			result.Skipped++
			continue
		}
		result.Total++

		fail := func(msg string) {
			result.Errors = append(result.Errors, ImportScheduleRowError{Row: rowNum, Message: msg})
		}

		row, err := domain.ParseImportRow(cells)
		if err != nil {
			fail(rowErrorMessage(err))
			continue
		}

		ids, msg, err := resolve.row(ctx, row)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			fail(err.Error())
			continue
		}
		if msg != "" {
			fail(msg)
			continue
		}

		e := row.Entry(ids[0], ids[1], ids[2])
		if err := e.Validate(); err != nil {
			fail(err.Error())
			continue
		}
		if input.DryRun {
			result.Imported++
			continue
		}

		e.CreatedAt, e.UpdatedAt = now, now
		if _, err := deps.ScheduleStore.Create(ctx, e); err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			zerolog.Ctx(ctx).Warn().Err(err).Int("row", rowNum).Msg("schedule_import_insert_failed")
			fail(err.Error())
			continue
		}
		result.Imported++
	}

	deps.Metrics.AddImportRows(metrics.OutcomeImported, result.Imported)
	deps.Metrics.AddImportRows(metrics.OutcomeFailed, len(result.Errors))
	deps.Metrics.AddImportRows(metrics.OutcomeSkipped, result.Skipped)

	zerolog.Ctx(ctx).Info().
		Bool("dry_run", input.DryRun).
		Int("total", result.Total).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("schedule_import")

	return result, nil
}

// rowErrorMessage renders a decoding failure in the user's language.
func rowErrorMessage(err error) string {
	var cellErr *domain.ImportRowError
	if !errors.As(err, &cellErr) {
		return err.Error()
	}
	switch cellErr.Column {
	case domain.ColSubject:
		return "предмет не указан"
	case domain.ColDay:
		return fmt.Sprintf("день недели \"%s\" должен быть целым числом от %d до %d", cellErr.Value, domain.MinDay, domain.MaxDay)
	case domain.ColStart:
		return fmt.Sprintf("время начала \"%s\" имеет неверный формат", cellErr.Value)
	case domain.ColEnd:
		return fmt.Sprintf("время окончания \"%s\" имеет неверный формат", cellErr.Value)
	}
	return err.Error()
}

// nameResolver memoizes name lookups for the duration of one import.
// Misses are cached too, so a misspelled name costs one query.
type nameResolver struct {
	store    ImportReferenceStore
	groups   map[string]int64
	teachers map[string]int64
	campuses map[string]int64
}

func newNameResolver(store ImportReferenceStore) *nameResolver {
	return &nameResolver{
		store:    store,
		groups:   make(map[string]int64),
		teachers: make(map[string]int64),
		campuses: make(map[string]int64),
	}
}

// row resolves group, teacher and campus in that order. A non-empty
// message reports the first name that does not exist; err is reserved for
// lookup failures.
func (r *nameResolver) row(ctx context.Context, row domain.ImportRow) (ids [3]int64, msg string, err error) {
	if ids[0], err = r.lookup(ctx, r.groups, r.store.FindGroupID, row.GroupName); err != nil {
		return ids, "", err
	}
	if ids[0] == 0 {
		return ids, fmt.Sprintf("группа \"%s\" не найдена", row.GroupName), nil
	}
	if ids[1], err = r.lookup(ctx, r.teachers, r.store.FindTeacherID, row.TeacherName); err != nil {
		return ids, "", err
	}
	if ids[1] == 0 {
		return ids, fmt.Sprintf("преподаватель \"%s\" не найден", row.TeacherName), nil
	}
	if ids[2], err = r.lookup(ctx, r.campuses, r.store.FindCampusID, row.CampusName); err != nil {
		return ids, "", err
	}
	if ids[2] == 0 {
		return ids, fmt.Sprintf("кампус \"%s\" не найден", row.CampusName), nil
	}
	return ids, "", nil
}

// lookup returns 0 for a name with no row.
func (r *nameResolver) lookup(ctx context.Context, cache map[string]int64, find func(context.Context, string) (int64, error), name string) (int64, error) {
	if id, ok := cache[name]; ok {
		return id, nil
	}
	id, err := find(ctx, name)
	if errors.Is(err, reference.ErrNotFound) {
		cache[name] = 0
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	cache[name] = id
	return id, nil
}
