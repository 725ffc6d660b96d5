package projections

import (
	"context"

	"timetable/internal/domain/campus"
	"timetable/internal/domain/group"
	"timetable/internal/domain/teacher"
)

// ReferenceDataStore defines the store interface needed by this projection.
type ReferenceDataStore interface {
	ListCampuses(ctx context.Context) ([]campus.Campus, error)
	ListTeachers(ctx context.Context) ([]teacher.Teacher, error)
	ListGroups(ctx context.Context) ([]group.Group, error)
}

// GetReferenceDataDeps holds dependencies for the projection.
type GetReferenceDataDeps struct {
	ReferenceStore ReferenceDataStore
}

// ReferenceData is the full content of the three lookup tables.
type ReferenceData struct {
	Campuses []campus.Campus   `json:"campuses"`
	Teachers []teacher.Teacher `json:"teachers"`
	Groups   []group.Group     `json:"groups"`
}

// QueryGetReferenceData reads every campus, teacher and group.
// PRE: deps.ReferenceStore is set
// POST: All three lists are non-nil; the first store error aborts the query
func QueryGetReferenceData(ctx context.Context, deps GetReferenceDataDeps) (ReferenceData, error) {
	campuses, err := deps.ReferenceStore.ListCampuses(ctx)
	if err != nil {
		return ReferenceData{}, err
	}
	teachers, err := deps.ReferenceStore.ListTeachers(ctx)
	if err != nil {
		return ReferenceData{}, err
	}
	groups, err := deps.ReferenceStore.ListGroups(ctx)
	if err != nil {
		return ReferenceData{}, err
	}

	data := ReferenceData{Campuses: campuses, Teachers: teachers, Groups: groups}
	if data.Campuses == nil {
		data.Campuses = []campus.Campus{}
	}
	if data.Teachers == nil {
		data.Teachers = []teacher.Teacher{}
	}
	if data.Groups == nil {
		data.Groups = []group.Group{}
	}
	return data, nil
}
