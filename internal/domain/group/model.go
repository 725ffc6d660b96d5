package group

// Group is a cohort of students that attends schedule entries together.
type Group struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	CampusID *int64 `json:"campus_id"`
	Year     *int   `json:"year"`
}
