package teacher

// Teacher is a person who runs schedule entries.
// FullName is the lookup key used by the spreadsheet importer.
type Teacher struct {
	ID       int64   `json:"id"`
	FullName string  `json:"full_name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
}
