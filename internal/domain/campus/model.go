package campus

// Campus is a building or site where classes are held.
// Rows are maintained outside this service; it only reads them.
type Campus struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Address *string `json:"address"`
}
