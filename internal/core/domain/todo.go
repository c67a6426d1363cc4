package domain

// TodoEntry is one line on an external to-do list. The backing list is
// free-text and externally editable, so entries are matched heuristically by
// summary unless the backend exposes a stable id.
type TodoEntry struct {
	ID        string
	Summary   string
	Completed bool
}

// Ref returns the handle used to address the entry, preferring the stable id.
func (e TodoEntry) Ref() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Summary
}
