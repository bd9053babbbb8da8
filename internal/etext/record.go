package etext

import "fmt"

// Record is one persisted corpus entry. Empty Author or Title means the
// metadata index had no value for it.
type Record struct {
	ID       int
	Author   string
	Title    string
	FullText string
}

// String renders a short summary suitable for logs and CLI output.
func (r Record) String() string {
	preview := r.FullText
	if runes := []rune(preview); len(runes) > 15 {
		preview = string(runes[:15])
	}
	return fmt.Sprintf("Record(id=%d, author=%q, title=%q, text=%q...)", r.ID, r.Author, r.Title, preview)
}
