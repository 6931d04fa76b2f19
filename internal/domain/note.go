package domain

import (
	"strings"
	"time"
)

// Note is a highlight or comment anchored to a position inside a book.
//
// CFI is an opaque, order-preserving locator into the rendered content.
// It is stored and compared but never parsed here. Text is the excerpt
// captured when the note was created and never changes afterwards;
// Annotation is the user's free-form comment and may be edited.
type Note struct {
	ID         string    `json:"id"`
	BookID     string    `json:"book_id"`
	CFI        string    `json:"cfi"`
	Text       string    `json:"text"`
	Annotation string    `json:"annotation,omitempty"`
	Color      string    `json:"color,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Matches reports whether the note's excerpt or annotation contains
// query, case-insensitively. An empty query matches nothing.
func (n *Note) Matches(query string) bool {
	if query == "" {
		return false
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(n.Text), q) ||
		strings.Contains(strings.ToLower(n.Annotation), q)
}

// NoteMatch pairs a note with its book for search results.
// Book is nil when the referenced book no longer exists; orphaned notes
// are kept and surfaced this way rather than cascade-deleted.
type NoteMatch struct {
	Note *Note `json:"note"`
	Book *Book `json:"book,omitempty"`
}
