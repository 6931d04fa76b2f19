// Package domain contains the core business entities for the ReadLeaf e-book library.
package domain

import "time"

// BookSource identifies where a book came from.
type BookSource string

// Known book sources.
const (
	SourceLocal     BookSource = "local"
	SourceGutenberg BookSource = "gutenberg"
	SourceHaodoo    BookSource = "haodoo"
	SourceHyread    BookSource = "hyread"
)

// Valid reports whether the source is one of the known values.
func (s BookSource) Valid() bool {
	switch s {
	case SourceLocal, SourceGutenberg, SourceHaodoo, SourceHyread:
		return true
	}
	return false
}

// Book represents an e-book in the library.
// The raw EPUB bytes are stored separately as a blob keyed by ID and are
// immutable once written; Book carries only metadata.
type Book struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Author  string     `json:"author"`
	Source  BookSource `json:"source"`
	Size    int64      `json:"size"`
	AddedAt time.Time  `json:"added_at"`
}

// NewBook creates a book record with the given identity and metadata.
func NewBook(id, title, author string, source BookSource, size int64) *Book {
	if author == "" {
		author = "Unknown"
	}
	return &Book{
		ID:      id,
		Title:   title,
		Author:  author,
		Source:  source,
		Size:    size,
		AddedAt: time.Now(),
	}
}
