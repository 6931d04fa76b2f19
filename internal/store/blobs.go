package store

import "context"

// Blob operations store raw EPUB content keyed by book ID. Blobs are
// written once on import/download and never mutated afterwards.

// PutBlob stores raw content bytes for a book.
func (s *Store) PutBlob(ctx context.Context, bookID string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set([]byte(blobPrefix+bookID), data)
}

// GetBlob retrieves the raw content bytes for a book.
// Returns a NOT_FOUND domain error when no blob exists.
func (s *Store) GetBlob(ctx context.Context, bookID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.get([]byte(blobPrefix + bookID))
}

// DeleteBlob removes the raw content bytes for a book. Idempotent.
func (s *Store) DeleteBlob(ctx context.Context, bookID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.delete([]byte(blobPrefix + bookID))
}
