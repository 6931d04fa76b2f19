package domain

// ExternalBook is a search result from an external catalog.
// It is never persisted; records live only as long as the query that
// produced them.
type ExternalBook struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Source      string `json:"source"`
	DownloadURL string `json:"downloadUrl"`
}

// Downloadable reports whether the entry points at a real source.
// Placeholder results carry a sentinel URL ("#" or empty) that must be
// rejected locally without a network call.
func (e *ExternalBook) Downloadable() bool {
	return e.DownloadURL != "" && e.DownloadURL != "#"
}
