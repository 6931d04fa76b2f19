package domain

import "time"

// SessionState is the lifecycle state of a reading session.
type SessionState string

// Session states. Error is terminal: the only transition out is Close.
const (
	SessionClosed  SessionState = "closed"
	SessionOpening SessionState = "opening"
	SessionReady   SessionState = "ready"
	SessionError   SessionState = "error"
)

// ReadingSession is the server-side view of one open book.
// At most one session is active at a time; opening another book closes
// the current one first.
type ReadingSession struct {
	ID       string       `json:"id"`
	BookID   string       `json:"book_id"`
	State    SessionState `json:"state"`
	Locator  string       `json:"locator,omitempty"`
	Progress float64      `json:"progress"`
	Message  string       `json:"message,omitempty"`
	OpenedAt time.Time    `json:"opened_at"`
}

// AnnotationDraft is a candidate note produced by a text selection in
// the rendered view. It is surfaced for confirmation; nothing is saved
// until the caller explicitly does so.
type AnnotationDraft struct {
	BookID string `json:"book_id"`
	CFI    string `json:"cfi"`
	Text   string `json:"text"`
}
