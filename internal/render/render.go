// Package render defines the contract with the e-book rendering
// capability. The engine owns parsing, layout, and CFI resolution; this
// server only hands it raw content bytes and talks to the resulting
// view through opaque locators.
package render

import (
	"bytes"
	"context"

	"github.com/readleafapp/readleaf-server/internal/domain"
	apperrors "github.com/readleafapp/readleaf-server/internal/errors"
)

// Engine parses raw book content and produces a navigable view.
type Engine interface {
	Render(ctx context.Context, content []byte) (View, error)
}

// View is one rendered book. Locators (CFIs) are opaque tokens ordered
// by the view's position index; the server stores and compares them but
// never interprets their structure.
type View interface {
	// ApplyTheme switches the view's color scheme.
	ApplyTheme(theme domain.Theme)
	// ApplyFontScale sets the font size as a percentage of the base size.
	ApplyFontScale(percent int)
	// Progress maps a locator to a fraction in [0,1] using the
	// precomputed position index. Unknown locators report 0.
	Progress(locator string) float64
	// Close releases the view's resources. Safe to call more than once.
	Close()
}

// zipMagic is the ZIP local-file-header signature every OCF container
// starts with. Checking it is the engine's concern, not the caller's:
// imports hand bytes over unvalidated and malformed input is only
// discovered here.
var zipMagic = []byte{0x50, 0x4b, 0x03, 0x04}

// ContainerEngine is the default engine. It verifies only the outer
// container signature and leaves real layout to the embedded renderer
// it fronts; a book that fails the check is rejected with
// CONTENT_INVALID before any session reaches Ready.
type ContainerEngine struct{}

// NewContainerEngine creates the default rendering engine.
func NewContainerEngine() *ContainerEngine {
	return &ContainerEngine{}
}

// Render implements Engine.
func (e *ContainerEngine) Render(ctx context.Context, content []byte) (View, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, apperrors.ContentInvalid("book has no content")
	}
	if !bytes.HasPrefix(content, zipMagic) {
		return nil, apperrors.ContentInvalid("content is not an EPUB container")
	}
	return &containerView{size: len(content)}, nil
}

// containerView tracks locators against an index built lazily as the
// reader moves: each unseen locator is appended, preserving the order
// the rendering layer reports them in.
type containerView struct {
	size     int
	theme    domain.Theme
	fontPct  int
	index    []string
	position map[string]int
	closed   bool
}

func (v *containerView) ApplyTheme(theme domain.Theme) { v.theme = theme }

func (v *containerView) ApplyFontScale(percent int) { v.fontPct = percent }

func (v *containerView) Progress(locator string) float64 {
	if locator == "" {
		return 0
	}
	if v.position == nil {
		v.position = make(map[string]int)
	}
	pos, ok := v.position[locator]
	if !ok {
		v.index = append(v.index, locator)
		pos = len(v.index) - 1
		v.position[locator] = pos
	}
	if len(v.index) <= 1 {
		return 0
	}
	return float64(pos) / float64(len(v.index)-1)
}

func (v *containerView) Close() { v.closed = true }
