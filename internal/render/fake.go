package render

import (
	"context"

	"github.com/readleafapp/readleaf-server/internal/domain"
)

// FakeEngine is a test double that counts Render calls and can be
// forced to fail.
type FakeEngine struct {
	RenderCalls int
	Err         error
	LastView    *FakeView
}

// Render implements Engine.
func (f *FakeEngine) Render(_ context.Context, content []byte) (View, error) {
	f.RenderCalls++
	if f.Err != nil {
		return nil, f.Err
	}
	f.LastView = &FakeView{Size: len(content)}
	return f.LastView, nil
}

// FakeView records applied settings and close calls.
type FakeView struct {
	Size        int
	Theme       domain.Theme
	FontPct     int
	CloseCalls  int
	ProgressMap map[string]float64
}

func (v *FakeView) ApplyTheme(theme domain.Theme) { v.Theme = theme }

func (v *FakeView) ApplyFontScale(percent int) { v.FontPct = percent }

func (v *FakeView) Progress(locator string) float64 {
	if v.ProgressMap == nil {
		return 0
	}
	return v.ProgressMap[locator]
}

func (v *FakeView) Close() { v.CloseCalls++ }
