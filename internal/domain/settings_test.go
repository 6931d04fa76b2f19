package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTheme_Valid(t *testing.T) {
	for _, theme := range []Theme{ThemeLight, ThemeParchment, ThemeEyeGreen, ThemeDark} {
		assert.True(t, theme.Valid(), "theme %q", theme)
	}
	assert.False(t, Theme("sepia").Valid())
	assert.False(t, Theme("").Valid())
}

func TestClampFontSize(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"within range", 110, 110},
		{"at floor", 80, 80},
		{"at ceiling", 180, 180},
		{"below floor", 20, 80},
		{"above ceiling", 500, 180},
		{"zero", 0, 80},
		{"negative", -50, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampFontSize(tt.in))
		})
	}
}

func TestDefaultUserSettings(t *testing.T) {
	s := DefaultUserSettings()
	assert.Equal(t, ThemeLight, s.Theme)
	assert.Equal(t, 100, s.FontSize)
}
