package domain

import "time"

// Theme identifies a reading color scheme.
type Theme string

// Available themes.
const (
	ThemeLight     Theme = "light"
	ThemeParchment Theme = "parchment"
	ThemeEyeGreen  Theme = "eye-green"
	ThemeDark      Theme = "dark"
)

// Valid reports whether the theme is one of the known values.
func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeParchment, ThemeEyeGreen, ThemeDark:
		return true
	}
	return false
}

// Font size bounds, in percent of the base size.
const (
	FontSizeMin = 80
	FontSizeMax = 180
)

// UserSettings holds the singleton display preferences.
// There is exactly one instance; updates overwrite it wholesale.
type UserSettings struct {
	Theme      Theme     `json:"theme"`
	FontSize   int       `json:"font_size"`
	FontFamily string    `json:"font_family,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DefaultUserSettings returns the settings used before any have been saved.
func DefaultUserSettings() *UserSettings {
	return &UserSettings{
		Theme:     ThemeLight,
		FontSize:  100,
		UpdatedAt: time.Now(),
	}
}

// ClampFontSize forces the font size into the allowed range.
func (s *UserSettings) ClampFontSize() {
	s.FontSize = ClampFontSize(s.FontSize)
}

// ClampFontSize forces a font size percentage into [FontSizeMin, FontSizeMax].
func ClampFontSize(size int) int {
	return min(FontSizeMax, max(FontSizeMin, size))
}
