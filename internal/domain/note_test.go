package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNote_Matches(t *testing.T) {
	note := &Note{
		Text:       "The Moon rose over the harbor",
		Annotation: "reminds me of Li Bai",
	}

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"matches excerpt", "moon", true},
		{"matches excerpt case-insensitively", "MOON", true},
		{"matches annotation", "li bai", true},
		{"no match", "sunrise", false},
		{"empty query matches nothing", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, note.Matches(tt.query))
		})
	}
}

func TestNote_Matches_BothFieldsEmpty(t *testing.T) {
	note := &Note{}
	assert.False(t, note.Matches("anything"))
}
