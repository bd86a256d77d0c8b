package sanitize

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidateUserID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"simple", "u1", false},
		{"email", "anna.schmidt@example.org", false},
		{"provider prefix", "auth0:5f2c-91", false},
		{"uuid", uuid.NewString(), false},
		{"empty", "", true},
		{"leading dash", "-u1", true},
		{"space", "anna schmidt", true},
		{"slash", "../etc/passwd", true},
		{"umlaut", "jürgen", true},
		{"too long", strings.Repeat("a", MaxUserIDLength+1), true},
		{"max length", strings.Repeat("a", MaxUserIDLength), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUserID(tt.id)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidUserID), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsReflectionID(t *testing.T) {
	assert.True(t, IsReflectionID(uuid.NewString()))
	assert.False(t, IsReflectionID("does-not-exist"))
	assert.False(t, IsReflectionID(""))
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"unchanged", "Praktikum Woche 3", "Praktikum Woche 3"},
		{"trims", "  Arbeit \n", "Arbeit"},
		{"collapses whitespace", "Tag\t\t4  im\nBüro", "Tag 4 im Büro"},
		{"drops control chars", "Stu\x00di\x1bum", "Studium"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Label(tt.in))
		})
	}
}

func TestLabel_Truncates(t *testing.T) {
	got := Label(strings.Repeat("ä", MaxLabelRunes+50))
	assert.Equal(t, MaxLabelRunes, utf8.RuneCountInString(got))

	got = Label(strings.Repeat("ab ", MaxLabelRunes))
	assert.LessOrEqual(t, utf8.RuneCountInString(got), MaxLabelRunes)
	assert.False(t, strings.HasSuffix(got, " "))
}
