package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	canonerrors "github.com/conneroisu/canon/internal/errors"
)

func TestValidateSelector(t *testing.T) {
	tests := []struct {
		name     string
		selector string
		wantErr  bool
	}{
		{"id", "#next", false},
		{"attribute", "[data-carousel] [data-carousel-next]", false},
		{"group", "button, [role=button]", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"unbalanced", "[data-carousel", true},
		{"too long", "#" + strings.Repeat("a", MaxSelectorLength), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSelector(tt.selector)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.True(t, canonerrors.IsType(err, canonerrors.ErrorTypeValidation))
		})
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"ArrowDown", false},
		{"Enter", false},
		{"F12", false},
		{"a", false},
		{" ", false},
		{"é", false},
		{"", true},
		{"\x00", true},
		{"Arrow Down", true},
		{"Enter;rm", true},
		{strings.Repeat("A", MaxKeyLength+1), true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if tt.wantErr {
				assert.Error(t, ValidateKey(tt.key))
			} else {
				assert.NoError(t, ValidateKey(tt.key))
			}
		})
	}
}

func TestValidateFileExtension(t *testing.T) {
	html := []string{".html", ".htm"}
	tests := []struct {
		name    string
		file    string
		allowed []string
		wantErr bool
	}{
		{"html", "page.html", html, false},
		{"upper case", "PAGE.HTM", html, false},
		{"stdin", "-", html, false},
		{"no restriction", "notes.txt", nil, false},
		{"wrong extension", "page.md", html, true},
		{"no extension", "page", html, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileExtension(tt.file, tt.allowed)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "hello world", SanitizeInput("hello\x00 world\x07"))
	assert.Equal(t, "a\tb\nc\r", SanitizeInput("a\tb\nc\r\x7f"))
	assert.Equal(t, "naïve", SanitizeInput("naïve"))
}
