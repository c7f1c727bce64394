// Package validation checks input that reaches the document from outside:
// selectors and key names from remote actions, typed values, and the files
// handed to the CLI.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/conneroisu/canon/internal/dom"
	canonerrors "github.com/conneroisu/canon/internal/errors"
)

const (
	// MaxSelectorLength bounds selectors accepted from remote actions.
	MaxSelectorLength = 512
	// MaxKeyLength bounds key names. The longest standard key value is
	// under 32 characters.
	MaxKeyLength = 32
)

// ValidateSelector rejects empty, oversized and unparsable selectors.
func ValidateSelector(selector string) error {
	if strings.TrimSpace(selector) == "" {
		return canonerrors.NewValidationError(canonerrors.ErrCodeBadSelector, "selector cannot be empty")
	}
	if len(selector) > MaxSelectorLength {
		return canonerrors.NewValidationError(canonerrors.ErrCodeBadSelector,
			fmt.Sprintf("selector longer than %d bytes", MaxSelectorLength))
	}
	if _, err := dom.Compile(selector); err != nil {
		return canonerrors.NewValidationError(canonerrors.ErrCodeBadSelector,
			fmt.Sprintf("invalid selector %q", selector))
	}
	return nil
}

// ValidateKey accepts a KeyboardEvent key value: a single printable
// character or a named key such as ArrowDown or Enter.
func ValidateKey(key string) error {
	if key == "" {
		return canonerrors.NewValidationError(canonerrors.ErrCodeBadInput, "key cannot be empty")
	}
	if len(key) > MaxKeyLength {
		return canonerrors.NewValidationError(canonerrors.ErrCodeBadInput,
			fmt.Sprintf("key longer than %d bytes", MaxKeyLength))
	}
	if len([]rune(key)) == 1 {
		if r := []rune(key)[0]; !unicode.IsPrint(r) {
			return canonerrors.NewValidationError(canonerrors.ErrCodeBadInput, fmt.Sprintf("key %q is not printable", key))
		}
		return nil
	}
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return canonerrors.NewValidationError(canonerrors.ErrCodeBadInput, fmt.Sprintf("invalid key name %q", key))
		}
	}
	return nil
}

// ValidateFileExtension accepts filename when its extension is in allowed.
// Comparison ignores case. "-" names stdin and is always accepted.
func ValidateFileExtension(filename string, allowed []string) error {
	if filename == "-" || len(allowed) == 0 {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return canonerrors.NewValidationError(canonerrors.ErrCodeBadInput,
			fmt.Sprintf("%s has no extension, want one of %s", filename, strings.Join(allowed, ", ")))
	}
	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return nil
		}
	}
	return canonerrors.NewValidationError(canonerrors.ErrCodeBadInput,
		fmt.Sprintf("file extension '%s' is not allowed, want one of %s", ext, strings.Join(allowed, ", ")))
}

// SanitizeInput removes NUL and control characters other than tab and
// newlines.
func SanitizeInput(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r >= 32 && r != 127 || r == '\t' || r == '\n' || r == '\r' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
