package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxMarkupSize bounds markup accepted from untrusted hosts (the HTTP server).
const MaxMarkupSize = 1 << 20

var hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// ValidateColor checks that a theme color is either a hex triplet
// (#rgb, #rrggbb, #rrggbbaa) or a plain CSS color keyword.
//
// Colors are interpolated into generated stylesheets and engine
// initialization scripts, so anything that could close a string or a rule
// is rejected.
func ValidateColor(name, value string) error {
	if value == "" {
		return New(ErrCodeInvalidColor, "%s: color cannot be empty", name)
	}
	if strings.HasPrefix(value, "#") {
		if !hexColorRe.MatchString(value) {
			return New(ErrCodeInvalidColor, "%s: malformed hex color %q", name, value)
		}
		return nil
	}
	if len(value) > 32 {
		return New(ErrCodeInvalidColor, "%s: color keyword too long", name)
	}
	for _, r := range value {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return New(ErrCodeInvalidColor, "%s: invalid color keyword %q", name, value)
		}
	}
	return nil
}

// ValidateMarkup rejects markup that no engine should be handed.
// Empty markup is valid: it means "no diagram" and is handled by the caller.
//
// Validation rules:
//   - Maximum size of [MaxMarkupSize] bytes
//   - No null bytes
func ValidateMarkup(markup string) error {
	if len(markup) > MaxMarkupSize {
		return New(ErrCodeTooLarge, "markup too large (%d bytes, max %d)", len(markup), MaxMarkupSize)
	}
	if strings.ContainsRune(markup, 0) {
		return New(ErrCodeInvalidInput, "markup contains null bytes")
	}
	return nil
}
