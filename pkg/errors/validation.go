package errors

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// ValidateTaskID validates a task identifier taken from user input.
//
// The rules are intentionally loose since task names are free text:
//   - No empty names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateTaskID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidConnection, "task id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidConnection, "task id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidConnection, "task id %q contains control characters", id)
		}
	}

	return nil
}

// hexColorRegex matches #rgb and #rrggbb colours.
var hexColorRegex = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// ValidateColor validates a palette colour. Only hex colours are accepted
// because they are understood by every output format (SVG, PNG and DOT).
func ValidateColor(color string) error {
	if color == "" {
		return New(ErrCodeInvalidPalette, "colour cannot be empty")
	}
	if !hexColorRegex.MatchString(color) {
		return New(ErrCodeInvalidPalette, "invalid colour %q (want #rgb or #rrggbb)", color)
	}
	return nil
}

// ValidateChoice checks that value is one of allowed. The code is returned on
// mismatch so callers can report format, viz type or strategy errors.
func ValidateChoice(code Code, what, value string, allowed []string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return New(code, "invalid %s %q (want one of %s)", what, value, strings.Join(allowed, ", "))
}

// ValidatePath validates a relative file path for safety.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// renderIDRegex matches the canonical UUID form used for stored renders.
var renderIDRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidateRenderID validates the id of a stored render.
func ValidateRenderID(id string) error {
	if !renderIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid render id %q", id)
	}
	return nil
}
