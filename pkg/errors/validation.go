package errors

import (
	"strings"
	"unicode"
)

// ValidateModuleID validates a module identifier supplied by a user or API
// client. Identifiers come from the module list (1-based line numbers by
// default) and are echoed into file names and log lines, so the rules are
// conservative:
//   - No empty identifiers
//   - No whitespace or control characters
//   - No path separators
//   - Maximum length of 128 characters
func ValidateModuleID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "module id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "module id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "module id contains invalid characters: %q", id)
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "module id cannot contain path separators: %q", id)
	}

	return nil
}

// ValidatePair validates the two module identifiers of a distance
// reduction request. The identifiers must be individually valid and distinct.
func ValidatePair(a, b string) error {
	if err := ValidateModuleID(a); err != nil {
		return err
	}
	if err := ValidateModuleID(b); err != nil {
		return err
	}
	if a == b {
		return New(ErrCodeInvalidInput, "cannot reduce distance of module %q to itself", a)
	}
	return nil
}

// ValidatePath validates an output path for safety.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
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

	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}
