package errors

import (
	"strings"
	"unicode"
)

// ValidateName validates a layout or namespace name.
//
// Names are used as cache keys, URL path segments and YAML document keys, so
// the rules are conservative:
//   - No empty names
//   - No control characters or whitespace
//   - No path separators or parent directory sequences
//   - No ':' (reserved as the field namespace separator)
//   - Maximum length of 128 characters
func ValidateName(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "%s name cannot be empty", kind)
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "%s name too long (max 128 characters)", kind)
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "%s name %q contains whitespace or control characters", kind, name)
		}
	}

	for _, pattern := range []string{"..", "/", "\\", ":"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidInput, "%s name %q contains invalid characters: %q", kind, name, pattern)
		}
	}

	return nil
}
