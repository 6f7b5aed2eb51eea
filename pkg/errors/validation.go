package errors

import (
	"strings"
	"unicode"
)

// MaxElementIDLength bounds element ids accepted from manifests and the API.
const MaxElementIDLength = 256

// ValidateElementID checks an element id supplied by a user. Ids end up
// quoted inside exchange files and in URLs, so control characters and
// surrounding whitespace are rejected.
func ValidateElementID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidElementID, "element id cannot be empty")
	}
	if len(id) > MaxElementIDLength {
		return New(ErrCodeInvalidElementID, "element id too long (max %d characters)", MaxElementIDLength)
	}
	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidElementID, "element id %q has surrounding whitespace", id)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidElementID, "element id contains invalid control characters")
		}
	}
	return nil
}

// ValidateFilename validates an output filename for safety. It must be a
// simple basename without path components and must not be hidden.
func ValidateFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidFilename, "filename cannot be empty")
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidFilename, "filename cannot contain path separators")
	}
	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidFilename, "filename cannot be a hidden file")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidFilename, "filename contains invalid control characters")
		}
	}
	return nil
}

// ValidateChoice checks that value is one of allowed. kind names the
// setting in the error message, e.g. "format".
func ValidateChoice(kind, value string, allowed map[string]bool) error {
	if !allowed[value] {
		return New(ErrCodeInvalidFormat, "invalid %s: %q", kind, value)
	}
	return nil
}
