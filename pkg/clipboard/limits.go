package clipboard

import (
	"fmt"
	"unicode/utf8"
)

const (
	// MaxClipboardSize is the hard cap on clipboard content (10MB).
	// The sync engine applies its own, much smaller, content-length
	// policy; this limit only protects the process from pathological
	// clipboard states.
	MaxClipboardSize = 10 * 1024 * 1024
)

// ValidateContent checks that clipboard content is usable text within
// the size cap.
func ValidateContent(content []byte) error {
	if len(content) > MaxClipboardSize {
		return fmt.Errorf("%w: %d bytes (max: %d)",
			ErrContentTooLarge, len(content), MaxClipboardSize)
	}

	if !utf8.Valid(content) {
		return fmt.Errorf("clipboard content contains invalid UTF-8")
	}

	return nil
}
