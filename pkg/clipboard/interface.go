// Package clipboard provides access to the OS clipboard as an injected
// capability. The sync engine and the local poller are the only consumers;
// both treat read and write failures as recoverable.
package clipboard

import "errors"

var (
	// ErrNotSupported indicates the platform has no clipboard support.
	ErrNotSupported = errors.New("clipboard: platform not supported")

	// ErrReadFailed indicates the OS clipboard could not be read.
	ErrReadFailed = errors.New("clipboard: read failed")

	// ErrWriteFailed indicates the OS clipboard could not be written.
	ErrWriteFailed = errors.New("clipboard: write failed")

	// ErrContentTooLarge indicates content exceeds MaxClipboardSize.
	ErrContentTooLarge = errors.New("clipboard: content too large")
)

// Clipboard defines platform-specific clipboard access. Implementations
// must bound the underlying OS call: a stalled clipboard helper is
// reported as an error rather than blocking the caller indefinitely.
type Clipboard interface {
	// Read returns the current clipboard contents.
	Read() (string, error)

	// Write sets the clipboard contents.
	Write(content string) error
}

// NewPlatformClipboard returns a clipboard implementation for the current
// platform.
func NewPlatformClipboard() (Clipboard, error) {
	return newPlatformClipboard()
}
