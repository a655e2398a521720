//go:build darwin
// +build darwin

// macOS clipboard access via the system pbcopy/pbpaste commands, which
// front NSPasteboard. Change detection is owned by the local poller, so
// this implementation is a plain read/write pair.

package clipboard

import "fmt"

// DarwinClipboard implements clipboard access on macOS using pbcopy/pbpaste.
type DarwinClipboard struct {
	cmdConfig *CommandConfig
}

// newPlatformClipboard returns a macOS clipboard implementation.
// pbcopy/pbpaste ship with the OS, so this never fails.
func newPlatformClipboard() (Clipboard, error) {
	return &DarwinClipboard{
		cmdConfig: DefaultCommandConfig(),
	}, nil
}

// Read returns the current clipboard contents using pbpaste.
func (c *DarwinClipboard) Read() (string, error) {
	output, err := runCommand("pbpaste", nil, c.cmdConfig)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	if err := ValidateContent(output); err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	return string(output), nil
}

// Write sets the clipboard contents using pbcopy.
func (c *DarwinClipboard) Write(content string) error {
	contentBytes := []byte(content)
	if err := ValidateContent(contentBytes); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	if err := runCommandWithInput("pbcopy", nil, contentBytes, c.cmdConfig); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	return nil
}
