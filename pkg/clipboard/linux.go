//go:build linux
// +build linux

package clipboard

import (
	"fmt"
	"os/exec"
)

// LinuxClipboard implements clipboard access on Linux. It shells out to
// the first available clipboard tool, preferring Wayland's wl-clipboard
// over the X11 tools.
type LinuxClipboard struct {
	tool      clipboardTool
	cmdConfig *CommandConfig
}

type clipboardTool struct {
	name      string
	readCmd   string
	readArgs  []string
	writeCmd  string
	writeArgs []string
}

// Supported clipboard tools in order of preference.
var clipboardTools = []clipboardTool{
	{
		name:     "wl-clipboard",
		readCmd:  "wl-paste",
		readArgs: []string{"--no-newline"},
		writeCmd: "wl-copy",
	},
	{
		name:      "xsel",
		readCmd:   "xsel",
		readArgs:  []string{"--output", "--clipboard"},
		writeCmd:  "xsel",
		writeArgs: []string{"--input", "--clipboard"},
	},
	{
		name:      "xclip",
		readCmd:   "xclip",
		readArgs:  []string{"-out", "-selection", "clipboard"},
		writeCmd:  "xclip",
		writeArgs: []string{"-in", "-selection", "clipboard"},
	},
}

// newPlatformClipboard returns a Linux clipboard implementation.
func newPlatformClipboard() (Clipboard, error) {
	for _, tool := range clipboardTools {
		if _, err := exec.LookPath(tool.readCmd); err != nil {
			continue
		}
		if _, err := exec.LookPath(tool.writeCmd); err != nil {
			continue
		}
		return &LinuxClipboard{
			tool:      tool,
			cmdConfig: DefaultCommandConfig(),
		}, nil
	}

	return nil, fmt.Errorf("no clipboard tool found (install wl-clipboard, xsel, or xclip)")
}

// Read returns the current clipboard contents.
func (c *LinuxClipboard) Read() (string, error) {
	output, err := runCommand(c.tool.readCmd, c.tool.readArgs, c.cmdConfig)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrReadFailed, c.tool.name, err)
	}

	if err := ValidateContent(output); err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	return string(output), nil
}

// Write sets the clipboard contents.
func (c *LinuxClipboard) Write(content string) error {
	contentBytes := []byte(content)
	if err := ValidateContent(contentBytes); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	if err := runCommandWithInput(c.tool.writeCmd, c.tool.writeArgs, contentBytes, c.cmdConfig); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFailed, c.tool.name, err)
	}

	return nil
}
