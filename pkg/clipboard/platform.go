//go:build !darwin && !linux
// +build !darwin,!linux

// Fallback for platforms without a clipboard implementation.
//
// Supported platforms live in their own files:
//   - darwin.go: macOS via pbcopy/pbpaste
//   - linux.go: Linux via wl-clipboard, xsel, or xclip
//
// To add a platform, create a file with the matching build tag,
// implement newPlatformClipboard, and exclude the platform here.

package clipboard

// newPlatformClipboard returns an error on unsupported platforms.
func newPlatformClipboard() (Clipboard, error) {
	return nil, ErrNotSupported
}
