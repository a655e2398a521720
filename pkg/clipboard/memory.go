package clipboard

import "sync"

// MemoryClipboard is an in-process clipboard with no OS integration.
// It backs headless deployments, where the hub relays between devices
// without a local display server, and machines with no clipboard tool
// installed.
type MemoryClipboard struct {
	mu      sync.Mutex
	content string
}

// NewMemoryClipboard creates an empty in-memory clipboard.
func NewMemoryClipboard() *MemoryClipboard {
	return &MemoryClipboard{}
}

// Read returns the stored content.
func (m *MemoryClipboard) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.content, nil
}

// Write stores new content after validation.
func (m *MemoryClipboard) Write(content string) error {
	if err := ValidateContent([]byte(content)); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = content
	return nil
}
