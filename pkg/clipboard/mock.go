package clipboard

import "sync"

// MockClipboard implements an in-memory clipboard for testing. Reads and
// writes can be made to fail on demand, and all writes are recorded.
type MockClipboard struct {
	mu       sync.Mutex
	content  string
	writes   []string
	readErr  error
	writeErr error
}

// NewMockClipboard creates a new mock clipboard.
func NewMockClipboard() *MockClipboard {
	return &MockClipboard{}
}

// Read returns the current mock clipboard contents.
func (m *MockClipboard) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.readErr != nil {
		return "", m.readErr
	}
	return m.content, nil
}

// Write sets the mock clipboard contents and records the write.
func (m *MockClipboard) Write(content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return m.writeErr
	}

	m.content = content
	m.writes = append(m.writes, content)
	return nil
}

// SetContent sets the clipboard contents without recording a write,
// simulating an external copy.
func (m *MockClipboard) SetContent(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = content
}

// SetReadError makes subsequent reads fail with err.
func (m *MockClipboard) SetReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// SetWriteError makes subsequent writes fail with err.
func (m *MockClipboard) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// Writes returns a copy of all recorded writes in order.
func (m *MockClipboard) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	writes := make([]string, len(m.writes))
	copy(writes, m.writes)
	return writes
}
