package engine

import (
	"sync"
	"time"

	"github.com/Veraticus/cliphub/pkg/clipboard"
	"github.com/Veraticus/cliphub/pkg/filter"
	"github.com/Veraticus/cliphub/pkg/history"
	"github.com/Veraticus/cliphub/pkg/registry"
)

// sentEvent is one recorded broadcast delivery.
type sentEvent struct {
	target string
	event  Broadcast
}

// mockBroadcaster implements Broadcaster for testing. Deliveries are
// recorded and also pushed to a channel so tests can wait for the
// engine's fire-and-forget sends.
type mockBroadcaster struct {
	mu     sync.Mutex
	sends  []sentEvent
	errFor map[string]error
	ch     chan sentEvent
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{
		errFor: make(map[string]error),
		ch:     make(chan sentEvent, 64),
	}
}

func (m *mockBroadcaster) Send(deviceID string, b Broadcast) error {
	m.mu.Lock()
	err := m.errFor[deviceID]
	if err == nil {
		m.sends = append(m.sends, sentEvent{target: deviceID, event: b})
	}
	m.mu.Unlock()

	if err != nil {
		return err
	}

	select {
	case m.ch <- sentEvent{target: deviceID, event: b}:
	default:
	}
	return nil
}

// failFor makes sends to deviceID fail with err.
func (m *mockBroadcaster) failFor(deviceID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errFor[deviceID] = err
}

// sentTo returns all deliveries made to deviceID.
func (m *mockBroadcaster) sentTo(deviceID string) []Broadcast {
	m.mu.Lock()
	defer m.mu.Unlock()

	var events []Broadcast
	for _, s := range m.sends {
		if s.target == deviceID {
			events = append(events, s.event)
		}
	}
	return events
}

// total returns the number of successful deliveries.
func (m *mockBroadcaster) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sends)
}

// waitSends blocks until n deliveries have been observed or the timeout
// expires, returning the deliveries seen.
func (m *mockBroadcaster) waitSends(n int, timeout time.Duration) []sentEvent {
	deadline := time.After(timeout)
	var got []sentEvent
	for len(got) < n {
		select {
		case s := <-m.ch:
			got = append(got, s)
		case <-deadline:
			return got
		}
	}
	return got
}

// testFixture bundles an engine with its collaborators.
type testFixture struct {
	engine      *Engine
	clipboard   *clipboard.MockClipboard
	broadcaster *mockBroadcaster
	registry    *registry.Registry
	history     *history.Store
}

// newTestFixture builds an engine with mock collaborators. Overrides
// mutate the config before construction.
func newTestFixture(overrides ...func(*Config)) *testFixture {
	clip := clipboard.NewMockClipboard()
	broadcaster := newMockBroadcaster()
	reg := registry.New()
	hist := history.New(10)
	flt, err := filter.New(filter.Config{})
	if err != nil {
		panic(err)
	}

	config := &Config{
		Clipboard:   clip,
		Broadcaster: broadcaster,
		Registry:    reg,
		History:     hist,
		Filter:      flt,
	}
	for _, override := range overrides {
		override(config)
	}

	eng, err := New(config)
	if err != nil {
		panic(err)
	}

	return &testFixture{
		engine:      eng,
		clipboard:   clip,
		broadcaster: broadcaster,
		registry:    reg,
		history:     hist,
	}
}
