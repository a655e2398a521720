package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebounceSlotArmTakeCancel(t *testing.T) {
	var slot debounceSlot
	assert.False(t, slot.Armed())

	_, ok := slot.Take()
	assert.False(t, ok)

	slot.Arm(Update{Content: "a"}, time.Hour, func() {})
	assert.True(t, slot.Armed())

	update, ok := slot.Take()
	require.True(t, ok)
	assert.Equal(t, "a", update.Content)
	assert.False(t, slot.Armed())

	slot.Arm(Update{Content: "b"}, time.Hour, func() {})
	slot.Cancel()
	assert.False(t, slot.Armed())
	_, ok = slot.Take()
	assert.False(t, ok)
}

func TestDebounceSlotReplacement(t *testing.T) {
	var slot debounceSlot
	var firstFired atomic.Bool

	// Arming again replaces the pending update and cancels its timer:
	// only the newest update survives.
	slot.Arm(Update{Content: "old"}, 20*time.Millisecond, func() { firstFired.Store(true) })
	slot.Arm(Update{Content: "new"}, time.Hour, func() {})

	update, ok := slot.Take()
	require.True(t, ok)
	assert.Equal(t, "new", update.Content)

	time.Sleep(50 * time.Millisecond)
	assert.False(t, firstFired.Load(), "replaced timer must not fire")
}

func TestDebounceSlotFires(t *testing.T) {
	var slot debounceSlot
	fired := make(chan struct{})

	slot.Arm(Update{Content: "x"}, 10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("armed timer did not fire")
	}
}
