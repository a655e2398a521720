// debounce.go implements the single-slot deferred update used by rate
// limiting. The slot is a two-state machine: Empty, or Armed with
// exactly one pending update and the timer that will re-submit it.
//
// Arming an already-armed slot cancels the previous timer and replaces
// the pending update: within the coalescing window only the most recent
// update survives. Arrival order is the only tiebreak; wall-clock
// timestamps from devices are not compared.

package engine

import "time"

// debounceSlot holds at most one deferred update.
// All methods must be called with the engine lock held.
type debounceSlot struct {
	pending *Update
	timer   *time.Timer
}

// Arm schedules update to fire after delay, replacing any pending
// update and cancelling its timer.
func (d *debounceSlot) Arm(update Update, delay time.Duration, fire func()) {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = &update
	d.timer = time.AfterFunc(delay, fire)
}

// Take removes and returns the pending update, disarming the slot.
func (d *debounceSlot) Take() (Update, bool) {
	if d.pending == nil {
		return Update{}, false
	}
	update := *d.pending
	d.pending = nil
	d.timer = nil
	return update, true
}

// Cancel stops the timer and clears the slot.
func (d *debounceSlot) Cancel() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
}

// Armed reports whether an update is pending.
func (d *debounceSlot) Armed() bool {
	return d.pending != nil
}
