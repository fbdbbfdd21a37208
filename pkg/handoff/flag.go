// Package handoff transfers completed messages from the byte producer to the
// cooperative consumer without blocking either side.
package handoff

import "sync/atomic"

// Flag states.
const (
	Unlocked int32 = 0
	Locked   int32 = 1
)

// Flag is a binary "take if free" primitive. It never blocks and provides
// no queuing: a second acquirer simply fails and retries later.
type Flag struct {
	state int32
}

// TryAcquire locks the flag if it is unlocked and reports whether it did.
func (f *Flag) TryAcquire() bool {
	return atomic.CompareAndSwapInt32(&f.state, Unlocked, Locked)
}

// Release unlocks the flag. Releasing an unlocked flag is a no-op.
func (f *Flag) Release() {
	atomic.CompareAndSwapInt32(&f.state, Locked, Unlocked)
}

// IsLocked probes the flag.
func (f *Flag) IsLocked() bool {
	return atomic.LoadInt32(&f.state) == Locked
}
