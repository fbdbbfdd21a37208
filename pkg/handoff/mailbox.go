package handoff

import (
	"sync/atomic"

	"github.com/robotalks/ucl.go/pkg/mem"
)

// Message is a completed frame owned by whoever holds it.
type Message struct {
	Page mem.Page
	Len  int
}

// Bytes returns the frame content without the terminating NUL.
func (m Message) Bytes() []byte {
	if b := m.Page.Bytes(); m.Len <= len(b) {
		return b[:m.Len]
	}
	return nil
}

// PublishResult reports the outcome of Mailbox.Publish.
type PublishResult int

const (
	// Published means the message now belongs to the consumer.
	Published PublishResult = iota
	// Busy means the consumer still holds the previous message.
	Busy
	// NoMemory means the fill function could not allocate the message.
	NoMemory
)

// String implements fmt.Stringer.
func (r PublishResult) String() string {
	switch r {
	case Published:
		return "published"
	case Busy:
		return "busy"
	case NoMemory:
		return "no memory"
	}
	return "unknown"
}

// Mailbox holds at most one message in flight between producer and consumer.
// Acquiring its Flag is the single point where ownership moves.
type Mailbox struct {
	flag  Flag
	ready int32
	msg   Message
}

// Publish acquires the flag and fills the mailbox using fill, which is only
// called when the flag was free. The message is fully written before the
// consumer can observe it.
func (m *Mailbox) Publish(fill func() (Message, bool)) PublishResult {
	if !m.flag.TryAcquire() {
		return Busy
	}
	msg, ok := fill()
	if !ok {
		m.flag.Release()
		return NoMemory
	}
	m.msg = msg
	atomic.StoreInt32(&m.ready, 1)
	return Published
}

// Receive takes the published message. It returns false if nothing is ready
// or the message was already taken.
func (m *Mailbox) Receive() (Message, bool) {
	if !m.flag.IsLocked() || !atomic.CompareAndSwapInt32(&m.ready, 1, 0) {
		return Message{}, false
	}
	return m.msg, true
}

// Release gives the mailbox back to the producer. The consumer must have
// freed the received message first.
func (m *Mailbox) Release() {
	if atomic.LoadInt32(&m.ready) != 0 {
		return
	}
	m.msg = Message{}
	m.flag.Release()
}

// IsLocked indicates the mailbox is held by the consumer.
func (m *Mailbox) IsLocked() bool {
	return m.flag.IsLocked()
}

// Flag exposes the underlying flag.
func (m *Mailbox) Flag() *Flag {
	return &m.flag
}
