package frame

import (
	"bytes"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/robotalks/ucl.go/pkg/handoff"
	"github.com/robotalks/ucl.go/pkg/mem"
	"github.com/robotalks/ucl.go/pkg/xmltag"
)

// Config defines the framing parameters.
type Config struct {
	// ParentTag is the outer marker name, e.g. UCL.
	ParentTag string
	// PageBlocks is the number of pool blocks per receive/message buffer.
	PageBlocks int
	// ValidateAt is the cursor position where the opening marker is checked.
	ValidateAt int
}

// Defaults
const (
	DefaultParentTag  = "UCL"
	DefaultPageBlocks = 8
	DefaultValidateAt = 7
)

// DefaultConfig returns the reference framing parameters.
func DefaultConfig() Config {
	return Config{
		ParentTag:  DefaultParentTag,
		PageBlocks: DefaultPageBlocks,
		ValidateAt: DefaultValidateAt,
	}
}

// DropReason tells why an assembled or partial frame was discarded.
type DropReason int

// Drop reasons
const (
	DropRejected DropReason = iota
	DropOverflow
	DropBusy
	DropNoMemory
)

// String implements fmt.Stringer.
func (r DropReason) String() string {
	switch r {
	case DropRejected:
		return "rejected"
	case DropOverflow:
		return "overflow"
	case DropBusy:
		return "busy"
	case DropNoMemory:
		return "no memory"
	}
	return "unknown"
}

// Hooks are optional callbacks invoked from the producer context. They must
// not block.
type Hooks struct {
	OnFrame func()
	OnDrop  func(DropReason)
}

// Stats counts framing outcomes.
type Stats struct {
	Bytes         uint64
	Frames        uint64
	Rejected      uint64
	Overflows     uint64
	Dropped       uint64
	AllocFailures uint64
}

// Assembler incrementally builds one frame from received bytes. Feed must
// only be called from a single producer.
type Assembler struct {
	Hooks Hooks

	conf     Config
	pool     *mem.Pool
	mailbox  *handoff.Mailbox
	open     []byte
	close    []byte
	capacity int

	cursor int
	page   mem.Page

	stats Stats
}

// NewAssembler creates an Assembler publishing completed frames into mailbox.
func NewAssembler(conf Config, pool *mem.Pool, mailbox *handoff.Mailbox) (*Assembler, error) {
	if pool == nil || mailbox == nil {
		return nil, ErrNoResource
	}
	if conf.ParentTag == "" {
		return nil, ErrNoParentTag
	}
	if conf.PageBlocks <= 0 || conf.PageBlocks > pool.BlockCount() {
		return nil, ErrPageSize
	}
	a := &Assembler{
		conf:     conf,
		pool:     pool,
		mailbox:  mailbox,
		open:     xmltag.Marker(conf.ParentTag, xmltag.Open),
		close:    xmltag.Marker(conf.ParentTag, xmltag.Close),
		capacity: conf.PageBlocks * pool.BlockSize(),
	}
	if conf.ValidateAt < len(a.open) || conf.ValidateAt >= a.capacity {
		return nil, ErrValidateAt
	}
	if len(a.open)+len(a.close) >= a.capacity {
		return nil, ErrPageSize
	}
	return a, nil
}

// Capacity returns the maximum frame length in bytes.
func (a *Assembler) Capacity() int {
	return a.capacity
}

// Cursor returns the number of bytes held for the current frame, 0 when idle.
func (a *Assembler) Cursor() int {
	return a.cursor
}

// Stats returns a snapshot of the counters.
func (a *Assembler) Stats() Stats {
	return Stats{
		Bytes:         atomic.LoadUint64(&a.stats.Bytes),
		Frames:        atomic.LoadUint64(&a.stats.Frames),
		Rejected:      atomic.LoadUint64(&a.stats.Rejected),
		Overflows:     atomic.LoadUint64(&a.stats.Overflows),
		Dropped:       atomic.LoadUint64(&a.stats.Dropped),
		AllocFailures: atomic.LoadUint64(&a.stats.AllocFailures),
	}
}

// Feed consumes one received byte.
func (a *Assembler) Feed(b byte) {
	atomic.AddUint64(&a.stats.Bytes, 1)
	if a.cursor == 0 {
		a.start(b)
		return
	}
	if a.cursor == a.conf.ValidateAt && !bytes.HasPrefix(a.content(), a.open) {
		glog.V(2).Infof("frame: missing %s prefix, resync", a.open)
		a.abandon(DropRejected, &a.stats.Rejected)
		return
	}
	a.store(b)
	if content := a.content(); bytes.Contains(content, a.close) {
		// a short stream may close before reaching ValidateAt.
		if !bytes.HasPrefix(content, a.open) {
			a.abandon(DropRejected, &a.stats.Rejected)
			return
		}
		a.complete()
		return
	}
	if a.cursor >= a.capacity {
		glog.V(2).Infof("frame: overflow after %d bytes", a.cursor)
		a.abandon(DropOverflow, &a.stats.Overflows)
	}
}

// Reset discards any partial frame.
func (a *Assembler) Reset() {
	a.release()
}

func (a *Assembler) start(b byte) {
	a.page = a.pool.AllocatePages(a.conf.PageBlocks)
	if a.page.IsNil() {
		a.drop(DropNoMemory, &a.stats.AllocFailures)
		return
	}
	a.store(b)
}

func (a *Assembler) store(b byte) {
	buf := a.page.Bytes()
	buf[a.cursor] = b
	a.cursor++
	if a.cursor < len(buf) {
		buf[a.cursor] = 0
	}
}

// content is the received text up to the first NUL, as seen by the tag
// extractor.
func (a *Assembler) content() []byte {
	return xmltag.Content(a.page.Bytes()[:a.cursor])
}

func (a *Assembler) complete() {
	content := a.content()
	res := a.mailbox.Publish(func() (handoff.Message, bool) {
		pg := a.pool.AllocatePages(a.conf.PageBlocks)
		if pg.IsNil() {
			return handoff.Message{}, false
		}
		buf := pg.Bytes()
		n := copy(buf, content)
		if n < len(buf) {
			buf[n] = 0
		}
		return handoff.Message{Page: pg, Len: n}, true
	})
	a.release()
	switch res {
	case handoff.Published:
		atomic.AddUint64(&a.stats.Frames, 1)
		if fn := a.Hooks.OnFrame; fn != nil {
			fn()
		}
	case handoff.Busy:
		glog.Warningf("frame: consumer busy, frame dropped")
		a.drop(DropBusy, &a.stats.Dropped)
	case handoff.NoMemory:
		glog.Warningf("frame: no memory for message buffer, frame dropped")
		a.drop(DropNoMemory, &a.stats.AllocFailures)
	}
}

func (a *Assembler) abandon(reason DropReason, counter *uint64) {
	a.release()
	a.drop(reason, counter)
}

func (a *Assembler) drop(reason DropReason, counter *uint64) {
	atomic.AddUint64(counter, 1)
	if fn := a.Hooks.OnDrop; fn != nil {
		fn(reason)
	}
}

func (a *Assembler) release() {
	if !a.page.IsNil() {
		a.pool.Free(a.page)
	}
	a.page, a.cursor = mem.Page{}, 0
}
