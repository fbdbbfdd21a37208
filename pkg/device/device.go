// Package device assembles the command line: byte producers feeding frame
// assemblers and a cooperative consumer dispatching completed frames.
package device

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/robotalks/ucl.go/pkg/command"
	"github.com/robotalks/ucl.go/pkg/console"
	"github.com/robotalks/ucl.go/pkg/frame"
	"github.com/robotalks/ucl.go/pkg/handoff"
	"github.com/robotalks/ucl.go/pkg/mem"
)

// ResultBlocks is the size of the per-request results page: one block for
// the command and one for the parameter.
const ResultBlocks = 2

// Config defines memory and framing parameters of a Device.
type Config struct {
	PoolSize  int
	BlockSize int
	Frame     frame.Config
}

// DefaultConfig returns the reference sizing: a 1024-byte pool of 32-byte
// blocks and 8-block frames.
func DefaultConfig() Config {
	return Config{
		PoolSize:  1024,
		BlockSize: 32,
		Frame:     frame.DefaultConfig(),
	}
}

// Stats is a snapshot of all counters of a Device.
type Stats struct {
	Frame     frame.Stats
	Pool      mem.Stats
	Processed uint64
	NoResults uint64
}

// Device owns every resource of one command line instance. Every byte
// source gets its own Assembler; all of them publish into the same Mailbox,
// so only one frame is in flight at any time.
type Device struct {
	Pool       *mem.Pool
	Mailbox    *handoff.Mailbox
	Assembler  *frame.Assembler
	Table      *command.Table
	Dispatcher *command.Dispatcher

	conf       frame.Config
	assemblers []*frame.Assembler
	retired    frame.Stats
	lock       sync.Mutex
	onFrame    atomic.Value
	onDrop     atomic.Value

	processed uint64
	noResults uint64
}

// New creates a Device writing diagnostics to sink and dispatching to the
// given entries.
func New(conf Config, sink console.Sink, entries ...command.Entry) (*Device, error) {
	pool, err := mem.NewPool(conf.PoolSize, conf.BlockSize)
	if err != nil {
		return nil, err
	}
	// a published message and a receive buffer coexist with the results
	// and the tag scratch block.
	if 2*conf.Frame.PageBlocks+ResultBlocks+1 > pool.BlockCount() {
		return nil, ErrNoPool
	}
	table, err := command.NewTable(conf.BlockSize, entries...)
	if err != nil {
		return nil, err
	}
	d := &Device{
		Pool:    pool,
		Mailbox: &handoff.Mailbox{},
		Table:   table,
		conf:    conf.Frame,
	}
	if d.Assembler, err = d.NewAssembler(); err != nil {
		return nil, err
	}
	d.Dispatcher = command.NewDispatcher(pool, table, sink)
	glog.Infof("device: pool %d x %d bytes, frame %d bytes, commands %v",
		pool.BlockCount(), pool.BlockSize(), d.Assembler.Capacity(), table.Names())
	return d, nil
}

// NewAssembler creates an additional Assembler sharing the pool and the
// mailbox of the device.
func (d *Device) NewAssembler() (*frame.Assembler, error) {
	a, err := frame.NewAssembler(d.conf, d.Pool, d.Mailbox)
	if err != nil {
		return nil, err
	}
	a.Hooks = frame.Hooks{OnFrame: d.frameReady, OnDrop: d.frameDropped}
	d.lock.Lock()
	d.assemblers = append(d.assemblers, a)
	d.lock.Unlock()
	return a, nil
}

// NewSource creates a Receiver feeding r into its own Assembler.
func (d *Device) NewSource(name string, r io.Reader) (*frame.Receiver, error) {
	a, err := d.NewAssembler()
	if err != nil {
		return nil, err
	}
	return frame.NewReceiver(name, r, a), nil
}

// CloseSource discards the partial frame of a source created by NewSource
// and stops tracking its Assembler. The receiver must have stopped.
func (d *Device) CloseSource(r *frame.Receiver) {
	a, ok := r.Feeder.(*frame.Assembler)
	if !ok || a == d.Assembler {
		return
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	for n, assembler := range d.assemblers {
		if assembler == a {
			a.Reset()
			addFrameStats(&d.retired, a.Stats())
			d.assemblers = append(d.assemblers[:n], d.assemblers[n+1:]...)
			return
		}
	}
}

// OnFrame registers the wake-up callback invoked when a frame is published.
func (d *Device) OnFrame(fn func()) {
	d.onFrame.Store(fn)
}

// OnDrop registers the callback invoked when a frame is dropped.
func (d *Device) OnDrop(fn func(frame.DropReason)) {
	d.onDrop.Store(fn)
}

func (d *Device) frameReady() {
	if fn, ok := d.onFrame.Load().(func()); ok && fn != nil {
		fn()
	}
}

func (d *Device) frameDropped(r frame.DropReason) {
	if fn, ok := d.onDrop.Load().(func(frame.DropReason)); ok && fn != nil {
		fn(r)
	}
}

// Feed is the producer entry of the default Assembler. It must be called
// from one goroutine at a time.
func (d *Device) Feed(b byte) {
	d.Assembler.Feed(b)
}

// Poll is one consumer step. It returns true if a message was taken.
func (d *Device) Poll(ctx context.Context) bool {
	msg, ok := d.Mailbox.Receive()
	if !ok {
		return false
	}
	defer d.Mailbox.Release()
	defer d.Pool.Free(msg.Page)

	results := d.Pool.AllocatePages(ResultBlocks)
	if results.IsNil() {
		atomic.AddUint64(&d.noResults, 1)
		glog.Warningf("device: no memory for results, message dropped")
		return true
	}
	defer d.Pool.Free(results)

	bs := d.Pool.BlockSize()
	buf := results.Bytes()
	res := command.NewResult(buf[:bs:bs], buf[bs:2*bs])
	d.Dispatcher.ParseAndResolve(msg.Bytes(), res)
	d.Dispatcher.Execute(ctx, res)
	atomic.AddUint64(&d.processed, 1)
	return true
}

// Stats returns a snapshot of the counters, summed over all assemblers.
func (d *Device) Stats() Stats {
	s := Stats{
		Pool:      d.Pool.Stats(),
		Processed: atomic.LoadUint64(&d.processed),
		NoResults: atomic.LoadUint64(&d.noResults),
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	s.Frame = d.retired
	for _, a := range d.assemblers {
		addFrameStats(&s.Frame, a.Stats())
	}
	return s
}

func addFrameStats(s *frame.Stats, fs frame.Stats) {
	s.Bytes += fs.Bytes
	s.Frames += fs.Frames
	s.Rejected += fs.Rejected
	s.Overflows += fs.Overflows
	s.Dropped += fs.Dropped
	s.AllocFailures += fs.AllocFailures
}
