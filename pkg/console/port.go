package console

import (
	"io"
	"sync"

	"github.com/golang/glog"
)

// DefaultRetries is the default number of ready polls per byte.
const DefaultRetries = 1000

// Port writes diagnostics one byte at a time. Before each byte it polls
// Ready up to Retries times and silently gives up the rest of the message
// when the transmitter never becomes ready.
type Port struct {
	Writer  io.Writer
	Ready   func() bool
	Retries int

	lock sync.Mutex
}

// NewPort creates a Port which is always ready.
func NewPort(w io.Writer) *Port {
	return &Port{Writer: w, Retries: DefaultRetries}
}

// Emit implements Sink.
func (p *Port) Emit(msg string) {
	p.lock.Lock()
	defer p.lock.Unlock()
	buf := []byte{0}
	for i := 0; i < len(msg); i++ {
		if !p.waitReady() {
			glog.V(2).Infof("console: transmitter not ready, dropped %d bytes", len(msg)-i)
			return
		}
		buf[0] = msg[i]
		if _, err := p.Writer.Write(buf); err != nil {
			glog.V(2).Infof("console: write error: %v", err)
			return
		}
	}
}

func (p *Port) waitReady() bool {
	if p.Ready == nil {
		return true
	}
	retries := p.Retries
	if retries <= 0 {
		retries = 1
	}
	for n := 0; n < retries; n++ {
		if p.Ready() {
			return true
		}
	}
	return false
}
