package frame

import (
	"context"
	"io"
	"os"

	"github.com/golang/glog"
)

// ByteFeeder consumes received bytes one at a time.
type ByteFeeder interface {
	Feed(b byte)
}

// Receiver reads a byte stream and feeds it to a ByteFeeder from a single
// goroutine, so bytes are processed strictly in arrival order.
type Receiver struct {
	Reader io.Reader
	Feeder ByteFeeder

	name string
}

// NewReceiver creates a Receiver.
func NewReceiver(name string, r io.Reader, feeder ByteFeeder) *Receiver {
	return &Receiver{Reader: r, Feeder: feeder, name: name}
}

// Name implements Named.
func (r *Receiver) Name() string {
	return r.name
}

// Run implements Runnable. It returns nil when the stream ends.
func (r *Receiver) Run(ctx context.Context) error {
	byteCh, errCh := make(chan byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go r.readLoop(subCtx, byteCh, errCh)
	for {
		select {
		case b := <-byteCh:
			r.Feeder.Feed(b)
		case err := <-errCh:
			if err == io.EOF {
				glog.Infof("receiver %s: end of stream", r.name)
				return nil
			}
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *Receiver) readLoop(ctx context.Context, byteCh chan byte, errCh chan error) {
	buf := make([]byte, 1)
	for {
		n, err := r.Reader.Read(buf)
		if n > 0 {
			select {
			case byteCh <- buf[0]:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			if os.IsTimeout(err) {
				continue
			}
			errCh <- err
			return
		}
	}
}
