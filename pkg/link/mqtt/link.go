package mqtt

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/robotalks/ucl.go/pkg/frame"
	"github.com/robotalks/ucl.go/pkg/link"
)

// Link topics, relative to the device id.
const (
	TopicRx   = "rx"
	TopicDiag = "diag"
)

// Link feeds payloads of <id>/rx into a device source and publishes
// diagnostics on <id>/diag.
type Link struct {
	Queue    *Queue
	DeviceID string
	Device   link.SourceFactory

	seq uint64
}

// NewLink creates a Link.
func NewLink(q *Queue, deviceID string, dev link.SourceFactory) *Link {
	return &Link{Queue: q, DeviceID: deviceID, Device: dev}
}

// RxTopic is the topic carrying request bytes.
func (l *Link) RxTopic() string {
	return l.DeviceID + "/" + TopicRx
}

// DiagTopic is the topic carrying diagnostics.
func (l *Link) DiagTopic() string {
	return l.DeviceID + "/" + TopicDiag
}

// Name implements sched.Named.
func (l *Link) Name() string {
	return "mqtt:" + l.DeviceID
}

// Emit implements console.Sink. Messages are dropped while disconnected.
func (l *Link) Emit(msg string) {
	if !l.Queue.Client.IsConnected() {
		return
	}
	payload, err := EncodeDiag(l.DeviceID, msg, atomic.AddUint64(&l.seq, 1))
	if err != nil {
		glog.Errorf("mqtt: encode diag: %v", err)
		return
	}
	l.Queue.Pub(l.DiagTopic(), payload)
}

// Run implements sched.Runnable.
func (l *Link) Run(ctx context.Context) error {
	src, detach, err := l.attach()
	if err != nil {
		return err
	}
	defer detach()
	token := l.Queue.Connect()
	if token.Wait(); token.Error() != nil {
		return fmt.Errorf("mqtt connect error: %v", token.Error())
	}
	defer l.Queue.Close()
	glog.Infof("mqtt: listening on %q", l.Queue.TopicPrefix+l.RxTopic())
	return src.Run(ctx)
}

// attach subscribes the rx topic and returns the receiver fed by it.
func (l *Link) attach() (*frame.Receiver, func(), error) {
	pr, pw := io.Pipe()
	src, err := l.Device.NewSource(l.Name(), pr)
	if err != nil {
		return nil, nil, err
	}
	sub := l.Queue.Sub(l.RxTopic(), func(topic string, payload []byte) {
		if _, err := pw.Write(payload); err != nil {
			glog.V(2).Infof("mqtt: rx dropped: %v", err)
		}
	})
	return src, func() {
		sub.Close()
		pr.Close()
		l.Device.CloseSource(src)
	}, nil
}
