// Package link defines what remote transports need from a device.
package link

import (
	"io"

	"github.com/robotalks/ucl.go/pkg/frame"
)

// SourceFactory creates independent byte sources sharing one device.
type SourceFactory interface {
	NewSource(name string, r io.Reader) (*frame.Receiver, error)
	CloseSource(r *frame.Receiver)
}
