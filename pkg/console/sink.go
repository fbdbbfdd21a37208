// Package console provides the best-effort diagnostic output path.
package console

import (
	"sync"
)

// Sink receives diagnostic messages.
type Sink interface {
	Emit(msg string)
}

// EmitFunc is func form of Sink.
type EmitFunc func(msg string)

// Emit implements Sink.
func (f EmitFunc) Emit(msg string) {
	f(msg)
}

// Sinks fans a message out to every sink.
type Sinks []Sink

// Emit implements Sink.
func (s Sinks) Emit(msg string) {
	for _, sink := range s {
		if sink != nil {
			sink.Emit(msg)
		}
	}
}

// Recorder keeps every emitted message, mostly for tests and the shell.
type Recorder struct {
	lock sync.Mutex
	msgs []string
}

// Emit implements Sink.
func (r *Recorder) Emit(msg string) {
	r.lock.Lock()
	r.msgs = append(r.msgs, msg)
	r.lock.Unlock()
}

// Messages returns a copy of recorded messages.
func (r *Recorder) Messages() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]string(nil), r.msgs...)
}

// Take returns recorded messages and clears them.
func (r *Recorder) Take() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	msgs := r.msgs
	r.msgs = nil
	return msgs
}
