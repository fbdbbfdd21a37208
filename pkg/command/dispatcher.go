package command

import (
	"context"

	"github.com/golang/glog"

	"github.com/robotalks/ucl.go/pkg/console"
	"github.com/robotalks/ucl.go/pkg/mem"
	"github.com/robotalks/ucl.go/pkg/xmltag"
)

// Default tags of the wire format.
const (
	TagCommand = "CMD"
	TagParam   = "PARAM"
)

// Dispatcher parses a frame into a Result and runs the resolved handler.
type Dispatcher struct {
	Pool     *mem.Pool
	Table    *Table
	Sink     console.Sink
	CmdTag   string
	ParamTag string
}

// NewDispatcher creates a Dispatcher with the default tags.
func NewDispatcher(pool *mem.Pool, table *Table, sink console.Sink) *Dispatcher {
	return &Dispatcher{
		Pool:     pool,
		Table:    table,
		Sink:     sink,
		CmdTag:   TagCommand,
		ParamTag: TagParam,
	}
}

// ParseAndResolve extracts the command, resolves it and, only if that
// succeeds, extracts the parameter. The first failing step leaves its
// status in res.Index.
func (d *Dispatcher) ParseAndResolve(buf []byte, res *Result) {
	if res == nil {
		return
	}
	res.reset()
	if buf == nil {
		return
	}
	if _, status := xmltag.ExtractValue(d.Pool, buf, d.CmdTag, res.cmd); status != xmltag.OK {
		res.Index = Index(status)
		return
	}
	res.Index = d.Table.Resolve(res.cmd)
	if !res.IsResolved() {
		return
	}
	if _, status := xmltag.ExtractValue(d.Pool, buf, d.ParamTag, res.param); status != xmltag.OK {
		res.Index = Index(status)
	}
}

// Execute invokes the handler for a resolved result exactly once, or emits
// the diagnostic for the failure index.
func (d *Dispatcher) Execute(ctx context.Context, res *Result) {
	switch {
	case res == nil:
		d.emit(MsgInvalidOperation)
	case int(res.Index) < d.Table.Len():
		entry := d.Table.entries[res.Index]
		glog.V(2).Infof("dispatch %s(%q)", entry.Name, res.Param())
		if err := entry.Handler.HandleCommand(ctx, res); err != nil {
			glog.Warningf("command %s failed: %v", entry.Name, err)
			d.emit(MsgCommandFailed)
		}
	case res.Index >= NoCommandFound && res.Index < IndexLimit:
		d.emit(StatusMessage(res.Index))
	default:
		d.emit(MsgInvalidOperation)
	}
}

func (d *Dispatcher) emit(msg string) {
	if d.Sink != nil {
		d.Sink.Emit(msg)
	}
}
