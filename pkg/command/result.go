package command

import (
	"github.com/robotalks/ucl.go/pkg/xmltag"
)

// Result is a parsed request. The command and parameter fields are
// NUL-terminated buffers owned by the caller, usually carved from a pool
// page, and are only valid until the caller frees them.
type Result struct {
	Index Index

	cmd   []byte
	param []byte
}

// NewResult binds the field buffers.
func NewResult(cmd, param []byte) *Result {
	return &Result{Index: InvalidOperation, cmd: cmd, param: param}
}

// Command returns the extracted command text.
func (r *Result) Command() string {
	return string(xmltag.Content(r.cmd))
}

// Param returns the extracted parameter text.
func (r *Result) Param() string {
	return string(xmltag.Content(r.param))
}

// IsResolved indicates Index refers to a dispatch table entry.
func (r *Result) IsResolved() bool {
	return r.Index < Index(MaxEntries)
}

func (r *Result) reset() {
	r.Index = InvalidOperation
	if len(r.cmd) > 0 {
		r.cmd[0] = 0
	}
	if len(r.param) > 0 {
		r.param[0] = 0
	}
}
