// Package xmltag locates and extracts tag-delimited fields from a NUL-terminated frame.
package xmltag

import (
	"bytes"

	"github.com/robotalks/ucl.go/pkg/mem"
)

// Kind selects the opening or closing form of a tag.
type Kind byte

const (
	// Open is the <NAME> form.
	Open Kind = iota
	// Close is the </NAME> form.
	Close
)

// Status is the outcome of an extraction. Values share the index space of
// command.Index, above any valid dispatch table index.
type Status byte

// Statuses.
const (
	OK               Status = 0xFA
	NoCommandFound   Status = 0xFB
	InvalidOperation Status = 0xFC
	BadXML           Status = 0xFD
	StatusLimit      Status = 0xFF
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case NoCommandFound:
		return "no command found"
	case InvalidOperation:
		return "invalid operation"
	case BadXML:
		return "bad xml"
	}
	return "unknown"
}

// Content returns buf up to the first NUL.
func Content(buf []byte) []byte {
	if n := bytes.IndexByte(buf, 0); n >= 0 {
		return buf[:n]
	}
	return buf
}

// FindTag returns the index of the first occurrence of tag in its open or
// close form, or -1. The search pattern is built in one pool block that is
// freed before returning; an exhausted pool or a tag too long for a block
// yields -1.
func FindTag(pool *mem.Pool, buf []byte, tag string, kind Kind) int {
	if pool == nil || buf == nil || tag == "" || kind > Close {
		return -1
	}
	scratch := pool.Allocate()
	if scratch.IsNil() {
		return -1
	}
	defer pool.Free(scratch)

	pattern := scratch.Bytes()[:0]
	pattern = append(pattern, '<')
	if kind == Close {
		pattern = append(pattern, '/')
	}
	if len(pattern)+len(tag)+1 > cap(pattern) {
		return -1
	}
	pattern = append(pattern, tag...)
	pattern = append(pattern, '>')
	return bytes.Index(Content(buf), pattern)
}

// ExtractValue copies the text between <tag> and </tag> into out and
// NUL-terminates it. It returns the value length on OK.
func ExtractValue(pool *mem.Pool, buf []byte, tag string, out []byte) (int, Status) {
	if pool == nil || buf == nil || tag == "" || len(out) == 0 {
		return 0, InvalidOperation
	}
	end := FindTag(pool, buf, tag, Close)
	start := FindTag(pool, buf, tag, Open)
	if end < 0 || start < 0 || end <= start {
		return 0, BadXML
	}
	start += len(tag) + 2
	n := end - start
	if n < 0 || n >= len(out) {
		return 0, BadXML
	}
	copy(out, buf[start:end])
	out[n] = 0
	return n, OK
}
