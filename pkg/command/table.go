package command

import (
	"bytes"
	"context"
	"fmt"

	"github.com/robotalks/ucl.go/pkg/xmltag"
)

// Index is a dispatch table index or, at and above NoCommandFound, a
// failure status sharing the same space.
type Index byte

// Failure sentinels.
const (
	NoCommandFound   = Index(xmltag.NoCommandFound)
	InvalidOperation = Index(xmltag.InvalidOperation)
	BadXML           = Index(xmltag.BadXML)
	IndexLimit       = Index(xmltag.StatusLimit)

	// MaxEntries bounds the table so every valid index stays below the
	// first status value.
	MaxEntries = int(xmltag.OK)
)

// Handler runs a resolved command. It must tolerate a nil result and must
// not keep the result after returning.
type Handler interface {
	HandleCommand(context.Context, *Result) error
}

// HandleCommandFunc is func form of Handler.
type HandleCommandFunc func(context.Context, *Result) error

// HandleCommand implements Handler.
func (f HandleCommandFunc) HandleCommand(ctx context.Context, res *Result) error {
	return f(ctx, res)
}

// Entry associates a command name with its handler.
type Entry struct {
	Name    string
	Handler Handler
}

// Table is an immutable, validated dispatch table.
type Table struct {
	entries []Entry
	index   map[string]Index
}

// NewTable validates entries and builds the table. Names must be non-empty,
// unique and shorter than maxNameLen (room for the NUL); handlers must be
// non-nil.
func NewTable(maxNameLen int, entries ...Entry) (*Table, error) {
	if len(entries) > MaxEntries {
		return nil, ErrTooManyEntries
	}
	t := &Table{
		entries: make([]Entry, len(entries)),
		index:   make(map[string]Index, len(entries)),
	}
	for n, entry := range entries {
		switch {
		case entry.Name == "":
			return nil, fmt.Errorf("entry %d: %v", n, ErrEmptyName)
		case maxNameLen > 0 && len(entry.Name) >= maxNameLen:
			return nil, fmt.Errorf("entry %q: %v", entry.Name, ErrNameTooLong)
		case entry.Handler == nil:
			return nil, fmt.Errorf("entry %q: %v", entry.Name, ErrNilHandler)
		case bytes.IndexByte([]byte(entry.Name), 0) >= 0:
			return nil, fmt.Errorf("entry %d: %v", n, ErrInvalidName)
		}
		if _, exist := t.index[entry.Name]; exist {
			return nil, fmt.Errorf("entry %q: %v", entry.Name, ErrDuplicateName)
		}
		t.entries[n] = entry
		t.index[entry.Name] = Index(n)
	}
	return t, nil
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entry returns the entry at idx.
func (t *Table) Entry(idx Index) (Entry, bool) {
	if int(idx) >= len(t.entries) {
		return Entry{}, false
	}
	return t.entries[idx], true
}

// Names lists command names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.entries))
	for n, entry := range t.entries {
		names[n] = entry.Name
	}
	return names
}

// Resolve looks up the NUL-terminated command text. A nil cmd is an invalid
// operation, an unknown one is NoCommandFound.
func (t *Table) Resolve(cmd []byte) Index {
	if cmd == nil {
		return InvalidOperation
	}
	if idx, ok := t.index[string(xmltag.Content(cmd))]; ok {
		return idx
	}
	return NoCommandFound
}
