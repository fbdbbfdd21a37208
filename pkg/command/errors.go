package command

import "errors"

var (
	// ErrTooManyEntries indicates the table would overlap the status values.
	ErrTooManyEntries = errors.New("too many commands")
	// ErrEmptyName indicates a command without name.
	ErrEmptyName = errors.New("empty command name")
	// ErrInvalidName indicates a command name containing NUL.
	ErrInvalidName = errors.New("invalid command name")
	// ErrNameTooLong indicates the name does not fit the command field.
	ErrNameTooLong = errors.New("command name too long")
	// ErrNilHandler indicates a command without handler.
	ErrNilHandler = errors.New("nil handler")
	// ErrDuplicateName indicates the name is already registered.
	ErrDuplicateName = errors.New("duplicated command name")
)
