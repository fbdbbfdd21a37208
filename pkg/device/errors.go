package device

import "errors"

// Errors
var (
	ErrNullContent = errors.New("null command content")
	ErrNoPool      = errors.New("pool too small for frame and results")
)
