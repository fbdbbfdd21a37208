package frame

import "errors"

var (
	// ErrNoResource indicates a missing pool or mailbox.
	ErrNoResource = errors.New("pool and mailbox required")
	// ErrNoParentTag indicates the outer marker name is empty.
	ErrNoParentTag = errors.New("parent tag required")
	// ErrPageSize indicates the page cannot hold a minimal frame or exceeds the pool.
	ErrPageSize = errors.New("invalid page size")
	// ErrValidateAt indicates the validation position cannot see the whole opening marker.
	ErrValidateAt = errors.New("invalid validation position")
)
