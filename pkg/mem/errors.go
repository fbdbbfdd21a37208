package mem

import "errors"

var (
	// ErrInvalidSize indicates the pool or block size is not usable.
	ErrInvalidSize = errors.New("invalid pool size")
	// ErrUnaligned indicates the capacity is not a multiple of the block size.
	ErrUnaligned = errors.New("capacity not a multiple of block size")
)
