// Package mem provides the fixed-block memory pool backing every message buffer.
package mem

// The pool never grows. Allocations are first-fit linear scans over the
// occupancy table, so their cost is bounded by the block count and does not
// depend on the contents of the pool.
//
// A multi-block page is always physically contiguous, which lets callers
// treat an in-flight frame as a flat byte slice.
