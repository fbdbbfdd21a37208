package mem

import (
	"sync"
)

// Page is an owned run of contiguous blocks allocated from a Pool.
// The zero Page means no allocation.
type Page struct {
	pool   *Pool
	start  int
	blocks int
}

// IsNil indicates the page holds no blocks.
func (p Page) IsNil() bool {
	return p.pool == nil || p.blocks == 0
}

// Index returns the index of the first block.
func (p Page) Index() int {
	return p.start
}

// Blocks returns the number of blocks in the page.
func (p Page) Blocks() int {
	return p.blocks
}

// Bytes returns the backing storage. Capacity is clamped to the page so
// appends never spill into a neighbouring block.
func (p Page) Bytes() []byte {
	if p.IsNil() {
		return nil
	}
	from, to := p.start*p.pool.blockSize, (p.start+p.blocks)*p.pool.blockSize
	return p.pool.storage[from:to:to]
}

// Stats is a snapshot of pool usage.
type Stats struct {
	Blocks   int
	Free     int
	Allocs   uint64
	Failures uint64
}

// Pool is a fixed-capacity arena divided into equal-size blocks.
type Pool struct {
	blockSize int
	storage   []byte
	used      []bool

	allocs   uint64
	failures uint64
	lock     sync.Mutex
}

// NewPool creates and initializes a Pool.
func NewPool(capacity, blockSize int) (*Pool, error) {
	if blockSize <= 0 || capacity < blockSize {
		return nil, ErrInvalidSize
	}
	if capacity%blockSize != 0 {
		return nil, ErrUnaligned
	}
	p := &Pool{
		blockSize: blockSize,
		storage:   make([]byte, capacity),
		used:      make([]bool, capacity/blockSize),
	}
	p.Init()
	return p, nil
}

// BlockSize returns the size of a single block in bytes.
func (p *Pool) BlockSize() int {
	return p.blockSize
}

// BlockCount returns the number of blocks.
func (p *Pool) BlockCount() int {
	return len(p.used)
}

// Init clears all storage and marks every block free.
func (p *Pool) Init() {
	p.lock.Lock()
	defer p.lock.Unlock()
	for i := range p.storage {
		p.storage[i] = 0
	}
	for i := range p.used {
		p.used[i] = false
	}
	p.allocs, p.failures = 0, 0
}

// Allocate returns the first free block, or the zero Page if the pool is
// exhausted.
func (p *Pool) Allocate() Page {
	p.lock.Lock()
	defer p.lock.Unlock()
	for i, used := range p.used {
		if !used {
			p.used[i] = true
			p.allocs++
			return Page{pool: p, start: i, blocks: 1}
		}
	}
	p.failures++
	return Page{}
}

// Free releases the blocks owned by pg. Pages that do not belong to this
// pool, or fall outside of it, are ignored.
func (p *Pool) Free(pg Page) {
	p.FreePages(pg, pg.blocks)
}

// AllocatePages returns n physically contiguous blocks, or the zero Page
// when no such run exists. Nothing is marked until the whole run is known
// to be free.
func (p *Pool) AllocatePages(n int) Page {
	p.lock.Lock()
	defer p.lock.Unlock()
	if n <= 0 || n > len(p.used) {
		p.failures++
		return Page{}
	}
	for start := 0; start+n <= len(p.used); start++ {
		free := true
		for off := 0; off < n; off++ {
			if p.used[start+off] {
				free = false
				break
			}
		}
		if !free {
			continue
		}
		for off := 0; off < n; off++ {
			p.used[start+off] = true
		}
		p.allocs++
		return Page{pool: p, start: start, blocks: n}
	}
	p.failures++
	return Page{}
}

// FreePages clears n blocks starting at the first block of pg, only if the
// whole range is inside the pool.
func (p *Pool) FreePages(pg Page, n int) {
	if pg.pool != p || n <= 0 {
		return
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	if pg.start < 0 || pg.start+n > len(p.used) {
		return
	}
	for off := 0; off < n; off++ {
		p.used[pg.start+off] = false
	}
}

// FreeBlocks counts unoccupied blocks.
func (p *Pool) FreeBlocks() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.freeBlocks()
}

// Stats returns a usage snapshot.
func (p *Pool) Stats() Stats {
	p.lock.Lock()
	defer p.lock.Unlock()
	return Stats{
		Blocks:   len(p.used),
		Free:     p.freeBlocks(),
		Allocs:   p.allocs,
		Failures: p.failures,
	}
}

func (p *Pool) freeBlocks() (n int) {
	for _, used := range p.used {
		if !used {
			n++
		}
	}
	return
}
