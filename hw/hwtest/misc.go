package hwtest

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrOutOfMemory is returned by Allocator once its limit is reached.
var ErrOutOfMemory = errors.New("hwtest: out of memory")

// Allocator tracks outstanding bytes against an optional limit.
type Allocator struct {
	mu     sync.Mutex
	Limit  int // 0 => unlimited
	used   int
	allocs int
	frees  int
}

func (a *Allocator) Alloc(size int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Limit > 0 && a.used+size > a.Limit {
		return ErrOutOfMemory
	}
	a.used += size
	a.allocs++
	return nil
}

func (a *Allocator) Free(size int) {
	a.mu.Lock()
	a.used -= size
	a.frees++
	a.mu.Unlock()
}

// Outstanding reports allocations not yet freed.
func (a *Allocator) Outstanding() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocs - a.frees
}

// Counter is a fake cycle counter advancing by Step on every read.
type Counter struct {
	n    atomic.Uint64
	Step uint64
}

func (c *Counter) Set(v uint64) { c.n.Store(v) }

func (c *Counter) Cycles() uint64 {
	if c.Step == 0 {
		return c.n.Load()
	}
	return c.n.Add(c.Step) - c.Step
}
