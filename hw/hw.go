// Package hw is the boundary between timer drivers and the platform: mapped
// register windows, x86 port I/O, allocation accounting and free-running
// reference counters. Drivers only see these interfaces; platforms supply the
// implementations (hw/linuxhw, hw/mcuhw, hw/hwtest).
package hw

import "ltimer-go/types"

// Region is a mapped device-register window addressed by byte offset.
// Accesses are uncached and never reordered by the implementation.
type Region interface {
	Read32(off uintptr) uint32
	Write32(off uintptr, v uint32)
	Read64(off uintptr) uint64
	Write64(off uintptr, v uint64)
}

// Mapper maps physical register regions into the caller's address space.
type Mapper interface {
	Map(r types.PmemRegion, cached bool) (Region, error)
	Unmap(r types.PmemRegion, m Region)
}

// Ports is x86 I/O port access.
type Ports interface {
	In8(port uint16) (uint8, error)
	Out8(port uint16, v uint8) error
}

// Allocator accounts for per-instance state blocks. A nil Allocator is
// unbounded.
type Allocator interface {
	Alloc(size int) error
	Free(size int)
}

// CycleCounter is a free-running monotonic counter such as the x86 TSC.
type CycleCounter interface {
	Cycles() uint64
}

// CycleFunc adapts a function to CycleCounter.
type CycleFunc func() uint64

func (f CycleFunc) Cycles() uint64 { return f() }

// Sub returns a view of r shifted by off bytes.
func Sub(r Region, off uintptr) Region {
	if off == 0 {
		return r
	}
	return sub{r: r, off: off}
}

type sub struct {
	r   Region
	off uintptr
}

func (s sub) Read32(off uintptr) uint32     { return s.r.Read32(s.off + off) }
func (s sub) Write32(off uintptr, v uint32) { s.r.Write32(s.off+off, v) }
func (s sub) Read64(off uintptr) uint64     { return s.r.Read64(s.off + off) }
func (s sub) Write64(off uintptr, v uint64) { s.r.Write64(s.off+off, v) }

// Modify32 performs a read-modify-write: bits in clear are cleared, then bits
// in set are set.
func Modify32(r Region, off uintptr, set, clear uint32) {
	v := r.Read32(off)
	r.Write32(off, (v&^clear)|set)
}

// Modify64 is Modify32 for 64-bit registers.
func Modify64(r Region, off uintptr, set, clear uint64) {
	v := r.Read64(off)
	r.Write64(off, (v&^clear)|set)
}

// AllocState charges size against a (possibly nil) allocator.
func AllocState(a Allocator, size int) error {
	if a == nil {
		return nil
	}
	return a.Alloc(size)
}

// FreeState releases a charge made by AllocState.
func FreeState(a Allocator, size int) {
	if a != nil {
		a.Free(size)
	}
}
