//go:build tinygo

// Package mcuhw is the hw implementation for bare-metal targets where
// physical addresses are directly addressable.
package mcuhw

import (
	"runtime/volatile"
	"unsafe"

	"ltimer-go/errcode"
	"ltimer-go/hw"
	"ltimer-go/types"
)

// Identity "maps" a region by using its physical address directly.
type Identity struct{}

func (Identity) Map(r types.PmemRegion, _ bool) (hw.Region, error) {
	if r.Base == 0 || r.Length == 0 {
		return nil, errcode.New(errcode.InvalidParams, "mcuhw.map", "empty region")
	}
	return region(uintptr(r.Base)), nil
}

func (Identity) Unmap(types.PmemRegion, hw.Region) {}

type region uintptr

func (r region) reg32(off uintptr) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(uintptr(r) + off))
}

func (r region) reg64(off uintptr) *volatile.Register64 {
	return (*volatile.Register64)(unsafe.Pointer(uintptr(r) + off))
}

func (r region) Read32(off uintptr) uint32     { return r.reg32(off).Get() }
func (r region) Write32(off uintptr, v uint32) { r.reg32(off).Set(v) }
func (r region) Read64(off uintptr) uint64     { return r.reg64(off).Get() }
func (r region) Write64(off uintptr, v uint64) { r.reg64(off).Set(v) }

// Pool is a fixed budget of bytes for timer state, for targets that size
// their memory up front.
type Pool struct {
	Size int
	used int
}

func (p *Pool) Alloc(n int) error {
	if p.used+n > p.Size {
		return errcode.New(errcode.ResourceUnavailable, "mcuhw.alloc", "pool exhausted")
	}
	p.used += n
	return nil
}

func (p *Pool) Free(n int) { p.used -= n }
