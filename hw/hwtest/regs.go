// Package hwtest provides in-memory fakes of the hw interfaces for tests.
package hwtest

import (
	"sync"

	"ltimer-go/hw"
	"ltimer-go/types"
)

// Op is one recorded register access.
type Op struct {
	Write bool
	Width int // 32 or 64
	Off   uintptr
	Val   uint64
}

// Regs is a sparse register file implementing hw.Region. Every access is
// recorded; accesses made after the region was unmapped are counted as
// violations instead of touching state.
type Regs struct {
	mu          sync.Mutex
	vals        map[uintptr]uint64
	clearOnRead map[uintptr]bool
	onWrite     map[uintptr]func(uint64) uint64
	ops         []Op
	unmapped    bool
	violations  int
}

func NewRegs() *Regs {
	return &Regs{
		vals:        map[uintptr]uint64{},
		clearOnRead: map[uintptr]bool{},
		onWrite:     map[uintptr]func(uint64) uint64{},
	}
}

// Set stores v at off without recording an access.
func (r *Regs) Set(off uintptr, v uint64) {
	r.mu.Lock()
	r.vals[off] = v
	r.mu.Unlock()
}

// Get returns the value at off without recording an access.
func (r *Regs) Get(off uintptr) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vals[off]
}

// ClearOnRead makes reads of off return the value and then zero it.
func (r *Regs) ClearOnRead(off uintptr) {
	r.mu.Lock()
	r.clearOnRead[off] = true
	r.mu.Unlock()
}

// OnWrite installs a hook that transforms values written to off.
func (r *Regs) OnWrite(off uintptr, fn func(uint64) uint64) {
	r.mu.Lock()
	r.onWrite[off] = fn
	r.mu.Unlock()
}

// Ops returns a copy of the access log.
func (r *Regs) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// Writes returns only the recorded writes to off.
func (r *Regs) Writes(off uintptr) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []uint64
	for _, op := range r.ops {
		if op.Write && op.Off == off {
			out = append(out, op.Val)
		}
	}
	return out
}

// ResetOps clears the access log.
func (r *Regs) ResetOps() {
	r.mu.Lock()
	r.ops = nil
	r.mu.Unlock()
}

// Violations counts accesses made while unmapped.
func (r *Regs) Violations() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.violations
}

func (r *Regs) Mapped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.unmapped
}

func (r *Regs) read(off uintptr, width int) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.unmapped {
		r.violations++
		return 0
	}
	v := r.vals[off]
	if width == 32 {
		v &= 0xFFFF_FFFF
	}
	if r.clearOnRead[off] {
		r.vals[off] = 0
	}
	r.ops = append(r.ops, Op{Width: width, Off: off, Val: v})
	return v
}

func (r *Regs) write(off uintptr, width int, v uint64) {
	r.mu.Lock()
	if r.unmapped {
		r.violations++
		r.mu.Unlock()
		return
	}
	r.ops = append(r.ops, Op{Write: true, Width: width, Off: off, Val: v})
	fn := r.onWrite[off]
	r.mu.Unlock()

	// Hooks may touch other registers through Set.
	if fn != nil {
		v = fn(v)
	}
	r.mu.Lock()
	r.vals[off] = v
	r.mu.Unlock()
}

func (r *Regs) Read32(off uintptr) uint32     { return uint32(r.read(off, 32)) }
func (r *Regs) Write32(off uintptr, v uint32) { r.write(off, 32, uint64(v)) }
func (r *Regs) Read64(off uintptr) uint64     { return r.read(off, 64) }
func (r *Regs) Write64(off uintptr, v uint64) { r.write(off, 64, v) }

// Mapper hands out Regs by physical base and poisons them on Unmap.
type Mapper struct {
	mu      sync.Mutex
	regions map[uint64]*Regs
	Fail    error // returned by Map when set

	maps, unmaps int
}

func NewMapper() *Mapper { return &Mapper{regions: map[uint64]*Regs{}} }

// Regs returns (creating if needed) the register file behind base.
func (m *Mapper) Regs(base uint64) *Regs {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.regions[base]
	if !ok {
		r = NewRegs()
		m.regions[base] = r
	}
	return r
}

func (m *Mapper) Map(region types.PmemRegion, _ bool) (hw.Region, error) {
	if m.Fail != nil {
		return nil, m.Fail
	}
	r := m.Regs(region.Base)
	r.mu.Lock()
	r.unmapped = false
	r.mu.Unlock()
	m.mu.Lock()
	m.maps++
	m.mu.Unlock()
	return r, nil
}

func (m *Mapper) Unmap(_ types.PmemRegion, region hw.Region) {
	if r, ok := region.(*Regs); ok {
		r.mu.Lock()
		r.unmapped = true
		r.mu.Unlock()
	}
	m.mu.Lock()
	m.unmaps++
	m.mu.Unlock()
}

// Live reports mappings handed out and not yet released.
func (m *Mapper) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maps - m.unmaps
}

func (m *Mapper) Counts() (maps, unmaps int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maps, m.unmaps
}
