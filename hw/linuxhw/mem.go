//go:build linux

// Package linuxhw implements the hw interfaces for a privileged Linux
// process: physical memory through /dev/mem, port I/O through /dev/port and
// a monotonic reference counter from the kernel clock.
package linuxhw

import (
	"os"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	"ltimer-go/errcode"
	"ltimer-go/hw"
	"ltimer-go/types"
)

const DevMemPath = "/dev/mem"

// Mem maps physical memory from a /dev/mem style device.
type Mem struct {
	mu   sync.Mutex
	fd   int
	live map[*region]struct{}
}

// OpenMem opens path (normally DevMemPath) for synchronous access.
func OpenMem(path string) (*Mem, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_SYNC|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errcode.Wrap(errcode.ResourceUnavailable, "linuxhw.open_mem", &os.PathError{Op: "open", Path: path, Err: err})
	}
	return &Mem{fd: fd, live: map[*region]struct{}{}}, nil
}

// Map maps r page-aligned. The cached hint is ignored: O_SYNC mappings are
// always uncached.
func (m *Mem) Map(r types.PmemRegion, _ bool) (hw.Region, error) {
	if r.Length == 0 {
		return nil, errcode.New(errcode.InvalidParams, "linuxhw.map", "empty region")
	}
	page := uint64(os.Getpagesize())
	base := r.Base &^ (page - 1)
	lead := r.Base - base
	size := (lead + r.Length + page - 1) &^ (page - 1)

	buf, err := unix.Mmap(m.fd, int64(base), int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, errcode.Wrap(errcode.ResourceUnavailable, "linuxhw.map", err)
	}
	reg := &region{buf: buf, lead: uintptr(lead)}
	m.mu.Lock()
	m.live[reg] = struct{}{}
	m.mu.Unlock()
	return reg, nil
}

func (m *Mem) Unmap(_ types.PmemRegion, r hw.Region) {
	reg, ok := r.(*region)
	if !ok {
		return
	}
	m.mu.Lock()
	_, live := m.live[reg]
	delete(m.live, reg)
	m.mu.Unlock()
	if live {
		_ = unix.Munmap(reg.buf)
		reg.buf = nil
	}
}

// Close unmaps anything still mapped and closes the device.
func (m *Mem) Close() error {
	m.mu.Lock()
	for reg := range m.live {
		_ = unix.Munmap(reg.buf)
		reg.buf = nil
	}
	m.live = map[*region]struct{}{}
	m.mu.Unlock()
	return unix.Close(m.fd)
}

// region accesses registers with single aligned loads and stores.
type region struct {
	buf  []byte
	lead uintptr // offset of the requested base inside the first page
}

func (r *region) addr(off uintptr, width uintptr) unsafe.Pointer {
	i := r.lead + off
	if i%width != 0 || i+width > uintptr(len(r.buf)) {
		panic("linuxhw: register access out of range or misaligned")
	}
	return unsafe.Pointer(&r.buf[i])
}

func (r *region) Read32(off uintptr) uint32 { return atomic.LoadUint32((*uint32)(r.addr(off, 4))) }
func (r *region) Write32(off uintptr, v uint32) {
	atomic.StoreUint32((*uint32)(r.addr(off, 4)), v)
}
func (r *region) Read64(off uintptr) uint64 { return atomic.LoadUint64((*uint64)(r.addr(off, 8))) }
func (r *region) Write64(off uintptr, v uint64) {
	atomic.StoreUint64((*uint64)(r.addr(off, 8)), v)
}
