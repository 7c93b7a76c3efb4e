// Package ltimer is the logical timer: one handle type over the HPET, the
// legacy PIT and the Zynq TTC.
//
// Construction is two-phase. A Describe* function records which interrupts
// and physical memory the backend needs without touching hardware or
// keeping a mapping; (*LogicalTimer).Init maps and programs it. Callers that
// route interrupts or map memory themselves do so between the two calls.
//
// A LogicalTimer has no internal locking. HandleIRQ and the other methods
// must be serialised by the caller (services/timer does this with a single
// goroutine).
package ltimer

import (
	"ltimer-go/errcode"
	"ltimer-go/hw"
	"ltimer-go/types"
	"ltimer-go/x/logx"
)

// Kind identifies the backend behind a LogicalTimer.
type Kind uint8

const (
	KindHPET Kind = iota + 1
	KindPIT
	KindTTC
)

func (k Kind) String() string {
	switch k {
	case KindHPET:
		return "hpet"
	case KindPIT:
		return "pit"
	case KindTTC:
		return "ttc"
	}
	return "unknown"
}

// Ops are the platform services a timer consumes. Only the fields the
// chosen backend needs must be set.
type Ops struct {
	Mapper hw.Mapper    // HPET, TTC
	Ports  hw.Ports     // PIT
	Alloc  hw.Allocator // optional

	Tables    FirmwareTables  // selector only
	TSC       hw.CycleCounter // PIT time base
	Calibrate Calibrator      // nil => pit.CalibrateTSC
}

// backend is implemented by hpetBackend, pitBackend and ttcBackend.
type backend interface {
	kind() Kind
	irqs() []types.IRQ
	pmems() []types.PmemRegion
	stateSize() int

	init(ops *Ops) error
	getTime() uint64
	setTimeout(ns uint64, t types.TimeoutType) error
	reset() error
	handleIRQ() error
	// release stops the hardware and drops any mapping. It must be safe
	// after a failed init.
	release(ops *Ops)
}

type state uint8

const (
	stateDescribed state = iota
	stateReady
	stateFailed
	stateDestroyed
)

type LogicalTimer struct {
	b     backend
	ops   Ops
	alloc hw.Allocator // charged at describe, freed exactly once
	st    state
	log   logx.Logger
}

func describe(ops Ops, b backend) (*LogicalTimer, error) {
	if err := hw.AllocState(ops.Alloc, b.stateSize()); err != nil {
		return nil, errcode.Wrap(errcode.ResourceUnavailable, "ltimer.describe", err)
	}
	return &LogicalTimer{
		b:     b,
		ops:   ops,
		alloc: ops.Alloc,
		log:   logx.New("ltimer").WithField("backend", b.kind().String()),
	}, nil
}

// Init maps and programs the described hardware. On failure everything
// acquired since Describe is released and the timer stays unusable; Destroy
// must still be called once.
func (lt *LogicalTimer) Init(ops Ops) error {
	if lt.st != stateDescribed {
		return errcode.New(errcode.NotReady, "ltimer.init", "already initialised or destroyed")
	}
	lt.ops = ops
	if err := lt.b.init(&lt.ops); err != nil {
		lt.b.release(&lt.ops)
		hw.FreeState(lt.alloc, lt.b.stateSize())
		lt.st = stateFailed
		return err
	}
	lt.st = stateReady
	lt.log.Debugf("initialised")
	return nil
}

// initDescribed runs Init on a freshly described timer, destroying it on
// failure. It is shaped to take a Describe* result directly.
func initDescribed(ops Ops) func(*LogicalTimer, error) (*LogicalTimer, error) {
	return func(lt *LogicalTimer, err error) (*LogicalTimer, error) {
		if err != nil {
			return nil, err
		}
		if err := lt.Init(ops); err != nil {
			lt.Destroy()
			return nil, err
		}
		return lt, nil
	}
}

func (lt *LogicalTimer) Kind() Kind { return lt.b.kind() }

func (lt *LogicalTimer) ready(op string) error {
	if lt.st != stateReady {
		return errcode.New(errcode.NotReady, op, "timer not initialised")
	}
	return nil
}

// GetTime returns the backend's monotonic time in nanoseconds.
func (lt *LogicalTimer) GetTime() (uint64, error) {
	if err := lt.ready("ltimer.get_time"); err != nil {
		return 0, err
	}
	return lt.b.getTime(), nil
}

// SetTimeout arms the single timeout slot, superseding any armed timeout.
func (lt *LogicalTimer) SetTimeout(ns uint64, t types.TimeoutType) error {
	if err := lt.ready("ltimer.set_timeout"); err != nil {
		return err
	}
	if t > types.TimeoutPeriodic {
		return errcode.New(errcode.InvalidParams, "ltimer.set_timeout", "unknown timeout type")
	}
	if t == types.TimeoutPeriodic && ns == 0 {
		return errcode.New(errcode.InvalidParams, "ltimer.set_timeout", "zero period")
	}
	return lt.b.setTimeout(ns, t)
}

// Reset cancels any armed timeout and returns the hardware to idle.
func (lt *LogicalTimer) Reset() error {
	if err := lt.ready("ltimer.reset"); err != nil {
		return err
	}
	return lt.b.reset()
}

// HandleIRQ acknowledges the timer's interrupt and re-arms emulated periodic
// timeouts. irq identifies which of the timer's interrupts fired.
func (lt *LogicalTimer) HandleIRQ(irq types.IRQ) error {
	if err := lt.ready("ltimer.handle_irq"); err != nil {
		return err
	}
	return lt.b.handleIRQ()
}

// GetResolution is not supported by any backend.
func (lt *LogicalTimer) GetResolution() (uint64, error) {
	return 0, errcode.Unsupported
}

func (lt *LogicalTimer) NumIRQs() int { return len(lt.b.irqs()) }

func (lt *LogicalTimer) NthIRQ(n int) (types.IRQ, error) {
	irqs := lt.b.irqs()
	if n < 0 || n >= len(irqs) {
		return types.IRQ{}, errcode.New(errcode.InvalidParams, "ltimer.nth_irq", "index out of range")
	}
	return irqs[n], nil
}

func (lt *LogicalTimer) NumPmems() int { return len(lt.b.pmems()) }

func (lt *LogicalTimer) NthPmem(n int) (types.PmemRegion, error) {
	pm := lt.b.pmems()
	if n < 0 || n >= len(pm) {
		return types.PmemRegion{}, errcode.New(errcode.InvalidParams, "ltimer.nth_pmem", "index out of range")
	}
	return pm[n], nil
}

// Resources lists everything the timer declared.
func (lt *LogicalTimer) Resources() types.TimerResources {
	return types.TimerResources{
		Backend: lt.Kind().String(),
		IRQs:    append([]types.IRQ(nil), lt.b.irqs()...),
		Pmems:   append([]types.PmemRegion(nil), lt.b.pmems()...),
	}
}

// Destroy stops the hardware, releases the mapping and frees the instance.
// It must be called exactly once; a second call panics.
func (lt *LogicalTimer) Destroy() {
	switch lt.st {
	case stateDestroyed:
		panic("ltimer: Destroy called twice")
	case stateReady:
		lt.b.release(&lt.ops)
		hw.FreeState(lt.alloc, lt.b.stateSize())
	case stateDescribed:
		hw.FreeState(lt.alloc, lt.b.stateSize())
	}
	lt.st = stateDestroyed
}
