package ltimer

import (
	"unsafe"

	"ltimer-go/drivers/pit"
	"ltimer-go/errcode"
	"ltimer-go/hw"
	"ltimer-go/types"
	"ltimer-go/x/freq"
)

// Calibrator measures the rate of tsc using the PIT. It returns 0 on failure.
type Calibrator func(d *pit.Device, tsc hw.CycleCounter) uint64

type pitBackend struct {
	dev *pit.Device
	tsc hw.CycleCounter
	hz  uint64 // TSC rate; fixed after init
}

// DescribePIT declares the legacy PIT: one ISA interrupt, no memory.
func DescribePIT(ops Ops) (*LogicalTimer, error) {
	return describe(ops, &pitBackend{})
}

// InitPIT describes and initialises the PIT, calibrating the TSC against it.
func InitPIT(ops Ops) (*LogicalTimer, error) { return InitPITWithFreq(ops, 0) }

// InitPITWithFreq is InitPIT with a known TSC rate; tscHz == 0 calibrates.
func InitPITWithFreq(ops Ops, tscHz uint64) (*LogicalTimer, error) {
	return initDescribed(ops)(describe(ops, &pitBackend{hz: tscHz}))
}

func (b *pitBackend) kind() Kind { return KindPIT }
func (b *pitBackend) irqs() []types.IRQ {
	return []types.IRQ{{Type: types.IRQInterrupt, Number: pit.IRQ}}
}
func (b *pitBackend) pmems() []types.PmemRegion { return nil }
func (b *pitBackend) stateSize() int            { return int(unsafe.Sizeof(*b)) }

func (b *pitBackend) init(ops *Ops) error {
	if ops.Ports == nil {
		return errcode.New(errcode.ResourceUnavailable, "ltimer.init_pit", "no port access")
	}
	if ops.TSC == nil {
		return errcode.New(errcode.Unsupported, "ltimer.init_pit", "no reference counter")
	}
	b.dev = pit.New(ops.Ports)
	b.tsc = ops.TSC
	if b.hz == 0 {
		cal := ops.Calibrate
		if cal == nil {
			cal = pit.CalibrateTSC
		}
		b.hz = cal(b.dev, b.tsc)
		if b.hz == 0 {
			return errcode.New(errcode.Unsupported, "ltimer.init_pit", "tsc calibration failed")
		}
	}
	return b.dev.Cancel()
}

func (b *pitBackend) getTime() uint64 { return freq.CyclesToNs(b.tsc.Cycles(), b.hz) }

// setTimeout turns absolute deadlines into delays; a deadline already passed
// fires after the shortest delay the PIT supports.
func (b *pitBackend) setTimeout(ns uint64, t types.TimeoutType) error {
	if t == types.TimeoutAbsolute {
		now := b.getTime()
		if ns <= now {
			ns = 0
		} else {
			ns -= now
		}
	}
	return b.dev.SetTimeout(ns, t == types.TimeoutPeriodic)
}

func (b *pitBackend) reset() error     { return b.dev.Cancel() }
func (b *pitBackend) handleIRQ() error { return nil }

func (b *pitBackend) release(*Ops) {
	if b.dev != nil {
		_ = b.dev.Cancel()
	}
}
