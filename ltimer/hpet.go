package ltimer

import (
	"math"
	"math/bits"
	"unsafe"

	"ltimer-go/drivers/hpet"
	"ltimer-go/errcode"
	"ltimer-go/hw"
	"ltimer-go/types"
)

const (
	// DefaultHPETMSIVector is the MSI interrupt number requested for the
	// HPET when it supports FSB delivery.
	DefaultHPETMSIVector = 0
	// IRQOffset is the distance between kernel IRQ numbers and CPU vectors.
	IRQOffset = 0x20
)

type hpetBackend struct {
	region types.PmemRegion
	irq    types.IRQ
	cfg    hpet.Config

	regs   hw.Region // nil until init
	dev    *hpet.Device
	period uint64 // 0: oneshot or idle
}

// DescribeHPET declares an HPET at region raising irq, which must be an
// IOAPIC or MSI descriptor.
func DescribeHPET(ops Ops, irq types.IRQ, region types.PmemRegion) (*LogicalTimer, error) {
	b := &hpetBackend{region: region, irq: irq}
	switch irq.Type {
	case types.IRQMSI:
		b.cfg = hpet.Config{IRQ: irq.Vector + IRQOffset}
	case types.IRQIOAPIC:
		b.cfg = hpet.Config{IRQ: irq.Pin, IOAPIC: true, Level: irq.Level}
	default:
		return nil, errcode.New(errcode.InvalidParams, "ltimer.describe_hpet", "hpet needs an msi or ioapic irq")
	}
	return describe(ops, b)
}

// DescribeHPETWithRegion maps region just long enough to choose interrupt
// delivery: MSI when timer 0 supports FSB delivery, otherwise the first
// IOAPIC pin it can drive. The mapping is released before returning.
func DescribeHPETWithRegion(ops Ops, region types.PmemRegion) (*LogicalTimer, error) {
	irq, err := probeHPETIRQ(ops.Mapper, region)
	if err != nil {
		return nil, err
	}
	return DescribeHPET(ops, irq, region)
}

func probeHPETIRQ(m hw.Mapper, region types.PmemRegion) (types.IRQ, error) {
	if m == nil {
		return types.IRQ{}, errcode.New(errcode.ResourceUnavailable, "ltimer.probe_hpet", "no mapper")
	}
	regs, err := m.Map(region, false)
	if err != nil {
		return types.IRQ{}, errcode.Wrap(errcode.ResourceUnavailable, "ltimer.probe_hpet", err)
	}
	defer m.Unmap(region, regs)

	if hpet.SupportsFSB(regs) {
		return types.IRQ{Type: types.IRQMSI, Vector: DefaultHPETMSIVector}, nil
	}
	mask := hpet.IOAPICMask(regs)
	if mask == 0 {
		return types.IRQ{}, errcode.New(errcode.ProbeFailed, "ltimer.probe_hpet", "no usable interrupt route")
	}
	level := hpet.Level(regs)
	return types.IRQ{
		Type:     types.IRQIOAPIC,
		Pin:      uint32(bits.TrailingZeros32(mask)),
		Level:    level,
		Polarity: level,
	}, nil
}

// InitHPET is DescribeHPET followed by Init.
func InitHPET(ops Ops, irq types.IRQ, region types.PmemRegion) (*LogicalTimer, error) {
	return initDescribed(ops)(DescribeHPET(ops, irq, region))
}

func (b *hpetBackend) kind() Kind                { return KindHPET }
func (b *hpetBackend) irqs() []types.IRQ         { return []types.IRQ{b.irq} }
func (b *hpetBackend) pmems() []types.PmemRegion { return []types.PmemRegion{b.region} }
func (b *hpetBackend) stateSize() int            { return int(unsafe.Sizeof(*b)) }

func (b *hpetBackend) init(ops *Ops) error {
	if ops.Mapper == nil {
		return errcode.New(errcode.ResourceUnavailable, "ltimer.init_hpet", "no mapper")
	}
	regs, err := ops.Mapper.Map(b.region, false)
	if err != nil {
		return errcode.Wrap(errcode.ResourceUnavailable, "ltimer.init_hpet", err)
	}
	b.regs = regs
	b.dev = hpet.New(regs)
	return b.dev.Configure(b.cfg)
}

func (b *hpetBackend) getTime() uint64 { return b.dev.GetTime() }

func (b *hpetBackend) setTimeout(ns uint64, t types.TimeoutType) error {
	deadline := ns
	if t != types.TimeoutAbsolute {
		now := b.dev.GetTime()
		if ns > math.MaxUint64-now {
			return errcode.New(errcode.TimeTooLarge, "hpet.set_timeout", "deadline overflows the counter")
		}
		deadline += now
	}
	if t == types.TimeoutPeriodic {
		b.period = ns
	} else {
		b.period = 0
	}
	return b.dev.SetTimeout(deadline)
}

func (b *hpetBackend) reset() error {
	b.dev.Stop()
	b.dev.Disarm()
	b.dev.Ack()
	b.dev.Start()
	b.period = 0
	return nil
}

// handleIRQ emulates periodic mode: the comparator only fires once, so it is
// re-armed a period after the current time.
func (b *hpetBackend) handleIRQ() error {
	b.dev.Ack()
	if b.period > 0 {
		return b.dev.SetTimeout(b.dev.GetTime() + b.period)
	}
	return nil
}

func (b *hpetBackend) release(ops *Ops) {
	if b.regs == nil {
		return
	}
	if b.dev.PeriodFs() != 0 {
		b.dev.Stop()
		b.dev.Disarm()
	}
	ops.Mapper.Unmap(b.region, b.regs)
	b.regs = nil
	b.dev = nil
}
