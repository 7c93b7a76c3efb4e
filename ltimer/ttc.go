package ltimer

import (
	"unsafe"

	"ltimer-go/drivers/ttc"
	"ltimer-go/errcode"
	"ltimer-go/hw"
	"ltimer-go/types"
)

// TTCConfig selects a triple-timer-counter channel.
type TTCConfig = ttc.Config

type ttcBackend struct {
	cfg    ttc.Config
	region types.PmemRegion
	irq    types.IRQ

	regs hw.Region // nil until init
	dev  *ttc.Device
}

// DescribeTTC declares one TTC channel. Unknown channels fail with
// errcode.InvalidParams before anything is allocated.
func DescribeTTC(ops Ops, cfg TTCConfig) (*LogicalTimer, error) {
	region, err := cfg.ID.Region()
	if err != nil {
		return nil, err
	}
	irq, err := cfg.ID.IRQ()
	if err != nil {
		return nil, err
	}
	return describe(ops, &ttcBackend{cfg: cfg, region: region, irq: irq})
}

// InitTTC is DescribeTTC followed by Init.
func InitTTC(ops Ops, cfg TTCConfig) (*LogicalTimer, error) {
	return initDescribed(ops)(DescribeTTC(ops, cfg))
}

func (b *ttcBackend) kind() Kind                { return KindTTC }
func (b *ttcBackend) irqs() []types.IRQ         { return []types.IRQ{b.irq} }
func (b *ttcBackend) pmems() []types.PmemRegion { return []types.PmemRegion{b.region} }
func (b *ttcBackend) stateSize() int            { return int(unsafe.Sizeof(*b)) }

func (b *ttcBackend) init(ops *Ops) error {
	if ops.Mapper == nil {
		return errcode.New(errcode.ResourceUnavailable, "ltimer.init_ttc", "no mapper")
	}
	regs, err := ops.Mapper.Map(b.region, false)
	if err != nil {
		return errcode.Wrap(errcode.ResourceUnavailable, "ltimer.init_ttc", err)
	}
	b.regs = regs
	dev, err := ttc.New(regs, b.cfg)
	if err != nil {
		return err
	}
	b.dev = dev
	dev.Configure()
	dev.Start()
	return nil
}

func (b *ttcBackend) getTime() uint64 { return b.dev.GetTime() }

// setTimeout measures absolute deadlines against the channel's own wrapping
// time; a deadline already passed fires after one tick.
func (b *ttcBackend) setTimeout(ns uint64, t types.TimeoutType) error {
	if t == types.TimeoutAbsolute {
		now := b.dev.GetTime()
		if ns <= now {
			ns = 0
		} else {
			ns -= now
		}
	}
	return b.dev.SetTimeout(ns, t == types.TimeoutPeriodic)
}

func (b *ttcBackend) reset() error {
	b.dev.Reset()
	return nil
}

func (b *ttcBackend) handleIRQ() error {
	b.dev.HandleIRQ()
	return nil
}

func (b *ttcBackend) release(ops *Ops) {
	if b.regs == nil {
		return
	}
	if b.dev != nil {
		b.dev.Stop()
	}
	ops.Mapper.Unmap(b.region, b.regs)
	b.regs = nil
	b.dev = nil
}
