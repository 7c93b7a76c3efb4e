// Package ttc drives one channel of the Zynq-7000 triple timer counter.
//
// A channel is a 16-bit up-counter behind a 4-bit power-of-two prescaler.
// One-shot timeouts use match register 0 against the free-running counter;
// periodic timeouts use interval mode. The channel's clock is modelled as a
// clk.Prescaled node whose prescale field lives in the clock control register.
package ttc

import (
	"strconv"

	"ltimer-go/drivers/clk"
	"ltimer-go/errcode"
	"ltimer-go/hw"
	"ltimer-go/x/freq"
	"ltimer-go/x/logx"
	"ltimer-go/x/mathx"
)

type Config struct {
	ID     ID
	Parent clk.Source // nil => fixed PCLKFreq
}

type Device struct {
	regs hw.Region // channel-relative view
	id   ID
	clk  *clk.Prescaled
	hz   freq.Hz
	log  logx.Logger
}

// New validates the channel and selects its window in the mapped block.
// Nothing is written until Configure.
func New(block hw.Region, cfg Config) (*Device, error) {
	off, err := cfg.ID.channelOffset()
	if err != nil {
		return nil, err
	}
	d := &Device{
		regs: hw.Sub(block, off),
		id:   cfg.ID,
		log:  logx.New("ttc").WithField("channel", cfg.ID.String()),
	}
	d.clk = &clk.Prescaled{
		ID:       clk.ID(cfg.ID.String()),
		Parent:   cfg.Parent,
		Fallback: PCLKFreq,
		Sink:     prescaler{d.regs},
	}
	return d, nil
}

// prescaler exposes the clock control prescale field to the clock node.
type prescaler struct{ regs hw.Region }

func (p prescaler) SetPrescale(en bool, val uint8) {
	if en {
		hw.Modify32(p.regs, regClkCtrl, clkPrescaleEn|clkPrescaleVal(val), clkPrescaleMask)
	} else {
		hw.Modify32(p.regs, regClkCtrl, 0, clkPrescaleEn)
	}
}

func (p prescaler) Prescale() (bool, uint8) {
	v := p.regs.Read32(regClkCtrl)
	return v&clkPrescaleEn != 0, uint8(v&clkPrescaleMask) >> 1
}

// Clock returns the channel's clock node.
func (d *Device) Clock() clk.Clock { return d.clk }

func (d *Device) ID() ID { return d.id }

// Configure puts the channel in a known idle state: interrupts disabled,
// status drained, counter stopped and reset, prescaler bypassed, match mode
// selected and the interval at its maximum.
func (d *Device) Configure() {
	d.regs.Write32(regIntEn, 0)
	d.regs.Read32(regIntSts)
	d.regs.Write32(regCntCtrl, cntRst|cntStop|cntInt|cntMatch)
	d.regs.Write32(regClkCtrl, 0)
	d.regs.Write32(regInterval, CounterMax)
	d.hz = d.clk.Sync()
}

func (d *Device) Start() { hw.Modify32(d.regs, regCntCtrl, 0, cntStop) }

// Stop halts the counter and drains any pending interrupt.
func (d *Device) Stop() {
	hw.Modify32(d.regs, regCntCtrl, cntStop, 0)
	d.HandleIRQ()
}

// Freq is the cached counter rate.
func (d *Device) Freq() freq.Hz { return d.hz }

// GetTime converts the current count to nanoseconds. The count wraps every
// 2^16 ticks, so this is only a time base within one wrap period.
func (d *Device) GetTime() uint64 {
	return freq.CyclesToNs(uint64(d.regs.Read32(regCntVal)), d.hz)
}

// freqForNs picks the fastest prescale that fits ns into the counter and
// returns the interval in ticks. Nothing is written if ns cannot fit.
func (d *Device) freqForNs(ns uint64) (uint32, error) {
	target := freq.HzForSpan(CounterMax, ns)
	achieved := d.clk.SetFreq(target)
	if achieved > target {
		max := freq.MaxNs(CounterMax, achieved)
		d.log.Warnf("timeout %d ns too big, max %d ns", ns, max)
		return 0, errcode.New(errcode.TimeTooLarge, "ttc.set_timeout",
			strconv.FormatUint(ns, 10)+" ns exceeds "+strconv.FormatUint(max, 10)+" ns")
	}
	d.hz = achieved
	interval := mathx.Clamp(freq.NsToCycles(ns, achieved), 1, CounterMax)
	return uint32(interval), nil
}

// SetTimeout arms the channel to interrupt ns from now, once or every ns.
func (d *Device) SetTimeout(ns uint64, periodic bool) error {
	interval, err := d.freqForNs(ns)
	if err != nil {
		return err
	}
	if periodic {
		d.regs.Write32(regInterval, interval)
		hw.Modify32(d.regs, regCntCtrl, cntInt, 0)
		d.regs.Write32(regIntEn, intInterval)
		return nil
	}
	match := (interval + d.regs.Read32(regCntVal)) % (CounterMax + 1)
	d.regs.Write32(regMatch0, match)
	hw.Modify32(d.regs, regCntCtrl, 0, cntInt)
	d.regs.Write32(regIntEn, intMatch0)
	return nil
}

// HandleIRQ disables the one-shot match interrupt and drains the status
// register, returning the bits that were pending.
func (d *Device) HandleIRQ() uint32 {
	hw.Modify32(d.regs, regIntEn, 0, intMatch0)
	return d.regs.Read32(regIntSts)
}

// Reset cancels any armed timeout and leaves the counter running.
func (d *Device) Reset() {
	d.Stop()
	d.regs.Write32(regIntEn, 0)
	d.Start()
}
