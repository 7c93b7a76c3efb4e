// Package hpet drives timer 0 of an x86 High Precision Event Timer.
//
// The main counter is the time base; timer 0 raises one-shot comparator
// interrupts delivered either through an IOAPIC pin or as an MSI over the
// front-side bus. Periodic behaviour is left to the caller, which re-arms
// from its interrupt handler.
package hpet

import (
	"strconv"

	"ltimer-go/errcode"
	"ltimer-go/hw"
	"ltimer-go/x/freq"
)

// Config selects interrupt delivery for timer 0.
type Config struct {
	IRQ    uint32 // IOAPIC pin when IOAPIC is set, else MSI vector
	IOAPIC bool
	Level  bool // level-triggered (IOAPIC only)
}

type Device struct {
	regs     hw.Region
	periodFs uint64
	cfg      Config
}

func New(regs hw.Region) *Device { return &Device{regs: regs} }

// ---- probes on an unowned mapping ----

// PeriodFs returns the main counter tick period in femtoseconds.
func PeriodFs(r hw.Region) uint64 { return r.Read64(regGenCap) >> capPeriodShift }

// SupportsFSB reports whether timer 0 can deliver MSIs directly.
func SupportsFSB(r hw.Region) bool {
	return r.Read64(timerReg(0, offTimerConf))&tnFSBCap != 0
}

// IOAPICMask returns the IOAPIC pins timer 0 can be routed to, one bit per pin.
func IOAPICMask(r hw.Region) uint32 {
	return uint32(r.Read64(timerReg(0, offTimerConf)) >> tnRouteCapShift)
}

// Level reports whether timer 0 is set up for level-triggered interrupts.
func Level(r hw.Region) bool {
	return r.Read64(timerReg(0, offTimerConf))&tnIntTypeLevel != 0
}

// ---- lifecycle ----

// Configure validates the block and programs timer 0. The counter is left
// running with the comparator disarmed.
func (d *Device) Configure(cfg Config) error {
	gcap := d.regs.Read64(regGenCap)
	period := gcap >> capPeriodShift
	if period == 0 || period > MaxPeriodFs {
		return errcode.New(errcode.ProbeFailed, "hpet.configure", "invalid period "+strconv.FormatUint(period, 10)+" fs")
	}
	if gcap&capCountSize64 == 0 {
		return errcode.New(errcode.ProbeFailed, "hpet.configure", "32-bit main counter")
	}
	d.periodFs = period
	d.cfg = cfg

	d.Stop()
	hw.Modify64(d.regs, regGenConfig, 0, cfgLegRoute)

	conf := d.regs.Read64(timerReg(0, offTimerConf))
	conf &^= tnRouteMask | tnFSBEnable | tnIntTypeLevel | tnPeriodic | tn32Mode
	conf |= tnIntEnable
	if cfg.IOAPIC {
		mask := uint32(conf >> tnRouteCapShift)
		if cfg.IRQ > 31 || mask&(1<<cfg.IRQ) == 0 {
			return errcode.New(errcode.InvalidParams, "hpet.configure", "ioapic pin "+strconv.Itoa(int(cfg.IRQ))+" not routable")
		}
		conf |= uint64(cfg.IRQ) << tnRouteShift
		if cfg.Level {
			conf |= tnIntTypeLevel
		}
	} else {
		if conf&tnFSBCap == 0 {
			return errcode.New(errcode.ProbeFailed, "hpet.configure", "timer 0 lacks FSB delivery")
		}
		d.regs.Write64(timerReg(0, offTimerFSB), uint64(msiAddress)<<32|uint64(cfg.IRQ))
		conf |= tnFSBEnable
	}

	d.Disarm()
	d.regs.Write64(timerReg(0, offTimerConf), conf)
	d.Ack()
	d.Start()
	return nil
}

// PeriodFs returns the cached tick period.
func (d *Device) PeriodFs() uint64 { return d.periodFs }

func (d *Device) Start() { hw.Modify64(d.regs, regGenConfig, cfgEnable, 0) }
func (d *Device) Stop()  { hw.Modify64(d.regs, regGenConfig, 0, cfgEnable) }

// GetTime returns the main counter converted to nanoseconds.
func (d *Device) GetTime() uint64 {
	return freq.FemtosToNs(d.regs.Read64(regMainCounter), d.periodFs)
}

// SetTimeout arms timer 0 for the absolute time absNs. It fails with
// errcode.TimeInPast if the deadline is not ahead of the counter, either
// before the comparator is written or by the time the write lands.
func (d *Device) SetTimeout(absNs uint64) error {
	target := freq.NsToFemtoTicks(absNs, d.periodFs)
	if target <= d.regs.Read64(regMainCounter) {
		return errcode.New(errcode.TimeInPast, "hpet.set_timeout", "deadline passed")
	}
	d.regs.Write64(timerReg(0, offTimerCmp), target)
	if target <= d.regs.Read64(regMainCounter) {
		return errcode.New(errcode.TimeInPast, "hpet.set_timeout", "deadline passed while arming")
	}
	return nil
}

// Disarm moves the comparator out of reach.
func (d *Device) Disarm() { d.regs.Write64(timerReg(0, offTimerCmp), ^uint64(0)) }

// Ack clears timer 0's interrupt status (needed for level-triggered delivery).
func (d *Device) Ack() { d.regs.Write64(regIntStatus, 1) }
