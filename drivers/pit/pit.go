// Package pit drives channel 0 of the legacy 8254 programmable interval
// timer through x86 port I/O. The PIT has no readable time base worth using;
// callers keep time elsewhere (see CalibrateTSC) and use the PIT only for
// interrupts on ISA IRQ 0.
package pit

import (
	"strconv"

	"ltimer-go/errcode"
	"ltimer-go/hw"
	"ltimer-go/x/freq"
	"ltimer-go/x/mathx"
)

const (
	PortCh0 = 0x40 // channel 0 data
	PortCmd = 0x43 // mode/command

	// Frequency is the 8254 input clock.
	Frequency freq.Hz = 1_193_182

	MinCount = 2      // smallest count the modes below accept
	MaxCount = 0xFFFF // 0 would encode 65536; not used

	// IRQ is the ISA interrupt line of channel 0.
	IRQ = 0
)

// Command word fields.
const (
	cmdChannel0 = 0 << 6
	cmdLatch    = 0 << 4
	cmdLoHi     = 3 << 4

	modeTerminalCount = 0 // one interrupt, then counting halts at reload
	modeRateGenerator = 2 // periodic
)

// MaxTimeoutNs is the longest timeout the 16-bit count can express.
var MaxTimeoutNs = freq.CyclesToNs(MaxCount, Frequency)

type Device struct {
	ports hw.Ports
}

func New(ports hw.Ports) *Device { return &Device{ports: ports} }

func command(mode uint8) uint8 { return cmdChannel0 | cmdLoHi | mode<<1 }

func (d *Device) program(mode uint8, count uint16) error {
	if err := d.ports.Out8(PortCmd, command(mode)); err != nil {
		return err
	}
	if err := d.ports.Out8(PortCh0, uint8(count)); err != nil {
		return err
	}
	return d.ports.Out8(PortCh0, uint8(count>>8))
}

// SetTimeout programs channel 0 to interrupt after ns, once or every ns.
// Requests shorter than MinCount ticks are rounded up; longer than MaxCount
// ticks fail with errcode.TimeTooLarge and leave the PIT untouched.
func (d *Device) SetTimeout(ns uint64, periodic bool) error {
	ticks := freq.NsToCyclesCeil(ns, Frequency)
	if ticks > MaxCount {
		return errcode.New(errcode.TimeTooLarge, "pit.set_timeout",
			strconv.FormatUint(ns, 10)+" ns exceeds "+strconv.FormatUint(MaxTimeoutNs, 10)+" ns")
	}
	ticks = mathx.Clamp(ticks, MinCount, MaxCount)
	mode := uint8(modeTerminalCount)
	if periodic {
		mode = modeRateGenerator
	}
	return d.program(mode, uint16(ticks))
}

// Cancel writes a mode 0 control word without a count, which stops the
// counter until the next count is loaded.
func (d *Device) Cancel() error {
	return d.ports.Out8(PortCmd, command(modeTerminalCount))
}

// ReadCount latches and reads the current channel 0 count.
func (d *Device) ReadCount() (uint16, error) {
	if err := d.ports.Out8(PortCmd, cmdChannel0|cmdLatch); err != nil {
		return 0, err
	}
	lo, err := d.ports.In8(PortCh0)
	if err != nil {
		return 0, err
	}
	hi, err := d.ports.In8(PortCh0)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}
