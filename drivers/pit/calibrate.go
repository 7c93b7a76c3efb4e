package pit

import (
	"ltimer-go/hw"
	"ltimer-go/x/mathx"
)

const (
	calibrationCount = 11932 // ~10 ms of PIT ticks
	calibrationPolls = 1 << 22
)

// CalibrateTSC measures the rate of tsc against a one-shot PIT countdown.
// It returns 0 if the PIT cannot be driven or never reaches terminal count.
// The PIT is left cancelled.
func CalibrateTSC(d *Device, tsc hw.CycleCounter) uint64 {
	defer d.Cancel()

	if err := d.program(modeTerminalCount, calibrationCount); err != nil {
		return 0
	}
	start := tsc.Cycles()
	last := uint16(calibrationCount)
	for i := 0; i < calibrationPolls; i++ {
		c, err := d.ReadCount()
		if err != nil {
			return 0
		}
		// Mode 0 keeps decrementing past zero, so a wrap also marks the end.
		if c == 0 || c > last {
			end := tsc.Cycles()
			if end <= start {
				return 0
			}
			return mathx.MulDiv(end-start, Frequency, calibrationCount)
		}
		last = c
	}
	return 0
}
