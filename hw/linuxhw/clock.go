//go:build linux

package linuxhw

import (
	"golang.org/x/sys/unix"

	"ltimer-go/x/freq"
)

// MonotonicHz is the rate of Monotonic.
const MonotonicHz freq.Hz = freq.GHz

// Monotonic is a reference counter ticking in nanoseconds of
// CLOCK_MONOTONIC_RAW. It stands in for the TSC where rdtsc is unavailable.
type Monotonic struct{}

func (Monotonic) Cycles() uint64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC_RAW, &ts); err != nil {
		return 0
	}
	return uint64(ts.Nano())
}
