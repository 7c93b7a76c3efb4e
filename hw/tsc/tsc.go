// Package tsc reads the x86 time-stamp counter.
package tsc

// Counter is an hw.CycleCounter over the TSC. Its rate is unknown until
// calibrated (see pit.CalibrateTSC).
type Counter struct{}

func (Counter) Cycles() uint64 { return Read() }
