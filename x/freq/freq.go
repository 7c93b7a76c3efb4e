// Package freq converts between cycle counts, frequencies and nanoseconds.
//
// All conversions truncate and use 128-bit intermediates, so a single call is
// off by less than one cycle period and never wraps. Results that cannot be
// represented in 64 bits saturate to math.MaxUint64.
package freq

import (
	"ltimer-go/x/mathx"
)

// Hz is a frequency in cycles per second.
type Hz = uint64

const (
	KHz Hz = 1000
	MHz Hz = 1000 * KHz
	GHz Hz = 1000 * MHz
)

const (
	NsPerSecond uint64 = 1_000_000_000
	FsPerNs     uint64 = 1_000_000
)

// CyclesToNs returns floor(cycles * 1e9 / hz). hz == 0 saturates.
func CyclesToNs(cycles uint64, hz Hz) uint64 {
	return mathx.MulDiv(cycles, NsPerSecond, hz)
}

// NsToCycles returns floor(ns * hz / 1e9).
func NsToCycles(ns uint64, hz Hz) uint64 {
	return mathx.MulDiv(ns, hz, NsPerSecond)
}

// NsToCyclesCeil is NsToCycles rounded up, for programming delays that must
// not expire early.
func NsToCyclesCeil(ns uint64, hz Hz) uint64 {
	return mathx.MulDivCeil(ns, hz, NsPerSecond)
}

// HzForSpan returns the highest frequency at which a counter holding at most
// maxCycles still spans ns nanoseconds. ns == 0 saturates.
//
// Callers that program a divider from this value must compare the achieved
// frequency against it: an achieved frequency above the target means the span
// cannot be represented.
func HzForSpan(maxCycles, ns uint64) Hz {
	return mathx.MulDiv(maxCycles, NsPerSecond, ns)
}

// MaxNs is the longest span a counter of maxCycles covers at hz.
func MaxNs(maxCycles uint64, hz Hz) uint64 {
	return CyclesToNs(maxCycles, hz)
}

// FemtosToNs converts a femtosecond count (HPET tick period units) to ns.
func FemtosToNs(ticks, periodFs uint64) uint64 {
	return mathx.MulDiv(ticks, periodFs, FsPerNs)
}

// NsToFemtoTicks converts ns to ticks of periodFs femtoseconds each.
func NsToFemtoTicks(ns, periodFs uint64) uint64 {
	return mathx.MulDiv(ns, FsPerNs, periodFs)
}
