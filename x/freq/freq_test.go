package freq

import (
	"math"
	"testing"
)

func TestRoundTripWithinOneCycle(t *testing.T) {
	freqs := []Hz{32768, 1193182, 14318180, 111110000, 1 * GHz}
	cycles := []uint64{0, 1, 2, 999, 65535, 1 << 32, 1<<40 + 12345}
	for _, f := range freqs {
		for _, c := range cycles {
			got := NsToCycles(CyclesToNs(c, f), f)
			if got > c || c-got > 1 {
				t.Errorf("f=%d c=%d: round trip gave %d", f, c, got)
			}
		}
	}
}

func TestNoIntermediateOverflow(t *testing.T) {
	// 2^40 cycles at 1 GHz: the naive cycles*1e9 product exceeds 64 bits.
	c := uint64(1) << 40
	if got := CyclesToNs(c, GHz); got != c {
		t.Fatalf("CyclesToNs(2^40, 1GHz) = %d, want %d", got, c)
	}
	// 2^60 ns at 2 GHz is 2^61 cycles, which still fits.
	if got := NsToCycles(uint64(1)<<60, 2*GHz); got != uint64(1)<<61 {
		t.Fatalf("NsToCycles(2^60, 2GHz) = %d", got)
	}
}

func TestSaturation(t *testing.T) {
	// 2^52 cycles of a 32 kHz clock is ~1.4e20 ns.
	if got := CyclesToNs(1<<52+12345, 32768); got != math.MaxUint64 {
		t.Fatalf("CyclesToNs did not saturate: %d", got)
	}
	if got := NsToCycles(math.MaxUint64, 2*GHz); got != math.MaxUint64 {
		t.Fatalf("NsToCycles did not saturate: %d", got)
	}
	if got := CyclesToNs(1, 0); got != math.MaxUint64 {
		t.Fatalf("zero frequency = %d", got)
	}
}

func TestNsToCyclesCeil(t *testing.T) {
	// 1 ns at the PIT rate is a fraction of a tick.
	if got := NsToCycles(1, 1193182); got != 0 {
		t.Fatalf("floor = %d", got)
	}
	if got := NsToCyclesCeil(1, 1193182); got != 1 {
		t.Fatalf("ceil = %d", got)
	}
	if got := NsToCyclesCeil(1_000_000, 1*MHz); got != 1000 {
		t.Fatalf("exact ceil = %d", got)
	}
}

func TestHzForSpan(t *testing.T) {
	cases := []struct {
		max, ns uint64
		want    Hz
	}{
		{65535, 1_000_000, 65_535_000}, // 1 ms fits at 65.535 MHz
		{65535, 1_000_000_000, 65535},  // 1 s needs 65.535 kHz
		{65535, 0, math.MaxUint64},     // zero span saturates
	}
	for _, c := range cases {
		got := HzForSpan(c.max, c.ns)
		if got != c.want {
			t.Errorf("HzForSpan(%d,%d) = %d, want %d", c.max, c.ns, got, c.want)
		}
		if c.ns != 0 && NsToCycles(c.ns, got) > c.max {
			t.Errorf("span %d ns does not fit at %d Hz", c.ns, got)
		}
	}
}

func TestFemtoConversions(t *testing.T) {
	const period = 69_841_279 // 14.318 MHz HPET
	if got := FemtosToNs(14_318_180, period); got < 999_999_000 || got > 1_000_001_000 {
		t.Fatalf("one second of ticks = %d ns", got)
	}
	if got := NsToFemtoTicks(1_000_000_000, period); got != 14_318_179 {
		t.Fatalf("ticks for 1 s = %d", got)
	}
}
