package mathx

import (
	"math"
	"testing"
)

func TestMulDiv(t *testing.T) {
	cases := []struct {
		a, b, d, want, wantCeil uint64
	}{
		{10, 3, 4, 7, 8},
		{1 << 40, 1_000_000_000, 1 << 40, 1_000_000_000, 1_000_000_000},
		{math.MaxUint64, 1_000_000_000, 1_000_000_000, math.MaxUint64, math.MaxUint64},
		{math.MaxUint64, 2, 1, math.MaxUint64, math.MaxUint64}, // saturates
		{5, 5, 0, math.MaxUint64, math.MaxUint64},
		{0, 99, 7, 0, 0},
	}
	for _, c := range cases {
		if got := MulDiv(c.a, c.b, c.d); got != c.want {
			t.Errorf("MulDiv(%d,%d,%d) = %d, want %d", c.a, c.b, c.d, got, c.want)
		}
		if got := MulDivCeil(c.a, c.b, c.d); got != c.wantCeil {
			t.Errorf("MulDivCeil(%d,%d,%d) = %d, want %d", c.a, c.b, c.d, got, c.wantCeil)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(1, 2, 65535); got != 2 {
		t.Fatalf("Clamp low = %d", got)
	}
	if got := Clamp(9, 65535, 2); got != 9 {
		t.Fatalf("Clamp swapped = %d", got)
	}
	if got := Clamp[uint64](70000, 1, 65535); got != 65535 {
		t.Fatalf("Clamp high = %d", got)
	}
}
