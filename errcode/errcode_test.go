package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodesAreStable(t *testing.T) {
	cases := map[Code]string{
		Unsupported:         "unsupported",
		InvalidParams:       "invalid_params",
		ResourceUnavailable: "resource_unavailable",
		TimeTooLarge:        "time_too_large",
		TimeInPast:          "time_in_past",
		ProbeFailed:         "probe_failed",
		NotReady:            "not_ready",
	}
	for c, want := range cases {
		if c.Error() != want {
			t.Fatalf("%q changed: got %q", want, c.Error())
		}
	}
}

func TestOfAndIs(t *testing.T) {
	base := New(TimeTooLarge, "ttc.set_timeout", "max 38 ms")
	wrapped := fmt.Errorf("arm: %w", base)

	if got := Of(nil); got != OK {
		t.Fatalf("Of(nil) = %q", got)
	}
	if got := Of(TimeInPast); got != TimeInPast {
		t.Fatalf("Of(code) = %q", got)
	}
	if got := Of(wrapped); got != TimeTooLarge {
		t.Fatalf("Of(wrapped) = %q", got)
	}
	if !errors.Is(wrapped, TimeTooLarge) {
		t.Fatal("errors.Is should match the code through wrapping")
	}
	if errors.Is(wrapped, Unsupported) {
		t.Fatal("errors.Is matched the wrong code")
	}
	if got := Of(errors.New("boom")); got != Error {
		t.Fatalf("Of(plain) = %q", got)
	}
}

func TestEErrorString(t *testing.T) {
	e := &E{C: ProbeFailed, Op: "hpet.init", Msg: "period 0 fs"}
	if got, want := e.Error(), "hpet.init: probe_failed: period 0 fs"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
