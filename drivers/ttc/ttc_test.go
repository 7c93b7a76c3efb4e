package ttc

import (
	"errors"
	"testing"

	"ltimer-go/drivers/clk"
	"ltimer-go/errcode"
	"ltimer-go/hw/hwtest"
)

// ch2 is the byte offset of timer 2 inside every register array.
const ch2 = 4

func newChannel(t *testing.T, id ID) (*Device, *hwtest.Regs) {
	t.Helper()
	regs := hwtest.NewRegs()
	off, _ := id.channelOffset()
	regs.ClearOnRead(off + regIntSts)
	d, err := New(regs, Config{ID: id})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d.Configure()
	return d, regs
}

func TestUnknownChannel(t *testing.T) {
	regs := hwtest.NewRegs()
	d, err := New(regs, Config{ID: ID(6)})
	if !errors.Is(err, errcode.InvalidParams) || d != nil {
		t.Fatalf("New = %v, %v", d, err)
	}
	if len(regs.Ops()) != 0 {
		t.Fatal("registers touched for unknown channel")
	}
	if _, err := ParseID("ttc2_timer1"); !errors.Is(err, errcode.InvalidParams) {
		t.Fatalf("ParseID err = %v", err)
	}
}

func TestChannelResources(t *testing.T) {
	r, _ := TTC1Timer3.Region()
	if r.Base != TTC1Base || r.Length != BlockSize {
		t.Fatalf("region = %+v", r)
	}
	irq, _ := TTC0Timer1.IRQ()
	if irq.Number != 42 {
		t.Fatalf("irq = %+v", irq)
	}
	id, err := ParseID("ttc1_timer2")
	if err != nil || id != TTC1Timer2 {
		t.Fatalf("ParseID = %v, %v", id, err)
	}
}

func TestConfigure(t *testing.T) {
	d, regs := newChannel(t, TTC0Timer2)
	if got := regs.Get(ch2 + regCntCtrl); got != cntRst|cntStop|cntInt|cntMatch {
		t.Fatalf("cnt_ctrl = %#x", got)
	}
	if got := regs.Get(ch2 + regIntEn); got != 0 {
		t.Fatalf("int_en = %#x", got)
	}
	if got := regs.Get(ch2 + regInterval); got != CounterMax {
		t.Fatalf("interval = %#x", got)
	}
	if regs.Get(ch2+regClkCtrl) != 0 {
		t.Fatal("prescaler not bypassed")
	}
	if d.Freq() != PCLKFreq {
		t.Fatalf("Freq = %d", d.Freq())
	}
	// Timer 1's words are untouched.
	for _, op := range regs.Ops() {
		if op.Write && op.Off%0xC == 0 {
			t.Fatalf("write to another channel at %#x", op.Off)
		}
	}
}

func TestOneshotMatchWraps(t *testing.T) {
	d, regs := newChannel(t, TTC0Timer2)
	regs.Set(ch2+regCntVal, 65500)
	// 901 ns at 111.11 MHz is 100 ticks.
	if err := d.SetTimeout(901, false); err != nil {
		t.Fatalf("SetTimeout: %v", err)
	}
	if got := regs.Get(ch2 + regMatch0); got != 64 {
		t.Fatalf("match0 = %d, want 64", got)
	}
	if got := regs.Get(ch2 + regIntEn); got != intMatch0 {
		t.Fatalf("int_en = %#x", got)
	}
	if regs.Get(ch2+regCntCtrl)&cntInt != 0 {
		t.Fatal("interval mode left on for oneshot")
	}
}

func TestPeriodicUsesInterval(t *testing.T) {
	d, regs := newChannel(t, TTC0Timer2)
	if err := d.SetTimeout(1_000_000, true); err != nil {
		t.Fatalf("SetTimeout: %v", err)
	}
	if got := regs.Get(ch2 + regClkCtrl); got != uint64(clkPrescaleEn|clkPrescaleVal(0)) {
		t.Fatalf("clk_ctrl = %#x", got)
	}
	if d.Freq() != PCLKFreq/2 {
		t.Fatalf("Freq = %d", d.Freq())
	}
	if got := regs.Get(ch2 + regInterval); got != 55555 {
		t.Fatalf("interval = %d", got)
	}
	if regs.Get(ch2+regCntCtrl)&cntInt == 0 {
		t.Fatal("interval mode not set")
	}
	if got := regs.Get(ch2 + regIntEn); got != intInterval {
		t.Fatalf("int_en = %#x", got)
	}
}

func TestTimeoutTooBigLeavesHardware(t *testing.T) {
	d, regs := newChannel(t, TTC0Timer1)
	regs.ResetOps()
	err := d.SetTimeout(60_000_000_000, false)
	if !errors.Is(err, errcode.TimeTooLarge) {
		t.Fatalf("err = %v", err)
	}
	for _, op := range regs.Ops() {
		if op.Write {
			t.Fatalf("register written on failure: %+v", op)
		}
	}
	if d.Freq() != PCLKFreq {
		t.Fatalf("cached freq changed to %d", d.Freq())
	}
}

func TestHandleIRQDrainsStatus(t *testing.T) {
	d, regs := newChannel(t, TTC0Timer2)
	regs.Set(ch2+regIntEn, intMatch0|intInterval)
	regs.Set(ch2+regIntSts, intMatch0)
	if got := d.HandleIRQ(); got != intMatch0 {
		t.Fatalf("status = %#x", got)
	}
	if got := regs.Get(ch2 + regIntEn); got != intInterval {
		t.Fatalf("int_en = %#x", got)
	}
	if got := regs.Get(ch2 + regIntSts); got != 0 {
		t.Fatalf("status not cleared: %#x", got)
	}
}

func TestStartStopReset(t *testing.T) {
	d, regs := newChannel(t, TTC0Timer2)
	d.Start()
	if regs.Get(ch2+regCntCtrl)&cntStop != 0 {
		t.Fatal("still stopped")
	}
	regs.Set(ch2+regIntSts, intMatch0)
	d.Stop()
	if regs.Get(ch2+regCntCtrl)&cntStop == 0 {
		t.Fatal("not stopped")
	}
	if regs.Get(ch2+regIntSts) != 0 {
		t.Fatal("Stop did not drain status")
	}
	regs.Set(ch2+regIntEn, intInterval)
	d.Reset()
	if regs.Get(ch2+regIntEn) != 0 || regs.Get(ch2+regCntCtrl)&cntStop != 0 {
		t.Fatal("Reset left an interrupt armed or the counter stopped")
	}
}

func TestGetTimeAndParentClock(t *testing.T) {
	d, regs := newChannel(t, TTC0Timer2)
	regs.Set(ch2+regCntVal, 1111)
	if got := d.GetTime(); got != 9999 {
		t.Fatalf("GetTime = %d", got)
	}

	regs2 := hwtest.NewRegs()
	d2, err := New(regs2, Config{ID: TTC1Timer1, Parent: clk.Fixed{ID: clk.CPU1X, Hz: 100_000_000}})
	if err != nil {
		t.Fatal(err)
	}
	d2.Configure()
	if d2.Freq() != 100_000_000 || d2.Clock().Freq() != 100_000_000 {
		t.Fatalf("Freq = %d", d2.Freq())
	}
	if err := d2.Clock().Recal(); !errors.Is(err, errcode.Unsupported) {
		t.Fatalf("Recal = %v", err)
	}
}
