package hpet

import (
	"errors"
	"testing"

	"ltimer-go/errcode"
	"ltimer-go/hw/hwtest"
)

const period14MHz = 69_841_279 // fs, typical ICH HPET

func newRegs(t *testing.T, confCap uint64) *hwtest.Regs {
	t.Helper()
	r := hwtest.NewRegs()
	r.Set(regGenCap, uint64(period14MHz)<<capPeriodShift|capCountSize64|capLegRoute)
	r.Set(timerReg(0, offTimerConf), confCap)
	return r
}

func TestProbes(t *testing.T) {
	r := newRegs(t, uint64(0x00F0_0000)<<tnRouteCapShift|tnFSBCap|tnIntTypeLevel)
	if got := PeriodFs(r); got != period14MHz {
		t.Fatalf("PeriodFs = %d", got)
	}
	if !SupportsFSB(r) {
		t.Fatal("SupportsFSB = false")
	}
	if got := IOAPICMask(r); got != 0x00F0_0000 {
		t.Fatalf("IOAPICMask = %#x", got)
	}
	if !Level(r) {
		t.Fatal("Level = false")
	}
}

func TestConfigureIOAPIC(t *testing.T) {
	r := newRegs(t, uint64(1<<20|1<<21)<<tnRouteCapShift)
	d := New(r)
	if err := d.Configure(Config{IRQ: 20, IOAPIC: true, Level: true}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	conf := r.Get(timerReg(0, offTimerConf))
	if got := (conf & tnRouteMask) >> tnRouteShift; got != 20 {
		t.Fatalf("route = %d", got)
	}
	if conf&tnIntEnable == 0 || conf&tnIntTypeLevel == 0 || conf&tnFSBEnable != 0 {
		t.Fatalf("timer conf = %#x", conf)
	}
	if r.Get(regGenConfig)&cfgEnable == 0 {
		t.Fatal("counter not running")
	}
	if r.Get(regGenConfig)&cfgLegRoute != 0 {
		t.Fatal("legacy routing left on")
	}
	if r.Get(timerReg(0, offTimerCmp)) != ^uint64(0) {
		t.Fatal("comparator not disarmed")
	}
}

func TestConfigureMSI(t *testing.T) {
	r := newRegs(t, tnFSBCap)
	d := New(r)
	if err := d.Configure(Config{IRQ: 0x30}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if got := r.Get(timerReg(0, offTimerFSB)); got != uint64(msiAddress)<<32|0x30 {
		t.Fatalf("fsb route = %#x", got)
	}
	if r.Get(timerReg(0, offTimerConf))&tnFSBEnable == 0 {
		t.Fatal("FSB delivery not enabled")
	}
}

func TestConfigureRejects(t *testing.T) {
	cases := []struct {
		name string
		gcap uint64
		conf uint64
		cfg  Config
		code errcode.Code
	}{
		{"zero period", capCountSize64, tnFSBCap, Config{IRQ: 1}, errcode.ProbeFailed},
		{"slow period", uint64(MaxPeriodFs+1)<<capPeriodShift | capCountSize64, tnFSBCap, Config{}, errcode.ProbeFailed},
		{"32-bit counter", uint64(period14MHz) << capPeriodShift, tnFSBCap, Config{}, errcode.ProbeFailed},
		{"no fsb", uint64(period14MHz)<<capPeriodShift | capCountSize64, 0, Config{IRQ: 0x30}, errcode.ProbeFailed},
		{"pin outside mask", uint64(period14MHz)<<capPeriodShift | capCountSize64, uint64(1<<2) << tnRouteCapShift, Config{IRQ: 3, IOAPIC: true}, errcode.InvalidParams},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := hwtest.NewRegs()
			r.Set(regGenCap, c.gcap)
			r.Set(timerReg(0, offTimerConf), c.conf)
			err := New(r).Configure(c.cfg)
			if !errors.Is(err, c.code) {
				t.Fatalf("err = %v, want %s", err, c.code)
			}
		})
	}
}

func TestTimeAndTimeout(t *testing.T) {
	r := newRegs(t, tnFSBCap)
	d := New(r)
	if err := d.Configure(Config{IRQ: 0x30}); err != nil {
		t.Fatal(err)
	}
	r.Set(regMainCounter, 14_318_180) // ~1 s
	now := d.GetTime()
	if now < 999_000_000 || now > 1_001_000_000 {
		t.Fatalf("GetTime = %d", now)
	}

	if err := d.SetTimeout(now + 1_000_000); err != nil {
		t.Fatalf("SetTimeout: %v", err)
	}
	cmp := r.Get(timerReg(0, offTimerCmp))
	if cmp <= 14_318_180 || cmp > 14_318_180+14_319 {
		t.Fatalf("comparator = %d", cmp)
	}

	if err := d.SetTimeout(now - 1000); !errors.Is(err, errcode.TimeInPast) {
		t.Fatalf("past deadline err = %v", err)
	}
}

func TestTimeoutPassesWhileArming(t *testing.T) {
	r := newRegs(t, tnFSBCap)
	d := New(r)
	if err := d.Configure(Config{IRQ: 0x30}); err != nil {
		t.Fatal(err)
	}
	r.Set(regMainCounter, 1000)
	// The counter jumps past the target as the comparator is written.
	r.OnWrite(timerReg(0, offTimerCmp), func(v uint64) uint64 {
		r.Set(regMainCounter, v+10)
		return v
	})
	if err := d.SetTimeout(d.GetTime() + 500); !errors.Is(err, errcode.TimeInPast) {
		t.Fatalf("err = %v", err)
	}
}

func TestStartStopAck(t *testing.T) {
	r := newRegs(t, tnFSBCap)
	d := New(r)
	d.Start()
	if r.Get(regGenConfig)&cfgEnable == 0 {
		t.Fatal("Start did not enable")
	}
	d.Stop()
	if r.Get(regGenConfig)&cfgEnable != 0 {
		t.Fatal("Stop did not disable")
	}
	r.ResetOps()
	d.Ack()
	if w := r.Writes(regIntStatus); len(w) != 1 || w[0] != 1 {
		t.Fatalf("Ack writes = %v", w)
	}
}
