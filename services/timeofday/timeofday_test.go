package timeofday

import (
	"errors"
	"testing"
	"time"

	"ltimer-go/bus"
	"ltimer-go/errcode"
	"ltimer-go/services/timer"
	"ltimer-go/types"
)

// fakeI2C is a DS3231 register file.
type fakeI2C struct {
	regs [0x13]byte
}

func (f *fakeI2C) Tx(_ uint16, w, r []byte) error {
	if len(w) == 0 {
		return errors.New("empty write")
	}
	reg := int(w[0])
	if len(r) > 0 {
		copy(r, f.regs[reg:])
		return nil
	}
	copy(f.regs[reg:], w[1:])
	return nil
}

type mono struct {
	ns  uint64
	err error
}

func (m *mono) GetTime() (uint64, error) { return m.ns, m.err }

func TestDS3231Clock(t *testing.T) {
	bus := &fakeI2C{}
	// 2026-10-18 13:45:30, BCD.
	copy(bus.regs[:], []byte{0x30, 0x45, 0x13, 0x01, 0x18, 0x10, 0x26})

	rtc, err := NewDS3231(bus)
	if err != nil {
		t.Fatalf("NewDS3231: %v", err)
	}
	m := &mono{ns: 5_000}
	c := New(m)
	if _, err := c.Now(); !errors.Is(err, errcode.NotReady) {
		t.Fatalf("unsynced err = %v", err)
	}
	if err := c.Sync(rtc); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	m.ns += uint64(1500 * time.Millisecond)
	got, err := c.Now()
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2026, time.October, 18, 13, 45, 31, int(500*time.Millisecond), time.UTC)
	if !got.Equal(want) {
		t.Fatalf("Now = %v, want %v", got, want)
	}

	m.ns = 0
	if _, err := c.Now(); !errors.Is(err, errcode.NotReady) {
		t.Fatalf("backwards err = %v", err)
	}
}

func TestDS3231Stopped(t *testing.T) {
	bus := &fakeI2C{}
	bus.regs[0x0E] = 1 << 7 // EOSC
	if _, err := NewDS3231(bus); !errors.Is(err, errcode.NotReady) {
		t.Fatalf("err = %v", err)
	}
}

type fixedRTC struct {
	t   time.Time
	err error
}

func (f fixedRTC) ReadTime() (time.Time, error) { return f.t, f.err }

func TestSyncErrors(t *testing.T) {
	c := New(&mono{err: errcode.NotReady})
	if err := c.Sync(fixedRTC{t: time.Unix(0, 0)}); !errors.Is(err, errcode.NotReady) {
		t.Fatalf("timer err = %v", err)
	}
	c = New(&mono{})
	if err := c.Sync(fixedRTC{err: errors.New("i2c nak")}); err == nil {
		t.Fatal("rtc error swallowed")
	}
}

// answerGetTime replies to get_time with successive payloads.
func answerGetTime(b *bus.Bus, replies ...any) func() {
	conn := b.NewConnection("timer")
	sub := conn.Subscribe(timer.ControlTopic("get_time"))
	done := make(chan struct{})
	go func() {
		defer close(done)
		i := 0
		for msg := range sub.Channel() {
			conn.Reply(msg, replies[i%len(replies)], false)
			i++
		}
	}()
	return func() {
		conn.Unsubscribe(sub)
		<-done
	}
}

func TestBusTimeClock(t *testing.T) {
	b := bus.NewBus(4)
	stop := answerGetTime(b,
		types.TimerReply{OK: true, TimeNs: 1_000},
		types.TimerReply{OK: true, TimeNs: 1_000 + uint64(2*time.Second)},
	)
	defer stop()

	c := New(BusTime{Conn: b.NewConnection("timeofday")})
	epoch := time.Date(2026, time.October, 18, 13, 45, 30, 0, time.UTC)
	if err := c.Sync(fixedRTC{t: epoch}); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	got, err := c.Now()
	if err != nil {
		t.Fatal(err)
	}
	if want := epoch.Add(2 * time.Second); !got.Equal(want) {
		t.Fatalf("Now = %v, want %v", got, want)
	}
}

func TestBusTimeErrors(t *testing.T) {
	b := bus.NewBus(4)
	bt := BusTime{Conn: b.NewConnection("timeofday"), Timeout: 20 * time.Millisecond}

	if _, err := bt.GetTime(); !errors.Is(err, errcode.NotReady) {
		t.Fatalf("no service err = %v", err)
	}

	stop := answerGetTime(b, types.ErrorReply{Error: string(errcode.NotReady)}, "garbage")
	defer stop()
	bt.Timeout = time.Second
	if _, err := bt.GetTime(); !errors.Is(err, errcode.NotReady) {
		t.Fatalf("error reply err = %v", err)
	}
	if _, err := bt.GetTime(); !errors.Is(err, errcode.InvalidPayload) {
		t.Fatalf("bad payload err = %v", err)
	}
}
