// Package timeofday derives wall-clock time from an RTC reading and the
// logical timer's monotonic nanoseconds.
package timeofday

import (
	"context"
	"sync"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ds3231"

	"ltimer-go/bus"
	"ltimer-go/errcode"
	"ltimer-go/services/timer"
	"ltimer-go/types"
)

// RTC is a battery-backed wall clock.
type RTC interface {
	ReadTime() (time.Time, error)
}

// Monotonic is the time base; *ltimer.LogicalTimer satisfies it.
type Monotonic interface {
	GetTime() (uint64, error)
}

// BusTime reads the logical timer through the timer service's get_time
// verb, leaving the service as the timer's only owner.
type BusTime struct {
	Conn    *bus.Connection
	Timeout time.Duration // 0 => 100 ms
}

func (b BusTime) GetTime() (uint64, error) {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = 100 * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	reply, err := b.Conn.RequestWait(ctx, b.Conn.NewMessage(timer.ControlTopic("get_time"), nil, false))
	if err != nil {
		return 0, errcode.Wrap(errcode.NotReady, "timeofday.get_time", err)
	}
	switch p := reply.Payload.(type) {
	case types.TimerReply:
		return p.TimeNs, nil
	case types.ErrorReply:
		return 0, errcode.New(errcode.Code(p.Error), "timeofday.get_time", "timer service")
	default:
		return 0, errcode.New(errcode.InvalidPayload, "timeofday.get_time", "unexpected reply")
	}
}

type ds3231RTC struct{ dev ds3231.Device }

// NewDS3231 returns an RTC backed by a DS3231 on bus. It fails if the
// oscillator is stopped, since the time would be meaningless.
func NewDS3231(bus drivers.I2C) (RTC, error) {
	d := ds3231.New(bus)
	if !d.Configure() {
		return nil, errcode.New(errcode.ProbeFailed, "timeofday.ds3231", "configure failed")
	}
	if !d.IsRunning() {
		return nil, errcode.New(errcode.NotReady, "timeofday.ds3231", "oscillator stopped")
	}
	return &ds3231RTC{dev: d}, nil
}

func (r *ds3231RTC) ReadTime() (time.Time, error) { return r.dev.ReadTime() }

// Clock is wall time = RTC epoch + monotonic time elapsed since the epoch
// was latched.
type Clock struct {
	mono Monotonic

	mu     sync.Mutex
	epoch  time.Time
	at     uint64
	synced bool
}

func New(mono Monotonic) *Clock { return &Clock{mono: mono} }

// Sync latches the RTC reading against the current monotonic time.
func (c *Clock) Sync(rtc RTC) error {
	wall, err := rtc.ReadTime()
	if err != nil {
		return errcode.Wrap(errcode.Error, "timeofday.sync", err)
	}
	now, err := c.mono.GetTime()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.epoch, c.at, c.synced = wall, now, true
	c.mu.Unlock()
	return nil
}

// Now returns the current wall time. A time base that has gone backwards
// (a wrapping counter such as the TTC) needs a fresh Sync.
func (c *Clock) Now() (time.Time, error) {
	now, err := c.mono.GetTime()
	if err != nil {
		return time.Time{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.synced {
		return time.Time{}, errcode.New(errcode.NotReady, "timeofday.now", "not synced")
	}
	if now < c.at {
		return time.Time{}, errcode.New(errcode.NotReady, "timeofday.now", "time base went backwards")
	}
	return c.epoch.Add(time.Duration(now - c.at)), nil
}
