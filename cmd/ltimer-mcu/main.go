//go:build tinygo

// Command ltimer-mcu is the bare-metal image: it publishes the embedded
// device config, runs the timer service on identity-mapped registers and
// prints heartbeats, stamped with wall time from a DS3231 on i2c0, to the
// console.
package main

import (
	"context"
	"machine"
	"runtime"
	"time"

	"ltimer-go/bus"
	"ltimer-go/hw/mcuhw"
	"ltimer-go/ltimer"
	"ltimer-go/services/config"
	"ltimer-go/services/heartbeat"
	"ltimer-go/services/timeofday"
	"ltimer-go/services/timer"
	"ltimer-go/types"
)

const device = "zynq"

// Timer state lives in a fixed pool on this target.
var pool = mcuhw.Pool{Size: 256}

var timerSvc *timer.Service

// ltimer_irq is called from the board's interrupt vector with the GIC
// interrupt number.
//
//export ltimer_irq
func ltimerIRQ(n uint32) {
	if s := timerSvc; s != nil {
		s.IRQ(types.IRQ{Type: types.IRQInterrupt, Number: n})
	}
}

func printTopic(prefix string, t bus.Topic) {
	print(prefix, " ")
	for i := 0; i < t.Len(); i++ {
		if i > 0 {
			print("/")
		}
		switch v := t.At(i).(type) {
		case string:
			print(v)
		case int:
			print(v)
		default:
			print("?")
		}
	}
	println()
}

// openRTC configures i2c0 at 400 kHz and probes the DS3231 on it.
func openRTC() (timeofday.RTC, error) {
	i2c := machine.I2C0
	if err := i2c.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	}); err != nil {
		return nil, err
	}
	return timeofday.NewDS3231(i2c)
}

func main() {
	// Give the console a moment to attach.
	time.Sleep(2 * time.Second)
	println("[main] boot", device)

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, device)

	b := bus.NewBus(4)
	uiConn := b.NewConnection("ui")

	mon := uiConn.Subscribe(timer.TopicState)
	beats := uiConn.Subscribe(heartbeat.TopicBeat)

	timerSvc = timer.New(b.NewConnection("timer"), timer.Options{
		Ops: ltimer.Ops{Mapper: mcuhw.Identity{}, Alloc: &pool},
	})
	timerSvc.Start(ctx)
	(&heartbeat.Service{}).Start(ctx, b.NewConnection("heartbeat"))
	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	rtc, err := openRTC()
	if err != nil {
		println("[main] no rtc:", err.Error())
	}
	wall := timeofday.New(timeofday.BusTime{Conn: b.NewConnection("timeofday")})

	for {
		select {
		case m := <-mon.Channel():
			printTopic("[monitor] <-", m.Topic)
			if st, ok := m.Payload.(types.TimerState); ok {
				println("[timer]", st.Level, st.Status, st.Backend, st.Error)
				// The TTC time base restarts with each new timer.
				if st.Level == "ready" && rtc != nil {
					if err := wall.Sync(rtc); err != nil {
						println("[main] rtc sync:", err.Error())
					}
				}
			}
		case m := <-beats.Channel():
			if beat, ok := m.Payload.(types.Beat); ok {
				println("[beat]", uint32(beat.Seq), "t_ms:", uint32(beat.TimeNs/1_000_000))
				if now, err := wall.Now(); err == nil {
					println("[beat] wall", now.Format(time.RFC3339))
				}
				printMem()
			}
		}
	}
}

// printMem prints a compact snapshot of runtime memory stats without fmt.
func printMem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	println(
		"[mem]",
		"alloc:", uint32(ms.Alloc),
		"heapInuse:", uint32(ms.HeapInuse),
		"mallocs:", uint32(ms.Mallocs),
		"frees:", uint32(ms.Frees),
	)
}
