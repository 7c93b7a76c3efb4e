package heartbeat

import (
	"context"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"

	"ltimer-go/bus"
	"ltimer-go/drivers/pit"
	"ltimer-go/hw/hwtest"
	"ltimer-go/ltimer"
	"ltimer-go/services/timer"
	"ltimer-go/types"
)

func TestPeriod(t *testing.T) {
	cases := []struct {
		cfg  types.HeartbeatConfig
		want uint64
	}{
		{types.HeartbeatConfig{}, 1_000_000_000},
		{types.HeartbeatConfig{IntervalMs: 20}, 20_000_000},
		{types.HeartbeatConfig{Hz: 4}, 250_000_000},
		{types.HeartbeatConfig{IntervalMs: 5, Hz: 4}, 5_000_000},
	}
	for _, c := range cases {
		if got := period(c.cfg); got != c.want {
			t.Errorf("period(%+v) = %d, want %d", c.cfg, got, c.want)
		}
	}
}

func TestHeartbeatFollowsTimer(t *testing.T) {
	defer leaktest.Check(t)()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.NewBus(16)
	ports := hwtest.NewPorts()
	tsc := &hwtest.Counter{}
	svc := timer.New(b.NewConnection("timer"), timer.Options{
		Ops: ltimer.Ops{Ports: ports, TSC: tsc},
	})
	_ = svc.Start(ctx)
	defer func() {
		cancel()
		<-svc.Done()
	}()
	hb := &Service{}
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))

	client := b.NewConnection("test")
	client.Publish(client.NewMessage(topicConfigHeartbeat, map[string]any{"interval_ms": 10}, true))
	client.Publish(client.NewMessage(timer.TopicConfig, types.TimerConfig{Backend: "pit", PIT: types.PITParams{TSCHz: 1_000_000_000}}, true))

	// 10 ms periodic: mode 2, count ceil(0.01 * 1193182) = 11932 = 0x2E9C.
	armed := []hwtest.PortWrite{{Port: pit.PortCmd, Val: 0x34}, {Port: pit.PortCh0, Val: 0x9C}, {Port: pit.PortCh0, Val: 0x2E}}
	deadline := time.Now().Add(time.Second)
	for !hasSeq(ports.Writes(), armed) {
		if time.Now().After(deadline) {
			t.Fatalf("heartbeat never armed the timer: %v", ports.Writes())
		}
		time.Sleep(time.Millisecond)
	}

	beats := client.Subscribe(TopicBeat)
	defer client.Unsubscribe(beats)
	tsc.Set(10_000_000)
	svc.IRQ(types.IRQ{Type: types.IRQInterrupt, Number: pit.IRQ})

	select {
	case m := <-beats.Channel():
		beat := m.Payload.(types.Beat)
		if beat.Seq != 1 || beat.TimeNs != 10_000_000 {
			t.Fatalf("beat = %+v", beat)
		}
		if !m.Retained {
			t.Fatal("beat not retained")
		}
	case <-time.After(time.Second):
		t.Fatal("no beat")
	}
}

func hasSeq(got, want []hwtest.PortWrite) bool {
	for i := 0; i+len(want) <= len(got); i++ {
		match := true
		for j := range want {
			if got[i+j] != want[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
