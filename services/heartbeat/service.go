// Package heartbeat turns periodic logical-timer interrupts into retained
// heartbeat/beat messages.
package heartbeat

import (
	"context"
	"time"

	"ltimer-go/bus"
	"ltimer-go/services/timer"
	"ltimer-go/types"
	"ltimer-go/x/logx"
	"ltimer-go/x/payload"
	"ltimer-go/x/timex"
)

var (
	topicConfigHeartbeat = bus.T("config", "heartbeat")
	TopicBeat            = bus.T("heartbeat", "beat")
)

const defaultPeriod = uint64(time.Second)

type Service struct{}

// period converts a config into a timer period in ns.
func period(cfg types.HeartbeatConfig) uint64 {
	switch {
	case cfg.IntervalMs > 0:
		return cfg.IntervalMs * uint64(time.Millisecond)
	case cfg.Hz > 0:
		return timex.PeriodFromHz(cfg.Hz)
	}
	return defaultPeriod
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	log := logx.New("heartbeat")
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	stateSub := conn.Subscribe(timer.TopicState)
	firedSub := conn.Subscribe(timer.TopicFired)
	defer conn.Unsubscribe(cfgSub)
	defer conn.Unsubscribe(stateSub)
	defer conn.Unsubscribe(firedSub)

	var (
		periodNs = defaultPeriod
		ready    bool
		seq      uint64
		replySub *bus.Subscription
		replyC   <-chan *bus.Message
	)
	dropReply := func() {
		if replySub != nil {
			conn.Unsubscribe(replySub)
			replySub, replyC = nil, nil
		}
	}
	defer dropReply()

	// arm (re)programs the periodic timeout; the reply is checked in the loop.
	arm := func() {
		if !ready {
			return
		}
		dropReply()
		req := types.SetTimeout{Ns: periodNs, Type: types.TimeoutPeriodic}
		replySub = conn.Request(conn.NewMessage(timer.ControlTopic("set_timeout"), req, false))
		replyC = replySub.Channel()
	}

	for {
		select {
		case <-ctx.Done():
			log.Infof("heartbeat service stopping")
			return

		case msg := <-stateSub.Channel():
			var st types.TimerState
			if err := payload.Decode(msg.Payload, &st); err != nil {
				continue
			}
			// A new timer is published as a fresh "ready" state and starts unarmed.
			ready = st.Level == "ready"
			arm()

		case msg := <-cfgSub.Channel():
			var cfg types.HeartbeatConfig
			if err := payload.Decode(msg.Payload, &cfg); err != nil {
				log.Warnf("bad config: %v", err)
				continue
			}
			periodNs = period(cfg)
			log.Infof("heartbeat period set to %d ns", periodNs)
			arm()

		case msg := <-replyC:
			dropReply()
			if er, ok := msg.Payload.(types.ErrorReply); ok {
				log.Warnf("arming heartbeat failed: %s", er.Error)
			}

		case msg := <-firedSub.Channel():
			var ev types.TimerFired
			if err := payload.Decode(msg.Payload, &ev); err != nil {
				continue
			}
			seq++
			log.Debugf("beat %d at %d ns", seq, ev.TimeNs)
			conn.Publish(conn.NewMessage(TopicBeat, types.Beat{Seq: seq, TimeNs: ev.TimeNs}, true))
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
