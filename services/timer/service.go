// Package timer runs one logical timer behind the bus.
//
// The service goroutine is the only code that touches the LogicalTimer.
// Interrupt handlers call (*Service).IRQ, which only enqueues, so interrupt
// handling and control requests are serialised by construction.
//
// Topics:
//
//	config/timer               types.TimerConfig (retained); rebuilds the timer
//	timer/control/<verb>       set_timeout | reset | get_time | resources
//	timer/state                types.TimerState (retained)
//	timer/event/fired          types.TimerFired
package timer

import (
	"context"
	"sync/atomic"

	"ltimer-go/bus"
	"ltimer-go/errcode"
	"ltimer-go/ltimer"
	"ltimer-go/types"
	"ltimer-go/x/logx"
	"ltimer-go/x/payload"
	"ltimer-go/x/timex"
)

var (
	TopicConfig  = bus.T("config", "timer")
	TopicControl = bus.T("timer", "control", "+")
	TopicState   = bus.T("timer", "state")
	TopicFired   = bus.T("timer", "event", "fired")
)

// ControlTopic addresses one control verb.
func ControlTopic(verb string) bus.Topic { return bus.T("timer", "control", verb) }

// Factory builds an initialised timer for a configuration.
type Factory func(cfg types.TimerConfig) (*ltimer.LogicalTimer, error)

type Options struct {
	// Ops are passed to ltimer.FromConfig when Factory is nil.
	Ops     ltimer.Ops
	Factory Factory

	Registerer Registerer // nil => metrics are not exported
	ISRBuf     int        // interrupt queue depth, default 16
}

type Service struct {
	conn    *bus.Connection
	factory Factory
	log     logx.Logger
	metrics *collectors

	irqQ    chan types.IRQ
	drops   atomic.Uint32
	stopped chan struct{}

	// Owned by the service goroutine.
	lt  *ltimer.LogicalTimer
	seq uint64
}

func New(conn *bus.Connection, opts Options) *Service {
	if opts.ISRBuf <= 0 {
		opts.ISRBuf = 16
	}
	s := &Service{
		conn:    conn,
		factory: opts.Factory,
		log:     logx.New("timer"),
		irqQ:    make(chan types.IRQ, opts.ISRBuf),
		stopped: make(chan struct{}),
	}
	if s.factory == nil {
		ops := opts.Ops
		s.factory = func(cfg types.TimerConfig) (*ltimer.LogicalTimer, error) {
			return ltimer.FromConfig(ops, cfg)
		}
	}
	s.metrics = newCollectors(func() float64 { return float64(s.drops.Load()) })
	s.metrics.registerAll(opts.Registerer, s.log)
	return s
}

// IRQ queues an interrupt for the service goroutine. It never blocks and is
// safe to call from an interrupt handler; when the queue is full the
// interrupt is dropped and counted.
func (s *Service) IRQ(irq types.IRQ) {
	select {
	case s.irqQ <- irq:
	default:
		s.drops.Add(1)
	}
}

// Drops reports interrupts lost to a full queue.
func (s *Service) Drops() uint32 { return s.drops.Load() }

// Done is closed when Run returns.
func (s *Service) Done() <-chan struct{} { return s.stopped }

// Start runs the service in its own goroutine.
func (s *Service) Start(ctx context.Context) error {
	go s.Run(ctx)
	return nil
}

// Run serves until ctx is cancelled, then destroys the timer.
func (s *Service) Run(ctx context.Context) {
	defer close(s.stopped)

	cfgSub := s.conn.Subscribe(TopicConfig)
	ctrlSub := s.conn.Subscribe(TopicControl)
	defer s.conn.Unsubscribe(cfgSub)
	defer s.conn.Unsubscribe(ctrlSub)

	s.publishState("idle", "awaiting_config", nil)

	for {
		select {
		case <-ctx.Done():
			s.teardown()
			s.publishState("stopped", "context_cancelled", nil)
			s.log.Infof("stopped")
			return

		case msg := <-cfgSub.Channel():
			var cfg types.TimerConfig
			if err := payload.Decode(msg.Payload, &cfg); err != nil {
				s.publishState("error", "config_decode_failed", err)
				continue
			}
			s.applyConfig(cfg)

		case msg := <-ctrlSub.Channel():
			s.handleControl(msg)

		case irq := <-s.irqQ:
			s.handleIRQ(irq)
		}
	}
}

func (s *Service) applyConfig(cfg types.TimerConfig) {
	s.teardown()
	lt, err := s.factory(cfg)
	if err != nil {
		s.metrics.failed("init", string(errcode.Of(err)))
		s.log.Errorf("timer init failed: %v", err)
		s.publishState("error", "timer_init_failed", err)
		return
	}
	s.lt = lt
	s.metrics.active(lt.Kind().String())
	s.log.Infof("using %s", lt.Kind())
	s.publishState("ready", "configured", nil)
}

func (s *Service) teardown() {
	if s.lt == nil {
		return
	}
	s.metrics.inactive()
	s.lt.Destroy()
	s.lt = nil
}

// handleControl serves timer/control/<verb>.
func (s *Service) handleControl(msg *bus.Message) {
	if msg.Topic.Len() != 3 {
		return
	}
	verb, _ := msg.Topic.At(2).(string)
	if s.lt == nil {
		s.replyErr(msg, verb, errcode.NotReady)
		return
	}

	switch verb {
	case "set_timeout":
		var req types.SetTimeout
		if err := payload.Decode(msg.Payload, &req); err != nil {
			s.replyErr(msg, verb, errcode.Wrap(errcode.InvalidPayload, "timer.set_timeout", err))
			return
		}
		if err := s.lt.SetTimeout(req.Ns, req.Type); err != nil {
			s.replyErr(msg, verb, err)
			return
		}
		s.metrics.armedTimeout(req.Type.String())
		s.conn.Reply(msg, types.TimerReply{OK: true}, false)

	case "reset":
		if err := s.lt.Reset(); err != nil {
			s.replyErr(msg, verb, err)
			return
		}
		s.conn.Reply(msg, types.TimerReply{OK: true}, false)

	case "get_time":
		now, err := s.lt.GetTime()
		if err != nil {
			s.replyErr(msg, verb, err)
			return
		}
		s.conn.Reply(msg, types.TimerReply{OK: true, TimeNs: now}, false)

	case "resources":
		s.conn.Reply(msg, s.lt.Resources(), false)

	default:
		s.replyErr(msg, verb, errcode.Unsupported)
	}
}

func (s *Service) handleIRQ(irq types.IRQ) {
	if s.lt == nil {
		return
	}
	s.metrics.irq()
	if err := s.lt.HandleIRQ(irq); err != nil {
		s.metrics.failed("handle_irq", string(errcode.Of(err)))
		s.log.Warnf("handle irq: %v", err)
	}
	s.seq++
	now, _ := s.lt.GetTime()
	s.conn.Publish(s.conn.NewMessage(TopicFired, types.TimerFired{Seq: s.seq, TimeNs: now}, false))
}

func (s *Service) publishState(level, status string, err error) {
	st := types.TimerState{Level: level, Status: status, TS: timex.NowMs()}
	if s.lt != nil {
		st.Backend = s.lt.Kind().String()
	}
	if err != nil {
		st.Error = err.Error()
	}
	s.conn.Publish(s.conn.NewMessage(TopicState, st, true))
}

func (s *Service) replyErr(req *bus.Message, op string, err error) {
	code := errcode.Of(err)
	if code != errcode.NotReady {
		s.metrics.failed(op, string(code))
	}
	s.conn.Reply(req, types.ErrorReply{OK: false, Error: string(code)}, false)
}
