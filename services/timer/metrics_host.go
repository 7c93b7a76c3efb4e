//go:build !tinygo

package timer

import (
	"github.com/prometheus/client_golang/prometheus"

	"ltimer-go/x/logx"
)

// Registerer receives the service's collectors.
type Registerer = prometheus.Registerer

// collectors are the service's Prometheus metrics. They count even when no
// registerer is supplied.
type collectors struct {
	irqs    prometheus.Counter
	armed   *prometheus.CounterVec
	errors  *prometheus.CounterVec
	drops   prometheus.CounterFunc
	backend *prometheus.GaugeVec
}

func newCollectors(drops func() float64) *collectors {
	return &collectors{
		irqs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ltimer_irqs_total",
			Help: "Timer interrupts handled.",
		}),
		armed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ltimer_timeouts_armed_total",
			Help: "Timeouts armed, by timeout type.",
		}, []string{"type"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ltimer_errors_total",
			Help: "Failed timer operations, by operation and error code.",
		}, []string{"op", "code"}),
		drops: prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "ltimer_isr_drops_total",
			Help: "Interrupts dropped because the service queue was full.",
		}, drops),
		backend: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ltimer_backend",
			Help: "1 for the active timer backend.",
		}, []string{"backend"}),
	}
}

func (c *collectors) irq()                          { c.irqs.Inc() }
func (c *collectors) armedTimeout(typ string)       { c.armed.WithLabelValues(typ).Inc() }
func (c *collectors) failed(op string, code string) { c.errors.WithLabelValues(op, code).Inc() }
func (c *collectors) active(backend string)         { c.backend.WithLabelValues(backend).Set(1) }
func (c *collectors) inactive()                     { c.backend.Reset() }

func (c *collectors) toList() []prometheus.Collector {
	return []prometheus.Collector{c.irqs, c.armed, c.errors, c.drops, c.backend}
}

func (c *collectors) registerAll(reg Registerer, log logx.Logger) {
	if reg == nil {
		return
	}
	for _, col := range c.toList() {
		if err := reg.Register(col); err != nil {
			log.Errorf("metric failed to register: %v", err)
		}
	}
}
