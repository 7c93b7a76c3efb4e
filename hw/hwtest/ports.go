package hwtest

import "sync"

type PortWrite struct {
	Port uint16
	Val  uint8
}

// Ports records port writes and serves reads from per-port queues. When a
// queue is empty In8 falls back to InFn, then to zero.
type Ports struct {
	mu     sync.Mutex
	writes []PortWrite
	reads  map[uint16][]uint8
	InFn   func(port uint16) uint8
	Err    error // returned by every access when set
}

func NewPorts() *Ports { return &Ports{reads: map[uint16][]uint8{}} }

// Queue appends values to be returned by In8(port).
func (p *Ports) Queue(port uint16, vals ...uint8) {
	p.mu.Lock()
	p.reads[port] = append(p.reads[port], vals...)
	p.mu.Unlock()
}

func (p *Ports) In8(port uint16) (uint8, error) {
	p.mu.Lock()
	if p.Err != nil {
		p.mu.Unlock()
		return 0, p.Err
	}
	if q := p.reads[port]; len(q) > 0 {
		v := q[0]
		p.reads[port] = q[1:]
		p.mu.Unlock()
		return v, nil
	}
	fn := p.InFn
	p.mu.Unlock()
	if fn != nil {
		return fn(port), nil
	}
	return 0, nil
}

func (p *Ports) Out8(port uint16, v uint8) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.writes = append(p.writes, PortWrite{Port: port, Val: v})
	return nil
}

// Writes returns a copy of all recorded writes.
func (p *Ports) Writes() []PortWrite {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PortWrite(nil), p.writes...)
}

func (p *Ports) ResetWrites() {
	p.mu.Lock()
	p.writes = nil
	p.mu.Unlock()
}
