package clk

import (
	"ltimer-go/errcode"
	"ltimer-go/x/freq"
)

// PrescaleSteps is the number of divider settings a 4-bit power-of-two
// prescaler offers on top of bypass: field value N divides by 2^(N+1).
const PrescaleSteps = 16

// PrescaleSink programs a prescaler. enabled=false bypasses the divider;
// otherwise the input is divided by 2^(val+1).
type PrescaleSink interface {
	SetPrescale(enabled bool, val uint8)
	Prescale() (enabled bool, val uint8)
}

// Prescaled is a leaf node behind a power-of-two prescaler. Its input comes
// from Parent when set, else from Fallback.
type Prescaled struct {
	ID       ID
	Parent   Source
	Fallback freq.Hz
	Sink     PrescaleSink

	hz freq.Hz
}

func (p *Prescaled) Name() string { return string(p.ID) }

// Freq returns the cached output rate.
func (p *Prescaled) Freq() freq.Hz { return p.hz }

func (p *Prescaled) input() freq.Hz {
	if p.Parent != nil {
		if hz := p.Parent.Freq(); hz != 0 {
			return hz
		}
	}
	return p.Fallback
}

// Sync refreshes the cached rate from the prescaler registers.
func (p *Prescaled) Sync() freq.Hz {
	fin := p.input()
	if en, val := p.Sink.Prescale(); en {
		fin >>= uint(val) + 1
	}
	p.hz = fin
	return fin
}

// SetFreq picks the smallest division that brings the output at or below hz
// and programs it. If even the largest division leaves the output above hz
// nothing is written and that (too fast) rate is returned; callers must
// compare the result against what they asked for.
func (p *Prescaled) SetFreq(hz freq.Hz) freq.Hz {
	fin := p.input()
	ps := 0
	for fin > hz && ps <= PrescaleSteps {
		ps++
		fin >>= 1
	}
	if ps > PrescaleSteps {
		return p.input() >> PrescaleSteps
	}
	if ps > 0 {
		p.Sink.SetPrescale(true, uint8(ps-1))
	} else {
		p.Sink.SetPrescale(false, 0)
	}
	p.hz = fin
	return fin
}

// Recal is not supported: the input is a fixed crystal-derived rate.
func (p *Prescaled) Recal() error { return errcode.Unsupported }
