// Package clk models clock sources and leaf clock nodes.
//
// A node refers to its parent only through Source, a read-only view: it can
// ask the parent for its frequency but can neither enumerate nor own it.
// Parents are resolved through a Tree the caller owns.
package clk

import (
	"ltimer-go/errcode"
	"ltimer-go/x/freq"
)

// Source is anything with a readable frequency.
type Source interface {
	Freq() freq.Hz
}

// Clock is a programmable clock node.
type Clock interface {
	Source
	Name() string
	// SetFreq programs the fastest achievable rate not above hz and returns
	// it. When hz is unreachable the returned rate exceeds hz.
	SetFreq(hz freq.Hz) freq.Hz
	// Recal re-measures the input rate.
	Recal() error
}

// ID names a clock in a Tree.
type ID string

// Zynq-7000 clocks used by the timer blocks.
const (
	CPU1X ID = "cpu_1x" // peripheral clock feeding the TTCs
)

// Fixed is a root source with a constant rate.
type Fixed struct {
	ID ID
	Hz freq.Hz
}

func (f Fixed) Freq() freq.Hz { return f.Hz }
func (f Fixed) Name() string  { return string(f.ID) }

// SetFreq cannot change a fixed source; it reports the fixed rate.
func (f Fixed) SetFreq(freq.Hz) freq.Hz { return f.Hz }

func (f Fixed) Recal() error { return errcode.Unsupported }

// Tree is a caller-owned registry of sources.
type Tree map[ID]Source

// Lookup returns the source registered under id, or nil.
func (t Tree) Lookup(id ID) Source {
	if t == nil {
		return nil
	}
	return t[id]
}
