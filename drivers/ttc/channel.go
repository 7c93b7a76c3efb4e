package ttc

import (
	"ltimer-go/errcode"
	"ltimer-go/types"
)

// ID names one counter channel of the two TTC blocks.
type ID uint8

const (
	TTC0Timer1 ID = iota
	TTC0Timer2
	TTC0Timer3
	TTC1Timer1
	TTC1Timer2
	TTC1Timer3
)

const (
	TTC0Base  = 0xF8001000
	TTC1Base  = 0xF8002000
	BlockSize = 0x1000
)

var channelNames = [...]string{"ttc0_timer1", "ttc0_timer2", "ttc0_timer3", "ttc1_timer1", "ttc1_timer2", "ttc1_timer3"}

// GIC shared peripheral interrupts, one per channel.
var channelIRQs = [...]uint32{42, 43, 44, 69, 70, 71}

func (id ID) valid() bool { return int(id) < len(channelNames) }

func (id ID) String() string {
	if !id.valid() {
		return "ttc_invalid"
	}
	return channelNames[id]
}

// ParseID maps a channel name like "ttc0_timer1" to its ID.
func ParseID(s string) (ID, error) {
	for i, n := range channelNames {
		if n == s {
			return ID(i), nil
		}
	}
	return 0, errcode.New(errcode.InvalidParams, "ttc.parse_id", "unknown channel "+s)
}

// channelOffset is the byte offset of the channel's word in each register.
func (id ID) channelOffset() (uintptr, error) {
	if !id.valid() {
		return 0, errcode.New(errcode.InvalidParams, "ttc", "unknown channel")
	}
	return uintptr(id%3) * 4, nil
}

// Region is the register block holding the channel.
func (id ID) Region() (types.PmemRegion, error) {
	if !id.valid() {
		return types.PmemRegion{}, errcode.New(errcode.InvalidParams, "ttc", "unknown channel")
	}
	base := uint64(TTC0Base)
	if id >= TTC1Timer1 {
		base = TTC1Base
	}
	return types.PmemRegion{Base: base, Length: BlockSize}, nil
}

// IRQ is the channel's interrupt.
func (id ID) IRQ() (types.IRQ, error) {
	if !id.valid() {
		return types.IRQ{}, errcode.New(errcode.InvalidParams, "ttc", "unknown channel")
	}
	return types.IRQ{Type: types.IRQInterrupt, Number: channelIRQs[id]}, nil
}
