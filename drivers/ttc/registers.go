package ttc

// Register offsets within a TTC block for timer 1. Each register is an
// array of three words, one per channel; see channelOffset.
const (
	regClkCtrl   = 0x00 // clock control
	regCntCtrl   = 0x0C // counter control
	regCntVal    = 0x18 // counter value (read only)
	regInterval  = 0x24 // interval value
	regMatch0    = 0x30 // match 0; match 1 at +0x0C, match 2 at +0x18
	regIntSts    = 0x54 // interrupt status, clear on read
	regIntEn     = 0x60 // interrupt enable
	regEventCtrl = 0x6C // event timer control
	regEvent     = 0x78 // event register
)

// Clock control.
const (
	clkExtNegEdge   = 1 << 6
	clkExtSrcEn     = 1 << 5
	clkPrescaleMask = 0xF << 1
	clkPrescaleEn   = 1 << 0
)

func clkPrescaleVal(n uint8) uint32 { return uint32(n&0xF) << 1 }

// Counter control.
const (
	cntWavePol = 1 << 6
	cntWaveEn  = 1 << 5
	cntRst     = 1 << 4
	cntMatch   = 1 << 3 // match mode
	cntDecr    = 1 << 2
	cntInt     = 1 << 1 // interval mode
	cntStop    = 1 << 0
)

// Interrupt enable and status.
const (
	intEventOvr = 1 << 5
	intCntOvr   = 1 << 4
	intMatch2   = 1 << 3
	intMatch1   = 1 << 2
	intMatch0   = 1 << 1
	intInterval = 1 << 0
)

// Event control.
const (
	evOvr = 1 << 2
	evLo  = 1 << 1
	evEn  = 1 << 0
)

const (
	CounterBits = 16
	CounterMax  = 1<<CounterBits - 1

	// PCLKFreq is the CPU_1X rate feeding the block when no parent clock is
	// given.
	PCLKFreq = 111_110_000
)
