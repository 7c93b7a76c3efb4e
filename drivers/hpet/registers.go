package hpet

// Register offsets from the block base.
const (
	regGenCap      = 0x000 // general capabilities and ID
	regGenConfig   = 0x010 // general configuration
	regIntStatus   = 0x020 // general interrupt status (write 1 to clear)
	regMainCounter = 0x0F0 // main counter value

	regTimer0    = 0x100 // timer 0 block
	timerStride  = 0x20
	offTimerConf = 0x00 // config and capability
	offTimerCmp  = 0x08 // comparator
	offTimerFSB  = 0x10 // FSB interrupt route
)

// General capabilities.
const (
	capCountSize64 = 1 << 13 // main counter is 64 bits wide
	capLegRoute    = 1 << 15 // legacy replacement routing supported
	capPeriodShift = 32      // bits 63:32 hold the tick period in fs
)

// General configuration.
const (
	cfgEnable   = 1 << 0
	cfgLegRoute = 1 << 1
)

// Timer N configuration and capability.
const (
	tnIntTypeLevel  = 1 << 1
	tnIntEnable     = 1 << 2
	tnPeriodic      = 1 << 3
	tn32Mode        = 1 << 8
	tnRouteShift    = 9
	tnRouteMask     = 0x1F << tnRouteShift
	tnFSBEnable     = 1 << 14
	tnFSBCap        = 1 << 15
	tnRouteCapShift = 32 // bits 63:32: IOAPIC pins this timer can drive
)

// MaxPeriodFs is the slowest tick the HPET specification allows (100 ns).
const MaxPeriodFs = 100_000_000

// msiAddress is the local-APIC message address used for FSB delivery.
const msiAddress = 0xFEE00000

func timerReg(n int, off uintptr) uintptr {
	return regTimer0 + uintptr(n)*timerStride + off
}
