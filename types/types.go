package types

import "ltimer-go/errcode"

// ---- Timeouts ----

// TimeoutType selects how a SetTimeout value is interpreted.
type TimeoutType uint8

const (
	TimeoutRelative TimeoutType = iota // ns from now, fires once
	TimeoutAbsolute                    // ns on the timer's own time base, fires once
	TimeoutPeriodic                    // every ns until replaced or reset
)

func (t TimeoutType) String() string {
	switch t {
	case TimeoutRelative:
		return "relative"
	case TimeoutAbsolute:
		return "absolute"
	case TimeoutPeriodic:
		return "periodic"
	}
	return "unknown"
}

// ParseTimeoutType is the inverse of String.
func ParseTimeoutType(s string) (TimeoutType, bool) {
	switch s {
	case "relative", "":
		return TimeoutRelative, true
	case "absolute":
		return TimeoutAbsolute, true
	case "periodic":
		return TimeoutPeriodic, true
	}
	return 0, false
}

// MarshalText encodes the type by name so bus payloads read "periodic".
func (t TimeoutType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *TimeoutType) UnmarshalText(b []byte) error {
	v, ok := ParseTimeoutType(string(b))
	if !ok {
		return errcode.New(errcode.InvalidPayload, "types.timeout_type", "unknown timeout type "+string(b))
	}
	*t = v
	return nil
}

// ---- Resources ----

// PmemRegion is a physical memory range a timer needs mapped.
type PmemRegion struct {
	Base   uint64 `json:"base"`
	Length uint64 `json:"length"`
}

// IRQType selects which fields of IRQ are meaningful.
type IRQType uint8

const (
	IRQInterrupt IRQType = iota // plain interrupt line
	IRQIOAPIC                   // IOAPIC pin
	IRQMSI                      // message-signalled vector
)

func (t IRQType) String() string {
	switch t {
	case IRQInterrupt:
		return "interrupt"
	case IRQIOAPIC:
		return "ioapic"
	case IRQMSI:
		return "msi"
	}
	return "unknown"
}

// IRQ describes one interrupt a timer raises. Only the block matching Type
// is meaningful.
type IRQ struct {
	Type IRQType `json:"type"`

	// IRQInterrupt
	Number uint32 `json:"number,omitempty"`

	// IRQIOAPIC
	IOAPIC   uint32 `json:"ioapic,omitempty"`
	Pin      uint32 `json:"pin,omitempty"`
	Level    bool   `json:"level,omitempty"`    // level-triggered
	Polarity bool   `json:"polarity,omitempty"` // active low

	// IRQMSI
	PCIBus  uint32 `json:"pci_bus,omitempty"`
	PCIDev  uint32 `json:"pci_dev,omitempty"`
	PCIFunc uint32 `json:"pci_func,omitempty"`
	Handle  uint32 `json:"handle,omitempty"`

	// IRQIOAPIC and IRQMSI
	Vector uint32 `json:"vector,omitempty"`
}
