package ltimer

import (
	"ltimer-go/drivers/ttc"
	"ltimer-go/errcode"
	"ltimer-go/types"
)

const hpetDefaultLength = 0x1000

// DescribeFromConfig describes the timer cfg selects without touching its
// hardware (the HPET probe maps and releases the block). An empty backend
// means "auto".
func DescribeFromConfig(ops Ops, cfg types.TimerConfig) (*LogicalTimer, error) {
	switch cfg.Backend {
	case "", "auto":
		return DefaultDescribe(ops)
	case "hpet":
		if cfg.HPET.Base == 0 {
			return describeHPETFromTables(ops)
		}
		region := types.PmemRegion{Base: cfg.HPET.Base, Length: cfg.HPET.Length}
		if region.Length == 0 {
			region.Length = hpetDefaultLength
		}
		if cfg.HPET.MSIVector != 0 {
			return DescribeHPET(ops, types.IRQ{Type: types.IRQMSI, Vector: cfg.HPET.MSIVector}, region)
		}
		return DescribeHPETWithRegion(ops, region)
	case "pit":
		return describe(ops, &pitBackend{hz: cfg.PIT.TSCHz})
	case "ttc":
		id, err := ttc.ParseID(cfg.TTC.Channel)
		if err != nil {
			return nil, err
		}
		return DescribeTTC(ops, TTCConfig{ID: id})
	}
	return nil, errcode.New(errcode.InvalidParams, "ltimer.from_config", "unknown backend "+cfg.Backend)
}

// FromConfig builds an initialised timer from configuration. "auto" keeps
// DefaultInit's fallback to the PIT when an HPET fails to initialise.
func FromConfig(ops Ops, cfg types.TimerConfig) (*LogicalTimer, error) {
	if cfg.Backend == "" || cfg.Backend == "auto" {
		return DefaultInit(ops)
	}
	return initDescribed(ops)(DescribeFromConfig(ops, cfg))
}
