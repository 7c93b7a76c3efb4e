package ltimer

import (
	"ltimer-go/errcode"
	"ltimer-go/hw"
	"ltimer-go/types"
	"ltimer-go/x/logx"
)

// FirmwareTables locates timers described by platform firmware.
type FirmwareTables interface {
	// HPET returns the physical register block of the first HPET.
	HPET(m hw.Mapper) (types.PmemRegion, error)
}

// DefaultDescribe prefers the HPET and falls back to the PIT when the HPET
// cannot be found or probed. The fallback is not reported as an error.
func DefaultDescribe(ops Ops) (*LogicalTimer, error) {
	lt, err := describeHPETFromTables(ops)
	if err == nil {
		return lt, nil
	}
	logSelector().Infof("hpet unavailable, using pit: %v", err)
	return DescribePIT(ops)
}

func describeHPETFromTables(ops Ops) (*LogicalTimer, error) {
	if ops.Tables == nil {
		return nil, errcode.New(errcode.Unsupported, "ltimer.select", "no firmware tables")
	}
	region, err := ops.Tables.HPET(ops.Mapper)
	if err != nil {
		return nil, err
	}
	return DescribeHPETWithRegion(ops, region)
}

// DefaultInit is DefaultDescribe followed by Init. An HPET that is found but
// fails to initialise is torn down and replaced by the PIT.
func DefaultInit(ops Ops) (*LogicalTimer, error) {
	lt, err := DefaultDescribe(ops)
	if err != nil {
		return nil, err
	}
	err = lt.Init(ops)
	if err == nil {
		return lt, nil
	}
	lt.Destroy()
	if lt.Kind() != KindHPET {
		return nil, err
	}
	logSelector().Warnf("hpet init failed, using pit: %v", err)
	return InitPIT(ops)
}

func logSelector() logx.Logger { return logx.New("ltimer").WithField("stage", "select") }
