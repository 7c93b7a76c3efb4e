//go:build linux

package main

import (
	"ltimer-go/drivers/acpi"
	"ltimer-go/hw/linuxhw"
	"ltimer-go/hw/tsc"
	"ltimer-go/ltimer"
	"ltimer-go/x/logx"
)

func openHostPlatform() (*platform, error) {
	log := logx.New("probe")
	mem, err := linuxhw.OpenMem(linuxhw.DevMemPath)
	if err != nil {
		return nil, err
	}
	p := &platform{
		ops: ltimer.Ops{
			Mapper: mem,
			Tables: acpi.SysfsTables{},
			TSC:    tsc.Counter{},
		},
	}
	if !tsc.Supported {
		p.ops.TSC = linuxhw.Monotonic{}
		p.tscHz = linuxhw.MonotonicHz
	}

	closers := []func() error{mem.Close}
	if port, err := linuxhw.OpenPort(linuxhw.DevPortPath); err == nil {
		p.ops.Ports = port
		closers = append(closers, port.Close)
	} else {
		log.Warnf("no port i/o, pit unavailable: %v", err)
	}
	p.close = func() {
		for _, c := range closers {
			_ = c()
		}
	}
	return p, nil
}
