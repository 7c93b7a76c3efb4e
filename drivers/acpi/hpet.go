// Package acpi locates the HPET through the ACPI "HPET" description table.
package acpi

import (
	"encoding/binary"
	"os"
	"strconv"

	"ltimer-go/errcode"
	"ltimer-go/hw"
	"ltimer-go/types"
)

const (
	hpetLen = 56

	offLength   = 4
	offAddrSpc  = 40 // generic address structure: address space id
	offAddress  = 44 // generic address structure: 64-bit address
	offNumber   = 52
	offMinTick  = 53
	offBlockID  = 36
	addrSpaceMM = 0 // system memory

	// MapLen is the mapping size for one HPET register block (one page).
	MapLen = 0x1000
)

// HPETTable is the decoded body of an ACPI HPET table.
type HPETTable struct {
	BlockID uint32 // event timer block id (hardware revision, vendor)
	Address uint64
	Number  uint8
	MinTick uint16
}

// Region is the register block described by the table.
func (t HPETTable) Region() types.PmemRegion {
	return types.PmemRegion{Base: t.Address, Length: MapLen}
}

// ParseHPET validates and decodes a raw HPET table.
func ParseHPET(b []byte) (HPETTable, error) {
	const op = "acpi.parse_hpet"
	if len(b) < hpetLen {
		return HPETTable{}, errcode.New(errcode.InvalidPayload, op, "short table: "+strconv.Itoa(len(b))+" bytes")
	}
	if string(b[:4]) != "HPET" {
		return HPETTable{}, errcode.New(errcode.InvalidPayload, op, "bad signature "+strconv.Quote(string(b[:4])))
	}
	n := binary.LittleEndian.Uint32(b[offLength:])
	if n < hpetLen || int(n) > len(b) {
		return HPETTable{}, errcode.New(errcode.InvalidPayload, op, "bad length "+strconv.FormatUint(uint64(n), 10))
	}
	var sum uint8
	for _, c := range b[:n] {
		sum += c
	}
	if sum != 0 {
		return HPETTable{}, errcode.New(errcode.InvalidPayload, op, "checksum mismatch")
	}
	if b[offAddrSpc] != addrSpaceMM {
		return HPETTable{}, errcode.New(errcode.Unsupported, op, "hpet not in system memory")
	}
	t := HPETTable{
		BlockID: binary.LittleEndian.Uint32(b[offBlockID:]),
		Address: binary.LittleEndian.Uint64(b[offAddress:]),
		Number:  b[offNumber],
		MinTick: binary.LittleEndian.Uint16(b[offMinTick:]),
	}
	if t.Address == 0 {
		return HPETTable{}, errcode.New(errcode.ProbeFailed, op, "zero base address")
	}
	return t, nil
}

// DefaultHPETPath is where Linux exposes the raw table.
const DefaultHPETPath = "/sys/firmware/acpi/tables/HPET"

// SysfsTables reads firmware tables from files exported by the kernel.
type SysfsTables struct {
	HPETPath string // "" => DefaultHPETPath
}

// HPET implements ltimer.FirmwareTables. The mapper is unused: the kernel
// has already copied the table out of firmware memory.
func (s SysfsTables) HPET(hw.Mapper) (types.PmemRegion, error) {
	path := s.HPETPath
	if path == "" {
		path = DefaultHPETPath
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.PmemRegion{}, errcode.Wrap(errcode.Unsupported, "acpi.hpet", err)
	}
	t, err := ParseHPET(raw)
	if err != nil {
		return types.PmemRegion{}, err
	}
	return t.Region(), nil
}
