package acpi

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ltimer-go/errcode"
	"ltimer-go/types"
)

func hpetTable(addr uint64) []byte {
	b := make([]byte, hpetLen)
	copy(b, "HPET")
	binary.LittleEndian.PutUint32(b[offLength:], hpetLen)
	b[8] = 1
	copy(b[10:], "LTIMER")
	binary.LittleEndian.PutUint32(b[offBlockID:], 0x8086A201)
	b[offAddrSpc] = addrSpaceMM
	b[41] = 64
	binary.LittleEndian.PutUint64(b[offAddress:], addr)
	binary.LittleEndian.PutUint16(b[offMinTick:], 0x80)
	fixChecksum(b)
	return b
}

func fixChecksum(b []byte) {
	b[9] = 0
	var sum uint8
	for _, c := range b {
		sum += c
	}
	b[9] = -sum
}

func TestParseHPET(t *testing.T) {
	got, err := ParseHPET(hpetTable(0xFED00000))
	if err != nil {
		t.Fatalf("ParseHPET: %v", err)
	}
	want := HPETTable{BlockID: 0x8086A201, Address: 0xFED00000, MinTick: 0x80}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("table (-want +got):\n%s", diff)
	}
	if r := got.Region(); r.Base != 0xFED00000 || r.Length != MapLen {
		t.Fatalf("region = %+v", r)
	}
}

func TestParseHPETRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]byte) []byte
		code   errcode.Code
	}{
		{"short", func(b []byte) []byte { return b[:20] }, errcode.InvalidPayload},
		{"signature", func(b []byte) []byte { copy(b, "APIC"); fixChecksum(b); return b }, errcode.InvalidPayload},
		{"checksum", func(b []byte) []byte { b[9]++; return b }, errcode.InvalidPayload},
		{"length", func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[offLength:], 200)
			fixChecksum(b)
			return b
		}, errcode.InvalidPayload},
		{"io space", func(b []byte) []byte { b[offAddrSpc] = 1; fixChecksum(b); return b }, errcode.Unsupported},
		{"zero address", func(b []byte) []byte {
			binary.LittleEndian.PutUint64(b[offAddress:], 0)
			fixChecksum(b)
			return b
		}, errcode.ProbeFailed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseHPET(tc.mutate(hpetTable(0xFED00000)))
			if !errors.Is(err, tc.code) {
				t.Fatalf("err = %v, want %s", err, tc.code)
			}
		})
	}
}

func TestSysfsTables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "HPET")
	if err := os.WriteFile(path, hpetTable(0xFED00000), 0o644); err != nil {
		t.Fatal(err)
	}

	region, err := SysfsTables{HPETPath: path}.HPET(nil)
	if err != nil {
		t.Fatalf("HPET: %v", err)
	}
	if diff := cmp.Diff(types.PmemRegion{Base: 0xFED00000, Length: MapLen}, region); diff != "" {
		t.Fatalf("region (-want +got):\n%s", diff)
	}

	_, err = SysfsTables{HPETPath: filepath.Join(dir, "missing")}.HPET(nil)
	if !errors.Is(err, errcode.Unsupported) {
		t.Fatalf("missing table err = %v", err)
	}
}
