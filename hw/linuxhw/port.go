//go:build linux

package linuxhw

import (
	"os"

	"golang.org/x/sys/unix"

	"ltimer-go/errcode"
)

const DevPortPath = "/dev/port"

// Port performs byte-wide port I/O through /dev/port, where the file offset
// is the port number.
type Port struct {
	fd int
}

func OpenPort(path string) (*Port, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errcode.Wrap(errcode.ResourceUnavailable, "linuxhw.open_port", &os.PathError{Op: "open", Path: path, Err: err})
	}
	return &Port{fd: fd}, nil
}

func (p *Port) In8(port uint16) (uint8, error) {
	var b [1]byte
	if _, err := unix.Pread(p.fd, b[:], int64(port)); err != nil {
		return 0, errcode.Wrap(errcode.Error, "linuxhw.in8", err)
	}
	return b[0], nil
}

func (p *Port) Out8(port uint16, v uint8) error {
	if _, err := unix.Pwrite(p.fd, []byte{v}, int64(port)); err != nil {
		return errcode.Wrap(errcode.Error, "linuxhw.out8", err)
	}
	return nil
}

func (p *Port) Close() error { return unix.Close(p.fd) }
