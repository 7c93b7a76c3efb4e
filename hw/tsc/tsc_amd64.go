//go:build amd64 && !tinygo

package tsc

// Supported reports whether Read returns a real counter.
const Supported = true

// Read returns the current TSC value.
//
//go:noescape
func Read() uint64
