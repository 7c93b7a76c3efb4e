//go:build !amd64 || tinygo

package tsc

const Supported = false

// Read always returns 0 without a TSC.
func Read() uint64 { return 0 }
