package main

import "ltimer-go/ltimer"

// platform is what the commands need from the host.
type platform struct {
	ops   ltimer.Ops
	tscHz uint64 // known reference rate; 0 calibrates
	close func()
}

// openPlatform is replaced in tests.
var openPlatform = openHostPlatform
