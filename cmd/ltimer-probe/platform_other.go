//go:build !linux

package main

import "ltimer-go/errcode"

func openHostPlatform() (*platform, error) {
	return nil, errcode.New(errcode.Unsupported, "probe", "only linux hosts are supported")
}
