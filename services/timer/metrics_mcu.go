//go:build tinygo

package timer

import "ltimer-go/x/logx"

// Registerer is unused on TinyGo targets; metrics are not exported.
type Registerer any

type collectors struct{}

func newCollectors(func() float64) *collectors { return &collectors{} }

func (*collectors) irq()                  {}
func (*collectors) armedTimeout(string)   {}
func (*collectors) failed(string, string) {}
func (*collectors) active(string)         {}
func (*collectors) inactive()             {}

func (*collectors) registerAll(Registerer, logx.Logger) {}
