//go:build tinygo

package logx

import (
	"fmt"
	"io"
)

type level uint8

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

var minLevel = levelInfo

type entry struct {
	prefix string
}

func New(component string) Logger { return entry{prefix: "[" + component + "]"} }

func (l entry) logf(lv level, tag, f string, a []any) {
	if lv < minLevel {
		return
	}
	println(tag, l.prefix, fmt.Sprintf(f, a...))
}

func (l entry) Debugf(f string, a ...any) { l.logf(levelDebug, "D", f, a) }
func (l entry) Infof(f string, a ...any)  { l.logf(levelInfo, "I", f, a) }
func (l entry) Warnf(f string, a ...any)  { l.logf(levelWarn, "W", f, a) }
func (l entry) Errorf(f string, a ...any) { l.logf(levelError, "E", f, a) }

func (l entry) WithField(k string, v any) Logger {
	return entry{prefix: l.prefix + " " + k + "=" + fmt.Sprint(v)}
}

func SetLevel(s string) error {
	switch s {
	case "debug":
		minLevel = levelDebug
	case "", "info":
		minLevel = levelInfo
	case "warn":
		minLevel = levelWarn
	case "error":
		minLevel = levelError
	default:
		return fmt.Errorf("invalid log level: %v", s)
	}
	return nil
}

// SetFormat is a no-op on MCU targets.
func SetFormat(string) {}

// SetOutput is a no-op on MCU targets; output always goes to the console.
func SetOutput(io.Writer) {}
