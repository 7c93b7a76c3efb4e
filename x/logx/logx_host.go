//go:build !tinygo

package logx

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

var std = logrus.New()

type entry struct{ e *logrus.Entry }

// New returns a logger tagged with component.
func New(component string) Logger {
	return entry{e: std.WithField("component", component)}
}

func (l entry) Debugf(f string, a ...any) { l.e.Debugf(f, a...) }
func (l entry) Infof(f string, a ...any)  { l.e.Infof(f, a...) }
func (l entry) Warnf(f string, a ...any)  { l.e.Warnf(f, a...) }
func (l entry) Errorf(f string, a ...any) { l.e.Errorf(f, a...) }

func (l entry) WithField(k string, v any) Logger { return entry{e: l.e.WithField(k, v)} }

// SetLevel accepts debug, info, warn or error.
func SetLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug":
		std.SetLevel(logrus.DebugLevel)
	case "", "info":
		std.SetLevel(logrus.InfoLevel)
	case "warn":
		std.SetLevel(logrus.WarnLevel)
	case "error":
		std.SetLevel(logrus.ErrorLevel)
	default:
		return fmt.Errorf("invalid log level: %v", level)
	}
	return nil
}

// SetFormat selects "text" or "json" (the default) output.
func SetFormat(format string) {
	switch format {
	case "text":
		std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		std.SetFormatter(&logrus.JSONFormatter{})
	}
}

func SetOutput(w io.Writer) { std.SetOutput(w) }
