// Package logx is the module's logger: logrus on hosts, println on TinyGo
// targets. Loggers are named by component and carry key/value fields.
package logx

// Logger is the subset of logging the drivers and services use.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	WithField(key string, value any) Logger
}
