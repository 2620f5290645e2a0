// Package log provides the small structured-logging surface the ainb
// package calls through Options.Logger. It is a thin wrapper over zap,
// shaped after the Helper-style API the teacher package expects from its
// own (unvendored) log sub-package.
package log

import "go.uber.org/zap"

// Logger is the interface ainb depends on. Nop and New both satisfy
// it; callers may supply their own adapter over any backend.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Helper wraps a zap.SugaredLogger to satisfy Logger.
type Helper struct {
	s *zap.SugaredLogger
}

func (h *Helper) Debugf(format string, args ...interface{}) { h.s.Debugf(format, args...) }
func (h *Helper) Infof(format string, args ...interface{})  { h.s.Infof(format, args...) }
func (h *Helper) Warnf(format string, args ...interface{})  { h.s.Warnf(format, args...) }
func (h *Helper) Errorf(format string, args ...interface{}) { h.s.Errorf(format, args...) }

// New builds a Helper backed by a production zap logger. It never returns
// an error: if the production logger can't be built (which in practice
// only happens under a broken encoder config) it falls back to zap's
// no-op logger rather than leaving ainb without a Logger.
func New() *Helper {
	zl, err := zap.NewProduction()
	if err != nil {
		zl = zap.NewNop()
	}
	return &Helper{s: zl.Sugar()}
}

// NewDevelopment builds a Helper tuned for local CLI use: human-readable
// console output, debug level enabled.
func NewDevelopment() *Helper {
	zl, err := zap.NewDevelopment()
	if err != nil {
		zl = zap.NewNop()
	}
	return &Helper{s: zl.Sugar()}
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// Nop is a Logger that discards everything.
var Nop Logger = nopLogger{}
