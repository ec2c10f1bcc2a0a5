// Package zaplog adapts a zap logger to openapi.Logger.
package zaplog

import (
	"go.uber.org/zap"

	"github.com/erraggy/oasguard/openapi"
)

// Adapter implements openapi.Logger on top of a zap.SugaredLogger. The
// alternating key/value attributes map directly onto zap's *w methods.
type Adapter struct {
	logger *zap.SugaredLogger
}

var _ openapi.Logger = (*Adapter)(nil)

// New wraps logger. A nil logger discards everything.
func New(logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{logger: logger.Sugar()}
}

// NewDefault builds a production logger, or a development logger when
// debug is set, the same split the server binaries use.
func NewDefault(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Debug implements openapi.Logger.
func (a *Adapter) Debug(msg string, attrs ...any) { a.logger.Debugw(msg, attrs...) }

// Info implements openapi.Logger.
func (a *Adapter) Info(msg string, attrs ...any) { a.logger.Infow(msg, attrs...) }

// Warn implements openapi.Logger.
func (a *Adapter) Warn(msg string, attrs ...any) { a.logger.Warnw(msg, attrs...) }

// Error implements openapi.Logger.
func (a *Adapter) Error(msg string, attrs ...any) { a.logger.Errorw(msg, attrs...) }

// With implements openapi.Logger.
func (a *Adapter) With(attrs ...any) openapi.Logger {
	return &Adapter{logger: a.logger.With(attrs...)}
}

// Zap returns the underlying logger.
func (a *Adapter) Zap() *zap.Logger {
	return a.logger.Desugar()
}
