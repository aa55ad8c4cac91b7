package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the application logger. Production gets JSON output at
// info level, everything else a development console logger.
func New(production bool) (*zap.Logger, error) {
	if production {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		return cfg.Build()
	}
	return zap.NewDevelopment()
}

// Adapter exposes a zap sugared logger through the printf style
// interface the auth package accepts.
type Adapter struct {
	log *zap.SugaredLogger
}

// NewAdapter wraps a zap logger
func NewAdapter(logger *zap.Logger) *Adapter {
	return &Adapter{log: logger.Sugar()}
}

func (a *Adapter) Debug(format string, args ...any) { a.log.Debugf(format, args...) }

func (a *Adapter) Info(format string, args ...any) { a.log.Infof(format, args...) }

func (a *Adapter) Warn(format string, args ...any) { a.log.Warnf(format, args...) }

func (a *Adapter) Error(format string, args ...any) { a.log.Errorf(format, args...) }
