package dbg

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a console logger for development or a json logger for
// production, both stamping ISO8601 times under "ts".
func NewLogger(production bool, level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if production {
		cfg = zap.NewProductionConfig()
	}

	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableCaller = true

	return cfg.Build()
}

func MustNewLogger(production bool, level zapcore.Level) *zap.Logger {
	logger, err := NewLogger(production, level)
	if err != nil {
		panic(err)
	}
	return logger
}
