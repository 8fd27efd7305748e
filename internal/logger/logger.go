package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger with the given level name. An unrecognized
// level falls back to info; the fallback is reported through the logger
// itself once it exists.
func New(levelEnv string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)

	badLevel := false
	if levelEnv != "" {
		if err := cfg.Level.UnmarshalText([]byte(levelEnv)); err != nil {
			cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
			badLevel = true
		}
	}

	l, err := cfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
	if err != nil {
		return nil, err
	}

	if badLevel {
		l.Warn("unrecognized log level, using info", zap.String("level", levelEnv))
	}

	return l, nil
}

// Must panics when the logger cannot be built.
func Must(levelEnv string) *zap.Logger {
	l, err := New(levelEnv)
	if err != nil {
		panic(err)
	}
	return l
}
