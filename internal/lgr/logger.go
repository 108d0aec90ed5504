package lgr

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newPluginEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// InitializeLogger builds a console logger on stderr; stdout belongs to the
// plugin report. An empty level means WARN.
func InitializeLogger(logLevel string) (*zap.Logger, error) {
	var level zapcore.Level
	if logLevel == "" {
		logLevel = "WARN"
	}
	if err := level.Set(logLevel); err != nil {
		return nil, fmt.Errorf("can't set log level: %w", err)
	}

	logger, err := zap.Config{
		Encoding:         "console",
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    newPluginEncoderConfig(),
	}.Build()
	if err != nil {
		return nil, fmt.Errorf("can't initialise the logger: %w", err)
	}
	return logger, nil
}
