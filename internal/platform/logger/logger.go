// Package logger builds the process-wide zap logger. Output goes to stderr
// and optionally a file; stdout is reserved for command replies.
package logger

import (
	"kvstore/internal/platform/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger(cfg config.Config) (*zap.SugaredLogger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.TimeKey = "time"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	if cfg.LogFile != "" {
		zcfg.OutputPaths = append(zcfg.OutputPaths, cfg.LogFile)
	}

	log, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return log.Sugar(), nil
}
