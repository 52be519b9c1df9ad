// Package logging builds the harvester's zap logger.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger that writes JSON to logPath and a console view to
// stderr. The file records info and up, the console only warnings, so that
// progress output stays readable; verbose lowers both to debug. Session name
// and PID are included as initial fields.
func New(logPath, sessionName string, verbose bool) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}
	return newLogger(file, os.Stderr, sessionName, verbose), nil
}

func newLogger(file, console io.Writer, sessionName string, verbose bool) *zap.Logger {
	fileLevel, consoleLevel := zapcore.InfoLevel, zapcore.WarnLevel
	if verbose {
		fileLevel, consoleLevel = zapcore.DebugLevel, zapcore.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(file), fileLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(console), consoleLevel),
	)

	return zap.New(core,
		zap.Fields(
			zap.String("session", sessionName),
			zap.Int("pid", os.Getpid()),
		),
	)
}
