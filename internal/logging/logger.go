package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects where diagnostic logs go. User-facing warnings are printed
// by the CLI separately and never depend on these settings.
type Options struct {
	// Verbose enables debug output on Stderr.
	Verbose bool
	// File appends JSON lines to the given path when non-empty.
	File string
	// Stderr overrides os.Stderr for verbose output.
	Stderr io.Writer
}

// Logger wraps the zap logger together with the log file it may own.
type Logger struct {
	*zap.Logger
	file *os.File
}

// New builds a logger. With neither Verbose nor File set it returns a no-op
// logger so composition output stays clean.
func New(opts Options) (*Logger, error) {
	var cores []zapcore.Core
	var file *os.File

	if opts.Verbose {
		w := opts.Stderr
		if w == nil {
			w = os.Stderr
		}
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.TimeKey = ""
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.AddSync(w),
			zapcore.DebugLevel,
		))
	}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("logging: ensure log dir: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("logging: open log file: %w", err)
		}
		file = f
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(f),
			zapcore.InfoLevel,
		))
	}

	if len(cores) == 0 {
		return &Logger{Logger: zap.NewNop()}, nil
	}
	return &Logger{Logger: zap.New(zapcore.NewTee(cores...)), file: file}, nil
}

// Close flushes buffered entries and releases the log file.
func (l *Logger) Close() error {
	if l == nil || l.Logger == nil {
		return nil
	}
	_ = l.Logger.Sync()
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
