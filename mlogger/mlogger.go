/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

// Package mlogger implements global.Logger on top of zap.
package mlogger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/PivotLLM/MCPGraph/global"
)

var _ global.Logger = (*Logger)(nil)

// Logger writes human-readable lines to stdout and/or a log file
type Logger struct {
	prefix     string
	dateFormat string
	logFile    string
	logStdout  bool
	debug      bool
	writers    []io.Writer

	zl        *zap.Logger
	file      *os.File
	closeOnce sync.Once
}

// Option configures a Logger
type Option func(*Logger)

// WithPrefix names the logger; the prefix appears on every line
func WithPrefix(prefix string) Option {
	return func(l *Logger) {
		l.prefix = prefix
	}
}

// WithDateFormat sets the timestamp layout (Go reference time)
func WithDateFormat(format string) Option {
	return func(l *Logger) {
		l.dateFormat = format
	}
}

// WithLogFile appends log output to the named file
func WithLogFile(path string) Option {
	return func(l *Logger) {
		l.logFile = path
	}
}

// WithLogStdout enables or disables output to stdout
func WithLogStdout(enabled bool) Option {
	return func(l *Logger) {
		l.logStdout = enabled
	}
}

// WithDebug enables debug-level output
func WithDebug(debug bool) Option {
	return func(l *Logger) {
		l.debug = debug
	}
}

// WithWriter adds an extra destination, mostly useful in tests
func WithWriter(w io.Writer) Option {
	return func(l *Logger) {
		l.writers = append(l.writers, w)
	}
}

// New creates a Logger. With no options it logs info and above to stdout.
func New(opts ...Option) (*Logger, error) {
	l := &Logger{
		dateFormat: "2006-01-02 15:04:05",
		logStdout:  true,
	}
	for _, opt := range opts {
		opt(l)
	}

	var sinks []zapcore.WriteSyncer
	if l.logStdout {
		sinks = append(sinks, zapcore.Lock(os.Stdout))
	}
	if l.logFile != "" {
		f, err := os.OpenFile(l.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("unable to open log file %s: %w", l.logFile, err)
		}
		l.file = f
		sinks = append(sinks, zapcore.Lock(f))
	}
	for _, w := range l.writers {
		sinks = append(sinks, zapcore.AddSync(w))
	}

	var out zapcore.WriteSyncer
	if len(sinks) == 0 {
		out = zapcore.AddSync(io.Discard)
	} else {
		out = zapcore.NewMultiWriteSyncer(sinks...)
	}

	level := zapcore.InfoLevel
	if l.debug {
		level = zapcore.DebugLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout(l.dateFormat),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), out, level)
	l.zl = zap.New(core)
	if l.prefix != "" {
		l.zl = l.zl.Named(l.prefix)
	}

	return l, nil
}

// Zap exposes the underlying zap logger for structured call sites
func (l *Logger) Zap() *zap.Logger {
	return l.zl
}

func (l *Logger) Debug(msg string) { l.zl.Debug(msg) }

func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.zl.Core().Enabled(zapcore.DebugLevel) {
		l.zl.Debug(fmt.Sprintf(format, args...))
	}
}

func (l *Logger) Info(msg string) { l.zl.Info(msg) }

func (l *Logger) Infof(format string, args ...interface{}) {
	l.zl.Info(fmt.Sprintf(format, args...))
}

// Notice is logged at info level with a notice marker
func (l *Logger) Notice(msg string) { l.zl.Info(msg, zap.Bool("notice", true)) }

func (l *Logger) Noticef(format string, args ...interface{}) {
	l.Notice(fmt.Sprintf(format, args...))
}

func (l *Logger) Warning(msg string) { l.zl.Warn(msg) }

func (l *Logger) Warningf(format string, args ...interface{}) {
	l.zl.Warn(fmt.Sprintf(format, args...))
}

func (l *Logger) Error(msg string) { l.zl.Error(msg) }

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.zl.Error(fmt.Sprintf(format, args...))
}

// Fatal logs msg and exits the process
func (l *Logger) Fatal(msg string) { l.zl.Fatal(msg) }

func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.zl.Fatal(fmt.Sprintf(format, args...))
}

// Close flushes buffered output and closes the log file
func (l *Logger) Close() {
	l.closeOnce.Do(func() {
		_ = l.zl.Sync()
		if l.file != nil {
			_ = l.file.Close()
		}
	})
}
