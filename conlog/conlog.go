// SPDX-License-Identifier: GPL-2.0-or-later

// Package conlog is the logging entry point. It defaults to a no-op logger
// until Init is called.
package conlog

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mutex sync.RWMutex
	log   = zap.NewNop()
)

// FileConfig holds the rotation settings of the log file.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func DefaultFileConfig(path string) FileConfig {
	return FileConfig{
		Path:       path,
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Compress:   true,
	}
}

// Init logs to stderr at the given level and, if logFile is not empty, to a
// rotating file.
func Init(level string, logFile string) {
	fc := FileConfig{}
	if logFile != "" {
		fc = DefaultFileConfig(logFile)
	}
	SetLogger(New(level, fc, zapcore.AddSync(os.Stderr)))
}

// New builds a logger writing to console (if not nil) and the file in fc
// (if it has a path).
func New(level string, fc FileConfig, console zapcore.WriteSyncer) *zap.Logger {
	lvl := parseLevel(level)
	var cores []zapcore.Core
	if console != nil {
		enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "time",
			LevelKey:         "level",
			MessageKey:       "msg",
			EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05"),
			EncodeLevel:      zapcore.CapitalColorLevelEncoder,
			ConsoleSeparator: " ",
		})
		cores = append(cores, zapcore.NewCore(enc, console, lvl))
	}
	if fc.Path != "" {
		w := &lumberjack.Logger{
			Filename:   fc.Path,
			MaxSize:    fc.MaxSizeMB,
			MaxBackups: fc.MaxBackups,
			MaxAge:     fc.MaxAgeDays,
			Compress:   fc.Compress,
			LocalTime:  true,
		}
		enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			MessageKey:     "msg",
			CallerKey:      "caller",
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		})
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(w), lvl))
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// SetLogger replaces the logger, nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mutex.Lock()
	defer mutex.Unlock()
	log = l
}

func Logger() *zap.Logger {
	mutex.RLock()
	defer mutex.RUnlock()
	return log
}

func Sugar() *zap.SugaredLogger {
	return Logger().Sugar()
}

func Printf(format string, v ...interface{}) {
	Logger().WithOptions(zap.AddCallerSkip(1)).Sugar().Infof(format, v...)
}

func Debugf(format string, v ...interface{}) {
	Logger().WithOptions(zap.AddCallerSkip(1)).Sugar().Debugf(format, v...)
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Logger().Sync()
}
