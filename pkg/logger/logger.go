package logger

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
)

var std = logrus.New()

func init() {
	std.SetOutput(os.Stdout)
	std.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	std.SetLevel(logrus.InfoLevel)
}

// SetLevel sets the global log level from a string (debug/info/warn/error)
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	std.SetLevel(lvl)
}

// CtxDebug logs a debug message
func CtxDebug(ctx context.Context, format string, args ...interface{}) {
	std.WithContext(ctx).Debugf(format, args...)
}

// CtxInfo logs an info message
func CtxInfo(ctx context.Context, format string, args ...interface{}) {
	std.WithContext(ctx).Infof(format, args...)
}

// CtxWarn logs a warning message
func CtxWarn(ctx context.Context, format string, args ...interface{}) {
	std.WithContext(ctx).Warnf(format, args...)
}

// CtxError logs an error message
func CtxError(ctx context.Context, format string, args ...interface{}) {
	std.WithContext(ctx).Errorf(format, args...)
}
