// Package logging 创建 logrus 日志器
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/donutnomad/godiscover/internal/errors"
	"github.com/sirupsen/logrus"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

type Option func(*logrus.Logger)

// WithOutput 设置输出，默认 stderr
func WithOutput(w io.Writer) Option {
	return func(l *logrus.Logger) {
		l.SetOutput(w)
	}
}

// New 按级别与格式创建日志器
func New(level, format string, opts ...Option) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "logging: 无效的日志级别")
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(lvl)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		logger.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
			PadLevelText:     true,
		})
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, errors.Errorf("logging: 未知的日志格式 %q", format)
	}

	for _, opt := range opts {
		opt(logger)
	}
	return logger, nil
}

// Discard 丢弃全部输出，测试与库调用方未提供日志器时使用
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
