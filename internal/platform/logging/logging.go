// Package logging は logrus ロガーの生成とコンテキストへの受け渡しを提供します。
package logging

import (
	"context"
	"io"
	"os"

	"github.com/ogurasousui/hrcore-identity/internal/platform/config"
	"github.com/sirupsen/logrus"
)

type loggerContextKey struct{}

// New は設定に従ってロガーを生成します。出力先は標準エラーです。
func New(cfg config.LogConfig) *logrus.Logger {
	return NewWithOutput(cfg, os.Stderr)
}

// NewWithOutput は出力先を指定してロガーを生成します。
func NewWithOutput(cfg config.LogConfig, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(cfg.Lvl)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// Discard は何も出力しないロガーを返します。
func Discard() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

// WithLogger はロガーを格納したコンテキストを返します。
func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// FromContext はコンテキストのロガーを返します。格納されていなければ Discard を返します。
func FromContext(ctx context.Context) *logrus.Entry {
	if ctx == nil {
		return Discard()
	}
	switch typed := ctx.Value(loggerContextKey{}).(type) {
	case *logrus.Entry:
		if typed != nil {
			return typed
		}
	case *logrus.Logger:
		if typed != nil {
			return logrus.NewEntry(typed)
		}
	}
	return Discard()
}
