// Tencent is pleased to support the open source community by making trpc-mcp-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-mcp-go is licensed under the Apache License Version 2.0.

// Package log wraps zap so the rest of the module never imports it directly.
package log

import (
	"go.uber.org/zap"
)

// Logger mirrors the variadic logging surface the mcp package exposes.
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// Option configures a zapLogger at construction time.
type Option func(*zap.Config)

// WithDevelopment switches to zap's development config (console encoding,
// caller info, no sampling).
func WithDevelopment() Option {
	return func(cfg *zap.Config) {
		*cfg = zap.NewDevelopmentConfig()
	}
}

// NewZapLogger builds a Logger backed by a production zap configuration
// unless overridden by opts.
func NewZapLogger(opts ...Option) Logger {
	cfg := zap.NewProductionConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// Fall back to a no-op core rather than panicking on construction;
		// logging failures should never take down the protocol engine.
		l = zap.NewNop()
	}
	return &zapLogger{sugar: l.Sugar()}
}

func (l *zapLogger) Debug(args ...interface{})                 { l.sugar.Debug(args...) }
func (l *zapLogger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *zapLogger) Info(args ...interface{})                  { l.sugar.Info(args...) }
func (l *zapLogger) Infof(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *zapLogger) Warn(args ...interface{})                  { l.sugar.Warn(args...) }
func (l *zapLogger) Warnf(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *zapLogger) Error(args ...interface{})                 { l.sugar.Error(args...) }
func (l *zapLogger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }
func (l *zapLogger) Fatal(args ...interface{})                 { l.sugar.Fatal(args...) }
func (l *zapLogger) Fatalf(format string, args ...interface{}) { l.sugar.Fatalf(format, args...) }
