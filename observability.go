// Tencent is pleased to support the open source community by making trpc-mcp-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-mcp-go is licensed under the Apache License Version 2.0.

package mcp

import (
	"context"
	"time"

	"github.com/mcprt/mcpcore/internal/observability"
)

// WithObservability returns onion middleware that records a span plus
// request/error/latency/in-flight metrics on provider around every
// dispatched request. Install it with WithMiddleware(WithObservability(p)).
func WithObservability(provider *observability.Provider) HandlerMiddleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *JSONRPCRequest) (JSONRPCMessage, error) {
			ctx, span := provider.Tracer.Start(ctx, req.Method)
			defer span.End()

			provider.RecordInFlight(ctx, req.Method, 1)
			defer provider.RecordInFlight(ctx, req.Method, -1)

			start := time.Now()
			provider.RecordRequest(ctx, req.Method)

			msg, err := next(ctx, req)

			provider.RecordLatency(ctx, req.Method, float64(time.Since(start).Microseconds())/1000)

			if err != nil {
				provider.RecordError(ctx, req.Method, asErrorCode(err))
				return msg, err
			}
			if jsonrpcErr, ok := msg.(*JSONRPCError); ok {
				provider.RecordError(ctx, req.Method, jsonrpcErr.Error.Code)
			}
			return msg, err
		}
	}
}

// asErrorCode extracts a JSON-RPC error code from err if it carries one,
// falling back to the generic internal-error code otherwise.
func asErrorCode(err error) int {
	var mcpErr *McpError
	if asMcpError(err, &mcpErr) {
		return mcpErr.Code
	}
	return ErrCodeInternal
}

// InstrumentedTaskStore wraps a TaskStore, recording task status transitions
// against provider's meter. All other methods pass straight through to the
// wrapped store.
type InstrumentedTaskStore struct {
	TaskStore
	provider *observability.Provider
}

// NewInstrumentedTaskStore wraps store so every status transition it records
// also increments provider's task status counter.
func NewInstrumentedTaskStore(store TaskStore, provider *observability.Provider) *InstrumentedTaskStore {
	return &InstrumentedTaskStore{TaskStore: store, provider: provider}
}

// UpdateTaskStatus records status against the wrapped store, then records the
// transition on successful writes only.
func (s *InstrumentedTaskStore) UpdateTaskStatus(ctx context.Context, sessionID, taskID string, status TaskStatus, message string) error {
	if err := s.TaskStore.UpdateTaskStatus(ctx, sessionID, taskID, status, message); err != nil {
		return err
	}
	s.provider.RecordTaskStatus(ctx, string(status))
	return nil
}
