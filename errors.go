// Tencent is pleased to support the open source community by making trpc-mcp-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-mcp-go is licensed under the Apache License Version 2.0.

package mcp

import "fmt"

// McpError is the wire-visible error shape: it always has a JSON-RPC error
// code, so it can be serialized directly into a JSONRPCError.
type McpError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *McpError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("mcp error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("mcp error %d", e.Code)
}

func (e *McpError) toJSONRPCError(id ID) *JSONRPCError {
	return newJSONRPCErrorResponse(id, e.Code, e.Message, e.Data)
}

// NewMcpError builds an McpError from one of the ErrCode* constants.
func NewMcpError(code int, message string, data interface{}) *McpError {
	return &McpError{Code: code, Message: message, Data: data}
}

// AbortError represents a request that was aborted locally, by context
// cancellation or caller-initiated cancellation. It is never sent over the
// wire as-is; at most it causes a notifications/cancelled send.
type AbortError struct {
	Reason string
}

func (e *AbortError) Error() string {
	if e.Reason == "" {
		return "mcp: request aborted"
	}
	return fmt.Sprintf("mcp: request aborted: %s", e.Reason)
}

// FormatError indicates a message could not be parsed at all, before any
// request id was known, so no JSONRPCError response can reference it.
type FormatError struct {
	Cause error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("mcp: malformed message: %v", e.Cause)
}

func (e *FormatError) Unwrap() error { return e.Cause }

// ConnectionClosedError is returned by in-flight operations when the
// underlying transport closes before a response arrives.
type ConnectionClosedError struct {
	Reason string
}

func (e *ConnectionClosedError) Error() string {
	if e.Reason == "" {
		return "mcp: connection closed"
	}
	return fmt.Sprintf("mcp: connection closed: %s", e.Reason)
}

// RequestTimeoutError is returned when a request's total timeout elapses
// without a matching response.
type RequestTimeoutError struct {
	Method  string
	Timeout string
}

func (e *RequestTimeoutError) Error() string {
	return fmt.Sprintf("mcp: request %q timed out after %s", e.Method, e.Timeout)
}
