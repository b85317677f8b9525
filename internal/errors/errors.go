// Tencent is pleased to support the open source community by making trpc-mcp-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-mcp-go is licensed under the Apache License Version 2.0.

// Package errors holds sentinel errors shared across the protocol engine,
// task subsystem, and the thin client/server wrappers built on top of it.
package errors

import "errors"

// Connection and lifecycle sentinels.
var (
	ErrNotInitialized     = errors.New("mcp: connection not initialized")
	ErrAlreadyInitialized = errors.New("mcp: connection already initialized")
	ErrConnectionClosed   = errors.New("mcp: connection closed")
	ErrInvalidServerURL   = errors.New("mcp: invalid server URL")
	ErrSessionNotFound    = errors.New("mcp: session not found")
)

// Task subsystem sentinels.
var (
	ErrTaskNotFound = errors.New("mcp: task not found")
	ErrTaskTerminal = errors.New("mcp: task is in a terminal status")
	ErrQueueFull    = errors.New("mcp: task message queue is full")
)

// Capability gating sentinels.
var (
	ErrCapabilityNotSupported = errors.New("mcp: method not supported by remote capabilities")
)

// Request validation and registry lookup sentinels, shared by the
// tool/resource/prompt managers.
var (
	ErrInvalidParams  = errors.New("mcp: invalid params")
	ErrMissingParams  = errors.New("mcp: missing required params")
	ErrMethodNotFound = errors.New("mcp: no handler registered for this operation")
	ErrToolNotFound   = errors.New("mcp: tool not found")
	ErrResourceNotFound = errors.New("mcp: resource not found")
	ErrPromptNotFound = errors.New("mcp: prompt not found")
)
