// Tencent is pleased to support the open source community by making trpc-mcp-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-mcp-go is licensed under the Apache License Version 2.0.

package mcp

// JSONRPCVersion is the only JSON-RPC version this engine speaks.
const JSONRPCVersion = "2.0"

// Protocol versions this engine understands during capability negotiation.
const (
	ProtocolVersion_2024_11_05 = "2024-11-05"
	ProtocolVersion_2025_03_26 = "2025-03-26"
	ProtocolVersion_2025_11_25 = "2025-11-25"
)

// LatestProtocolVersion is offered by default during initialize.
const LatestProtocolVersion = ProtocolVersion_2025_11_25

// Lifecycle methods.
const (
	MethodInitialize               = "initialize"
	MethodNotificationsInitialized = "notifications/initialized"
	MethodPing                     = "ping"
)

// Tool methods.
const (
	MethodToolsList = "tools/list"
	MethodToolsCall = "tools/call"
)

// Resource methods.
const (
	MethodResourcesList          = "resources/list"
	MethodResourcesRead          = "resources/read"
	MethodResourcesTemplatesList = "resources/templates/list"
	MethodResourcesSubscribe     = "resources/subscribe"
	MethodResourcesUnsubscribe   = "resources/unsubscribe"
)

// Prompt and completion methods.
const (
	MethodPromptsList        = "prompts/list"
	MethodPromptsGet         = "prompts/get"
	MethodCompletionComplete = "completion/complete"
)

// Roots methods.
const (
	MethodRootsList                        = "roots/list"
	MethodNotificationsRootsListChanged    = "notifications/roots/list_changed"
)

// Progress and cancellation methods.
const (
	MethodCancelRequest        = "notifications/cancelled"
	MethodNotificationsProgress = "notifications/progress"
)

// Sampling method.
const MethodSamplingCreateMessage = "sampling/createMessage"

// Task methods.
const (
	MethodTasksGet                 = "tasks/get"
	MethodTasksList                = "tasks/list"
	MethodTasksCancel              = "tasks/cancel"
	MethodTasksResult              = "tasks/result"
	MethodNotificationsTasksStatus = "notifications/tasks/status"
)

// Standard JSON-RPC 2.0 error codes.
const (
	ErrCodeParseError     = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternal       = -32603
)

// MCP-specific error codes.
const (
	ErrCodeConnectionClosed       = -32000
	ErrCodeRequestTimeout         = -32001
	ErrCodeUrlElicitationRequired = -32042
)
