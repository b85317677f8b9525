// Tencent is pleased to support the open source community by making trpc-mcp-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-mcp-go is licensed under the Apache License Version 2.0.

package mcp

import mcperrors "github.com/mcprt/mcpcore/internal/errors"

// RootsCapability describes the client's support for roots/list and
// roots/list_changed.
type RootsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// SamplingCapability describes the client's support for sampling/createMessage.
type SamplingCapability struct{}

// ElicitationCapability describes the client's support for out-of-band
// elicitation requests raised from within a task.
type ElicitationCapability struct{}

// ToolsCapability describes the server's tool surface.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ResourcesCapability describes the server's resource surface.
type ResourcesCapability struct {
	Subscribe   bool `json:"subscribe,omitempty"`
	ListChanged bool `json:"listChanged,omitempty"`
}

// PromptsCapability describes the server's prompt surface.
type PromptsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// LoggingCapability indicates the server accepts logging/setLevel.
type LoggingCapability struct{}

// CompletionsCapability indicates the server supports completion/complete.
type CompletionsCapability struct{}

// TasksCapability indicates support for the tasks/* family and related
// notifications. Present on both sides since either party may own tasks.
type TasksCapability struct {
	Cancel bool `json:"cancel,omitempty"`
}

// ClientCapabilities is what a client advertises during initialize.
type ClientCapabilities struct {
	Roots       *RootsCapability       `json:"roots,omitempty"`
	Sampling    *SamplingCapability    `json:"sampling,omitempty"`
	Elicitation *ElicitationCapability `json:"elicitation,omitempty"`
	Tasks       *TasksCapability       `json:"tasks,omitempty"`
}

// ServerCapabilities is what a server advertises in its initialize result.
type ServerCapabilities struct {
	Tools       *ToolsCapability       `json:"tools,omitempty"`
	Resources   *ResourcesCapability   `json:"resources,omitempty"`
	Prompts     *PromptsCapability     `json:"prompts,omitempty"`
	Logging     *LoggingCapability     `json:"logging,omitempty"`
	Completions *CompletionsCapability `json:"completions,omitempty"`
	Tasks       *TasksCapability       `json:"tasks,omitempty"`
}

// gateMode selects how a capability mismatch is treated.
type gateMode int

const (
	// gateStrict refuses the operation outright (used when sending).
	gateStrict gateMode = iota
	// gateAdvisory only logs (used when registering a local handler).
	gateAdvisory
)

// methodRequiresClientCapability reports whether method requires a
// capability a client advertises, and if so, whether caps satisfies it.
// Methods with no entry are unconstrained (e.g. ping, initialize).
func methodRequiresClientCapability(method string, caps ClientCapabilities) (required, satisfied bool) {
	switch method {
	case MethodRootsList, MethodNotificationsRootsListChanged:
		return true, caps.Roots != nil
	case MethodSamplingCreateMessage:
		return true, caps.Sampling != nil
	case MethodTasksCancel:
		return true, caps.Tasks != nil
	default:
		return false, true
	}
}

// methodRequiresServerCapability reports whether method requires a
// capability a server advertises, and if so, whether caps satisfies it.
func methodRequiresServerCapability(method string, caps ServerCapabilities) (required, satisfied bool) {
	switch method {
	case MethodToolsList, MethodToolsCall:
		return true, caps.Tools != nil
	case MethodResourcesList, MethodResourcesRead, MethodResourcesTemplatesList,
		MethodResourcesSubscribe, MethodResourcesUnsubscribe:
		return true, caps.Resources != nil
	case MethodPromptsList, MethodPromptsGet:
		return true, caps.Prompts != nil
	case MethodCompletionComplete:
		return true, caps.Completions != nil
	case MethodTasksGet, MethodTasksList, MethodTasksResult:
		return true, caps.Tasks != nil
	default:
		return false, true
	}
}

// assertClientCapabilityForMethod gates an operation that depends on the
// remote client's advertised capabilities. In gateStrict mode a missing
// capability is returned as an error; in gateAdvisory mode it is only
// logged (or silently ignored if logger is nil), since an unregistered
// local handler for an unsupported method must not be treated as fatal.
func assertClientCapabilityForMethod(method string, caps ClientCapabilities, mode gateMode, logger Logger) error {
	required, satisfied := methodRequiresClientCapability(method, caps)
	if !required || satisfied {
		return nil
	}
	if mode == gateStrict {
		return mcperrors.ErrCapabilityNotSupported
	}
	if logger != nil {
		logger.Warnf("mcp: registering handler for %q but local client capabilities do not advertise it", method)
	}
	return nil
}

// assertServerCapabilityForMethod is the server-side counterpart of
// assertClientCapabilityForMethod.
func assertServerCapabilityForMethod(method string, caps ServerCapabilities, mode gateMode, logger Logger) error {
	required, satisfied := methodRequiresServerCapability(method, caps)
	if !required || satisfied {
		return nil
	}
	if mode == gateStrict {
		return mcperrors.ErrCapabilityNotSupported
	}
	if logger != nil {
		logger.Warnf("mcp: registering handler for %q but local server capabilities do not advertise it", method)
	}
	return nil
}
