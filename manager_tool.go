// Tencent is pleased to support the open source community by making trpc-mcp-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-mcp-go is licensed under the Apache License Version 2.0.

package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/mcprt/mcpcore/internal/errors"
)

// toolManager manages the server's tool surface.
//
// Tool functionality follows these enabling mechanisms:
//  1. The tools capability is advertised whenever a tool manager is attached to the lifecycle
//     manager, whether or not any tool has been registered
//  2. When no tools exist, ListTools will return an empty tool list rather than an error
//  3. Clients can determine if the server supports tool functionality through the capabilities
//     field in the initialization response
//
// This design simplifies API usage, eliminating the need for explicit configuration parameters to
// enable or disable tool functionality.
type toolManager struct {
	// Tool mapping table
	tools map[string]*registeredTool

	// Mutex
	mu sync.RWMutex

	// Track insertion order of tools
	toolsOrder []string

	// Tool list filter function
	toolListFilter ToolListFilter
}

// newToolManager creates a new tool manager.
//
// Note: the tools capability is advertised as soon as the manager is attached
// to a lifecycle manager, even before the first tool is added.
func newToolManager() *toolManager {
	return &toolManager{
		tools: make(map[string]*registeredTool),
	}
}

// withToolListFilter sets the tool list filter.
func (m *toolManager) withToolListFilter(filter ToolListFilter) *toolManager {
	m.toolListFilter = filter
	return m
}

// registerTool registers a tool and its handler.
func (m *toolManager) registerTool(tool *Tool, handler toolHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tool == nil || tool.Name == "" {
		return
	}

	if _, exists := m.tools[tool.Name]; !exists {
		m.toolsOrder = append(m.toolsOrder, tool.Name)
	}

	m.tools[tool.Name] = &registeredTool{
		Tool:    tool,
		Handler: handler,
	}
}

// unregisterTool removes a previously registered tool.
func (m *toolManager) unregisterTool(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tools[name]; !exists {
		return
	}
	delete(m.tools, name)
	for i, n := range m.toolsOrder {
		if n == name {
			m.toolsOrder = append(m.toolsOrder[:i], m.toolsOrder[i+1:]...)
			break
		}
	}
}

// getTool retrieves a registered tool by name.
func (m *toolManager) getTool(name string) (*registeredTool, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tools[name]
	return t, ok
}

// getTools returns all registered tools in registration order.
func (m *toolManager) getTools() []*Tool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ordered := make([]*Tool, 0, len(m.tools))
	for _, name := range m.toolsOrder {
		if registered, exists := m.tools[name]; exists {
			ordered = append(ordered, registered.Tool)
		}
	}
	return ordered
}

// handleListTools handles tools/list requests.
func (m *toolManager) handleListTools(ctx context.Context, req *JSONRPCRequest, session Session) (JSONRPCMessage, error) {
	toolPtrs := m.getTools()

	if m.toolListFilter != nil {
		toolPtrs = m.toolListFilter(ctx, toolPtrs)
	}

	resultTools := make([]Tool, len(toolPtrs))
	for i, tool := range toolPtrs {
		if tool != nil {
			resultTools[i] = *tool
		}
	}

	return ListToolsResult{Tools: resultTools}, nil
}

// handleCallTool handles tools/call requests.
func (m *toolManager) handleCallTool(ctx context.Context, req *JSONRPCRequest, session Session) (JSONRPCMessage, error) {
	paramsMap, ok := req.Params.(map[string]interface{})
	if !ok {
		return newJSONRPCErrorResponse(req.ID, ErrCodeInvalidParams, errors.ErrInvalidParams.Error(), nil), nil
	}

	name, ok := paramsMap["name"].(string)
	if !ok || name == "" {
		return newJSONRPCErrorResponse(req.ID, ErrCodeInvalidParams, errors.ErrMissingParams.Error(), nil), nil
	}

	registered, exists := m.getTool(name)
	if !exists {
		return newJSONRPCErrorResponse(
			req.ID,
			ErrCodeInvalidParams,
			fmt.Sprintf("%v: %s", errors.ErrToolNotFound, name),
			nil,
		), nil
	}

	callReq := &CallToolRequest{
		Params: CallToolParams{
			Name: name,
		},
	}
	if args, ok := paramsMap["arguments"]; ok && args != nil {
		if argsMap, ok := args.(map[string]interface{}); ok {
			callReq.Params.Arguments = argsMap
		}
	}

	if registered.Handler == nil {
		return newJSONRPCErrorResponse(
			req.ID,
			ErrCodeMethodNotFound,
			fmt.Sprintf("%v: %s", errors.ErrMethodNotFound, name),
			nil,
		), nil
	}

	if session != nil {
		ctx = withClientSession(ctx, session)
	}

	result, err := registered.Handler(ctx, callReq)
	if err != nil {
		return newJSONRPCErrorResponse(req.ID, ErrCodeInternal, err.Error(), nil), nil
	}
	return result, nil
}
