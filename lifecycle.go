// Tencent is pleased to support the open source community by making trpc-mcp-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-mcp-go is licensed under the Apache License Version 2.0.

package mcp

import (
	"context"
	"sync"

	"github.com/mcprt/mcpcore/internal/errors"
)

// Implementation identifies a client or server by name and version, echoed
// by both sides during initialize.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeParams is the body of an initialize request.
type InitializeParams struct {
	ProtocolVersion string             `json:"protocolVersion"`
	ClientInfo      Implementation     `json:"clientInfo"`
	Capabilities    ClientCapabilities `json:"capabilities"`
}

// InitializeRequest is the client's handshake request.
type InitializeRequest struct {
	Request
	Params InitializeParams `json:"params"`
}

// InitializeResult is the server's handshake response.
type InitializeResult struct {
	Result
	ProtocolVersion string             `json:"protocolVersion"`
	ServerInfo      Implementation     `json:"serverInfo"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	Instructions    string             `json:"instructions,omitempty"`
}

// isJSONRPCMessage lets an initialize result stand directly as a dispatched
// handler's return value, same as the four wire envelope types.
func (InitializeResult) isJSONRPCMessage() {}

// NewInitializeRequest builds the JSON-RPC envelope for an initialize call.
func NewInitializeRequest(protocolVersion string, clientInfo Implementation, caps ClientCapabilities) *JSONRPCRequest {
	return &JSONRPCRequest{
		JSONRPC: JSONRPCVersion,
		ID:      NewIntID(0),
		Request: Request{Method: MethodInitialize},
		Params: InitializeParams{
			ProtocolVersion: protocolVersion,
			ClientInfo:      clientInfo,
			Capabilities:    caps,
		},
	}
}

// lifecycleManager owns the initialize/initialized handshake and session
// teardown notifications. It holds references to the other managers only to
// decide which capability sub-records to advertise: a manager with nothing
// registered still advertises its capability, since resources/tools/prompts
// are enabled lazily rather than through explicit configuration.
type lifecycleManager struct {
	mu sync.RWMutex

	serverInfo Implementation

	toolManager      *toolManager
	resourceManager  *resourceManager
	promptManager    *promptManager

	instructions string

	// sessionTerminatedHandlers are invoked, in order, when a session ends.
	sessionTerminatedHandlers []func(sessionID string)
}

// newLifecycleManager creates a lifecycle manager that identifies the
// server as serverInfo during initialize.
func newLifecycleManager(serverInfo Implementation) *lifecycleManager {
	return &lifecycleManager{serverInfo: serverInfo}
}

func (m *lifecycleManager) withToolManager(tm *toolManager) *lifecycleManager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toolManager = tm
	return m
}

func (m *lifecycleManager) withResourceManager(rm *resourceManager) *lifecycleManager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resourceManager = rm
	return m
}

func (m *lifecycleManager) withPromptManager(pm *promptManager) *lifecycleManager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promptManager = pm
	return m
}

// withInstructions sets free-text usage instructions returned in InitializeResult.
func (m *lifecycleManager) withInstructions(instructions string) *lifecycleManager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instructions = instructions
	return m
}

// onSessionTerminatedFunc registers a callback invoked from onSessionTerminated.
func (m *lifecycleManager) onSessionTerminatedFunc(fn func(sessionID string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionTerminatedHandlers = append(m.sessionTerminatedHandlers, fn)
}

func (m *lifecycleManager) capabilities() ServerCapabilities {
	m.mu.RLock()
	defer m.mu.RUnlock()

	caps := ServerCapabilities{}
	if m.toolManager != nil {
		caps.Tools = &ToolsCapability{}
	}
	if m.resourceManager != nil {
		caps.Resources = &ResourcesCapability{Subscribe: true}
	}
	if m.promptManager != nil {
		caps.Prompts = &PromptsCapability{}
		if m.promptManager.hasCompletionCompleteHandler() || (m.resourceManager != nil && m.resourceManager.hasCompletionCompleteHandler()) {
			caps.Completions = &CompletionsCapability{}
		}
	}
	caps.Tasks = &TasksCapability{Cancel: true}
	return caps
}

// handleInitialize processes the client's handshake, recording the
// negotiated protocol version on the session for later handlers to read
// (mirroring how mcp_tools.go readers expect session state to already be
// populated by the time tools/list runs).
func (m *lifecycleManager) handleInitialize(ctx context.Context, req *JSONRPCRequest, session Session) (JSONRPCMessage, error) {
	var params InitializeParams
	if err := parseJSONRPCParams(req.Params, &params); err != nil {
		return newJSONRPCErrorResponse(req.ID, ErrCodeInvalidParams, errors.ErrInvalidParams.Error(), nil), nil
	}

	protocolVersion := params.ProtocolVersion
	if protocolVersion == "" {
		protocolVersion = LatestProtocolVersion
	}

	if session != nil {
		session.SetData("protocolVersion", protocolVersion)
		session.SetData("clientInfo", params.ClientInfo)
		session.SetData("clientCapabilities", params.Capabilities)
	}

	m.mu.RLock()
	serverInfo := m.serverInfo
	instructions := m.instructions
	m.mu.RUnlock()

	return InitializeResult{
		ProtocolVersion: protocolVersion,
		ServerInfo:      serverInfo,
		Capabilities:    m.capabilities(),
		Instructions:    instructions,
	}, nil
}

// handleInitialized processes the client's notifications/initialized
// acknowledgement. Nothing is required of the server at this point beyond
// marking the session ready; the check exists so future hooks have a place
// to attach.
func (m *lifecycleManager) handleInitialized(ctx context.Context, notification *JSONRPCNotification, session Session) error {
	if session != nil {
		session.SetData("initialized", true)
	}
	return nil
}

// onSessionTerminated runs every registered teardown callback for sessionID.
func (m *lifecycleManager) onSessionTerminated(sessionID string) {
	m.mu.RLock()
	handlers := append([]func(string){}, m.sessionTerminatedHandlers...)
	m.mu.RUnlock()

	for _, fn := range handlers {
		fn(sessionID)
	}
}
