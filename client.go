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
)

// State represents the client's position in the connect/initialize lifecycle.
type State string

// Client state constants.
const (
	// StateDisconnected indicates the client is not connected to any server.
	StateDisconnected State = "disconnected"
	// StateConnected indicates the client has established a transport connection but not initialized.
	StateConnected State = "connected"
	// StateInitialized indicates the client completed the initialize handshake.
	StateInitialized State = "initialized"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Connector is the surface a connected MCP peer exposes to application code.
type Connector interface {
	// Initialize performs the initialize/initialized handshake.
	Initialize(ctx context.Context, req *InitializeRequest) (*InitializeResult, error)
	// Close shuts down the underlying transport.
	Close() error
	// GetState returns the current client state.
	GetState() State
	// ListTools retrieves all available tools from the server.
	ListTools(ctx context.Context, req *ListToolsRequest) (*ListToolsResult, error)
	// CallTool executes a specific tool with given parameters.
	CallTool(ctx context.Context, req *CallToolRequest) (*CallToolResult, error)
	// ListPrompts retrieves all available prompts from the server.
	ListPrompts(ctx context.Context, req *ListPromptsRequest) (*ListPromptsResult, error)
	// GetPrompt retrieves a specific prompt by name.
	GetPrompt(ctx context.Context, req *GetPromptRequest) (*GetPromptResult, error)
	// ListResources retrieves all available resources from the server.
	ListResources(ctx context.Context, req *ListResourcesRequest) (*ListResourcesResult, error)
	// ReadResource reads the content of a specific resource.
	ReadResource(ctx context.Context, req *ReadResourceRequest) (*ReadResourceResult, error)
	// RegisterNotificationHandler registers a handler for server notifications.
	RegisterNotificationHandler(method string, handler NotificationHandler)
	// UnregisterNotificationHandler removes a notification handler.
	UnregisterNotificationHandler(method string)
	// SetRootsProvider sets the provider for responding to server roots/list requests.
	SetRootsProvider(provider RootsProvider)
	// SendRootsListChangedNotification notifies the server that roots changed.
	SendRootsListChangedNotification(ctx context.Context) error
}

// Client is a single-peer MCP client: it drives the initialize handshake and
// the tool/resource/prompt request methods over whatever Transport Connect
// is given, through a Protocol engine.
type Client struct {
	clientInfo   Implementation
	capabilities ClientCapabilities
	logger       Logger

	mu       sync.RWMutex
	protocol *Protocol
	state    State

	rootsMu       sync.RWMutex
	rootsProvider RootsProvider

	notificationMu       sync.RWMutex
	notificationHandlers map[string]NotificationHandler
}

// ClientOption configures a Client at construction time.
type ClientOption func(*Client)

// WithClientLogger sets the logger used by the client's Protocol.
func WithClientLogger(logger Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithClientCapabilities overrides the capabilities advertised during
// initialize. By default a client advertises RootsCapability only.
func WithClientCapabilities(caps ClientCapabilities) ClientOption {
	return func(c *Client) { c.capabilities = caps }
}

// NewClient builds a Client identifying itself as clientInfo. Call Connect
// with a Transport, then Initialize, before issuing any other request.
func NewClient(clientInfo Implementation, options ...ClientOption) *Client {
	c := &Client{
		clientInfo:           clientInfo,
		capabilities:         ClientCapabilities{Roots: &RootsCapability{}},
		logger:               GetDefaultLogger(),
		state:                StateDisconnected,
		notificationHandlers: make(map[string]NotificationHandler),
	}

	for _, option := range options {
		option(c)
	}

	return c
}

// GetState returns the current client state.
func (c *Client) GetState() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

// Connect starts the Protocol engine over transport. Initialize must still
// be called afterward to complete the handshake.
func (c *Client) Connect(ctx context.Context, transport Transport) error {
	p := NewProtocol(transport,
		WithProtocolLogger(c.logger),
		WithLocalClientCapabilities(c.capabilities),
	)
	p.SetRequestHandler(MethodRootsList, c.handleListRoots)
	p.SetRequestHandler(MethodPing, func(ctx context.Context, req *JSONRPCRequest) (interface{}, error) {
		return map[string]interface{}{}, nil
	})

	c.notificationMu.RLock()
	for method, handler := range c.notificationHandlers {
		p.SetNotificationHandler(method, handler)
	}
	c.notificationMu.RUnlock()

	c.mu.Lock()
	c.protocol = p
	c.mu.Unlock()

	if err := p.Connect(ctx); err != nil {
		return err
	}
	c.setState(StateConnected)
	return nil
}

// handleListRoots answers the server's roots/list request from whatever
// RootsProvider SetRootsProvider installed; an absent provider reports an
// empty root set rather than an error.
func (c *Client) handleListRoots(ctx context.Context, req *JSONRPCRequest) (interface{}, error) {
	c.rootsMu.RLock()
	provider := c.rootsProvider
	c.rootsMu.RUnlock()

	if provider == nil {
		return ListRootsResult{Roots: []Root{}}, nil
	}
	return ListRootsResult{Roots: provider.GetRoots()}, nil
}

// protocolOrErr returns the connected Protocol, or an error if Connect has
// not been called yet.
func (c *Client) protocolOrErr() (*Protocol, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.protocol == nil {
		return nil, fmt.Errorf("mcp: client is not connected")
	}
	return c.protocol, nil
}

// Initialize performs the initialize/initialized handshake. req may be nil
// to use the client's own Implementation/capabilities; if non-nil, its
// fields override them.
func (c *Client) Initialize(ctx context.Context, req *InitializeRequest) (*InitializeResult, error) {
	p, err := c.protocolOrErr()
	if err != nil {
		return nil, err
	}
	if c.GetState() == StateInitialized {
		return nil, fmt.Errorf("mcp: client already initialized")
	}

	params := InitializeParams{
		ProtocolVersion: LatestProtocolVersion,
		ClientInfo:      c.clientInfo,
		Capabilities:    c.capabilities,
	}
	if req != nil {
		if req.Params.ProtocolVersion != "" {
			params.ProtocolVersion = req.Params.ProtocolVersion
		}
		if req.Params.ClientInfo.Name != "" {
			params.ClientInfo = req.Params.ClientInfo
		}
		params.Capabilities = req.Params.Capabilities
	}

	result, err := Request[InitializeResult](ctx, p, MethodInitialize, params, RequestOptions{})
	if err != nil {
		c.setState(StateDisconnected)
		return nil, fmt.Errorf("initialization request failed: %w", err)
	}

	p.SetNegotiatedCapabilities(params.Capabilities, result.Capabilities)

	if err := p.Notify(ctx, MethodNotificationsInitialized, nil); err != nil {
		c.setState(StateDisconnected)
		return nil, fmt.Errorf("failed to send initialized notification: %w", err)
	}

	c.setState(StateInitialized)
	return &result, nil
}

func (c *Client) requireInitialized() (*Protocol, error) {
	p, err := c.protocolOrErr()
	if err != nil {
		return nil, err
	}
	if c.GetState() != StateInitialized {
		return nil, fmt.Errorf("mcp: client is not initialized")
	}
	return p, nil
}

// ListTools lists available tools.
func (c *Client) ListTools(ctx context.Context, req *ListToolsRequest) (*ListToolsResult, error) {
	p, err := c.requireInitialized()
	if err != nil {
		return nil, err
	}
	var params interface{}
	if req != nil {
		params = req.Params
	}
	result, err := Request[ListToolsResult](ctx, p, MethodToolsList, params, RequestOptions{})
	if err != nil {
		return nil, fmt.Errorf("list tools request failed: %w", err)
	}
	return &result, nil
}

// CallTool calls a tool by name.
func (c *Client) CallTool(ctx context.Context, req *CallToolRequest) (*CallToolResult, error) {
	p, err := c.requireInitialized()
	if err != nil {
		return nil, err
	}
	result, err := Request[CallToolResult](ctx, p, MethodToolsCall, req.Params, RequestOptions{})
	if err != nil {
		return nil, fmt.Errorf("tool call request failed: %w", err)
	}
	return &result, nil
}

// ListPrompts lists available prompts.
func (c *Client) ListPrompts(ctx context.Context, req *ListPromptsRequest) (*ListPromptsResult, error) {
	p, err := c.requireInitialized()
	if err != nil {
		return nil, err
	}
	var params interface{}
	if req != nil {
		params = req.Params
	}
	result, err := Request[ListPromptsResult](ctx, p, MethodPromptsList, params, RequestOptions{})
	if err != nil {
		return nil, fmt.Errorf("list prompts request failed: %w", err)
	}
	return &result, nil
}

// GetPrompt retrieves a specific prompt by name.
func (c *Client) GetPrompt(ctx context.Context, req *GetPromptRequest) (*GetPromptResult, error) {
	p, err := c.requireInitialized()
	if err != nil {
		return nil, err
	}
	result, err := Request[GetPromptResult](ctx, p, MethodPromptsGet, req.Params, RequestOptions{})
	if err != nil {
		return nil, fmt.Errorf("get prompt request failed: %w", err)
	}
	return &result, nil
}

// ListResources lists available resources.
func (c *Client) ListResources(ctx context.Context, req *ListResourcesRequest) (*ListResourcesResult, error) {
	p, err := c.requireInitialized()
	if err != nil {
		return nil, err
	}
	var params interface{}
	if req != nil {
		params = req.Params
	}
	result, err := Request[ListResourcesResult](ctx, p, MethodResourcesList, params, RequestOptions{})
	if err != nil {
		return nil, fmt.Errorf("list resources request failed: %w", err)
	}
	return &result, nil
}

// ReadResource reads the content of a specific resource.
func (c *Client) ReadResource(ctx context.Context, req *ReadResourceRequest) (*ReadResourceResult, error) {
	p, err := c.requireInitialized()
	if err != nil {
		return nil, err
	}
	result, err := Request[ReadResourceResult](ctx, p, MethodResourcesRead, req.Params, RequestOptions{})
	if err != nil {
		return nil, fmt.Errorf("read resource request failed: %w", err)
	}
	return &result, nil
}

// Close shuts down the underlying transport.
func (c *Client) Close() error {
	p, err := c.protocolOrErr()
	if err != nil {
		return nil
	}
	err = p.Close()
	c.setState(StateDisconnected)
	return err
}

// RegisterNotificationHandler installs handler for a server-to-client
// notification method. If called after Connect, it also wires directly into
// the live Protocol; otherwise it takes effect on the next Connect.
func (c *Client) RegisterNotificationHandler(method string, handler NotificationHandler) {
	c.notificationMu.Lock()
	c.notificationHandlers[method] = handler
	c.notificationMu.Unlock()

	c.mu.RLock()
	p := c.protocol
	c.mu.RUnlock()
	if p != nil {
		p.SetNotificationHandler(method, handler)
	}
}

// UnregisterNotificationHandler removes a previously registered handler. An
// already-connected Protocol keeps routing the method to a no-op until the
// next Connect, since Protocol itself exposes no handler removal.
func (c *Client) UnregisterNotificationHandler(method string) {
	c.notificationMu.Lock()
	delete(c.notificationHandlers, method)
	c.notificationMu.Unlock()

	c.mu.RLock()
	p := c.protocol
	c.mu.RUnlock()
	if p != nil {
		p.SetNotificationHandler(method, func(ctx context.Context, notif *JSONRPCNotification) error { return nil })
	}
}

// SetRootsProvider sets the provider for responding to server roots/list requests.
func (c *Client) SetRootsProvider(provider RootsProvider) {
	c.rootsMu.Lock()
	defer c.rootsMu.Unlock()
	c.rootsProvider = provider
}

// SendRootsListChangedNotification notifies the server that roots changed.
func (c *Client) SendRootsListChangedNotification(ctx context.Context) error {
	p, err := c.protocolOrErr()
	if err != nil {
		return err
	}
	return p.Notify(ctx, MethodNotificationsRootsListChanged, nil)
}
