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

// ServerNotificationHandler processes one notification method sent by the
// connected client, beyond the handshake/cancellation notifications
// mcpHandler already owns.
type ServerNotificationHandler func(ctx context.Context, notification *JSONRPCNotification) error

// Server is a single-peer MCP server: it owns the tool, resource, and
// prompt registries plus the initialize/capability handshake, and drives
// them over whatever Transport Connect is given. One Server serves one
// connected peer at a time; host multiple peers by constructing one Server
// per connection, sharing registries across them if desired.
type Server struct {
	serverInfo Implementation
	logger     Logger

	toolManager      *toolManager
	resourceManager  *resourceManager
	promptManager    *promptManager
	lifecycleManager *lifecycleManager
	mcpHandler       *mcpHandler

	mu       sync.RWMutex
	protocol *Protocol
	session  Session

	notificationMu       sync.RWMutex
	notificationHandlers map[string]ServerNotificationHandler
}

// ServerOption configures a Server at construction time.
type ServerOption func(*Server)

// WithServerLogger overrides the server's default logger.
func WithServerLogger(logger Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// WithInstructions sets the free-text usage instructions returned in
// InitializeResult.
func WithInstructions(instructions string) ServerOption {
	return func(s *Server) { s.lifecycleManager.withInstructions(instructions) }
}

// WithToolListFilter installs a filter applied to tools/list results.
func WithToolListFilter(filter ToolListFilter) ServerOption {
	return func(s *Server) { s.toolManager.withToolListFilter(filter) }
}

// WithPromptListFilter installs a filter applied to prompts/list results.
func WithPromptListFilter(filter PromptListFilter) ServerOption {
	return func(s *Server) { s.promptManager.withPromptListFilter(filter) }
}

// WithResourceListFilter installs a filter applied to resources/list results.
func WithResourceListFilter(filter ResourceListFilter) ServerOption {
	return func(s *Server) { s.resourceManager.withResourceListFilter(filter) }
}

// WithMiddleware installs onion-style middleware around every request this
// server dispatches. Repeated calls accumulate rather than replace, so
// middleware from independent options compose in call order.
func WithMiddleware(mws ...HandlerMiddleware) ServerOption {
	return func(s *Server) { s.mcpHandler.use(mws...) }
}

// NewServer builds a Server identifying itself as name/version during
// initialize. Register tools, resources, and prompts, then call Connect to
// start serving a Transport.
func NewServer(name, version string, options ...ServerOption) *Server {
	tm := newToolManager()
	rm := newResourceManager()
	pm := newPromptManager()
	lm := newLifecycleManager(Implementation{Name: name, Version: version}).
		withToolManager(tm).
		withResourceManager(rm).
		withPromptManager(pm)

	s := &Server{
		serverInfo:           Implementation{Name: name, Version: version},
		logger:               GetDefaultLogger(),
		toolManager:          tm,
		resourceManager:      rm,
		promptManager:        pm,
		lifecycleManager:     lm,
		notificationHandlers: make(map[string]ServerNotificationHandler),
	}
	s.mcpHandler = newMCPHandler(
		withToolManager(tm),
		withResourceManager(rm),
		withPromptManager(pm),
		withLifecycleManager(lm),
	)

	for _, opt := range options {
		opt(s)
	}

	return s
}

// RegisterTool adds tool to the server's tool surface, served by handler.
func (s *Server) RegisterTool(tool *Tool, handler toolHandler) {
	s.toolManager.registerTool(tool, handler)
}

// GetTool retrieves a previously registered tool by name.
func (s *Server) GetTool(name string) (Tool, bool) {
	registered, ok := s.toolManager.getTool(name)
	if !ok {
		return Tool{}, false
	}
	return *registered.Tool, true
}

// GetTools returns every registered tool, in registration order.
func (s *Server) GetTools() []Tool {
	tools := s.toolManager.getTools()
	out := make([]Tool, len(tools))
	for i, t := range tools {
		out[i] = *t
	}
	return out
}

// UnregisterTools removes the named tools, ignoring unknown names.
func (s *Server) UnregisterTools(names ...string) {
	for _, name := range names {
		s.toolManager.unregisterTool(name)
	}
}

// RegisterResource adds a single-content resource served by handler.
func (s *Server) RegisterResource(resource *Resource, handler resourceHandler, opts ...registeredResourceOption) {
	s.resourceManager.registerResource(resource, handler, opts...)
}

// RegisterResources adds a resource whose reads may return multiple
// representations, served by handler.
func (s *Server) RegisterResources(resource *Resource, handler resourcesHandler, opts ...registeredResourceOption) {
	s.resourceManager.registerResources(resource, handler, opts...)
}

// RegisterResourceTemplate adds a URI-template-backed resource family.
func (s *Server) RegisterResourceTemplate(template *ResourceTemplate, handler resourceTemplateHandler, opts ...registerResourceTemplateOption) error {
	return s.resourceManager.registerTemplate(template, handler, opts...)
}

// RegisterPrompt adds a prompt served by handler.
func (s *Server) RegisterPrompt(prompt *Prompt, handler promptHandler, opts ...registerdPromptOption) {
	s.promptManager.registerPrompt(prompt, handler, opts...)
}

// GetServerInfo returns the name/version this server identifies as.
func (s *Server) GetServerInfo() Implementation {
	return s.serverInfo
}

// RegisterNotificationHandler installs handler for a client-to-server
// notification method, beyond the handshake/cancellation ones mcpHandler
// already dispatches. Handlers registered before Connect are wired to the
// Protocol automatically; ones registered afterward take effect on the next
// Connect call.
func (s *Server) RegisterNotificationHandler(method string, handler ServerNotificationHandler) {
	s.notificationMu.Lock()
	defer s.notificationMu.Unlock()
	s.notificationHandlers[method] = handler
}

// UnregisterNotificationHandler removes a previously registered handler.
func (s *Server) UnregisterNotificationHandler(method string) {
	s.notificationMu.Lock()
	defer s.notificationMu.Unlock()
	delete(s.notificationHandlers, method)
}

// Connect drives this server's request and notification dispatch over
// transport until the connection closes or ctx is done. The returned
// Protocol also lets callers issue server-initiated requests (ListRoots)
// and notifications (Notify) to the connected peer.
func (s *Server) Connect(ctx context.Context, transport Transport) (*Protocol, error) {
	sess := newSession()

	p := NewProtocol(transport,
		WithProtocolLogger(s.logger),
		WithLocalServerCapabilities(s.lifecycleManager.capabilities()),
	)

	s.mu.Lock()
	s.protocol = p
	s.session = sess
	s.mu.Unlock()

	for method := range s.mcpHandler.requestDispatchTable() {
		method := method
		p.SetRequestHandler(method, func(ctx context.Context, req *JSONRPCRequest) (interface{}, error) {
			return s.dispatchRequest(ctx, req, sess, p)
		})
	}

	methods := map[string]bool{
		MethodNotificationsInitialized:     true,
		MethodCancelRequest:                true,
		MethodNotificationsRootsListChanged: true,
	}
	s.notificationMu.RLock()
	for method := range s.notificationHandlers {
		methods[method] = true
	}
	s.notificationMu.RUnlock()

	for method := range methods {
		method := method
		p.SetNotificationHandler(method, func(ctx context.Context, notif *JSONRPCNotification) error {
			return s.dispatchNotification(withClientSession(ctx, sess), notif, sess)
		})
	}

	if err := p.Connect(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// dispatchRequest runs one inbound request through the onion middleware and
// method table, negotiating capabilities on a successful initialize, and
// unwraps mcpHandler's JSONRPCMessage result into Protocol's plainer
// (interface{}, error) convention: the envelope mcpHandler builds for an
// error becomes a returned error again here, so Protocol only ever wraps a
// message once before it reaches the wire.
func (s *Server) dispatchRequest(ctx context.Context, req *JSONRPCRequest, sess Session, p *Protocol) (interface{}, error) {
	msg, err := s.mcpHandler.handleRequest(withClientSession(ctx, sess), req, sess)
	if err != nil {
		return nil, err
	}

	if req.Method == MethodInitialize {
		s.negotiateCapabilities(req, p)
	}

	switch v := msg.(type) {
	case *JSONRPCError:
		return nil, NewMcpError(v.Error.Code, v.Error.Message, v.Error.Data)
	case *JSONRPCResponse:
		return v.Result, nil
	default:
		return v, nil
	}
}

// negotiateCapabilities records the client capabilities offered in an
// initialize request against what this server actually advertises, so
// later capability-gated calls can be checked against what was negotiated
// rather than merely requested.
func (s *Server) negotiateCapabilities(req *JSONRPCRequest, p *Protocol) {
	var params InitializeParams
	if err := parseJSONRPCParams(req.Params, &params); err != nil {
		return
	}
	p.SetNegotiatedCapabilities(params.Capabilities, s.lifecycleManager.capabilities())
}

// dispatchNotification runs a notification through mcpHandler first (so
// cancellation and initialized bookkeeping always happen), then any
// additionally registered ServerNotificationHandler for its method.
func (s *Server) dispatchNotification(ctx context.Context, notif *JSONRPCNotification, sess Session) error {
	if err := s.mcpHandler.handleNotification(ctx, notif, sess); err != nil {
		return err
	}

	s.notificationMu.RLock()
	handler, ok := s.notificationHandlers[notif.Method]
	s.notificationMu.RUnlock()
	if !ok {
		return nil
	}
	return handler(ctx, notif)
}

// activeProtocol returns the Protocol wired up by Connect, or an error if
// this server has never been connected.
func (s *Server) activeProtocol() (*Protocol, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.protocol == nil {
		return nil, fmt.Errorf("mcp: server is not connected")
	}
	return s.protocol, nil
}

// Protocol returns the engine wired up by Connect, for issuing typed
// server-to-client requests via the package-level Request helper. It is nil
// until Connect has run.
func (s *Server) Protocol() *Protocol {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.protocol
}

// ListRoots asks the connected client for its current filesystem roots.
// Only valid after Connect.
func (s *Server) ListRoots(ctx context.Context) (*ListRootsResult, error) {
	p, err := s.activeProtocol()
	if err != nil {
		return nil, err
	}
	result, err := Request[ListRootsResult](ctx, p, MethodRootsList, nil, RequestOptions{})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Notify sends a one-way notification to the connected client. Only valid
// after Connect.
func (s *Server) Notify(ctx context.Context, method string, params map[string]interface{}) error {
	p, err := s.activeProtocol()
	if err != nil {
		return err
	}
	return p.Notify(ctx, method, params)
}

// SSEOption configures an SSEServer; identical to ServerOption since SSE is
// just a Transport choice handed to Connect, not a distinct handler type.
type SSEOption = ServerOption

// SSEServer is a Server reached over a Server-Sent-Events transport. It
// adds no behavior of its own; Connect still decides the wire format via
// whichever Transport it is given.
type SSEServer struct {
	*Server
}

// NewSSEServer builds an SSEServer identifying itself as name/version.
func NewSSEServer(name, version string, opts ...SSEOption) *SSEServer {
	return &SSEServer{Server: NewServer(name, version, opts...)}
}

// WithSSEMiddleware installs onion-style middleware on an SSEServer, same
// as WithMiddleware.
func WithSSEMiddleware(mws ...HandlerMiddleware) SSEOption {
	return WithMiddleware(mws...)
}
