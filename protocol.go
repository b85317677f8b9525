// Tencent is pleased to support the open source community by making trpc-mcp-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-mcp-go is licensed under the Apache License Version 2.0.

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	mcperrors "github.com/mcprt/mcpcore/internal/errors"
	"github.com/mcprt/mcpcore/internal/session"
)

// RequestHandler processes one inbound request and returns its result (or
// an error, which the engine converts into a JSONRPCError).
type RequestHandler func(ctx context.Context, req *JSONRPCRequest) (interface{}, error)

// NotificationHandler processes one inbound notification.
type NotificationHandler func(ctx context.Context, notif *JSONRPCNotification) error

// Progress is the payload of a notifications/progress message.
type Progress struct {
	Progress float64
	Total    *float64
	Message  string
}

// taskResultProvider is implemented by result types that created a task,
// letting Request[T] decide whether a progress handler must outlive the
// response rather than being torn down the moment it arrives.
type taskResultProvider interface {
	GetTaskID() string
}

type pendingResult struct {
	raw *json.RawMessage
	err error
}

type pendingCall struct {
	done            chan pendingResult
	method          string
	progressToken   string
	timer           *time.Timer
	lastTimeout     time.Duration
	resetOnProgress bool
	resolved        atomic.Bool
}

type progressEntry struct {
	handler func(Progress)
	retain  bool
}

type pendingNotification struct {
	mu      sync.Mutex
	pending bool
}

// Protocol is the transport-agnostic JSON-RPC 2.0 engine: request
// correlation, timeouts, cancellation, progress routing, and capability
// gating. It is symmetric — a Client and a Server both wrap one.
type Protocol struct {
	transport Transport
	logger    Logger

	session *session.Session

	nextID atomic.Int64

	mu                sync.Mutex
	pending           map[interface{}]*pendingCall
	requestHandlers   map[string]RequestHandler
	notificationHandlers map[string]NotificationHandler
	progressHandlers  map[string]*progressEntry
	debounce          map[string]*pendingNotification

	localClientCapabilities  ClientCapabilities
	localServerCapabilities  ServerCapabilities
	remoteClientCapabilities ClientCapabilities
	remoteServerCapabilities ServerCapabilities

	taskStore TaskStore
	taskQueue TaskMessageQueue

	closed atomic.Bool
}

// ProtocolOption configures a Protocol at construction time.
type ProtocolOption func(*Protocol)

// WithProtocolLogger overrides the default logger.
func WithProtocolLogger(logger Logger) ProtocolOption {
	return func(p *Protocol) { p.logger = logger }
}

// WithLocalClientCapabilities declares what this side supports as a client.
func WithLocalClientCapabilities(caps ClientCapabilities) ProtocolOption {
	return func(p *Protocol) { p.localClientCapabilities = caps }
}

// WithLocalServerCapabilities declares what this side supports as a server.
func WithLocalServerCapabilities(caps ServerCapabilities) ProtocolOption {
	return func(p *Protocol) { p.localServerCapabilities = caps }
}

// WithTaskStore overrides the default in-memory TaskStore.
func WithTaskStore(store TaskStore) ProtocolOption {
	return func(p *Protocol) { p.taskStore = store }
}

// WithTaskMessageQueue overrides the default bounded TaskMessageQueue.
func WithTaskMessageQueue(queue TaskMessageQueue) ProtocolOption {
	return func(p *Protocol) { p.taskQueue = queue }
}

// NewProtocol wires a Protocol engine around transport.
func NewProtocol(transport Transport, opts ...ProtocolOption) *Protocol {
	p := &Protocol{
		transport:            transport,
		logger:               GetDefaultLogger(),
		session:              session.NewSession(),
		pending:              make(map[interface{}]*pendingCall),
		requestHandlers:      make(map[string]RequestHandler),
		notificationHandlers: make(map[string]NotificationHandler),
		progressHandlers:     make(map[string]*progressEntry),
		debounce:             make(map[string]*pendingNotification),
		taskStore:            NewInMemoryTaskStore(),
		taskQueue:            NewInMemoryTaskMessageQueue(DefaultTaskQueueCapacity),
	}
	for _, opt := range opts {
		opt(p)
	}
	transport.OnMessage(p.handleMessage)
	transport.OnClose(p.handleTransportClosed)
	transport.OnError(func(err error) { p.logger.Warnf("mcp: transport error: %v", err) })
	return p
}

// Connect starts the underlying transport.
func (p *Protocol) Connect(ctx context.Context) error {
	return p.transport.Start(ctx)
}

// Close shuts down the transport and aborts every in-flight request.
func (p *Protocol) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.session.CancelAll()

	p.mu.Lock()
	pendings := make([]*pendingCall, 0, len(p.pending))
	for _, pc := range p.pending {
		pendings = append(pendings, pc)
	}
	p.pending = make(map[interface{}]*pendingCall)
	p.mu.Unlock()

	for _, pc := range pendings {
		p.resolvePending(pc, pendingResult{err: &ConnectionClosedError{}})
	}

	return p.transport.Close()
}

// SetNegotiatedCapabilities records the capabilities exchanged during
// initialize, which subsequent strict-mode sends are gated against.
func (p *Protocol) SetNegotiatedCapabilities(client ClientCapabilities, server ServerCapabilities) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.remoteClientCapabilities = client
	p.remoteServerCapabilities = server
}

// SetRequestHandler registers handler for method, gated advisorily against
// this side's own locally-declared capabilities (a missing local
// capability only logs — registering a handler the transport never routes
// to is harmless).
func (p *Protocol) SetRequestHandler(method string, handler RequestHandler) {
	_ = assertServerCapabilityForMethod(method, p.localServerCapabilities, gateAdvisory, p.logger)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requestHandlers[method] = handler
}

// SetNotificationHandler registers handler for a notification method.
func (p *Protocol) SetNotificationHandler(method string, handler NotificationHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notificationHandlers[method] = handler
}

// RequestOptions configures one outgoing Request call.
type RequestOptions struct {
	// Timeout is the absolute deadline for the call (spec.md's maxTotalTimeout).
	Timeout time.Duration
	// ResetTimeoutOnProgress rearms Timeout each time a matching progress
	// notification arrives, instead of enforcing it from send time only.
	ResetTimeoutOnProgress bool
	// OnProgress, if set, is invoked for every notifications/progress
	// carrying this request's token.
	OnProgress func(Progress)
}

// Request sends method with params and decodes the result into T. It is a
// package-level generic function, not a generic method, because Go does
// not allow a method to introduce type parameters beyond its receiver's;
// this mirrors the typed-handler pattern already used for tool results.
func Request[T any](ctx context.Context, p *Protocol, method string, params interface{}, opts RequestOptions) (T, error) {
	var zero T

	if err := p.prepareStrictGate(method); err != nil {
		return zero, err
	}

	id := p.nextID.Add(1)

	wireParams := params
	var progressToken string
	if opts.OnProgress != nil {
		progressToken = fmt.Sprintf("req-%d", id)
		wireParams = withMeta(params, map[string]interface{}{"progressToken": progressToken})
		p.mu.Lock()
		p.progressHandlers[progressToken] = &progressEntry{handler: opts.OnProgress}
		p.mu.Unlock()
	}
	jreq := newJSONRPCRequest(id, method, wireParams)

	pc := &pendingCall{
		done:            make(chan pendingResult, 1),
		method:          method,
		progressToken:   progressToken,
		lastTimeout:     opts.Timeout,
		resetOnProgress: opts.ResetTimeoutOnProgress,
	}

	p.mu.Lock()
	p.pending[id] = pc
	p.mu.Unlock()

	if opts.Timeout > 0 {
		pc.timer = time.AfterFunc(opts.Timeout, func() {
			p.timeoutPending(id, pc)
		})
	}

	if err := p.transport.Send(ctx, jreq, nil); err != nil {
		p.removePending(id)
		return zero, err
	}

	select {
	case <-ctx.Done():
		p.abortPending(id, pc, ctx.Err())
		return zero, &AbortError{Reason: ctx.Err().Error()}
	case res := <-pc.done:
		if res.err != nil {
			return zero, res.err
		}
		var result T
		if res.raw != nil {
			if err := json.Unmarshal(*res.raw, &result); err != nil {
				return zero, err
			}
		}
		retain := false
		if tr, ok := any(result).(taskResultProvider); ok && tr.GetTaskID() != "" {
			retain = true
		}
		if progressToken != "" {
			p.mu.Lock()
			if retain {
				p.progressHandlers[progressToken].retain = true
			} else {
				delete(p.progressHandlers, progressToken)
			}
			p.mu.Unlock()
		}
		return result, nil
	}
}

// withMeta returns params re-encoded as a map with a "_meta" key carrying
// meta merged in, the wire shape notifications/progress correlation needs.
func withMeta(params interface{}, meta map[string]interface{}) interface{} {
	data, err := json.Marshal(params)
	if err != nil || len(data) == 0 {
		data = []byte("{}")
	}
	m := make(map[string]interface{})
	_ = json.Unmarshal(data, &m)
	m["_meta"] = meta
	return m
}

// normalizeIDKey converts a request id decoded out of a generic
// map[string]interface{} (where JSON numbers always arrive as float64)
// back into the int64/string form Session tracks ids under.
func normalizeIDKey(v interface{}) interface{} {
	if f, ok := v.(float64); ok {
		return int64(f)
	}
	return v
}

// prepareStrictGate checks, in strict mode, whether method is covered by
// the capabilities the remote side negotiated. Server-owned methods
// (tools/*, resources/*, prompts/*, completion/*, tasks/get|list|result)
// are checked against remoteServerCapabilities; client-owned methods
// (roots/*, sampling/*, tasks/cancel) against remoteClientCapabilities.
func (p *Protocol) prepareStrictGate(method string) error {
	p.mu.Lock()
	serverCaps := p.remoteServerCapabilities
	clientCaps := p.remoteClientCapabilities
	p.mu.Unlock()

	if required, satisfied := methodRequiresServerCapability(method, serverCaps); required && !satisfied {
		return mcperrors.ErrCapabilityNotSupported
	}
	if required, satisfied := methodRequiresClientCapability(method, clientCaps); required && !satisfied {
		return mcperrors.ErrCapabilityNotSupported
	}
	return nil
}

// Notify sends a one-way notification.
func (p *Protocol) Notify(ctx context.Context, method string, params map[string]interface{}) error {
	notif := NewJSONRPCNotificationFromMap(method, params)
	return p.transport.Send(ctx, notif, nil)
}

// NotifyDebounced coalesces rapid repeated notifications for method: if a
// send for method is already pending, this call is folded into it instead
// of queuing a second wire message. buildParams is invoked once, lazily,
// right before the actual send, so the payload reflects the latest state.
// This replaces the microtask-queue coalescing a JS engine gets for free
// with an explicit pending-bool flipped by a background goroutine.
func (p *Protocol) NotifyDebounced(ctx context.Context, method string, buildParams func() map[string]interface{}) {
	p.mu.Lock()
	pn, ok := p.debounce[method]
	if !ok {
		pn = &pendingNotification{}
		p.debounce[method] = pn
	}
	p.mu.Unlock()

	pn.mu.Lock()
	if pn.pending {
		pn.mu.Unlock()
		return
	}
	pn.pending = true
	pn.mu.Unlock()

	go func() {
		pn.mu.Lock()
		pn.pending = false
		pn.mu.Unlock()
		_ = p.Notify(ctx, method, buildParams())
	}()
}

func (p *Protocol) handleMessage(msg JSONRPCMessage) {
	switch m := msg.(type) {
	case *JSONRPCRequest:
		go p.dispatchRequest(m)
	case *JSONRPCNotification:
		p.dispatchNotification(m)
	case *JSONRPCResponse:
		raw := json.RawMessage(mustMarshal(m.Result))
		p.resolveByID(m.ID, pendingResult{raw: &raw})
	case *JSONRPCError:
		p.resolveByID(m.ID, pendingResult{err: &McpError{Code: m.Error.Code, Message: m.Error.Message, Data: m.Error.Data}})
	}
}

func mustMarshal(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return data
}

func (p *Protocol) dispatchRequest(req *JSONRPCRequest) {
	p.mu.Lock()
	handler, ok := p.requestHandlers[req.Method]
	p.mu.Unlock()

	if !ok {
		_ = p.transport.Send(context.Background(), newJSONRPCErrorResponse(req.ID, ErrCodeMethodNotFound, "method not found", nil), &req.ID)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	idKey := req.ID.Value()
	if req.Method == MethodInitialize {
		p.session.PinInitializeRequest(idKey)
	}
	p.session.Track(idKey, cancel)
	defer p.session.Untrack(idKey)
	defer cancel()

	result, err := handler(ctx, req)
	if err != nil {
		var mcpErr *McpError
		if asMcpError(err, &mcpErr) {
			_ = p.transport.Send(context.Background(), mcpErr.toJSONRPCError(req.ID), &req.ID)
			return
		}
		_ = p.transport.Send(context.Background(), newJSONRPCErrorResponse(req.ID, ErrCodeInternal, err.Error(), nil), &req.ID)
		return
	}
	_ = p.transport.Send(context.Background(), newJSONRPCResultResponse(req.ID, result), &req.ID)
}

func asMcpError(err error, target **McpError) bool {
	if e, ok := err.(*McpError); ok {
		*target = e
		return true
	}
	return false
}

func (p *Protocol) dispatchNotification(notif *JSONRPCNotification) {
	switch notif.Method {
	case MethodCancelRequest:
		if idVal, ok := notif.Params.AdditionalFields["requestId"]; ok {
			p.session.CancelRequest(normalizeIDKey(idVal))
		}
		return
	case MethodNotificationsProgress:
		p.routeProgress(notif)
		return
	}

	p.mu.Lock()
	handler, ok := p.notificationHandlers[notif.Method]
	p.mu.Unlock()
	if !ok {
		p.logger.Debugf("mcp: no handler for notification %q", notif.Method)
		return
	}
	if err := handler(context.Background(), notif); err != nil {
		p.logger.Warnf("mcp: notification handler for %q failed: %v", notif.Method, err)
	}
}

func (p *Protocol) routeProgress(notif *JSONRPCNotification) {
	token, _ := notif.Params.AdditionalFields["progressToken"].(string)
	if token == "" {
		return
	}
	p.mu.Lock()
	entry, ok := p.progressHandlers[token]
	p.mu.Unlock()
	if !ok {
		return
	}

	progress := Progress{}
	if v, ok := notif.Params.AdditionalFields["progress"].(float64); ok {
		progress.Progress = v
	}
	if v, ok := notif.Params.AdditionalFields["total"].(float64); ok {
		progress.Total = &v
	}
	if v, ok := notif.Params.AdditionalFields["message"].(string); ok {
		progress.Message = v
	}
	entry.handler(progress)

	p.mu.Lock()
	if pc := p.pendingByProgressToken(token); pc != nil && pc.timer != nil && pc.resetOnProgress {
		pc.timer.Reset(pc.lastTimeout)
	}
	p.mu.Unlock()
}

func (p *Protocol) pendingByProgressToken(token string) *pendingCall {
	for _, pc := range p.pending {
		if pc.progressToken == token {
			return pc
		}
	}
	return nil
}

func (p *Protocol) resolveByID(id ID, res pendingResult) {
	p.mu.Lock()
	pc, ok := p.pending[id.Value()]
	if ok {
		delete(p.pending, id.Value())
	}
	p.mu.Unlock()
	if !ok {
		return
	}
	p.resolvePending(pc, res)
}

func (p *Protocol) resolvePending(pc *pendingCall, res pendingResult) {
	if !pc.resolved.CompareAndSwap(false, true) {
		return
	}
	if pc.timer != nil {
		pc.timer.Stop()
	}
	pc.done <- res
}

func (p *Protocol) removePending(id int64) {
	p.mu.Lock()
	delete(p.pending, id)
	p.mu.Unlock()
}

func (p *Protocol) timeoutPending(id int64, pc *pendingCall) {
	p.removePending(id)
	p.resolvePending(pc, pendingResult{err: &RequestTimeoutError{Method: pc.method, Timeout: "configured timeout"}})
}

func (p *Protocol) abortPending(id int64, pc *pendingCall, cause error) {
	p.removePending(id)
	if !pc.resolved.CompareAndSwap(false, true) {
		return
	}
	if pc.timer != nil {
		pc.timer.Stop()
	}
	_ = p.Notify(context.Background(), MethodCancelRequest, map[string]interface{}{
		"requestId": id,
		"reason":    cause.Error(),
	})
}

func (p *Protocol) handleTransportClosed() {
	_ = p.Close()
}

// sessionID returns the transport's session identifier, the key tasks are
// namespaced under.
func (p *Protocol) sessionID() string {
	return p.transport.SessionID()
}
