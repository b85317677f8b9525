// Tencent is pleased to support the open source community by making trpc-mcp-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-mcp-go is licensed under the Apache License Version 2.0.

package mcp

import "context"

// Transport is the one seam the protocol engine exposes outward. Concrete
// framings (stdio, HTTP, SSE) implement this; the engine never depends on
// their internals.
type Transport interface {
	// Start begins reading from the underlying connection. Messages that
	// arrive before Start is called are not guaranteed to be delivered.
	Start(ctx context.Context) error

	// Send writes a single message. relatedRequestID, when non-nil,
	// associates this send with an inbound request it was produced while
	// handling (used by multiplexing transports to route the send down
	// the same stream as the request that triggered it); transports that
	// don't multiplex may ignore it.
	Send(ctx context.Context, msg JSONRPCMessage, relatedRequestID *ID) error

	// Close shuts down the transport and releases its resources.
	Close() error

	// SessionID returns the transport-level session identifier, or empty
	// if the transport is session-less.
	SessionID() string

	// OnMessage registers the callback invoked for each inbound message.
	OnMessage(func(JSONRPCMessage))

	// OnClose registers the callback invoked once the transport closes,
	// whether by Close or by the peer disconnecting.
	OnClose(func())

	// OnError registers the callback invoked for transport-level errors
	// that are not tied to a specific message (framing errors, I/O errors).
	OnError(func(error))
}
