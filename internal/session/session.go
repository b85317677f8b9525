// Tencent is pleased to support the open source community by making trpc-mcp-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-mcp-go is licensed under the Apache License Version 2.0.

// Package session tracks per-connection state the protocol engine needs
// while a request is executing: the cancel function for its context, and
// a small bag of session-scoped data (currently just the pinned
// initialize request id, which notifications/cancelled must never touch).
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const initializeRequestIDKey = "__initialize_request_id"

// Session holds the cancellation registry and data bag for one connection.
// It also carries the id/timestamp bookkeeping the application-level
// mcp.Session interface requires, so a *Session can stand in directly for
// an mcp.Session wherever only cancellation-tracking tests need one.
type Session struct {
	mu           sync.Mutex
	id           string
	createdAt    time.Time
	lastActivity time.Time
	cancels      map[interface{}]func()
	data         map[string]interface{}
}

// NewSession creates an empty session.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		id:           uuid.NewString(),
		createdAt:    now,
		lastActivity: now,
		cancels:      make(map[interface{}]func()),
		data:         make(map[string]interface{}),
	}
}

// ID returns this session's identifier.
func (s *Session) ID() string { return s.id }

// GetID is the mcp.Session-interface spelling of ID.
func (s *Session) GetID() string { return s.id }

// GetCreatedAt returns when the session was created.
func (s *Session) GetCreatedAt() time.Time { return s.createdAt }

// GetLastActivity returns the last time UpdateActivity was called.
func (s *Session) GetLastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// UpdateActivity stamps the session as active now.
func (s *Session) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = time.Now()
}

// Track registers cancel as the function to call to abort the in-flight
// request identified by id. If id is the pinned initialize request id,
// Track still records it (CancelRequest is what refuses to act on it).
func (s *Session) Track(id interface{}, cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels[id] = cancel
}

// Untrack removes id from the cancellation registry once its request has
// completed, successfully or not.
func (s *Session) Untrack(id interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cancels, id)
}

// CancelRequest cancels the running request identified by id. Unknown or
// already-completed ids are silently ignored. The pinned initialize
// request id is never honored, per MCP's lifecycle rules.
func (s *Session) CancelRequest(id interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pinned, ok := s.data[initializeRequestIDKey]; ok && pinned == id {
		return
	}

	if cancel, ok := s.cancels[id]; ok {
		cancel()
		delete(s.cancels, id)
	}
}

// CancelAll cancels every request currently tracked, used when the
// session itself is being torn down.
func (s *Session) CancelAll() {
	s.mu.Lock()
	cancels := make([]func(), 0, len(s.cancels))
	for id, cancel := range s.cancels {
		cancels = append(cancels, cancel)
		delete(s.cancels, id)
	}
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// SetData stores a value in the session's data bag.
func (s *Session) SetData(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// GetData retrieves a value from the session's data bag.
func (s *Session) GetData(key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

// PinInitializeRequest records id as the initialize request, exempting it
// from CancelRequest for the lifetime of the session.
func (s *Session) PinInitializeRequest(id interface{}) {
	s.SetData(initializeRequestIDKey, id)
}
