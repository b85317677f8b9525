// Tencent is pleased to support the open source community by making trpc-mcp-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-mcp-go is licensed under the Apache License Version 2.0.

package mcp

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the per-connection handle carried through request context and
// exposed to request handlers and middleware. It is a lighter-weight,
// data-bag-only sibling of internal/session.Session, which additionally
// tracks cancellation state for the protocol engine; Session is what
// application-level code (tools, resources, prompts, middleware) sees.
type Session interface {
	GetID() string
	GetCreatedAt() time.Time
	GetLastActivity() time.Time
	UpdateActivity()
	GetData(key string) (interface{}, bool)
	SetData(key string, value interface{})
}

type session struct {
	id           string
	createdAt    time.Time
	mu           sync.RWMutex
	lastActivity time.Time
	data         map[string]interface{}
}

// newSession creates a fresh Session with a generated id.
func newSession() *session {
	now := time.Now()
	return &session{
		id:           uuid.NewString(),
		createdAt:    now,
		lastActivity: now,
		data:         make(map[string]interface{}),
	}
}

func (s *session) GetID() string { return s.id }

func (s *session) GetCreatedAt() time.Time { return s.createdAt }

func (s *session) GetLastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

func (s *session) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = time.Now()
}

func (s *session) GetData(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *session) SetData(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

type clientSessionKey struct{}

// withClientSession adds a Session to ctx.
func withClientSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, clientSessionKey{}, sess)
}

// ClientSessionFromContext retrieves the Session stashed in ctx, if any.
func ClientSessionFromContext(ctx context.Context) Session {
	if sess, ok := ctx.Value(clientSessionKey{}).(Session); ok {
		return sess
	}
	return nil
}
