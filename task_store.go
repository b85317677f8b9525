// Tencent is pleased to support the open source community by making trpc-mcp-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-mcp-go is licensed under the Apache License Version 2.0.

package mcp

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	mcperrors "github.com/mcprt/mcpcore/internal/errors"
)

type taskRecord struct {
	task   Task
	result json.RawMessage
}

// inMemoryTaskStore is the default TaskStore: a mutex-guarded
// sessionID -> taskID -> record map, matching the teacher's preference for
// one coarse lock over a map rather than per-entry locking (the same shape
// as DefaultRootsProvider).
type inMemoryTaskStore struct {
	mu       sync.Mutex
	sessions map[string]map[string]*taskRecord
}

// NewInMemoryTaskStore builds the default, process-local TaskStore.
func NewInMemoryTaskStore() TaskStore {
	return &inMemoryTaskStore{sessions: make(map[string]map[string]*taskRecord)}
}

func (s *inMemoryTaskStore) CreateTask(_ context.Context, sessionID string, ttl, pollInterval time.Duration) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepExpiredLocked()

	bucket, ok := s.sessions[sessionID]
	if !ok {
		bucket = make(map[string]*taskRecord)
		s.sessions[sessionID] = bucket
	}

	now := timeNow()
	task := &Task{
		TaskID:       uuid.NewString(),
		SessionID:    sessionID,
		Status:       TaskStatusWorking,
		CreatedAt:    now,
		UpdatedAt:    now,
		PollInterval: pollInterval,
		TTL:          ttl,
	}
	bucket[task.TaskID] = &taskRecord{task: *task}
	return task, nil
}

func (s *inMemoryTaskStore) GetTask(_ context.Context, sessionID, taskID string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.lookupLocked(sessionID, taskID)
	if err != nil {
		return nil, err
	}
	task := rec.task
	return &task, nil
}

func (s *inMemoryTaskStore) UpdateTaskStatus(_ context.Context, sessionID, taskID string, status TaskStatus, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.lookupLocked(sessionID, taskID)
	if err != nil {
		return err
	}
	if rec.task.Status.Terminal() {
		return mcperrors.ErrTaskTerminal
	}
	rec.task.Status = status
	rec.task.StatusMessage = message
	rec.task.UpdatedAt = timeNow()
	return nil
}

func (s *inMemoryTaskStore) StoreTaskResult(_ context.Context, sessionID, taskID string, result json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.lookupLocked(sessionID, taskID)
	if err != nil {
		return err
	}
	if rec.task.Status.Terminal() || rec.result != nil {
		return mcperrors.ErrTaskTerminal
	}
	rec.result = result
	return nil
}

func (s *inMemoryTaskStore) GetTaskResult(_ context.Context, sessionID, taskID string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.lookupLocked(sessionID, taskID)
	if err != nil {
		return nil, err
	}
	return rec.result, nil
}

func (s *inMemoryTaskStore) ListTasks(_ context.Context, sessionID string, cursor Cursor) ([]*Task, Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.sessions[sessionID]
	ids := make([]string, 0, len(bucket))
	for id := range bucket {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	start := 0
	if cursor != "" {
		if n, err := strconv.Atoi(string(cursor)); err == nil && n >= 0 && n <= len(ids) {
			start = n
		}
	}

	const pageSize = 50
	end := start + pageSize
	if end > len(ids) {
		end = len(ids)
	}

	tasks := make([]*Task, 0, end-start)
	for _, id := range ids[start:end] {
		t := bucket[id].task
		tasks = append(tasks, &t)
	}

	var next Cursor
	if end < len(ids) {
		next = Cursor(strconv.Itoa(end))
	}
	return tasks, next, nil
}

func (s *inMemoryTaskStore) CancelTask(_ context.Context, sessionID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.lookupLocked(sessionID, taskID)
	if err != nil {
		return err
	}
	if rec.task.Status.Terminal() {
		return mcperrors.ErrTaskTerminal
	}
	rec.task.Status = TaskStatusCancelled
	rec.task.UpdatedAt = timeNow()
	return nil
}

func (s *inMemoryTaskStore) lookupLocked(sessionID, taskID string) (*taskRecord, error) {
	bucket, ok := s.sessions[sessionID]
	if !ok {
		return nil, mcperrors.ErrTaskNotFound
	}
	rec, ok := bucket[taskID]
	if !ok {
		return nil, mcperrors.ErrTaskNotFound
	}
	return rec, nil
}

// sweepExpiredLocked drops tasks whose TTL has elapsed. It runs amortized,
// piggybacked on CreateTask, rather than via a dedicated goroutine.
func (s *inMemoryTaskStore) sweepExpiredLocked() {
	now := timeNow()
	for _, bucket := range s.sessions {
		for id, rec := range bucket {
			if rec.task.TTL > 0 && now.Sub(rec.task.CreatedAt) > rec.task.TTL {
				delete(bucket, id)
			}
		}
	}
}

func timeNow() time.Time { return time.Now() }
