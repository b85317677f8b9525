// Tencent is pleased to support the open source community by making trpc-mcp-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-mcp-go is licensed under the Apache License Version 2.0.

package mcp

import (
	"context"
	"encoding/json"
	"time"
)

// TaskStatus is the lifecycle state of a server-owned task.
type TaskStatus string

const (
	TaskStatusWorking       TaskStatus = "working"
	TaskStatusInputRequired TaskStatus = "input_required"
	TaskStatusCompleted     TaskStatus = "completed"
	TaskStatusFailed        TaskStatus = "failed"
	TaskStatusCancelled     TaskStatus = "cancelled"
)

// Terminal reports whether s is one a task can never transition out of.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// Task is a long-running, server-owned unit of work created in response to
// a request whose handler chose to return a CreateTaskResult instead of
// completing inline.
type Task struct {
	TaskID        string
	SessionID     string
	Status        TaskStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
	StatusMessage string
	PollInterval  time.Duration
	TTL           time.Duration
}

// CreateTaskResult is returned by a request handler that wants to hand the
// caller a task id instead of (or ahead of) a final result. Request[T]
// detects it via the taskResultProvider interface and keeps that call's
// progress handler registered past the initial response.
type CreateTaskResult struct {
	Result
	TaskID       string `json:"taskId"`
	Status       TaskStatus `json:"status"`
	PollInterval *int       `json:"pollInterval,omitempty"`
}

// GetTaskID implements taskResultProvider.
func (r CreateTaskResult) GetTaskID() string { return r.TaskID }

// TaskStore persists task state and side-channel results. The default
// implementation, inMemoryTaskStore, is per-session and process-local;
// callers needing durability across restarts supply their own.
type TaskStore interface {
	CreateTask(ctx context.Context, sessionID string, ttl, pollInterval time.Duration) (*Task, error)
	GetTask(ctx context.Context, sessionID, taskID string) (*Task, error)
	UpdateTaskStatus(ctx context.Context, sessionID, taskID string, status TaskStatus, message string) error
	StoreTaskResult(ctx context.Context, sessionID, taskID string, result json.RawMessage) error
	GetTaskResult(ctx context.Context, sessionID, taskID string) (json.RawMessage, error)
	ListTasks(ctx context.Context, sessionID string, cursor Cursor) ([]*Task, Cursor, error)
	CancelTask(ctx context.Context, sessionID, taskID string) error
}

// TaskMessageQueue is a bounded per-task FIFO used to carry a server→client
// request (elicitation, sampling) raised from inside a task handler after
// the request/response round trip that created the task has already
// completed.
type TaskMessageQueue interface {
	Enqueue(taskID string, msg JSONRPCMessage) error
	Dequeue(taskID string) (JSONRPCMessage, bool)
	DequeueAll(taskID string) []JSONRPCMessage
}

// DefaultTaskQueueCapacity bounds each task's message queue absent an
// explicit override.
const DefaultTaskQueueCapacity = 64
