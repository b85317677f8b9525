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

	"github.com/mcprt/mcpcore/internal/reconnect"
)

// TaskEventKind tags the variant of an event emitted on a task's event
// stream.
type TaskEventKind string

const (
	TaskEventCreated TaskEventKind = "created"
	TaskEventStatus  TaskEventKind = "status"
	TaskEventResult  TaskEventKind = "result"
	TaskEventError   TaskEventKind = "error"
)

// TaskEvent is one item observed while polling a task to completion.
type TaskEvent struct {
	Kind   TaskEventKind
	Task   *Task
	Result json.RawMessage
	Err    error
}

// TaskStreamOptions configures TaskEvents.
type TaskStreamOptions struct {
	// Reconnect governs the backoff applied between polls after a
	// GetTask error; the zero value uses reasonable defaults.
	Reconnect reconnect.Config
}

func (o TaskStreamOptions) withDefaults() reconnect.Config {
	cfg := o.Reconnect
	if cfg.ReconnectDelay == 0 {
		cfg.ReconnectDelay = 200 * time.Millisecond
	}
	if cfg.ReconnectBackoffFactor == 0 {
		cfg.ReconnectBackoffFactor = 2.0
	}
	if cfg.MaxReconnectDelay == 0 {
		cfg.MaxReconnectDelay = 10 * time.Second
	}
	cfg.Validate()
	return cfg
}

// TaskEvents streams a task's lifecycle by polling TaskStore.GetTask at the
// task's PollInterval, emitting a TaskEventStatus on every change, a
// TaskEventResult once the task reaches TaskStatusCompleted, and closing
// the channel on a terminal status, context cancellation, or TTL expiry.
// A poll error backs off using internal/reconnect's exponential-backoff
// calculation (Config.CalculateDelay) before the next poll.
func (p *Protocol) TaskEvents(ctx context.Context, taskID string, opts TaskStreamOptions) <-chan TaskEvent {
	events := make(chan TaskEvent, 1)
	backoff := opts.withDefaults()

	go func() {
		defer close(events)

		sessionID := p.sessionID()
		task, err := p.taskStore.GetTask(ctx, sessionID, taskID)
		if err != nil {
			events <- TaskEvent{Kind: TaskEventError, Err: err}
			return
		}
		events <- TaskEvent{Kind: TaskEventCreated, Task: task}

		lastStatus := task.Status
		attempt := 0
		pollInterval := task.PollInterval
		if pollInterval <= 0 {
			pollInterval = time.Second
		}

		var deadline <-chan time.Time
		if task.TTL > 0 {
			timer := time.NewTimer(task.TTL)
			defer timer.Stop()
			deadline = timer.C
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-deadline:
				events <- TaskEvent{Kind: TaskEventError, Err: context.DeadlineExceeded, Task: task}
				return
			case <-time.After(pollInterval):
			}

			task, err = p.taskStore.GetTask(ctx, sessionID, taskID)
			if err != nil {
				attempt++
				events <- TaskEvent{Kind: TaskEventError, Err: err}
				select {
				case <-ctx.Done():
					return
				case <-time.After(backoff.CalculateDelay(attempt)):
				}
				continue
			}
			attempt = 0

			if task.Status != lastStatus {
				lastStatus = task.Status
				events <- TaskEvent{Kind: TaskEventStatus, Task: task}
			}

			if task.Status.Terminal() {
				if task.Status == TaskStatusCompleted {
					if result, err := p.taskStore.GetTaskResult(ctx, sessionID, taskID); err == nil && result != nil {
						events <- TaskEvent{Kind: TaskEventResult, Task: task, Result: result}
					}
				}
				return
			}
		}
	}()

	return events
}
