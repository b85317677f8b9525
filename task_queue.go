// Tencent is pleased to support the open source community by making trpc-mcp-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-mcp-go is licensed under the Apache License Version 2.0.

package mcp

import (
	"sync"

	mcperrors "github.com/mcprt/mcpcore/internal/errors"
)

// inMemoryTaskMessageQueue is the default TaskMessageQueue: a bounded FIFO
// per task id. Capacity is fixed at construction; Enqueue on a full queue
// returns ErrQueueFull rather than blocking or growing unbounded.
type inMemoryTaskMessageQueue struct {
	mu       sync.Mutex
	capacity int
	queues   map[string][]JSONRPCMessage
}

// NewInMemoryTaskMessageQueue builds a TaskMessageQueue bounding each task
// to capacity messages. capacity <= 0 falls back to DefaultTaskQueueCapacity.
func NewInMemoryTaskMessageQueue(capacity int) TaskMessageQueue {
	if capacity <= 0 {
		capacity = DefaultTaskQueueCapacity
	}
	return &inMemoryTaskMessageQueue{capacity: capacity, queues: make(map[string][]JSONRPCMessage)}
}

func (q *inMemoryTaskMessageQueue) Enqueue(taskID string, msg JSONRPCMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	queue := q.queues[taskID]
	if len(queue) >= q.capacity {
		return mcperrors.ErrQueueFull
	}
	q.queues[taskID] = append(queue, msg)
	return nil
}

func (q *inMemoryTaskMessageQueue) Dequeue(taskID string) (JSONRPCMessage, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	queue := q.queues[taskID]
	if len(queue) == 0 {
		return nil, false
	}
	msg := queue[0]
	q.queues[taskID] = queue[1:]
	return msg, true
}

func (q *inMemoryTaskMessageQueue) DequeueAll(taskID string) []JSONRPCMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	queue := q.queues[taskID]
	delete(q.queues, taskID)
	return queue
}
