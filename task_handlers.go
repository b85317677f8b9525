// Tencent is pleased to support the open source community by making trpc-mcp-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-mcp-go is licensed under the Apache License Version 2.0.

package mcp

import (
	"context"
	"encoding/json"

	mcperrors "github.com/mcprt/mcpcore/internal/errors"
)

// TaskResult wraps a stored task's raw result alongside its current status,
// the tasks/result response shape.
type TaskResult struct {
	Result
	TaskID string          `json:"taskId"`
	Status TaskStatus      `json:"status"`
	Value  json.RawMessage `json:"result,omitempty"`
}

// TaskListResult is the tasks/list response shape.
type TaskListResult struct {
	PaginatedResult
	Tasks []*Task `json:"tasks"`
}

// RegisterTaskHandlers wires tasks/get, tasks/list, tasks/cancel, and
// tasks/result into p's request-handler table, following the same
// map[string]requestHandlerFunc dispatch-table shape handler.go builds for
// tools/resources/prompts — generalized here to be built per Protocol
// instance instead of once globally, so tests can swap the backing store.
func (p *Protocol) RegisterTaskHandlers() {
	p.SetRequestHandler(MethodTasksGet, p.handleTasksGet)
	p.SetRequestHandler(MethodTasksList, p.handleTasksList)
	p.SetRequestHandler(MethodTasksCancel, p.handleTasksCancel)
	p.SetRequestHandler(MethodTasksResult, p.handleTasksResult)
}

func taskIDParam(req *JSONRPCRequest) (string, error) {
	var params struct {
		TaskID string `json:"taskId"`
	}
	if err := remarshalParamsInto(req.Params, &params); err != nil || params.TaskID == "" {
		return "", NewMcpError(ErrCodeInvalidParams, "taskId is required", nil)
	}
	return params.TaskID, nil
}

func (p *Protocol) handleTasksGet(ctx context.Context, req *JSONRPCRequest) (interface{}, error) {
	taskID, err := taskIDParam(req)
	if err != nil {
		return nil, err
	}
	task, err := p.taskStore.GetTask(ctx, p.sessionID(), taskID)
	if err != nil {
		return nil, taskStoreError(err)
	}
	return task, nil
}

func (p *Protocol) handleTasksList(ctx context.Context, req *JSONRPCRequest) (interface{}, error) {
	var listParams struct {
		Cursor Cursor `json:"cursor,omitempty"`
	}
	_ = remarshalParamsInto(req.Params, &listParams)

	tasks, next, err := p.taskStore.ListTasks(ctx, p.sessionID(), listParams.Cursor)
	if err != nil {
		return nil, taskStoreError(err)
	}
	return &TaskListResult{
		PaginatedResult: PaginatedResult{NextCursor: next},
		Tasks:           tasks,
	}, nil
}

func (p *Protocol) handleTasksCancel(ctx context.Context, req *JSONRPCRequest) (interface{}, error) {
	taskID, err := taskIDParam(req)
	if err != nil {
		return nil, err
	}
	if err := p.taskStore.CancelTask(ctx, p.sessionID(), taskID); err != nil {
		return nil, taskStoreError(err)
	}
	task, err := p.taskStore.GetTask(ctx, p.sessionID(), taskID)
	if err != nil {
		return nil, taskStoreError(err)
	}
	return task, nil
}

func (p *Protocol) handleTasksResult(ctx context.Context, req *JSONRPCRequest) (interface{}, error) {
	taskID, err := taskIDParam(req)
	if err != nil {
		return nil, err
	}
	task, err := p.taskStore.GetTask(ctx, p.sessionID(), taskID)
	if err != nil {
		return nil, taskStoreError(err)
	}
	value, err := p.taskStore.GetTaskResult(ctx, p.sessionID(), taskID)
	if err != nil {
		return nil, taskStoreError(err)
	}
	return &TaskResult{TaskID: task.TaskID, Status: task.Status, Value: value}, nil
}

func remarshalParamsInto(params interface{}, out interface{}) error {
	data, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func taskStoreError(err error) error {
	switch err {
	case mcperrors.ErrTaskNotFound:
		return NewMcpError(ErrCodeInvalidParams, "task not found", nil)
	case mcperrors.ErrTaskTerminal:
		return NewMcpError(ErrCodeInvalidRequest, "task already in a terminal status", nil)
	default:
		return NewMcpError(ErrCodeInternal, err.Error(), nil)
	}
}
