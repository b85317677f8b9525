// Tencent is pleased to support the open source community by making trpc-mcp-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-mcp-go is licensed under the Apache License Version 2.0.

package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"
)

// stdioTransport implements Transport over a pair of io.Reader/io.Writer,
// one JSON-RPC message per line. It is the module's in-tree reference
// implementation of the Transport contract; a production stdio client/server
// would add process lifecycle management on top of it.
type stdioTransport struct {
	reader io.Reader
	writer io.Writer
	logger Logger

	mu       sync.Mutex // guards writer
	closeMu  sync.Mutex
	closed   bool
	scanDone chan struct{}

	onMessage func(JSONRPCMessage)
	onClose   func()
	onError   func(error)
}

// NewStdioTransport builds a Transport that reads newline-delimited
// JSON-RPC messages from r and writes them to w.
func NewStdioTransport(r io.Reader, w io.Writer, logger Logger) Transport {
	if logger == nil {
		logger = GetDefaultLogger()
	}
	return &stdioTransport{reader: r, writer: w, logger: logger, scanDone: make(chan struct{})}
}

func (t *stdioTransport) Start(ctx context.Context) error {
	go t.readLoop(ctx)
	return nil
}

func (t *stdioTransport) readLoop(ctx context.Context) {
	defer close(t.scanDone)
	scanner := bufio.NewScanner(t.reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		msg, err := ParseJSONRPCMessage(line)
		if err != nil {
			if t.onError != nil {
				t.onError(err)
			} else {
				t.logger.Warnf("stdio transport: dropping malformed message: %v", err)
			}
			continue
		}
		if t.onMessage != nil {
			t.onMessage(msg)
		}
	}
	if err := scanner.Err(); err != nil && t.onError != nil {
		t.onError(err)
	}
	t.markClosed()
}

func (t *stdioTransport) Send(_ context.Context, msg JSONRPCMessage, _ *ID) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()
	_, err = t.writer.Write(data)
	return err
}

func (t *stdioTransport) Close() error {
	t.markClosed()
	if closer, ok := t.reader.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (t *stdioTransport) markClosed() {
	t.closeMu.Lock()
	defer t.closeMu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	if t.onClose != nil {
		t.onClose()
	}
}

func (t *stdioTransport) SessionID() string { return "" }

func (t *stdioTransport) OnMessage(fn func(JSONRPCMessage)) { t.onMessage = fn }
func (t *stdioTransport) OnClose(fn func())                 { t.onClose = fn }
func (t *stdioTransport) OnError(fn func(error))            { t.onError = fn }
