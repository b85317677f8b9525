// Tencent is pleased to support the open source community by making trpc-mcp-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-mcp-go is licensed under the Apache License Version 2.0.

package mcp

import (
	"encoding/json"
	"fmt"
)

// ID is the JSON-RPC request id domain: a 64-bit integer, a string, or
// absent. It round-trips through JSON without losing its original kind,
// which matters because a client must echo back exactly what it received.
type ID struct {
	value interface{} // nil, int64, or string
}

// NewIntID builds an ID from an integer.
func NewIntID(v int64) ID { return ID{value: v} }

// NewStringID builds an ID from a string.
func NewStringID(v string) ID { return ID{value: v} }

// IsNil reports whether the id was never set (notifications have no id).
func (id ID) IsNil() bool { return id.value == nil }

// Value returns the underlying int64, string, or nil.
func (id ID) Value() interface{} { return id.value }

// String renders the id for logging regardless of its underlying kind.
func (id ID) String() string {
	switch v := id.value.(type) {
	case nil:
		return "<nil>"
	case int64:
		return fmt.Sprintf("%d", v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Equal compares two ids by value and kind.
func (id ID) Equal(other ID) bool {
	return id.value == other.value
}

func (id ID) MarshalJSON() ([]byte, error) {
	switch v := id.value.(type) {
	case nil:
		return []byte("null"), nil
	case int64:
		return json.Marshal(v)
	case string:
		return json.Marshal(v)
	default:
		return json.Marshal(v)
	}
}

func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		id.value = nil
		return nil
	}
	var asNumber int64
	if err := json.Unmarshal(data, &asNumber); err == nil {
		id.value = asNumber
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		id.value = asString
		return nil
	}
	return fmt.Errorf("mcp: id must be a string, number, or null")
}

// JSONRPCMessage is the closed sum of the four wire message shapes this
// engine produces and consumes.
type JSONRPCMessage interface {
	isJSONRPCMessage()
}

// JSONRPCRequest is an outbound or inbound call expecting a response.
type JSONRPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      ID     `json:"id"`
	Request
	Params interface{} `json:"params,omitempty"`
}

func (*JSONRPCRequest) isJSONRPCMessage() {}

// JSONRPCNotification is a one-way message carrying no id.
type JSONRPCNotification struct {
	JSONRPC string `json:"jsonrpc"`
	Notification
}

func (*JSONRPCNotification) isJSONRPCMessage() {}

// JSONRPCResponse is a successful reply to a JSONRPCRequest.
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      ID          `json:"id"`
	Result  interface{} `json:"result"`
}

func (*JSONRPCResponse) isJSONRPCMessage() {}

// JSONRPCErrorDetail carries the wire-visible error payload.
type JSONRPCErrorDetail struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSONRPCError is a failed reply to a JSONRPCRequest.
type JSONRPCError struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      ID                  `json:"id"`
	Error   JSONRPCErrorDetail  `json:"error"`
}

func (*JSONRPCError) isJSONRPCMessage() {}

// NewJSONRPCNotificationFromMap builds a notification from a plain param map,
// the shape most call sites already have their data in.
func NewJSONRPCNotificationFromMap(method string, params map[string]interface{}) *JSONRPCNotification {
	return &JSONRPCNotification{
		JSONRPC: JSONRPCVersion,
		Notification: Notification{
			Method: method,
			Params: NotificationParams{AdditionalFields: params},
		},
	}
}

// newJSONRPCNotification wraps an already-built Notification in its envelope.
func newJSONRPCNotification(notification Notification) *JSONRPCNotification {
	return &JSONRPCNotification{JSONRPC: JSONRPCVersion, Notification: notification}
}

func newJSONRPCRequest(id int64, method string, params interface{}) *JSONRPCRequest {
	return &JSONRPCRequest{
		JSONRPC: JSONRPCVersion,
		ID:      NewIntID(id),
		Request: Request{Method: method},
		Params:  params,
	}
}

func newJSONRPCResultResponse(id ID, result interface{}) *JSONRPCResponse {
	return &JSONRPCResponse{JSONRPC: JSONRPCVersion, ID: id, Result: result}
}

func newJSONRPCErrorResponse(id ID, code int, message string, data interface{}) *JSONRPCError {
	return &JSONRPCError{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error:   JSONRPCErrorDetail{Code: code, Message: message, Data: data},
	}
}

// rawEnvelope is used only to sniff a decoded message's shape before
// committing to one of the four concrete types.
type rawEnvelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *ID             `json:"id"`
	Method  *string         `json:"method"`
	Params  json.RawMessage `json:"params"`
	Result  json.RawMessage `json:"result"`
	Error   json.RawMessage `json:"error"`
}

// ParseJSONRPCMessage decodes a single JSON-RPC wire message into the
// appropriate concrete type. This is the inverse of marshaling any of
// JSONRPCRequest/JSONRPCNotification/JSONRPCResponse/JSONRPCError.
func ParseJSONRPCMessage(data []byte) (JSONRPCMessage, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &FormatError{Cause: err}
	}
	if raw.JSONRPC != JSONRPCVersion {
		return nil, &FormatError{Cause: fmt.Errorf("unsupported jsonrpc version %q", raw.JSONRPC)}
	}

	switch {
	case raw.Method != nil && raw.ID != nil:
		var req JSONRPCRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, &FormatError{Cause: err}
		}
		return &req, nil
	case raw.Method != nil:
		var notif JSONRPCNotification
		if err := json.Unmarshal(data, &notif); err != nil {
			return nil, &FormatError{Cause: err}
		}
		return &notif, nil
	case raw.Error != nil:
		var errResp JSONRPCError
		if err := json.Unmarshal(data, &errResp); err != nil {
			return nil, &FormatError{Cause: err}
		}
		return &errResp, nil
	case raw.Result != nil || raw.ID != nil:
		var resp JSONRPCResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, &FormatError{Cause: err}
		}
		return &resp, nil
	default:
		return nil, &FormatError{Cause: fmt.Errorf("message is neither a request, notification, response, nor error")}
	}
}

func isErrorResponse(raw *json.RawMessage) bool {
	if raw == nil {
		return false
	}
	var probe struct {
		Error *JSONRPCErrorDetail `json:"error"`
	}
	if err := json.Unmarshal(*raw, &probe); err != nil {
		return false
	}
	return probe.Error != nil
}

func parseRawMessageToError(raw *json.RawMessage) (*JSONRPCError, error) {
	var errResp JSONRPCError
	if err := json.Unmarshal(*raw, &errResp); err != nil {
		return nil, err
	}
	return &errResp, nil
}
