// Tencent is pleased to support the open source community by making trpc-mcp-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-mcp-go is licensed under the Apache License Version 2.0.

package mcp

import (
	"context"
	"encoding/json"

	"github.com/yosida95/uritemplate/v3"
)

// ResourceListFilter defines a function type for filtering resources based on
// context. The filter receives the request context and all registered
// resources, and returns a filtered list of resources visible to the client.
type ResourceListFilter func(ctx context.Context, resources []*Resource) []*Resource

// resourceHandler returns a single resource content for a read request.
type resourceHandler func(ctx context.Context, req *ReadResourceRequest) (ResourceContents, error)

// resourcesHandler returns zero or more resource contents for a read request;
// used when a single URI can resolve to multiple representations.
type resourcesHandler func(ctx context.Context, req *ReadResourceRequest) ([]ResourceContents, error)

// resourceTemplateHandler resolves a template-backed resource read.
type resourceTemplateHandler func(ctx context.Context, req *ReadResourceRequest) ([]ResourceContents, error)

// resourceCompletionHandler handles completion/complete requests scoped to a
// single static resource.
type resourceCompletionHandler func(ctx context.Context, req *CompleteCompletionRequest) (*CompleteCompletionResult, error)

// templateCompletionHandler handles completion/complete requests scoped to a
// resource template; params carries the URI template variables already
// resolved from the ref being completed.
type templateCompletionHandler func(ctx context.Context, req *CompleteCompletionRequest, params map[string]string) (*CompleteCompletionResult, error)

// registeredResourceOption configures a registeredResource at registration time.
type registeredResourceOption func(*registeredResource)

// registerResourceTemplateOption configures a registerResourceTemplate at registration time.
type registerResourceTemplateOption func(*registerResourceTemplate)

// registeredResource combines a Resource with its handler and, optionally,
// a completion handler for completion/complete requests against its URI.
type registeredResource struct {
	Resource                  *Resource
	Handler                   resourcesHandler
	CompletionCompleteHandler resourceCompletionHandler
}

// registerResourceTemplate combines a ResourceTemplate with its handler and
// optional completion handler.
type registerResourceTemplate struct {
	resourceTemplate          *ResourceTemplate
	Handler                   resourceTemplateHandler
	CompletionCompleteHandler templateCompletionHandler
}

// WithResourceCompletion attaches a completion handler to a static resource.
func WithResourceCompletion(handler resourceCompletionHandler) registeredResourceOption {
	return func(r *registeredResource) {
		r.CompletionCompleteHandler = handler
	}
}

// WithTemplateCompletion attaches a completion handler to a resource template.
func WithTemplateCompletion(handler templateCompletionHandler) registerResourceTemplateOption {
	return func(t *registerResourceTemplate) {
		t.CompletionCompleteHandler = handler
	}
}

// Resource represents a resource the server can provide, identified by URI.
type Resource struct {
	Annotated

	// URI uniquely identifies the resource.
	URI string `json:"uri"`

	// Name is a human-readable name for the resource.
	Name string `json:"name"`

	// Description is an optional description of the resource's contents.
	Description string `json:"description,omitempty"`

	// MimeType is the resource's MIME type, if known.
	MimeType string `json:"mimeType,omitempty"`

	// Size is the resource's size in bytes, if known.
	Size int64 `json:"size,omitempty"`
}

// ResourceTemplate describes a parameterized family of resources addressed
// by a URI template (RFC 6570).
type ResourceTemplate struct {
	Annotated

	// Name is a human-readable name for the template.
	Name string `json:"name"`

	// Description is an optional description of what the template provides.
	Description string `json:"description,omitempty"`

	// MimeType is the MIME type shared by resources matching this template,
	// when known in advance.
	MimeType string `json:"mimeType,omitempty"`

	// URITemplate is the parsed RFC 6570 template used to match and
	// generate concrete resource URIs.
	URITemplate *uritemplate.Template `json:"-"`
}

// resourceTemplateWireFormat mirrors ResourceTemplate's JSON shape with the
// template expressed as its raw string, since uritemplate.Template has no
// JSON marshaling of its own.
type resourceTemplateWireFormat struct {
	Annotated
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
	URITemplate string `json:"uriTemplate"`
}

// MarshalJSON implements json.Marshaler for ResourceTemplate.
func (t ResourceTemplate) MarshalJSON() ([]byte, error) {
	wire := resourceTemplateWireFormat{
		Annotated:   t.Annotated,
		Name:        t.Name,
		Description: t.Description,
		MimeType:    t.MimeType,
	}
	if t.URITemplate != nil {
		wire.URITemplate = t.URITemplate.Raw()
	}
	return json.Marshal(wire)
}

// resourceTemplateOption configures a ResourceTemplate at construction time.
type resourceTemplateOption func(*ResourceTemplate)

// NewResourceTemplate parses rawTemplate as an RFC 6570 URI template and
// builds a ResourceTemplate named name. A malformed template yields a
// ResourceTemplate with a nil URITemplate, so registerTemplate's own
// validation is what ultimately rejects it.
func NewResourceTemplate(rawTemplate, name string, opts ...resourceTemplateOption) *ResourceTemplate {
	t := &ResourceTemplate{Name: name}

	if parsed, err := uritemplate.New(rawTemplate); err == nil {
		t.URITemplate = parsed
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// WithTemplateDescription sets a ResourceTemplate's description.
func WithTemplateDescription(description string) resourceTemplateOption {
	return func(t *ResourceTemplate) {
		t.Description = description
	}
}

// WithTemplateMIMEType sets a ResourceTemplate's MIME type.
func WithTemplateMIMEType(mimeType string) resourceTemplateOption {
	return func(t *ResourceTemplate) {
		t.MimeType = mimeType
	}
}

// ResourceContents is the polymorphic payload of a resource read: either
// TextResourceContents or BlobResourceContents.
type ResourceContents interface {
	isResourceContents()
}

// TextResourceContents is a UTF-8 text resource representation.
type TextResourceContents struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType,omitempty"`
	Text     string `json:"text"`
}

func (TextResourceContents) isResourceContents() {}

// BlobResourceContents is a base64-encoded binary resource representation.
type BlobResourceContents struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType,omitempty"`
	Blob     string `json:"blob"`
}

func (BlobResourceContents) isResourceContents() {}

// ListResourcesRequest describes a request to list available resources.
type ListResourcesRequest struct {
	PaginatedRequest
}

// ListResourcesResult describes a result of listing resources.
type ListResourcesResult struct {
	PaginatedResult
	Resources []Resource `json:"resources"`
}

// isJSONRPCMessage lets a resources/list result stand directly as a
// dispatched handler's return value, same as the four wire envelope types.
func (ListResourcesResult) isJSONRPCMessage() {}

// ReadResourceRequest describes a request to read a resource by URI.
type ReadResourceRequest struct {
	Request
	Params struct {
		URI       string                 `json:"uri"`
		Arguments map[string]interface{} `json:"arguments,omitempty"`
	} `json:"params"`
}

// ReadResourceResult describes a result of reading a resource.
type ReadResourceResult struct {
	Result
	Contents []ResourceContents `json:"contents"`
}

// isJSONRPCMessage lets a resources/read result stand directly as a
// dispatched handler's return value, same as the four wire envelope types.
func (ReadResourceResult) isJSONRPCMessage() {}

// ResourceListChangedNotification notifies that the resource list has changed.
type ResourceListChangedNotification struct {
	Notification
}

// ResourceUpdatedNotification notifies that a subscribed resource's contents changed.
type ResourceUpdatedNotification struct {
	Notification
	Params struct {
		URI string `json:"uri"`
	} `json:"params"`
}
