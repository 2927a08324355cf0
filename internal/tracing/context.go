package tracing

import (
	"context"

	"github.com/google/uuid"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// TraceIDKey is the context key for trace ID
	TraceIDKey ContextKey = "trace_id"
	// DeploymentIDKey is the context key for deployment ID
	DeploymentIDKey ContextKey = "deployment_id"
	// ArtifactKey is the context key for the artifact name
	ArtifactKey ContextKey = "artifact"
	// RequestIDKey is the context key for request ID (for idempotency)
	RequestIDKey ContextKey = "request_id"
)

// TraceContext holds tracing information
type TraceContext struct {
	TraceID      string
	DeploymentID string
	Artifact     string
	RequestID    string
}

// NewTraceID generates a new trace ID
func NewTraceID() string {
	return uuid.New().String()
}

// NewDeploymentID generates a new deployment ID
func NewDeploymentID() string {
	return uuid.New().String()
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// WithDeploymentID adds a deployment ID to the context
func WithDeploymentID(ctx context.Context, deploymentID string) context.Context {
	return context.WithValue(ctx, DeploymentIDKey, deploymentID)
}

// WithArtifact adds an artifact name to the context
func WithArtifact(ctx context.Context, artifactName string) context.Context {
	return context.WithValue(ctx, ArtifactKey, artifactName)
}

// WithRequestID adds a request ID to the context for idempotency
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetTraceID retrieves the trace ID from the context
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// GetDeploymentID retrieves the deployment ID from the context
func GetDeploymentID(ctx context.Context) string {
	if deploymentID, ok := ctx.Value(DeploymentIDKey).(string); ok {
		return deploymentID
	}
	return ""
}

// GetArtifact retrieves the artifact name from the context
func GetArtifact(ctx context.Context) string {
	if artifactName, ok := ctx.Value(ArtifactKey).(string); ok {
		return artifactName
	}
	return ""
}

// GetRequestID retrieves the request ID from the context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// FromContext extracts all tracing information from the context
func FromContext(ctx context.Context) *TraceContext {
	return &TraceContext{
		TraceID:      GetTraceID(ctx),
		DeploymentID: GetDeploymentID(ctx),
		Artifact:     GetArtifact(ctx),
		RequestID:    GetRequestID(ctx),
	}
}

// NewContext creates a new context with tracing information
func NewContext(ctx context.Context, tc *TraceContext) context.Context {
	if tc.TraceID != "" {
		ctx = WithTraceID(ctx, tc.TraceID)
	}
	if tc.DeploymentID != "" {
		ctx = WithDeploymentID(ctx, tc.DeploymentID)
	}
	if tc.Artifact != "" {
		ctx = WithArtifact(ctx, tc.Artifact)
	}
	if tc.RequestID != "" {
		ctx = WithRequestID(ctx, tc.RequestID)
	}
	return ctx
}

// NewRequestContext creates a new context for a request with a new trace ID
func NewRequestContext(ctx context.Context) context.Context {
	traceID := NewTraceID()
	return WithTraceID(ctx, traceID)
}

// NewDeploymentContext creates a new context for an artifact deployment with
// a fresh deployment ID
func NewDeploymentContext(ctx context.Context, artifactName string) context.Context {
	deploymentID := NewDeploymentID()
	ctx = WithDeploymentID(ctx, deploymentID)
	ctx = WithArtifact(ctx, artifactName)
	return ctx
}
