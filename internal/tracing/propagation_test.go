package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestPropagateToDeployment(t *testing.T) {
	// Create parent context
	parentCtx := context.Background()
	parentCtx = WithTraceID(parentCtx, "trace-123")
	parentCtx = WithDeploymentID(parentCtx, "deployment-parent")
	parentCtx = WithArtifact(parentCtx, "inventory")

	// Propagate into a deployment of another artifact
	childCtx := PropagateToDeployment(parentCtx, "orders")

	// Verify trace ID is propagated
	if GetTraceID(childCtx) != "trace-123" {
		t.Error("Trace ID not propagated")
	}

	// Verify deployment ID is different
	if GetDeploymentID(childCtx) == "deployment-parent" {
		t.Error("Deployment ID should be different per deployment")
	}
	if GetDeploymentID(childCtx) == "" {
		t.Error("Deployment ID not generated")
	}

	// Verify artifact is updated
	if GetArtifact(childCtx) != "orders" {
		t.Error("Artifact not updated")
	}
}

func TestPropagateToDeploymentNoTraceID(t *testing.T) {
	// Create parent context without trace ID
	parentCtx := context.Background()

	childCtx := PropagateToDeployment(parentCtx, "orders")

	// Verify trace ID is generated
	if GetTraceID(childCtx) == "" {
		t.Error("Trace ID not generated when missing")
	}

	// Verify deployment ID is generated
	if GetDeploymentID(childCtx) == "" {
		t.Error("Deployment ID not generated")
	}

	// Verify artifact is set
	if GetArtifact(childCtx) != "orders" {
		t.Error("Artifact not set")
	}
}

func TestPropagateToLogger(t *testing.T) {
	// Create context with tracing
	ctx := context.Background()
	ctx = WithTraceID(ctx, "trace-123")
	ctx = WithDeploymentID(ctx, "deployment-456")
	ctx = WithArtifact(ctx, "orders")

	// Create logger
	var buf bytes.Buffer
	baseLogger := zerolog.New(&buf)

	// Propagate to logger
	logger := PropagateToLogger(ctx, baseLogger)

	// Log a message
	logger.Info().Msg("test message")

	// Verify tracing fields are in log output
	output := buf.String()

	if !contains(output, "trace-123") {
		t.Error("Trace ID not in log output")
	}
	if !contains(output, "deployment-456") {
		t.Error("Deployment ID not in log output")
	}
	if !contains(output, "orders") {
		t.Error("Artifact not in log output")
	}
}

func TestLoggerFromContext(t *testing.T) {
	// Create context with tracing
	ctx := context.Background()
	ctx = WithTraceID(ctx, "trace-xyz")

	// Create logger
	var buf bytes.Buffer
	baseLogger := zerolog.New(&buf)

	// Get logger from context
	logger := LoggerFromContext(ctx, baseLogger)

	// Log a message
	logger.Info().Msg("test")

	// Verify trace ID is in output
	output := buf.String()
	if !contains(output, "trace-xyz") {
		t.Error("Trace ID not in log output")
	}
}

func TestMergeContext(t *testing.T) {
	// Create source context with tracing
	sourceCtx := context.Background()
	sourceCtx = WithTraceID(sourceCtx, "trace-source")
	sourceCtx = WithDeploymentID(sourceCtx, "deployment-source")

	// Create target context (empty)
	targetCtx := context.Background()

	// Merge contexts
	mergedCtx := MergeContext(targetCtx, sourceCtx)

	// Verify tracing info is merged
	if GetTraceID(mergedCtx) != "trace-source" {
		t.Error("Trace ID not merged")
	}
	if GetDeploymentID(mergedCtx) != "deployment-source" {
		t.Error("Deployment ID not merged")
	}
}

func TestMergeContextNoOverwrite(t *testing.T) {
	// Create source context
	sourceCtx := context.Background()
	sourceCtx = WithTraceID(sourceCtx, "trace-source")

	// Create target context with existing trace ID
	targetCtx := context.Background()
	targetCtx = WithTraceID(targetCtx, "trace-target")

	// Merge contexts
	mergedCtx := MergeContext(targetCtx, sourceCtx)

	// Verify target trace ID is not overwritten
	if GetTraceID(mergedCtx) != "trace-target" {
		t.Error("Trace ID should not be overwritten")
	}
}

func TestCloneContext(t *testing.T) {
	// Create original context
	originalCtx := context.Background()
	originalCtx = WithTraceID(originalCtx, "trace-123")
	originalCtx = WithDeploymentID(originalCtx, "deployment-456")
	originalCtx = WithArtifact(originalCtx, "orders")

	// Clone context
	clonedCtx := CloneContext(originalCtx)

	// Verify tracing info is cloned
	if GetTraceID(clonedCtx) != "trace-123" {
		t.Error("Trace ID not cloned")
	}
	if GetDeploymentID(clonedCtx) != "deployment-456" {
		t.Error("Deployment ID not cloned")
	}
	if GetArtifact(clonedCtx) != "orders" {
		t.Error("Artifact not cloned")
	}
}

// Helper function to check if string contains substring
func contains(s, substr string) bool {
	return bytes.Contains([]byte(s), []byte(substr))
}
