package tracing

import (
	"context"

	"github.com/rs/zerolog"
)

// PropagateToDeployment propagates tracing context into an artifact
// deployment. It keeps the trace ID but generates a fresh deployment ID, so
// hot redeploys of the same artifact stay distinguishable in the logs.
func PropagateToDeployment(ctx context.Context, artifactName string) context.Context {
	// Keep trace ID from parent
	traceID := GetTraceID(ctx)
	if traceID == "" {
		traceID = NewTraceID()
	}

	newCtx := WithTraceID(ctx, traceID)
	newCtx = WithDeploymentID(newCtx, NewDeploymentID())
	newCtx = WithArtifact(newCtx, artifactName)

	return newCtx
}

// PropagateToLogger adds tracing context to a zerolog logger
func PropagateToLogger(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	tc := FromContext(ctx)

	if tc.TraceID != "" {
		logger = logger.With().Str("trace_id", tc.TraceID).Logger()
	}
	if tc.DeploymentID != "" {
		logger = logger.With().Str("deployment_id", tc.DeploymentID).Logger()
	}
	if tc.Artifact != "" {
		logger = logger.With().Str("artifact", tc.Artifact).Logger()
	}

	return logger
}

// LoggerFromContext creates a logger with tracing context from the given context
func LoggerFromContext(ctx context.Context, baseLogger zerolog.Logger) zerolog.Logger {
	return PropagateToLogger(ctx, baseLogger)
}

// MergeContext merges tracing information from source context into target context
// Useful when you need to combine contexts from different sources
func MergeContext(target, source context.Context) context.Context {
	tc := FromContext(source)

	if tc.TraceID != "" && GetTraceID(target) == "" {
		target = WithTraceID(target, tc.TraceID)
	}
	if tc.DeploymentID != "" && GetDeploymentID(target) == "" {
		target = WithDeploymentID(target, tc.DeploymentID)
	}
	if tc.Artifact != "" && GetArtifact(target) == "" {
		target = WithArtifact(target, tc.Artifact)
	}

	return target
}

// CloneContext creates a new context with the same tracing information
func CloneContext(ctx context.Context) context.Context {
	tc := FromContext(ctx)
	return NewContext(context.Background(), tc)
}
