// Package tracing provides a shared OpenTelemetry tracer for the worker's scheduled jobs.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "ingestion-job")
//	defer span.End()
package tracing
