// Package telemetry sets up OpenTelemetry tracing and metrics for reflectify.
//
// When disabled, Tracer and Meter fall back to the global no-op providers so
// instrumented code never checks whether telemetry is on. Exporter setup
// failures mark the instance degraded instead of failing startup.
//
// Spans emitted by the service:
//
//	analysis.Analyze     analysis.source, analysis.level, analysis.word_count
//	prompting.Generate   prompting.source
//	journal.Submit       reflection.id
//
// Tests use NewTestTelemetry, which records spans with a tracetest.SpanRecorder
// and metrics with a ManualReader.
package telemetry
