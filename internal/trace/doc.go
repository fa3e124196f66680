// Package trace records structured events for ndtext commands.
//
// Evaluation, the batch driver and the CLI emit spans through a Tracer taken
// from the context. With tracing off the Nop tracer is used and spans cost a
// single interface call.
//
// # Usage
//
//	ndtext eval --text hello --cast "string('utf16')" --trace=- --trace-level=detail
//
// # Tracers
//
//   - Nop: no-op tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer, dumped when a command fails
//   - MultiTracer: fans out to several tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: failure events only
//   - LevelPhase: commands and whole evaluations
//   - LevelDetail: adds cast/map stages
//   - LevelDebug: adds per-element events
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeEval, "eval")
//	defer span.End("")
package trace
