// Package core chains the analysis stages into runs and owns everything
// around them: data-quality reporting, run persistence contracts,
// concurrency limits and user-facing error messages.
//
// # Pipeline
//
// [RunPipeline] is the pure, synchronous chain
//
//	schema.Detect -> canonical.Canonicalize -> metric.Classify -> variance.Engine
//
// Every stage emits a complete artifact that the next stage reads without
// modifying it. Fatal schema errors stop the chain before canonicalization;
// every other problem is tallied in [Quality] and never stops a run.
//
// # Service
//
// [Service.Analyze] wraps the pipeline for servers: it waits for a slot in
// the [AnalysisLimiter], applies the run timeout, stores the [Run] through a
// [RunStore] and reports to a [Recorder]. [Service.StartRetentionScheduler]
// prunes old runs from stores that implement [RunPruner].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - SCH001-SCH003: Schema detection failures
//   - FILE001-FILE008: Input file errors (size, format, encoding)
//   - ANL001-ANL003: Analysis limits (busy, cancelled, timeout)
//   - RUN001-RUN002: Run storage errors
package core
