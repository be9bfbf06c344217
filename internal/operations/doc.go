// Package operations runs the loan data cleaning pipeline as an ordered
// sequence of steps.
//
// Core components:
//
// Step: one unit of work. It reads the current table from the
// OperationState, transforms it and stores the result back. Steps that can
// be switched off by configuration implement Skipper.
//
// Registry: holds the steps in registration order, which is also execution
// order. NewPipelineRegistry builds the standard nine-step pipeline:
//
//	load -> prune -> impute -> clip -> target -> categorical -> scale -> validate -> write
//
// Manager: executes the registered steps sequentially. The first failing
// step stops the run and every later step is marked skipped, so a failed
// run never reaches the write step and leaves no output file behind.
// Cancellation of the context is checked between steps.
//
// OperationState: tracks the status of the run and of every step, the
// current table and the artifacts steps leave behind (imputation report,
// fences, encoding, scaling parameters). NewRunManifest turns it into a
// JSON-serializable summary.
//
// Example usage:
//
//	registry, err := operations.NewPipelineRegistry(cfg.Pipeline, exporter.NewCSVWriter(false), logger)
//	if err != nil {
//		return err
//	}
//	tracer, _ := operations.NewOperationTracer(providers)
//	manager := operations.NewManager(registry, tracer)
//
//	state, err := manager.Execute(ctx, operations.OperationRequest{ID: runID})
//	if err != nil {
//		log.Printf("step %s failed: %v", operations.FailedStep(err), err)
//	}
//
// Errors returned by Execute are *OperationError values that wrap the step's
// cause, so errors.Is matches the domain sentinels of the errors package.
package operations
