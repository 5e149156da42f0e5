// Package executor provides a bounded-concurrency runner for calls against rate-limited
// APIs (platform providers and the HowLongToBeat lookup).
//
// An Executor owns a weighted semaphore of the configured size. Execute runs a single
// operation once a slot is free; Map and MapSafe fan a slice of items out through the same
// gate and report progress after every completion.
//
//	exec := executor.New("providers", 3, logger)
//	outcomes := executor.MapSafe(ctx, exec, providers, fetch, nil)
package executor
