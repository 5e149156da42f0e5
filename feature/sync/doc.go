// Package sync orchestrates library synchronization.
//
// A Service fans the registered providers out through a bounded executor, merges each
// provider's games into the library store as they arrive (inside one batch, so dependents
// are notified once), enriches games with completion-time estimates, persists the result
// and refreshes the statistics.
//
// # Runs
//
//   - Scan asks every provider for its full library.
//   - Refresh asks for recently played titles and merges only those that changed.
//   - RefreshTitle re-fetches one title and returns provider failures to the caller.
//
// Only one Scan or Refresh runs at a time. Starting another cancels the current run and
// waits for it to wind down. A cancelled run still saves and reports what it merged.
//
// A failing provider never aborts the others, and estimate lookups or a failed save never
// fail a run. Each run produces a Report, retained for LastReport.
//
// The Poller triggers periodic refreshes, and the Feature exposes the service over HTTP.
package sync
