// Package provider defines the contract every platform integration satisfies and the
// registry of providers active for a session.
//
// Bulk operations (GetLibrary, RefreshLibrary) report failures as errors; the sync
// orchestrator is responsible for turning them into an empty contribution so one broken
// platform never aborts a sync. RefreshTitle failures are returned to the caller that asked
// for that title.
//
// Providers are created through Factories. Build runs them concurrently at startup and
// simply leaves out any provider that fails to construct.
package provider
