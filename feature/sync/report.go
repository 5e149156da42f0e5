package sync

import (
	"time"

	"achievement-hub/core/models"
	"achievement-hub/core/stats"
)

// Kind distinguishes full scans from incremental refreshes.
type Kind string

const (
	KindScan    Kind = "scan"
	KindRefresh Kind = "refresh"
)

// ProviderResult is one provider's contribution to a run.
type ProviderResult struct {
	Platform models.Platform `json:"platform"`
	Provider string          `json:"provider"`
	Fetched  int             `json:"fetched"`
	Merged   int             `json:"merged"`
	Error    string          `json:"error,omitempty"`
}

// Report summarizes a sync run.
type Report struct {
	RunID      string           `json:"run_id"`
	Kind       Kind             `json:"kind"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Providers  []ProviderResult `json:"providers"`
	// Merged counts games written to the library, Skipped those a refresh found unchanged.
	Merged       int  `json:"merged"`
	Skipped      int  `json:"skipped"`
	Enriched     int  `json:"enriched"`
	EnrichFailed int  `json:"enrich_failed"`
	Cancelled    bool `json:"cancelled"`
	// SaveError is set when the library could not be persisted after the run.
	SaveError string         `json:"save_error,omitempty"`
	Stats     stats.Snapshot `json:"stats"`
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Failed returns the providers that contributed nothing because they failed.
func (r *Report) Failed() []ProviderResult {
	var out []ProviderResult
	for _, p := range r.Providers {
		if p.Error != "" {
			out = append(out, p)
		}
	}
	return out
}
