package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"achievement-hub/core/enrich"
	"achievement-hub/core/executor"
	"achievement-hub/core/library"
	"achievement-hub/core/models"
	"achievement-hub/core/provider"
	"achievement-hub/core/stats"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sink receives the library after every run that changed it.
type Sink interface {
	Name() string
	Publish(ctx context.Context, games []models.Game) error
}

// Deps are the collaborators of a Service. Lookup and Sinks are optional.
type Deps struct {
	Registry *provider.Registry
	Store    *library.Store
	Stats    *stats.Cache
	Lookup   enrich.Lookup
	Sinks    []Sink
	Logger   *zap.Logger
}

// Service drives scans, refreshes and single-title refreshes. At most one scan or refresh
// runs at a time: starting one cancels the run in flight and waits for it to exit.
type Service struct {
	registry  *provider.Registry
	store     *library.Store
	stats     *stats.Cache
	lookup    enrich.Lookup
	sinks     []Sink
	providers *executor.Executor
	enrichers *executor.Executor
	freshness time.Duration
	logger    *zap.Logger
	now       func() time.Time

	// runMu is held for the whole duration of a run.
	runMu sync.Mutex

	mu         sync.Mutex
	generation uint64
	current    *run
	last       *Report
}

type run struct {
	cancel context.CancelFunc
}

// NewService creates a sync service.
func NewService(cfg Config, deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Stats == nil {
		deps.Stats = stats.New(deps.Store)
	}
	return &Service{
		registry:  deps.Registry,
		store:     deps.Store,
		stats:     deps.Stats,
		lookup:    deps.Lookup,
		sinks:     deps.Sinks,
		providers: executor.New("providers", max(cfg.ProviderConcurrency, 1), logger),
		enrichers: executor.New("enrichment", max(cfg.EnrichConcurrency, 1), logger),
		freshness: cfg.Freshness(),
		logger:    logger,
		now:       time.Now,
	}
}

// Store returns the library the service writes to.
func (s *Service) Store() *library.Store {
	return s.store
}

// Stats returns the statistics cache refreshed after every run.
func (s *Service) Stats() *stats.Cache {
	return s.stats
}

// Scan performs a full scan of every registered provider.
func (s *Service) Scan(ctx context.Context) (*Report, error) {
	return s.execute(ctx, KindScan)
}

// Refresh fetches recently played titles and merges only those that changed.
func (s *Service) Refresh(ctx context.Context) (*Report, error) {
	return s.execute(ctx, KindRefresh)
}

// Cancel aborts the run in flight, if any, and any run still waiting to start.
func (s *Service) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	if s.current != nil {
		s.current.cancel()
	}
}

// Wait blocks until the run in flight, including its final save, has exited or ctx ends.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.runMu.Lock()
		s.runMu.Unlock()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LastReport returns the report of the most recent finished run, or nil.
func (s *Service) LastReport() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// RefreshTitle re-fetches one title from its platform and stores it. Provider failures are
// returned; a failed save is only logged.
func (s *Service) RefreshTitle(ctx context.Context, id string) (models.Game, error) {
	p, err := s.registry.ForID(id)
	if err != nil {
		return models.Game{}, err
	}

	var game models.Game
	err = s.providers.Execute(ctx, func(ctx context.Context) error {
		g, err := p.RefreshTitle(ctx, id)
		game = g
		return err
	})
	if err != nil {
		return models.Game{}, fmt.Errorf("refresh %s: %w", id, err)
	}

	game = s.carryOver(game)
	s.store.AddOrUpdate(game)
	s.save(context.WithoutCancel(ctx))
	s.stats.Refresh()

	s.logger.Info("Title refreshed",
		zap.String("id", game.ID),
		zap.Int("unlocked", game.UnlockedCount()),
		zap.Int("total", game.TotalCount()),
	)
	return game, nil
}

// begin supersedes any run in flight and blocks until it has exited.
func (s *Service) begin(ctx context.Context) (context.Context, func(), error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	if s.current != nil {
		s.current.cancel()
	}
	s.mu.Unlock()

	s.runMu.Lock()

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.runMu.Unlock()
		return nil, nil, context.Canceled
	}
	runCtx, cancel := context.WithCancel(ctx)
	r := &run{cancel: cancel}
	s.current = r
	s.mu.Unlock()

	end := func() {
		cancel()
		s.mu.Lock()
		if s.current == r {
			s.current = nil
		}
		s.mu.Unlock()
		s.runMu.Unlock()
	}
	return runCtx, end, nil
}

func (s *Service) execute(ctx context.Context, kind Kind) (*Report, error) {
	runCtx, end, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer end()

	report := &Report{
		RunID:     uuid.NewString(),
		Kind:      kind,
		StartedAt: s.now(),
	}
	log := s.logger.With(zap.String("run_id", report.RunID), zap.String("kind", string(kind)))
	log.Info("Sync started", zap.Int("providers", s.registry.Len()))

	batch := s.store.BeginBatch()
	changed := s.fetchAll(runCtx, kind, report, log)
	s.enrich(runCtx, kind, changed, report, log)
	batch.End()

	report.Cancelled = runCtx.Err() != nil

	// Persist and publish whatever was merged, even when the run was cancelled.
	persistCtx := context.WithoutCancel(ctx)
	if err := s.save(persistCtx); err != nil {
		report.SaveError = err.Error()
	}
	if report.Merged > 0 || report.Enriched > 0 {
		s.publish(persistCtx, log)
	}

	report.Stats = s.stats.Refresh()
	report.FinishedAt = s.now()

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	log.Info("Sync finished",
		zap.Int("merged", report.Merged),
		zap.Int("skipped", report.Skipped),
		zap.Int("enriched", report.Enriched),
		zap.Int("failed_providers", len(report.Failed())),
		zap.Bool("cancelled", report.Cancelled),
		zap.Duration("duration", report.Duration()),
	)
	return report, nil
}

type contribution struct {
	fetched int
	merged  []models.Game
	skipped int
}

// fetchAll queries every provider through the provider executor and merges each result into
// the store as soon as it arrives. A failing or panicking provider contributes nothing.
func (s *Service) fetchAll(ctx context.Context, kind Kind, report *Report, log *zap.Logger) []models.Game {
	providers := s.registry.All()

	outcomes := executor.MapSafe(ctx, s.providers, providers,
		func(ctx context.Context, p provider.Provider) (contribution, error) {
			var (
				games []models.Game
				err   error
			)
			if kind == KindScan {
				games, err = p.GetLibrary(ctx)
			} else {
				games, err = p.RefreshLibrary(ctx)
			}
			if err != nil {
				return contribution{}, err
			}
			merged, skipped := s.merge(kind, games)
			return contribution{fetched: len(games), merged: merged, skipped: skipped}, nil
		},
		func(completed, total int) {
			log.Debug("Provider finished", zap.Int("completed", completed), zap.Int("total", total))
		},
	)

	var changed []models.Game
	for i, out := range outcomes {
		p := providers[i]
		res := ProviderResult{Platform: p.Platform(), Provider: p.Name()}
		if out.Err != nil {
			res.Error = out.Err.Error()
			if !errors.Is(out.Err, context.Canceled) {
				log.Warn("Provider failed, continuing without it",
					zap.String("provider", p.Name()),
					zap.Error(out.Err),
				)
			}
		} else {
			res.Fetched = out.Value.fetched
			res.Merged = len(out.Value.merged)
			report.Merged += res.Merged
			report.Skipped += out.Value.skipped
			changed = append(changed, out.Value.merged...)
		}
		report.Providers = append(report.Providers, res)
	}
	return changed
}

// merge writes games to the store. A scan writes everything; a refresh writes only titles
// that are new or whose progress changed. Known estimates are carried over.
func (s *Service) merge(kind Kind, games []models.Game) (merged []models.Game, skipped int) {
	merged = make([]models.Game, 0, len(games))
	for _, g := range games {
		if kind == KindRefresh && !s.changed(g) {
			skipped++
			continue
		}
		merged = append(merged, s.carryOver(g))
	}
	s.store.AddOrUpdateMany(merged...)
	return merged, skipped
}

func (s *Service) changed(g models.Game) bool {
	old, ok := s.store.Get(g.ID)
	if !ok {
		return true
	}
	return g.LastUpdated.After(old.LastUpdated) ||
		g.UnlockedCount() != old.UnlockedCount() ||
		g.TotalCount() != old.TotalCount() ||
		g.PlaytimeMinutes != old.PlaytimeMinutes
}

func (s *Service) carryOver(g models.Game) models.Game {
	if g.HowLongToBeat != nil {
		return g
	}
	if old, ok := s.store.Get(g.ID); ok && old.HowLongToBeat != nil {
		g.HowLongToBeat = old.HowLongToBeat
	}
	return g
}

// enrich looks up estimates for games that have none or a stale one. A scan considers the
// whole library, a refresh only what it merged. Failures are logged and skipped.
func (s *Service) enrich(ctx context.Context, kind Kind, changed []models.Game, report *Report, log *zap.Logger) {
	if s.lookup == nil || ctx.Err() != nil {
		return
	}

	pool := changed
	if kind == KindScan {
		pool = s.store.Games()
	}
	now := s.now()
	var candidates []models.Game
	for _, g := range pool {
		if g.NeedsEnrichment(now, s.freshness) {
			candidates = append(candidates, g)
		}
	}
	if len(candidates) == 0 {
		return
	}
	log.Info("Enriching games", zap.Int("candidates", len(candidates)))

	outcomes := executor.MapSafe(ctx, s.enrichers, candidates,
		func(ctx context.Context, g models.Game) (bool, error) {
			est, err := s.lookup.GetGameData(ctx, g.Name)
			if err != nil {
				return false, err
			}
			if est == nil {
				// Remember the miss so the title is not searched again while fresh.
				est = &models.Estimate{}
			}
			if est.FetchedAt.IsZero() {
				est.FetchedAt = s.now()
			}
			estimate := *est
			if !s.store.Update(g.ID, func(current models.Game) models.Game {
				return current.WithEstimate(estimate)
			}) {
				s.store.AddOrUpdate(g.WithEstimate(estimate))
			}
			return est.Found(), nil
		}, nil)

	for i, out := range outcomes {
		if out.Err != nil {
			report.EnrichFailed++
			if ctx.Err() == nil {
				log.Debug("Estimate lookup failed", zap.String("id", candidates[i].ID), zap.Error(out.Err))
			}
			continue
		}
		report.Enriched++
	}
}

func (s *Service) save(ctx context.Context) error {
	if err := s.store.Save(ctx, false); err != nil {
		s.logger.Error("Failed to save library", zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) publish(ctx context.Context, log *zap.Logger) {
	if len(s.sinks) == 0 {
		return
	}
	games := s.store.Games()
	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, games); err != nil {
			log.Warn("Sink failed", zap.String("sink", sink.Name()), zap.Error(err))
		}
	}
}
