package sync_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"achievement-hub/core/library"
	"achievement-hub/core/models"
	"achievement-hub/core/provider"
	"achievement-hub/core/provider/mocks"
	"achievement-hub/core/stats"
	hubsync "achievement-hub/feature/sync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memPersister struct {
	mu    sync.Mutex
	saves int
	last  *library.Document
	err   error
}

func (m *memPersister) Load(ctx context.Context) (*library.Document, error) {
	return nil, library.ErrNotFound
}

func (m *memPersister) Save(ctx context.Context, doc *library.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saves++
	m.last = doc
	return nil
}

func (m *memPersister) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) GetGameData(ctx context.Context, name string) (*models.Estimate, error) {
	args := m.Called(ctx, name)
	est, _ := args.Get(0).(*models.Estimate)
	return est, args.Error(1)
}

type recordingSink struct {
	mu        sync.Mutex
	published [][]models.Game
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Publish(ctx context.Context, games []models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, games)
	return nil
}

func game(id, name string, unlocked, total int) models.Game {
	p, _ := models.PlatformFromID(id)
	list := make([]models.Achievement, total)
	for i := range list {
		list[i] = models.Achievement{ID: string(rune('a' + i)), IsUnlocked: i < unlocked}
	}
	return models.Game{ID: id, Name: name, Platform: p, Achievements: list, PlaytimeMinutes: -1}
}

type fixture struct {
	service   *hubsync.Service
	store     *library.Store
	stats     *stats.Cache
	persister *memPersister
	registry  *provider.Registry
}

func newFixture(t *testing.T, lookup *mockLookup, providers ...provider.Provider) *fixture {
	t.Helper()
	persister := &memPersister{}
	store := library.New(persister, zap.NewNop())
	cache := stats.New(store)
	store.Subscribe(cache.Invalidate)

	registry := provider.NewRegistry()
	for _, p := range providers {
		registry.Register(p)
	}

	deps := hubsync.Deps{Registry: registry, Store: store, Stats: cache, Logger: zap.NewNop()}
	if lookup != nil {
		deps.Lookup = lookup
	}
	svc := hubsync.NewService(hubsync.Config{ProviderConcurrency: 4, EnrichConcurrency: 5}, deps)
	return &fixture{service: svc, store: store, stats: cache, persister: persister, registry: registry}
}

func TestScan_MergesIntoStoreAndRefreshesStats(t *testing.T) {
	steam := mocks.NewProvider(models.PlatformSteam)
	retro := mocks.NewProvider(models.PlatformRetroAchievements)
	steam.On("GetLibrary", mock.Anything).Return([]models.Game{game("steam-10", "Half-Life", 5, 10)}, nil)
	retro.On("GetLibrary", mock.Anything).Return([]models.Game{game("ra-20", "Chrono Trigger", 2, 2)}, nil)

	f := newFixture(t, nil, steam, retro)
	f.store.AddOrUpdate(game("steam-10", "Half-Life", 0, 0))

	var changes []stats.Change
	f.stats.Subscribe(func(c stats.Change) { changes = append(changes, c) })

	report, err := f.service.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, f.store.Len())
	hl, ok := f.store.Get("steam-10")
	require.True(t, ok)
	assert.Equal(t, 5, hl.UnlockedCount())

	want := stats.Snapshot{TotalGames: 2, TotalAchievements: 12, UnlockedAchievements: 7, PerfectGames: 1, PercentComplete: 58}
	assert.Equal(t, want, f.stats.Get())
	assert.Equal(t, want, report.Stats)
	require.Len(t, changes, 1)

	assert.Equal(t, hubsync.KindScan, report.Kind)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Merged)
	assert.False(t, report.Cancelled)
	assert.Equal(t, 1, f.persister.count())
	assert.Same(t, report, f.service.LastReport())
}

func TestScan_NotifiesStoreSubscribersOnce(t *testing.T) {
	steam := mocks.NewProvider(models.PlatformSteam)
	retro := mocks.NewProvider(models.PlatformRetroAchievements)
	steam.On("GetLibrary", mock.Anything).Return([]models.Game{game("steam-1", "A", 0, 1), game("steam-2", "B", 0, 1)}, nil)
	retro.On("GetLibrary", mock.Anything).Return([]models.Game{game("ra-1", "C", 0, 1)}, nil)

	lookup := new(mockLookup)
	lookup.On("GetGameData", mock.Anything, mock.Anything).Return(&models.Estimate{MainStory: 3}, nil)

	f := newFixture(t, lookup, steam, retro)
	var notifications atomic.Int32
	f.store.Subscribe(func() { notifications.Add(1) })

	_, err := f.service.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), notifications.Load())
}

func TestScan_IsolatesFailingProviders(t *testing.T) {
	steam := mocks.NewProvider(models.PlatformSteam)
	retro := mocks.NewProvider(models.PlatformRetroAchievements)
	xbox := mocks.NewProvider(models.PlatformXbox)
	steam.On("GetLibrary", mock.Anything).Return([]models.Game{game("steam-1", "Portal", 1, 2)}, nil)
	retro.On("GetLibrary", mock.Anything).Return(nil, errors.New("401 unauthorized"))
	xbox.On("GetLibrary", mock.Anything).Run(func(mock.Arguments) { panic("decoder blew up") })

	f := newFixture(t, nil, steam, retro, xbox)

	report, err := f.service.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, f.store.Len())
	_, ok := f.store.Get("steam-1")
	assert.True(t, ok)

	require.Len(t, report.Providers, 3)
	failed := report.Failed()
	require.Len(t, failed, 2)
	platforms := []models.Platform{failed[0].Platform, failed[1].Platform}
	assert.ElementsMatch(t, []models.Platform{models.PlatformRetroAchievements, models.PlatformXbox}, platforms)
	for _, p := range failed {
		if p.Platform == models.PlatformXbox {
			assert.Contains(t, p.Error, "panic")
		}
	}
}

func TestScan_NoProviders(t *testing.T) {
	f := newFixture(t, nil)

	report, err := f.service.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Providers)
	assert.Zero(t, report.Merged)
	assert.Zero(t, f.persister.count(), "nothing changed, nothing to save")
}

func TestRefresh_MergesOnlyChangedTitles(t *testing.T) {
	steam := mocks.NewProvider(models.PlatformSteam)
	unchanged := game("steam-1", "Portal", 1, 2)
	progressed := game("steam-2", "Portal 2", 2, 5)
	fresh := game("steam-3", "Celeste", 0, 3)
	steam.On("RefreshLibrary", mock.Anything).Return([]models.Game{unchanged, progressed, fresh}, nil)

	f := newFixture(t, nil, steam)
	f.store.AddOrUpdate(game("steam-1", "Portal", 1, 2))
	f.store.AddOrUpdate(game("steam-2", "Portal 2", 1, 5))

	report, err := f.service.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, hubsync.KindRefresh, report.Kind)
	assert.Equal(t, 2, report.Merged)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 3, f.store.Len())
	g, _ := f.store.Get("steam-2")
	assert.Equal(t, 2, g.UnlockedCount())
	steam.AssertNotCalled(t, "GetLibrary", mock.Anything)
}

func TestScan_KeepsKnownEstimates(t *testing.T) {
	steam := mocks.NewProvider(models.PlatformSteam)
	steam.On("GetLibrary", mock.Anything).Return([]models.Game{game("steam-1", "Portal", 2, 2)}, nil)

	f := newFixture(t, nil, steam)
	est := models.Estimate{MainStory: 3, FetchedAt: time.Now()}
	f.store.AddOrUpdate(game("steam-1", "Portal", 1, 2).WithEstimate(est))

	_, err := f.service.Scan(context.Background())
	require.NoError(t, err)

	g, _ := f.store.Get("steam-1")
	assert.Equal(t, 2, g.UnlockedCount())
	require.NotNil(t, g.HowLongToBeat)
	assert.Equal(t, 3.0, g.HowLongToBeat.MainStory)
}

func TestScan_EnrichmentIsBestEffort(t *testing.T) {
	steam := mocks.NewProvider(models.PlatformSteam)
	staleAt := time.Now().Add(-8 * 24 * time.Hour)
	freshAt := time.Now().Add(-time.Hour)
	steam.On("GetLibrary", mock.Anything).Return([]models.Game{
		game("steam-1", "Half-Life", 0, 1),
		game("steam-2", "Obscure Indie", 0, 1),
		game("steam-3", "Broken", 0, 1),
		game("steam-4", "Stale", 0, 1),
		game("steam-5", "Fresh", 0, 1),
	}, nil)

	lookup := new(mockLookup)
	lookup.On("GetGameData", mock.Anything, "Half-Life").Return(&models.Estimate{MainStory: 12}, nil).Once()
	lookup.On("GetGameData", mock.Anything, "Obscure Indie").Return(nil, nil).Once()
	lookup.On("GetGameData", mock.Anything, "Broken").Return(nil, errors.New("timeout")).Once()
	lookup.On("GetGameData", mock.Anything, "Stale").Return(&models.Estimate{Completionist: 40}, nil).Once()

	f := newFixture(t, lookup, steam)
	f.store.AddOrUpdate(game("steam-4", "Stale", 0, 1).WithEstimate(models.Estimate{MainStory: 1, FetchedAt: staleAt}))
	f.store.AddOrUpdate(game("steam-5", "Fresh", 0, 1).WithEstimate(models.Estimate{MainStory: 9, FetchedAt: freshAt}))

	report, err := f.service.Scan(context.Background())
	require.NoError(t, err)
	lookup.AssertExpectations(t)
	lookup.AssertNotCalled(t, "GetGameData", mock.Anything, "Fresh")

	assert.Equal(t, 3, report.Enriched)
	assert.Equal(t, 1, report.EnrichFailed)

	hl, _ := f.store.Get("steam-1")
	require.NotNil(t, hl.HowLongToBeat)
	assert.Equal(t, 12.0, hl.HowLongToBeat.MainStory)
	assert.False(t, hl.HowLongToBeat.FetchedAt.IsZero())

	obscure, _ := f.store.Get("steam-2")
	require.NotNil(t, obscure.HowLongToBeat, "misses are remembered")
	assert.False(t, obscure.HowLongToBeat.Found())
	assert.False(t, obscure.NeedsEnrichment(time.Now(), 7*24*time.Hour))

	broken, _ := f.store.Get("steam-3")
	assert.Nil(t, broken.HowLongToBeat)

	stale, _ := f.store.Get("steam-4")
	assert.Equal(t, 40.0, stale.HowLongToBeat.Completionist)

	fresh, _ := f.store.Get("steam-5")
	assert.Equal(t, 9.0, fresh.HowLongToBeat.MainStory)
}

func TestScan_EnrichmentKeepsConcurrentTitleUpdate(t *testing.T) {
	steam := mocks.NewProvider(models.PlatformSteam)
	steam.On("GetLibrary", mock.Anything).Return([]models.Game{game("steam-1", "Portal", 0, 2)}, nil)

	lookup := new(mockLookup)
	f := newFixture(t, lookup, steam)
	lookup.On("GetGameData", mock.Anything, "Portal").Run(func(mock.Arguments) {
		// A single-title refresh lands while the lookup is in flight.
		f.store.AddOrUpdate(game("steam-1", "Portal", 2, 2))
	}).Return(&models.Estimate{MainStory: 3}, nil).Once()

	_, err := f.service.Scan(context.Background())
	require.NoError(t, err)

	stored, _ := f.store.Get("steam-1")
	assert.Equal(t, 2, stored.UnlockedCount())
	require.NotNil(t, stored.HowLongToBeat)
	assert.Equal(t, 3.0, stored.HowLongToBeat.MainStory)
}

func TestRefresh_EnrichesOnlyMergedTitles(t *testing.T) {
	steam := mocks.NewProvider(models.PlatformSteam)
	steam.On("RefreshLibrary", mock.Anything).Return([]models.Game{game("steam-2", "New Game", 0, 1)}, nil)

	lookup := new(mockLookup)
	lookup.On("GetGameData", mock.Anything, "New Game").Return(&models.Estimate{MainStory: 5}, nil).Once()

	f := newFixture(t, lookup, steam)
	f.store.AddOrUpdate(game("steam-1", "Old Game", 0, 1))

	report, err := f.service.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Enriched)
	lookup.AssertExpectations(t)
	lookup.AssertNotCalled(t, "GetGameData", mock.Anything, "Old Game")
}

func TestScan_SaveFailureIsNotFatal(t *testing.T) {
	steam := mocks.NewProvider(models.PlatformSteam)
	steam.On("GetLibrary", mock.Anything).Return([]models.Game{game("steam-1", "Portal", 1, 2)}, nil)

	f := newFixture(t, nil, steam)
	f.persister.err = errors.New("disk full")

	report, err := f.service.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "disk full", report.SaveError)
	assert.Equal(t, 1, f.store.Len())
	assert.True(t, f.store.IsDirty())
	assert.Equal(t, 1, f.stats.Get().TotalGames)
}

func TestScan_PublishesToSinks(t *testing.T) {
	steam := mocks.NewProvider(models.PlatformSteam)
	steam.On("GetLibrary", mock.Anything).Return([]models.Game{game("steam-1", "Portal", 1, 2)}, nil)

	persister := &memPersister{}
	store := library.New(persister, zap.NewNop())
	registry := provider.NewRegistry()
	registry.Register(steam)
	sink := &recordingSink{}
	svc := hubsync.NewService(hubsync.Config{}, hubsync.Deps{Registry: registry, Store: store, Sinks: []hubsync.Sink{sink}})

	_, err := svc.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, sink.published, 1)
	assert.Len(t, sink.published[0], 1)
}

func TestCancel_KeepsPartialResults(t *testing.T) {
	steam := mocks.NewProvider(models.PlatformSteam)
	retro := mocks.NewProvider(models.PlatformRetroAchievements)
	steam.On("GetLibrary", mock.Anything).Return([]models.Game{game("steam-1", "Portal", 1, 2)}, nil)

	entered := make(chan struct{})
	retro.On("GetLibrary", mock.Anything).Run(func(args mock.Arguments) {
		close(entered)
		<-args.Get(0).(context.Context).Done()
	}).Return(nil, context.Canceled)

	f := newFixture(t, nil, steam, retro)

	done := make(chan *hubsync.Report, 1)
	go func() {
		report, err := f.service.Scan(context.Background())
		assert.NoError(t, err)
		done <- report
	}()

	<-entered
	require.Eventually(t, func() bool {
		_, ok := f.store.Get("steam-1")
		return ok
	}, time.Second, 5*time.Millisecond)
	f.service.Cancel()

	var report *hubsync.Report
	select {
	case report = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scan did not stop after cancel")
	}

	assert.True(t, report.Cancelled)
	assert.Equal(t, 1, report.Merged)
	assert.Equal(t, 1, f.store.Len())
	assert.Equal(t, 1, f.persister.count(), "partial results are saved")
	assert.Equal(t, 1, f.stats.Get().TotalGames)
}

type blockingProvider struct {
	calls   atomic.Int32
	entered chan struct{}
}

func (b *blockingProvider) Name() string              { return "blocking" }
func (b *blockingProvider) Platform() models.Platform { return models.PlatformSteam }

func (b *blockingProvider) GetLibrary(ctx context.Context) ([]models.Game, error) {
	if b.calls.Add(1) == 1 {
		close(b.entered)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return []models.Game{game("steam-7", "Second Run", 0, 1)}, nil
}

func (b *blockingProvider) RefreshLibrary(ctx context.Context) ([]models.Game, error) {
	return b.GetLibrary(ctx)
}

func (b *blockingProvider) RefreshTitle(ctx context.Context, id string) (models.Game, error) {
	return models.Game{}, provider.ErrTitleNotFound
}

func TestScan_NewRunSupersedesRunInFlight(t *testing.T) {
	p := &blockingProvider{entered: make(chan struct{})}
	f := newFixture(t, nil, p)

	first := make(chan *hubsync.Report, 1)
	go func() {
		report, err := f.service.Scan(context.Background())
		assert.NoError(t, err)
		first <- report
	}()
	<-p.entered

	second, err := f.service.Refresh(context.Background())
	require.NoError(t, err)

	superseded := <-first
	assert.True(t, superseded.Cancelled)
	assert.Zero(t, superseded.Merged)

	assert.False(t, second.Cancelled)
	assert.Equal(t, 1, second.Merged)
	assert.NotEqual(t, superseded.RunID, second.RunID)
	assert.Same(t, second, f.service.LastReport())
}

func TestWait_ReturnsAfterCancelledRunSaved(t *testing.T) {
	p := &blockingProvider{entered: make(chan struct{})}
	f := newFixture(t, nil, p)
	f.store.AddOrUpdate(game("steam-1", "Portal", 0, 1))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, f.service.Wait(ctx), "no run in flight")

	go func() {
		_, _ = f.service.Scan(context.Background())
	}()
	<-p.entered

	f.service.Cancel()
	require.NoError(t, f.service.Wait(ctx))
	assert.Equal(t, 1, f.persister.count(), "the cancelled run saved before Wait returned")
	assert.False(t, f.store.IsDirty())
}

func TestCancel_WithoutRunIsNoop(t *testing.T) {
	f := newFixture(t, nil)
	f.service.Cancel()

	report, err := f.service.Scan(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Cancelled)
}

func TestRefreshTitle(t *testing.T) {
	steam := mocks.NewProvider(models.PlatformSteam)
	steam.On("RefreshTitle", mock.Anything, "steam-440").Return(game("steam-440", "Team Fortress 2", 3, 4), nil)
	steam.On("RefreshTitle", mock.Anything, "steam-1").Return(nil, provider.ErrTitleNotFound)

	f := newFixture(t, nil, steam)

	t.Run("Success", func(t *testing.T) {
		g, err := f.service.RefreshTitle(context.Background(), "steam-440")
		require.NoError(t, err)
		assert.Equal(t, 3, g.UnlockedCount())

		stored, ok := f.store.Get("steam-440")
		require.True(t, ok)
		assert.Equal(t, "Team Fortress 2", stored.Name)
		assert.Equal(t, 1, f.persister.count())
		assert.Equal(t, 1, f.stats.Get().TotalGames)
	})

	t.Run("ProviderErrorPropagates", func(t *testing.T) {
		_, err := f.service.RefreshTitle(context.Background(), "steam-1")
		assert.ErrorIs(t, err, provider.ErrTitleNotFound)
		_, ok := f.store.Get("steam-1")
		assert.False(t, ok)
	})

	t.Run("UnknownPlatform", func(t *testing.T) {
		_, err := f.service.RefreshTitle(context.Background(), "xbox-1")
		assert.ErrorIs(t, err, provider.ErrUnknownPlatform)
	})
}

func TestPoller_RefreshesOnEveryTick(t *testing.T) {
	steam := mocks.NewProvider(models.PlatformSteam)
	var calls atomic.Int32
	steam.On("RefreshLibrary", mock.Anything).Run(func(mock.Arguments) { calls.Add(1) }).Return([]models.Game{}, nil)

	f := newFixture(t, nil, steam)
	poller := hubsync.NewPoller(f.service, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		poller.Start(ctx)
		close(stopped)
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}

func TestConfig_Durations(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, hubsync.Config{}.Freshness())
	assert.Equal(t, 2*time.Hour, hubsync.Config{EnrichFreshnessHours: 2}.Freshness())
	assert.Zero(t, hubsync.Config{}.RefreshInterval())
	assert.Equal(t, 30*time.Minute, hubsync.Config{RefreshIntervalMinutes: 30}.RefreshInterval())
	assert.Equal(t, 30*time.Second, hubsync.Config{}.RequestTimeout())
}
