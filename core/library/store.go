package library

import (
	"context"
	"errors"
	"maps"
	"sync"

	"achievement-hub/core/models"

	"go.uber.org/zap"
)

// Store is the in-memory system of record for the game library.
//
// All access to the games map goes through mu. Change notifications are dispatched after
// mu is released so subscribers may read the store from their callbacks.
type Store struct {
	mu          sync.Mutex
	games       map[string]models.Game
	accounts    Accounts
	preferences Preferences
	version     int

	// revision counts mutations; savedRevision is the revision last written successfully.
	revision      uint64
	savedRevision uint64

	// saveMu serializes saves from snapshot through write, so an older document never
	// lands on disk after a newer one.
	saveMu sync.Mutex

	batchDepth int
	pending    bool

	subMu       sync.RWMutex
	nextSubID   int
	subscribers map[int]func()

	persister Persister
	logger    *zap.Logger
}

// New creates an empty store backed by persister. A nil persister keeps the store in memory.
func New(persister Persister, logger *zap.Logger) *Store {
	return newFromDocument(NewDocument(), persister, logger)
}

func newFromDocument(doc *Document, persister Persister, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	games := doc.Games
	if games == nil {
		games = make(map[string]models.Game)
	}
	prefs := doc.Preferences
	if prefs.PageSize <= 0 {
		prefs.PageSize = DefaultPageSize
	}
	return &Store{
		games:       games,
		accounts:    doc.Accounts,
		preferences: prefs,
		version:     doc.Version,
		subscribers: make(map[int]func()),
		persister:   persister,
		logger:      logger,
	}
}

// Load reads the library through persister. A missing, empty or unreadable document yields
// a fresh store; a document below MinSupportedVersion keeps everything except its games.
// Load never fails: every problem is logged and recovered.
func Load(ctx context.Context, persister Persister, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	doc, err := persister.Load(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		logger.Info("No library document found, starting empty")
		return New(persister, logger)
	case err != nil:
		logger.Warn("Library document unreadable, starting empty", zap.Error(err))
		return New(persister, logger)
	}

	wiped := false
	if doc.Version < MinSupportedVersion {
		logger.Warn("Library document is outdated, discarding games to force a full rescan",
			zap.Int("version", doc.Version),
			zap.Int("min_supported", MinSupportedVersion),
			zap.Int("discarded", len(doc.Games)),
		)
		doc.Games = make(map[string]models.Game)
		doc.Version = CurrentVersion
		wiped = true
	}

	s := newFromDocument(doc, persister, logger)
	if wiped {
		s.revision++
	}
	logger.Info("Library loaded", zap.Int("games", len(s.games)), zap.Int("version", s.version))
	return s
}

// AddOrUpdate inserts game or replaces the record with the same identifier.
func (s *Store) AddOrUpdate(game models.Game) {
	s.AddOrUpdateMany(game)
}

// AddOrUpdateMany upserts every game and emits at most one notification.
func (s *Store) AddOrUpdateMany(games ...models.Game) {
	if len(games) == 0 {
		return
	}

	s.mu.Lock()
	for _, g := range games {
		s.games[g.ID] = g
	}
	s.revision++
	notify := s.batchDepth == 0
	if !notify {
		s.pending = true
	}
	s.mu.Unlock()

	if notify {
		s.notify()
	}
}

// Update applies fn to the stored game with the given identifier while holding the store
// lock, so the read and the write cannot interleave with another update. It reports false
// when the game does not exist.
func (s *Store) Update(id string, fn func(models.Game) models.Game) bool {
	s.mu.Lock()
	g, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.games[id] = fn(g)
	s.revision++
	notify := s.batchDepth == 0
	if !notify {
		s.pending = true
	}
	s.mu.Unlock()

	if notify {
		s.notify()
	}
	return true
}

// Batch defers change notifications until End is called.
type Batch struct {
	store *Store
	once  sync.Once
}

// BeginBatch opens a (possibly nested) batch scope. Updates made while any scope is open
// are applied immediately but notified once, when the outermost scope ends.
func (s *Store) BeginBatch() *Batch {
	s.mu.Lock()
	s.batchDepth++
	s.mu.Unlock()
	return &Batch{store: s}
}

// End closes the scope. Calling End more than once has no further effect.
func (b *Batch) End() {
	b.once.Do(func() {
		s := b.store
		s.mu.Lock()
		s.batchDepth--
		flush := s.batchDepth == 0 && s.pending
		if flush {
			s.pending = false
		}
		s.mu.Unlock()

		if flush {
			s.notify()
		}
	})
}

// Get returns the game with the given identifier.
func (s *Store) Get(id string) (models.Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	return g, ok
}

// Games returns a snapshot of every game, in no particular order.
func (s *Store) Games() []models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Game, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, g)
	}
	return out
}

// Len returns the number of games.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}

// Version returns the schema version of the library.
func (s *Store) Version() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// IsDirty reports whether there are changes not yet saved.
func (s *Store) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision != s.savedRevision
}

// Accounts returns the configured platform accounts.
func (s *Store) Accounts() Accounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts
}

// SetAccounts replaces the platform accounts.
func (s *Store) SetAccounts(a Accounts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accounts == a {
		return
	}
	s.accounts = a
	s.revision++
}

// Preferences returns the persisted view preferences.
func (s *Store) Preferences() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preferences
}

// SetPreferences replaces the view preferences.
func (s *Store) SetPreferences(p Preferences) {
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.preferences == p {
		return
	}
	s.preferences = p
	s.revision++
}

// Save writes the library if it changed since the last successful save, or unconditionally
// when force is set. The games map is copied under the lock and encoded outside it, so
// concurrent updates never block on disk I/O. Saves run one at a time and the dirty state
// is only cleared for the revision that was actually written.
func (s *Store) Save(ctx context.Context, force bool) error {
	if s.persister == nil {
		return nil
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if !force && s.revision == s.savedRevision {
		s.mu.Unlock()
		return nil
	}
	doc := s.documentLocked()
	rev := s.revision
	s.mu.Unlock()

	if err := s.persister.Save(ctx, doc); err != nil {
		return err
	}

	s.mu.Lock()
	if rev > s.savedRevision {
		s.savedRevision = rev
	}
	s.mu.Unlock()

	s.logger.Debug("Library saved", zap.Int("games", len(doc.Games)))
	return nil
}

// Document returns a copy of the library in its persisted form.
func (s *Store) Document() *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documentLocked()
}

func (s *Store) documentLocked() *Document {
	return &Document{
		Version:     s.version,
		Games:       maps.Clone(s.games),
		Accounts:    s.accounts,
		Preferences: s.preferences,
	}
}

// Subscribe registers fn to be called after the games change. The returned function
// removes the subscription.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify() {
	s.subMu.RLock()
	fns := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}
