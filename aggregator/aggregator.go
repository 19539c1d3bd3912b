// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package aggregator

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/votechain/server/cache"
	"github.com/votechain/server/models"
	"github.com/votechain/server/results"
)

// Default freshness windows for the two tiers.
const (
	DefaultDBTTL    = 30 * time.Second
	DefaultChainTTL = 60 * time.Second
)

// TierEntry is one tier's stored result.
type TierEntry struct {
	Data      *models.ElectionResult `json:"data"`
	FetchedAt time.Time              `json:"fetched_at"`
}

// Entry is the per-election pair of tier entries, exposed for audit
// consumers that want both values alongside the syncing flag.
type Entry struct {
	DB    *TierEntry `json:"db,omitempty"`
	Chain *TierEntry `json:"chain,omitempty"`
}

type entryState struct {
	db           *TierEntry
	chain        *TierEntry
	chainLoading bool
}

// Config tunes an Aggregator. Zero TTLs take the defaults.
type Config struct {
	DBTTL    time.Duration
	ChainTTL time.Duration
	// ChainEnabled false suppresses background chain fetches entirely
	// (the server has no contract configured, so the chain tier could
	// only ever answer with degraded database-sourced results).
	ChainEnabled bool
}

// Aggregator serves the best-available result per election: the
// database value immediately, upgraded in the background to the
// chain-confirmed value when one arrives. It is safe for concurrent use
// and is constructed explicitly, never shared as a package singleton.
type Aggregator struct {
	provider results.Provider
	store    *cache.Store
	cfg      Config
	now      func() time.Time

	mu      sync.Mutex
	entries map[int64]*entryState
	// gens outlives entries: Invalidate bumps the counter so results
	// from fetches started before the invalidation are dropped.
	gens map[int64]uint64

	dbFlight singleflight.Group

	errMu        sync.Mutex
	lastChainErr error
}

func New(provider results.Provider, store *cache.Store, cfg Config) *Aggregator {
	if cfg.DBTTL == 0 {
		cfg.DBTTL = DefaultDBTTL
	}
	if cfg.ChainTTL == 0 {
		cfg.ChainTTL = DefaultChainTTL
	}
	return &Aggregator{
		provider: provider,
		store:    store,
		cfg:      cfg,
		now:      time.Now,
		entries:  make(map[int64]*entryState),
		gens:     make(map[int64]uint64),
	}
}

// WithClock substitutes the time source. For tests.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

func dbKey(id int64) string {
	return "results:db:" + strconv.FormatInt(id, 10)
}

func chainKey(id int64) string {
	return "results:chain:" + strconv.FormatInt(id, 10)
}

// FetchResult ensures a fresh database-tier value for the election,
// fetching one if needed, then kicks off the background chain upgrade
// without waiting for it. It returns the best value currently stored
// (chain if present, else the database value). Database fetch errors
// propagate to the caller; chain fetch errors never do.
func (a *Aggregator) FetchResult(ctx context.Context, id int64) (*models.ElectionResult, error) {
	a.mu.Lock()
	st, ok := a.entries[id]
	hasChain := ok && st.chain != nil
	a.mu.Unlock()

	// A stored chain value permanently supersedes the database tier for
	// this election: once present, expiry triggers a chain re-fetch,
	// never a database one.
	var fetched *models.ElectionResult
	if !hasChain {
		var err error
		fetched, err = a.ensureDB(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	if a.cfg.ChainEnabled {
		a.maybeFetchChain(ctx, id)
	}

	if got := a.GetResult(id); got != nil {
		return got, nil
	}
	// An Invalidate landed between the fetch and the state read. The
	// fetched value still answers this request; the next one re-fetches.
	if fetched != nil {
		return fetched, nil
	}
	return a.ensureDB(ctx, id)
}

// GetResult is a pure read of current state: the chain value if one is
// stored, else the database value, else nil. It never triggers a fetch,
// and a stale stored value is still returned (staleness only drives
// re-fetching).
func (a *Aggregator) GetResult(id int64) *models.ElectionResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	st, ok := a.entries[id]
	if !ok {
		return nil
	}
	if st.chain != nil {
		return st.chain.Data
	}
	if st.db != nil {
		return st.db.Data
	}
	return nil
}

// IsChainLoading reports whether a chain fetch for the election is in
// flight. Consumers use it to render a "syncing" indicator.
func (a *Aggregator) IsChainLoading(id int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	st, ok := a.entries[id]
	return ok && st.chainLoading
}

// Entry returns a copy of the raw per-election entry pair.
func (a *Aggregator) Entry(id int64) (Entry, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	st, ok := a.entries[id]
	if !ok {
		return Entry{}, false
	}
	var e Entry
	if st.db != nil {
		db := *st.db
		e.DB = &db
	}
	if st.chain != nil {
		ch := *st.chain
		e.Chain = &ch
	}
	return e, true
}

// Invalidate removes the entry for one election and bumps its
// generation, so the next FetchResult re-fetches from scratch and any
// in-flight fetch result is dropped on arrival.
func (a *Aggregator) Invalidate(ctx context.Context, id int64) {
	a.mu.Lock()
	a.gens[id]++
	delete(a.entries, id)
	a.mu.Unlock()

	a.store.Clear(ctx, dbKey(id))
	a.store.Clear(ctx, chainKey(id))
}

// InvalidateAll clears every entry and the cache namespace.
func (a *Aggregator) InvalidateAll(ctx context.Context) {
	a.mu.Lock()
	// state() seeds gens for every entry, so bumping gens covers all of
	// entries too.
	for id := range a.gens {
		a.gens[id]++
	}
	a.entries = make(map[int64]*entryState)
	a.mu.Unlock()

	a.store.ClearAll(ctx)
}

// LastChainError returns the most recent swallowed chain-tier failure,
// for diagnostics. It is shared state, not per-election.
func (a *Aggregator) LastChainError() error {
	a.errMu.Lock()
	defer a.errMu.Unlock()
	return a.lastChainErr
}

func (a *Aggregator) setChainErr(err error) {
	a.errMu.Lock()
	a.lastChainErr = err
	a.errMu.Unlock()
}

// state returns the entry for id, creating it. Callers hold a.mu.
func (a *Aggregator) state(id int64) *entryState {
	st, ok := a.entries[id]
	if !ok {
		st = &entryState{}
		a.entries[id] = st
		if _, seen := a.gens[id]; !seen {
			a.gens[id] = 0
		}
	}
	return st
}

// ensureDB returns a database-tier value at most DBTTL old, deduping
// concurrent fetches for the same election through singleflight.
func (a *Aggregator) ensureDB(ctx context.Context, id int64) (*models.ElectionResult, error) {
	v, err, _ := a.dbFlight.Do(dbKey(id), func() (interface{}, error) {
		a.mu.Lock()
		st := a.state(id)
		gen := a.gens[id]
		if st.db != nil && a.now().Sub(st.db.FetchedAt) <= a.cfg.DBTTL {
			data := st.db.Data
			a.mu.Unlock()
			return data, nil
		}
		a.mu.Unlock()

		// A previous session may have left a fresh value in the store
		var cached models.ElectionResult
		if a.store.Load(ctx, dbKey(id), int(a.cfg.DBTTL.Seconds()), &cached) {
			a.commitDB(id, gen, &cached, false)
			return &cached, nil
		}

		result, err := a.provider.FetchResults(ctx, id, false)
		if err != nil {
			return nil, err
		}
		a.commitDB(id, gen, result, true)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.ElectionResult), nil
}

// commitDB stores a database-tier value unless the election was
// invalidated while the fetch was in flight.
func (a *Aggregator) commitDB(id int64, gen uint64, result *models.ElectionResult, persist bool) {
	a.mu.Lock()
	if a.gens[id] != gen {
		a.mu.Unlock()
		slog.Debug("dropping db result from invalidated generation", "election_id", id)
		return
	}
	a.state(id).db = &TierEntry{Data: result, FetchedAt: a.now()}
	a.mu.Unlock()

	if persist {
		a.store.Save(context.Background(), dbKey(id), result)
	}
}

// maybeFetchChain starts the background chain fetch unless a fresh
// chain value exists or a fetch is already in flight. The fetch runs on
// a context detached from the caller: a consumer going away must not
// abort the shared upgrade, and the result still lands in shared state.
func (a *Aggregator) maybeFetchChain(ctx context.Context, id int64) {
	a.mu.Lock()
	st := a.state(id)
	if st.chainLoading {
		a.mu.Unlock()
		return
	}
	if st.chain != nil && a.now().Sub(st.chain.FetchedAt) <= a.cfg.ChainTTL {
		a.mu.Unlock()
		return
	}
	st.chainLoading = true
	gen := a.gens[id]
	a.mu.Unlock()

	bg := context.WithoutCancel(ctx)
	go a.fetchChain(bg, id, gen)
}

func (a *Aggregator) fetchChain(ctx context.Context, id int64, gen uint64) {
	defer func() {
		a.mu.Lock()
		// Only this generation's fetch owns the flag: after an
		// Invalidate the replacement entry's fetch is still in flight
		// and must keep reporting as loading.
		if st, ok := a.entries[id]; ok && a.gens[id] == gen {
			st.chainLoading = false
		}
		a.mu.Unlock()
	}()

	// A previous session may have a fresh chain-confirmed value
	var cached models.ElectionResult
	if a.store.Load(ctx, chainKey(id), int(a.cfg.ChainTTL.Seconds()), &cached) &&
		cached.Source == models.SourceBlockchain {
		a.commitChain(id, gen, &cached, false)
		return
	}

	result, err := a.provider.FetchResults(ctx, id, true)
	if err != nil {
		// Swallowed: the database value is an acceptable fallback
		a.setChainErr(err)
		slog.Warn("chain result fetch failed", "election_id", id, "error", err)
		return
	}

	// A degraded answer (the provider fell back to the database) must
	// not overwrite the chain slot with a false "chain-confirmed" value
	if result.Source != models.SourceBlockchain {
		slog.Info("chain tier degraded to database source, discarding",
			"election_id", id)
		return
	}

	a.commitChain(id, gen, result, true)
}

func (a *Aggregator) commitChain(id int64, gen uint64, result *models.ElectionResult, persist bool) {
	a.mu.Lock()
	if a.gens[id] != gen {
		a.mu.Unlock()
		slog.Debug("dropping chain result from invalidated generation", "election_id", id)
		return
	}
	a.state(id).chain = &TierEntry{Data: result, FetchedAt: a.now()}
	a.mu.Unlock()

	if persist {
		a.store.Save(context.Background(), chainKey(id), result)
	}
}
