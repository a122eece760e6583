package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Masterminds/semver/v3"
	lru "github.com/hashicorp/golang-lru/v2"

	"back_scan/internal/models"
)

// DefaultCacheSize is the number of account stores kept in memory
const DefaultCacheSize = 1024

// snapshots written by any 1.x release can be read
var compatibleSnapshots = mustConstraint("^1.0.0")

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

// Registry hands out one Store per account, hydrating it from the Persister on
// first use and wiring its changes to the Syncer. At most one Store exists per
// account: a store evicted from the cache while acquired stays registered
// until released.
type Registry struct {
	persister Persister
	syncer    *Syncer

	mu      sync.Mutex
	stores  *lru.Cache[uint, *Store]
	pinned  map[uint]*pin
	loading map[uint]chan struct{}
}

type pin struct {
	store *Store
	refs  int
}

// NewRegistry creates a registry caching up to size account stores
func NewRegistry(p Persister, syncer *Syncer, size int) (*Registry, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[uint, *Store](size)
	if err != nil {
		return nil, fmt.Errorf("create history cache: %w", err)
	}
	return &Registry{
		persister: p,
		syncer:    syncer,
		stores:    cache,
		pinned:    make(map[uint]*pin),
		loading:   make(map[uint]chan struct{}),
	}, nil
}

// Store returns the history of userID. Load failures leave the account with an
// empty history for the session. Callers that keep the store beyond a single
// call should use Acquire.
func (r *Registry) Store(ctx context.Context, userID uint) *Store {
	return r.get(ctx, userID, false)
}

// Acquire returns the history of userID and keeps it registered until release
// is called, even if the cache evicts it meanwhile
func (r *Registry) Acquire(ctx context.Context, userID uint) (store *Store, release func()) {
	store = r.get(ctx, userID, true)
	var once sync.Once
	return store, func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if p, ok := r.pinned[userID]; ok {
				p.refs--
				if p.refs == 0 {
					delete(r.pinned, userID)
				}
			}
		})
	}
}

// get loads outside r.mu; concurrent first requests for one account share a load
func (r *Registry) get(ctx context.Context, userID uint, acquire bool) *Store {
	for {
		r.mu.Lock()
		if store, ok := r.cachedLocked(userID); ok {
			if acquire {
				r.pinLocked(userID, store)
			}
			r.mu.Unlock()
			return store
		}
		wait, loading := r.loading[userID]
		if !loading {
			break
		}
		r.mu.Unlock()
		<-wait
	}
	done := make(chan struct{})
	r.loading[userID] = done
	r.mu.Unlock()

	key := models.HistoryKey(userID)
	store := NewStore()
	events, err := r.load(ctx, key)
	if err != nil {
		log.Printf("WARNING: history %s - starting empty: %v", key, err)
	}
	store.Hydrate(events)
	store.OnChange(func(snap models.HistorySnapshot) {
		r.syncer.Schedule(key, snap)
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.loading, userID)
	close(done)
	r.stores.Add(userID, store)
	if acquire {
		r.pinLocked(userID, store)
	}
	return store
}

func (r *Registry) cachedLocked(userID uint) (*Store, bool) {
	if store, ok := r.stores.Get(userID); ok {
		return store, true
	}
	if p, ok := r.pinned[userID]; ok {
		r.stores.Add(userID, p.store)
		return p.store, true
	}
	return nil, false
}

func (r *Registry) pinLocked(userID uint, store *Store) {
	p, ok := r.pinned[userID]
	if !ok {
		p = &pin{store: store}
		r.pinned[userID] = p
	}
	p.refs++
}

func (r *Registry) load(ctx context.Context, key string) ([]models.ScanEvent, error) {
	data, ok := r.syncer.Pending(key)
	if !ok {
		var err error
		data, err = r.persister.Load(ctx, key)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
	}
	return DecodeSnapshot(data)
}

// DecodeSnapshot parses persisted history. A bare JSON array of events is
// accepted as well as the versioned envelope.
func DecodeSnapshot(data []byte) ([]models.ScanEvent, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var events []models.ScanEvent
		if err := json.Unmarshal(trimmed, &events); err != nil {
			return nil, fmt.Errorf("decode events: %w", err)
		}
		return events, nil
	}

	var snap models.HistorySnapshot
	if err := json.Unmarshal(trimmed, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	version, err := semver.NewVersion(snap.Version)
	if err != nil {
		return nil, fmt.Errorf("snapshot version %q: %w", snap.Version, err)
	}
	if !compatibleSnapshots.Check(version) {
		return nil, fmt.Errorf("unsupported snapshot version %s", version)
	}
	return snap.Events, nil
}
