package history

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"back_scan/internal/models"
)

func newTestRegistry(t *testing.T, p *memPersister, size int) (*Registry, *Syncer) {
	t.Helper()
	syncer := NewSyncer(p)
	t.Cleanup(syncer.Close)
	reg, err := NewRegistry(p, syncer, size)
	require.NoError(t, err)
	return reg, syncer
}

func flush(t *testing.T, s *Syncer) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Flush(ctx))
}

func TestRegistryReturnsSameStore(t *testing.T) {
	reg, _ := newTestRegistry(t, newMemPersister(), 4)
	ctx := context.Background()

	a := reg.Store(ctx, 1)
	b := reg.Store(ctx, 1)
	c := reg.Store(ctx, 2)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestRegistryPersistsAndHydrates(t *testing.T) {
	p := newMemPersister()
	reg, syncer := newTestRegistry(t, p, 4)
	ctx := context.Background()

	store := reg.Store(ctx, 7)
	store.Add(event("a"))
	store.Add(event("b"))
	store.SetCurrent(event("b"))
	flush(t, syncer)

	// a fresh registry over the same persister sees the saved history but no current selection
	reg2, _ := newTestRegistry(t, p, 4)
	restored := reg2.Store(ctx, 7)
	assert.Equal(t, []string{"b", "a"}, dataOf(restored.Events()))
	_, ok := restored.Current()
	assert.False(t, ok)
}

func TestRegistryEvictionReloadsPendingState(t *testing.T) {
	p := newMemPersister()
	// without its goroutine the syncer keeps every write pending
	syncer := &Syncer{pending: map[string][]byte{}}
	reg, err := NewRegistry(p, syncer, 1)
	require.NoError(t, err)
	ctx := context.Background()

	reg.Store(ctx, 1).Add(event("a"))
	reg.Store(ctx, 2) // evicts account 1

	assert.Equal(t, []string{"a"}, dataOf(reg.Store(ctx, 1).Events()))
}

func TestRegistryLoadFailureStartsEmpty(t *testing.T) {
	p := newMemPersister()
	p.failLoad = true
	reg, _ := newTestRegistry(t, p, 4)

	store := reg.Store(context.Background(), 3)
	assert.Equal(t, 0, store.Len())
	assert.True(t, store.Add(event("a")))
}

func TestDecodeSnapshot(t *testing.T) {
	t.Run("envelope", func(t *testing.T) {
		raw, _ := json.Marshal(models.HistorySnapshot{Version: "1.2.0", Events: []models.ScanEvent{event("a")}})
		events, err := DecodeSnapshot(raw)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, dataOf(events))
	})

	t.Run("bare array", func(t *testing.T) {
		raw, _ := json.Marshal([]models.ScanEvent{event("a"), event("b")})
		events, err := DecodeSnapshot(raw)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, dataOf(events))
	})

	t.Run("future major version rejected", func(t *testing.T) {
		raw, _ := json.Marshal(models.HistorySnapshot{Version: "2.0.0", Events: []models.ScanEvent{event("a")}})
		_, err := DecodeSnapshot(raw)
		assert.Error(t, err)
	})

	t.Run("missing version rejected", func(t *testing.T) {
		_, err := DecodeSnapshot([]byte(`{"events":[]}`))
		assert.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		events, err := DecodeSnapshot([]byte("  "))
		require.NoError(t, err)
		assert.Nil(t, events)
	})
}

func TestRegistryAcquiredStoreSurvivesEviction(t *testing.T) {
	p := newMemPersister()
	reg, syncer := newTestRegistry(t, p, 1)
	ctx := context.Background()

	held, release := reg.Acquire(ctx, 1)
	reg.Store(ctx, 2) // evicts account 1 from the cache
	again := reg.Store(ctx, 1)
	require.Same(t, held, again)

	held.Add(event("via-ws"))
	again.Add(event("via-http"))
	flush(t, syncer)

	data, ok := p.get(models.HistoryKey(1))
	require.True(t, ok)
	events, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"via-http", "via-ws"}, dataOf(events))

	held.SetCurrent(event("via-ws"))
	again.ClearCurrent()
	_, ok = held.Current()
	assert.False(t, ok)

	release()
	release()
	reg.Store(ctx, 2)
	reloaded := reg.Store(ctx, 1)
	assert.NotSame(t, held, reloaded)
	assert.Equal(t, []string{"via-http", "via-ws"}, dataOf(reloaded.Events()))
}

func TestRegistryAcquireCountsHolders(t *testing.T) {
	reg, _ := newTestRegistry(t, newMemPersister(), 1)
	ctx := context.Background()

	first, releaseFirst := reg.Acquire(ctx, 1)
	second, releaseSecond := reg.Acquire(ctx, 1)
	require.Same(t, first, second)

	releaseFirst()
	reg.Store(ctx, 2)
	assert.Same(t, first, reg.Store(ctx, 1), "still held by the second caller")
	releaseSecond()
}

func TestRegistrySlowLoadDoesNotBlockOtherAccounts(t *testing.T) {
	p := newGatedPersister(models.HistoryKey(1))
	syncer := NewSyncer(p)
	t.Cleanup(syncer.Close)
	reg, err := NewRegistry(p, syncer, 4)
	require.NoError(t, err)
	ctx := context.Background()

	loaded := make(chan *Store, 2)
	go func() { loaded <- reg.Store(ctx, 1) }()
	<-p.started
	go func() { loaded <- reg.Store(ctx, 1) }()

	other := make(chan struct{})
	go func() {
		reg.Store(ctx, 2)
		close(other)
	}()
	select {
	case <-other:
	case <-time.After(time.Second):
		t.Fatal("account 2 waited for account 1's load")
	}

	close(p.release)
	a, b := <-loaded, <-loaded
	assert.Same(t, a, b)
	assert.Equal(t, 2, p.loadCalls, "one load per account")
}
