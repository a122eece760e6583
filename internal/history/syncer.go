package history

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"back_scan/internal/models"
)

const saveTimeout = 5 * time.Second

// Syncer writes history snapshots to a Persister on a background goroutine.
// Only the latest snapshot per key is kept while a write is pending. Failed
// writes are logged and dropped; the in-memory store stays authoritative.
type Syncer struct {
	persister Persister

	mu       sync.Mutex
	pending  map[string][]byte
	inflight map[string][]byte

	wake    chan struct{}
	flushCh chan chan struct{}
	done    chan struct{}
	exited  chan struct{}
	once    sync.Once
}

// NewSyncer starts a syncer writing to p
func NewSyncer(p Persister) *Syncer {
	s := &Syncer{
		persister: p,
		pending:   make(map[string][]byte),
		wake:      make(chan struct{}, 1),
		flushCh:   make(chan chan struct{}),
		done:      make(chan struct{}),
		exited:    make(chan struct{}),
	}
	go s.run()
	return s
}

// Schedule queues snap to be written under key
func (s *Syncer) Schedule(key string, snap models.HistorySnapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("WARNING: history %s - failed to encode snapshot: %v", key, err)
		return
	}

	s.mu.Lock()
	s.pending[key] = data
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Pending returns the queued or currently being written value for key
func (s *Syncer) Pending(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if data, ok := s.pending[key]; ok {
		return data, true
	}
	data, ok := s.inflight[key]
	return data, ok
}

// Flush blocks until everything scheduled before the call has been written or dropped
func (s *Syncer) Flush(ctx context.Context) error {
	req := make(chan struct{})
	select {
	case s.flushCh <- req:
	case <-s.exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes what is pending and stops the background goroutine
func (s *Syncer) Close() {
	s.once.Do(func() {
		close(s.done)
	})
	<-s.exited
}

func (s *Syncer) run() {
	defer close(s.exited)
	for {
		select {
		case <-s.wake:
			s.drain()
		case req := <-s.flushCh:
			s.drain()
			close(req)
		case <-s.done:
			s.drain()
			return
		}
	}
}

func (s *Syncer) drain() {
	s.mu.Lock()
	batch := s.pending
	s.pending = make(map[string][]byte)
	s.inflight = batch
	s.mu.Unlock()

	for key, data := range batch {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		if err := s.persister.Save(ctx, key, data); err != nil {
			log.Printf("WARNING: history %s - failed to persist snapshot: %v", key, err)
		}
		cancel()

		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
	}
}
