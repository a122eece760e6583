package history

import (
	"context"
	"fmt"
	"sync"
)

type memPersister struct {
	mu        sync.Mutex
	data      map[string][]byte
	saveCalls int
	loadCalls int
	failSave  bool
	failLoad  bool
}

func newMemPersister() *memPersister {
	return &memPersister{data: map[string][]byte{}}
}

func (p *memPersister) Load(_ context.Context, key string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loadCalls++
	if p.failLoad {
		return nil, fmt.Errorf("load failed")
	}
	v, ok := p.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (p *memPersister) Save(_ context.Context, key string, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saveCalls++
	if p.failSave {
		return fmt.Errorf("save failed")
	}
	p.data[key] = append([]byte(nil), value...)
	return nil
}

func (p *memPersister) get(key string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.data[key]
	return v, ok
}

// gatedPersister blocks Load of loadKey and every Save until release is closed
type gatedPersister struct {
	*memPersister
	loadKey string
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedPersister(loadKey string) *gatedPersister {
	return &gatedPersister{
		memPersister: newMemPersister(),
		loadKey:      loadKey,
		started:      make(chan struct{}),
		release:      make(chan struct{}),
	}
}

func (p *gatedPersister) wait() {
	p.once.Do(func() { close(p.started) })
	<-p.release
}

func (p *gatedPersister) Load(ctx context.Context, key string) ([]byte, error) {
	if key == p.loadKey {
		p.wait()
	}
	return p.memPersister.Load(ctx, key)
}

func (p *gatedPersister) Save(ctx context.Context, key string, value []byte) error {
	if p.loadKey == "" {
		p.wait()
	}
	return p.memPersister.Save(ctx, key, value)
}
