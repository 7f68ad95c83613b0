package storage

import (
	"context"
	"sync"
)

type MemDocuments struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewMemDocuments() *MemDocuments {
	return &MemDocuments{m: map[string][]byte{}}
}

func (d *MemDocuments) Load(_ context.Context, name string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	b, ok := d.m[name]
	if !ok {
		return nil, ErrNotExist
	}
	return append([]byte(nil), b...), nil
}

func (d *MemDocuments) Save(_ context.Context, name string, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m[name] = append([]byte(nil), data...)
	return nil
}

func (d *MemDocuments) Ping(context.Context) error { return nil }

func (d *MemDocuments) Close() error { return nil }
