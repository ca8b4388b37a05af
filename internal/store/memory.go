// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps everything in process memory. Not durable.
type MemoryStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{buckets: make(map[string]map[string][]byte, len(Buckets))}
	for _, b := range Buckets {
		m.buckets[b] = make(map[string][]byte)
	}
	return m
}

func (m *MemoryStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	if err := checkBucket(bucket); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.buckets[bucket][key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Put(_ context.Context, bucket, key string, value []byte) error {
	if err := checkBucket(bucket); err != nil {
		return err
	}
	m.mu.Lock()
	m.buckets[bucket][key] = append([]byte(nil), value...)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, bucket, key string) error {
	if err := checkBucket(bucket); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.buckets[bucket], key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) List(_ context.Context, bucket string) ([]Entry, error) {
	if err := checkBucket(bucket); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]Entry, 0, len(m.buckets[bucket]))
	for k, v := range m.buckets[bucket] {
		out = append(out, Entry{Key: k, Value: append([]byte(nil), v...)})
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
