// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package store persists catalog records as JSON values in named buckets.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Buckets used by the catalog.
const (
	BucketItemNames = "item_names"
	BucketItems     = "items"
	BucketVehicles  = "vehicles"
	BucketUsers     = "users"
)

// Buckets lists every bucket a backend must be able to hold.
var Buckets = []string{BucketItemNames, BucketItems, BucketVehicles, BucketUsers}

var (
	// ErrNotFound is returned by Get when the key does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrUnknownBucket is returned for buckets outside Buckets.
	ErrUnknownBucket = errors.New("store: unknown bucket")
)

// Entry is one key/value pair returned by List.
type Entry struct {
	Key   string
	Value []byte
}

// KV is a bucketed key/value store.
type KV interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, value []byte) error
	Delete(ctx context.Context, bucket, key string) error
	// List returns the bucket content ordered by key.
	List(ctx context.Context, bucket string) ([]Entry, error)
	Ping(ctx context.Context) error
	Close() error
}

func checkBucket(bucket string) error {
	for _, b := range Buckets {
		if b == bucket {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownBucket, bucket)
}

// GetJSON reads key and decodes it into dst.
func GetJSON(ctx context.Context, kv KV, bucket, key string, dst any) error {
	raw, err := kv.Get(ctx, bucket, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("store: decode %s/%s: %w", bucket, key, err)
	}
	return nil
}

// PutJSON encodes v and stores it under key.
func PutJSON(ctx context.Context, kv KV, bucket, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s/%s: %w", bucket, key, err)
	}
	return kv.Put(ctx, bucket, key, raw)
}

// PutIfAbsent stores v only when key is not present yet. It reports whether
// a write happened.
func PutIfAbsent(ctx context.Context, kv KV, bucket, key string, v any) (bool, error) {
	_, err := kv.Get(ctx, bucket, key)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, ErrNotFound):
		return false, err
	}
	if err := PutJSON(ctx, kv, bucket, key, v); err != nil {
		return false, err
	}
	return true, nil
}
