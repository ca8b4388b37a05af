// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore keeps records under "<bucket>:<key>" keys.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens a badger directory. An empty path keeps the data in memory.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func badgerKey(bucket, key string) []byte {
	return []byte(bucket + ":" + key)
}

func (s *BadgerStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	if err := checkBucket(bucket); err != nil {
		return nil, err
	}
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(bucket, key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	return out, err
}

func (s *BadgerStore) Put(_ context.Context, bucket, key string, value []byte) error {
	if err := checkBucket(bucket); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(bucket, key), value)
	})
}

func (s *BadgerStore) Delete(_ context.Context, bucket, key string) error {
	if err := checkBucket(bucket); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(badgerKey(bucket, key))
	})
}

func (s *BadgerStore) List(_ context.Context, bucket string) ([]Entry, error) {
	if err := checkBucket(bucket); err != nil {
		return nil, err
	}
	prefix := []byte(bucket + ":")
	var out []Entry
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out = append(out, Entry{Key: string(item.Key()[len(prefix):]), Value: val})
		}
		return nil
	})
	return out, err
}

func (s *BadgerStore) Ping(context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger db is closed")
	}
	return nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }
