// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const planPrefix = "plan/"

// ErrEmptyKey is returned for an empty plan key.
var ErrEmptyKey = errors.New("plan key must not be empty")

// PlanStore keeps encoded plans under a key prefix, optionally expiring them.
//
// It satisfies planner.Cache.
//
// Thread Safety: Safe for concurrent use.
type PlanStore struct {
	db  *DB
	ttl time.Duration
}

// NewPlanStore creates a PlanStore on db. A zero ttl keeps entries forever.
func NewPlanStore(db *DB, ttl time.Duration) (*PlanStore, error) {
	if db == nil {
		return nil, errors.New("db must not be nil")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &PlanStore{db: db, ttl: ttl}, nil
}

func planKey(key string) []byte {
	return []byte(planPrefix + key)
}

// Load returns the value stored under key. A missing or expired key is
// reported as found == false.
func (s *PlanStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}

	var value []byte
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get(planKey(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load plan %s: %w", key, err)
	}
	return value, true, nil
}

// Save stores value under key, replacing any previous value.
func (s *PlanStore) Save(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}

	err := s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		entry := badger.NewEntry(planKey(key), value)
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("save plan %s: %w", key, err)
	}
	return nil
}

// Count returns the number of live plans.
func (s *PlanStore) Count(ctx context.Context) (int, error) {
	n := 0
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(planPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Purge removes every stored plan.
func (s *PlanStore) Purge(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	return s.db.DropPrefix([]byte(planPrefix))
}
