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
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/blockplanner/services/blockplanner/logic"
	"github.com/AleutianAI/blockplanner/services/blockplanner/planner"
	"github.com/AleutianAI/blockplanner/services/blockplanner/world"
)

var _ planner.Cache = (*PlanStore)(nil)

func memDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.True(t, errors.Is(err, ErrPathRequired))
}

func TestOpenDB_Persistent(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Path = dir

	db, err := OpenDB(cfg)
	require.NoError(t, err)
	assert.Equal(t, dir, db.Path())
	assert.False(t, db.InMemory())

	store, err := NewPlanStore(db, 0)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), "k", []byte("v")))
	require.NoError(t, db.Close())
	require.NoError(t, db.Close(), "second close is a no-op")

	db2, err := OpenDB(cfg)
	require.NoError(t, err)
	defer db2.Close()

	store2, err := NewPlanStore(db2, 0)
	require.NoError(t, err)
	v, found, err := store2.Load(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), v)
}

func TestPlanStore_LoadSave(t *testing.T) {
	ctx := context.Background()
	store, err := NewPlanStore(memDB(t), 0)
	require.NoError(t, err)

	_, found, err := store.Load(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Save(ctx, "a", []byte("1")))
	require.NoError(t, store.Save(ctx, "a", []byte("2")))
	require.NoError(t, store.Save(ctx, "b", []byte("3")))

	v, found, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("2"), v)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, store.Purge(ctx))
	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPlanStore_Errors(t *testing.T) {
	ctx := context.Background()
	store, err := NewPlanStore(memDB(t), 0)
	require.NoError(t, err)

	assert.True(t, errors.Is(store.Save(ctx, "", nil), ErrEmptyKey))
	_, _, err = store.Load(ctx, "")
	assert.True(t, errors.Is(err, ErrEmptyKey))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.True(t, errors.Is(store.Save(cancelled, "a", nil), context.Canceled))

	_, err = NewPlanStore(nil, 0)
	assert.Error(t, err)
	_, err = NewPlanStore(memDB(t), -time.Second)
	assert.Error(t, err)
}

func TestPlanStore_TTL(t *testing.T) {
	db := memDB(t)
	store, err := NewPlanStore(db, time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), "a", []byte("1")))

	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(planKey("a"))
		if err != nil {
			return err
		}
		assert.Greater(t, item.ExpiresAt(), uint64(time.Now().Unix()))
		return nil
	})
	require.NoError(t, err)
}

func TestPlanStore_BacksPlanner(t *testing.T) {
	store, err := NewPlanStore(memDB(t), 0)
	require.NoError(t, err)
	p, err := planner.New(planner.DefaultConfig(), planner.WithCache(store))
	require.NoError(t, err)

	s, err := world.Example("small")
	require.NoError(t, err)
	f := logic.MustParse("holding(k)")

	first, err := p.PlanFormula(context.Background(), f, s)
	require.NoError(t, err)
	second, err := p.PlanFormula(context.Background(), f, s)
	require.NoError(t, err)

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Actions, second.Actions)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewGCRunner_Validation(t *testing.T) {
	db := memDB(t)

	_, err := NewGCRunner(nil, time.Second, 0.5, nil)
	assert.Error(t, err)
	_, err = NewGCRunner(db.DB, 0, 0.5, nil)
	assert.Error(t, err)
	_, err = NewGCRunner(db.DB, time.Second, 1.5, nil)
	assert.Error(t, err)

	r, err := NewGCRunner(db.DB, time.Hour, 0.5, nil)
	require.NoError(t, err)
	r.Start()
	r.Stop()
	r.Stop()
}
