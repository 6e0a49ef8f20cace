// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package watch reloads a world file whenever it changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/AleutianAI/blockplanner/services/blockplanner/world"
)

// ErrNilHandler is returned by New when no handler is given.
var ErrNilHandler = errors.New("handler must not be nil")

// Handler receives each freshly loaded world, or the error that prevented
// loading it.
type Handler func(ctx context.Context, s *world.State, err error)

// Options configures a Watcher.
type Options struct {
	// Debounce is how long the file must be quiet before it is reloaded.
	// Editors often write a file in several steps.
	Debounce time.Duration

	Logger *slog.Logger
}

// DefaultOptions returns a 200ms debounce.
func DefaultOptions() Options {
	return Options{Debounce: 200 * time.Millisecond}
}

// Watcher watches a single world file.
//
// The parent directory is watched rather than the file so that editors
// which replace the file by renaming are still seen.
//
// Thread Safety: Run must be called at most once. Close is safe to call
// from any goroutine.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	handler  Handler
	debounce time.Duration
	logger   *slog.Logger

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a Watcher for path. Nothing is watched until Run.
func New(path string, handler Handler, opts Options) (*Watcher, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultOptions().Debounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	return &Watcher{
		path:     abs,
		watcher:  fw,
		handler:  handler,
		debounce: opts.Debounce,
		logger:   opts.Logger.With(slog.String("component", "watch"), slog.String("path", abs)),
		done:     make(chan struct{}),
	}, nil
}

// Run loads the file once, then reloads it after every burst of changes
// until ctx is cancelled or Close is called.
//
// Outputs:
//   - error: Non-nil only if the directory cannot be watched.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	w.reload(ctx)

	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.done:
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer, timerC = nil, nil
			w.reload(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	s, err := world.Load(w.path)
	if err != nil {
		w.logger.Debug("reload failed", slog.String("error", err.Error()))
	}
	w.handler(ctx, s, err)
}

// Close stops Run and releases the watcher.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
