package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchWorktrees watches the worktree base directory and invokes fn after
// each debounced burst of file system events. Returns an error only when
// the watcher cannot be created; once running it stops when ctx is done.
func watchWorktrees(ctx context.Context, dir string, fn func()) error {
	if _, err := os.Stat(dir); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return err
	}

	debounceTimer := newDebounceTimer()
	defer debounceTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			resetDebounceTimer(debounceTimer)
		case <-debounceTimer.C:
			fn()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("fsnotify: watcher error: %v", err)
		}
	}
}

// newDebounceTimer creates a stopped timer ready for resetDebounceTimer.
func newDebounceTimer() *time.Timer {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	return timer
}

// resetDebounceTimer resets the debounce timer to coalesce rapid-fire events.
func resetDebounceTimer(timer *time.Timer) {
	const debounceDuration = 500 * time.Millisecond
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(debounceDuration)
}
