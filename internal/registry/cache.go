package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce is how long after the last file event the registry is
// re-read. Editors and atomic renames produce bursts of events.
const reloadDebounce = 500 * time.Millisecond

// Cache serves registry snapshots to long-running processes and swaps
// them when the backing file changes. Evaluations hold one snapshot for
// their whole run, so a concurrent mutation never tears a verdict.
type Cache struct {
	path string

	mu  sync.RWMutex
	reg *Registry
}

// NewCache loads the initial snapshot for path.
func NewCache(path string) *Cache {
	if path == "" {
		path = DefaultPath()
	}
	return &Cache{
		path: path,
		reg:  Load(path),
	}
}

// Path returns the backing file path.
func (c *Cache) Path() string {
	return c.path
}

// Snapshot returns the current registry. The returned value is shared
// and must be treated as read-only.
func (c *Cache) Snapshot() *Registry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reg
}

// Reload re-reads the backing file immediately.
func (c *Cache) Reload() {
	reg := Load(c.path)
	c.mu.Lock()
	c.reg = reg
	c.mu.Unlock()
}

// Watch re-reads the registry whenever the backing file is written or
// atomically replaced. The parent directory is watched rather than the
// file itself because Save renames a temp file into place, which would
// orphan a direct file watch. Blocks until ctx is cancelled.
func (c *Cache) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create registry watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create registry directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %q: %w", dir, err)
	}

	name := filepath.Base(c.path)
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, c.Reload)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "registry watcher error: %v\n", err)
		}
	}
}
