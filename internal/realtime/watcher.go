package realtime

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher detects commits made by other processes sharing the database file
// and republishes them on the hub. It polls PRAGMA data_version on one
// pinned connection; the value moves whenever another connection commits.
// Watched files (the session file) are followed with fsnotify and reported
// as changes to a collection.
type Watcher struct {
	db       *sql.DB
	hub      *Hub
	interval time.Duration
	files    map[string]Collection
}

func NewWatcher(db *sql.DB, hub *Hub, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Watcher{db: db, hub: hub, interval: interval, files: make(map[string]Collection)}
}

// WatchFile publishes c whenever path is created, written, replaced or removed.
func (w *Watcher) WatchFile(path string, c Collection) {
	w.files[filepath.Clean(path)] = c
}

// Run polls until ctx is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	conn, err := w.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquiring watcher connection: %w", err)
	}
	defer conn.Close()

	version, err := dataVersion(ctx, conn)
	if err != nil {
		return err
	}

	var (
		fileEvents <-chan fsnotify.Event
		fileErrors <-chan error
	)
	if len(w.files) > 0 {
		fw, err := w.watchDirs()
		if err != nil {
			return err
		}
		defer fw.Close()
		fileEvents, fileErrors = fw.Events, fw.Errors
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fileEvents:
			if !ok {
				fileEvents = nil
				continue
			}
			if c, watched := w.files[filepath.Clean(ev.Name)]; watched && ev.Op != fsnotify.Chmod {
				w.hub.Publish(c)
			}
		case err, ok := <-fileErrors:
			if !ok {
				fileErrors = nil
				continue
			}
			w.hub.logger.Warn("file_watch_failed", "error", err.Error())
		case <-ticker.C:
			v, err := dataVersion(ctx, conn)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				w.hub.logger.Warn("data_version_poll_failed", "error", err.Error())
				continue
			}
			if v != version {
				version = v
				w.hub.Publish(CollectionPlans, CollectionTasks, CollectionChangeRequests)
			}
		}
	}
}

// watchDirs watches the parent directory of every file so that atomic
// replacements (write temp, rename) and removals are seen.
func (w *Watcher) watchDirs() (*fsnotify.Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	added := make(map[string]bool)
	for path := range w.files {
		dir := filepath.Dir(path)
		if added[dir] {
			continue
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			fw.Close()
			return nil, fmt.Errorf("creating watched directory: %w", err)
		}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
		added[dir] = true
	}
	return fw, nil
}

func dataVersion(ctx context.Context, conn *sql.Conn) (int64, error) {
	var v int64
	if err := conn.QueryRowContext(ctx, `PRAGMA data_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("reading data_version: %w", err)
	}
	return v, nil
}
