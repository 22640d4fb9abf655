// Package exportwatch waits for the system under test to drop a tally export
// into a directory.
package exportwatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ballotqa/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file must go without writes before it is read.
const DefaultSettle = 250 * time.Millisecond

// Export is a tally export found on disk.
type Export struct {
	Path    string
	Content string
}

// Options tunes Wait.
type Options struct {
	// Since ignores exports last modified before this time. Zero accepts any.
	Since  time.Time
	Settle time.Duration
}

func isExport(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

// Wait blocks until a non-empty .csv file appears in dir, or ctx ends. An
// export already present when Wait starts is returned immediately; when there
// are several, the newest wins.
func Wait(ctx context.Context, dir string, opts Options) (Export, error) {
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	log := logging.Get(logging.CategoryTally)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return Export{}, err
	}
	defer watcher.Close()

	// Watch before scanning so nothing written in between is missed.
	if err := watcher.Add(dir); err != nil {
		return Export{}, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	if path, ok := newestExport(dir, opts.Since); ok {
		if exp, ok := readExport(path); ok {
			log.Info("Found existing tally export %s", path)
			return exp, nil
		}
	}
	log.Info("Waiting for tally export in %s", dir)

	settle := time.NewTimer(opts.Settle)
	settle.Stop()
	defer settle.Stop()
	var pending string

	for {
		select {
		case <-ctx.Done():
			return Export{}, ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return Export{}, fmt.Errorf("watcher for %s closed", dir)
			}
			if !isExport(event.Name) || event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			log.Debug("%s event for %s", event.Op, event.Name)
			pending = event.Name
			settle.Reset(opts.Settle)

		case err, ok := <-watcher.Errors:
			if !ok {
				return Export{}, fmt.Errorf("watcher for %s closed", dir)
			}
			log.Warn("watch error on %s: %v", dir, err)

		case <-settle.C:
			if exp, ok := readExport(pending); ok {
				log.Info("Tally export ready: %s (%d bytes)", exp.Path, len(exp.Content))
				return exp, nil
			}
		}
	}
}

func newestExport(dir string, since time.Time) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	var (
		best    string
		bestMod time.Time
	)
	for _, e := range entries {
		if e.IsDir() || !isExport(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().Before(since) {
			continue
		}
		if best == "" || info.ModTime().After(bestMod) {
			best, bestMod = filepath.Join(dir, e.Name()), info.ModTime()
		}
	}
	return best, best != ""
}

func readExport(path string) (Export, bool) {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return Export{}, false
	}
	return Export{Path: path, Content: string(data)}, true
}
