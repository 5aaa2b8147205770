package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/0xADE/ade-steam-search/internal/indexer/steam"
)

var newWatcher = fsnotify.NewWatcher

// AwaitChange reports whether the installed titles in libs changed before ctx
// was done. When the watcher cannot be set up it logs a warning and waits for
// ctx, so the provider keeps serving its current snapshot.
func AwaitChange(ctx context.Context, libs []string) bool {
	err := WatchLibraries(ctx, libs)
	switch {
	case err == nil:
		return true
	case ctx.Err() != nil:
		return false
	}

	slog.Warn("library watcher unavailable, catalog changes need a restart", "error", err)
	<-ctx.Done()
	return false
}

// WatchLibraries blocks until the set of installed app manifests in libs
// differs from the set present when it was called. It returns nil on such a
// change and ctx.Err() when ctx is cancelled first. Libraries that cannot be
// watched are skipped.
func WatchLibraries(ctx context.Context, libs []string) error {
	watcher, err := newWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	dirs := make([]string, 0, len(libs))
	for _, lib := range libs {
		dir := steam.ManifestDir(lib)
		if err := watcher.Add(dir); err != nil {
			slog.Warn("cannot watch library", "path", dir, "error", err)
			continue
		}
		dirs = append(dirs, dir)
	}

	initial := installedManifests(dirs)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !steam.IsManifest(filepath.Base(event.Name)) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			current := installedManifests(dirs)
			if !sameSet(initial, current) {
				slog.Info("installed titles changed", "before", len(initial), "after", len(current), "trigger", event.Name)
				return nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("library watcher error", "error", err)
		}
	}
}

func installedManifests(dirs []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() && steam.IsManifest(e.Name()) {
				set[filepath.Join(dir, e.Name())] = struct{}{}
			}
		}
	}
	return set
}

func sameSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
