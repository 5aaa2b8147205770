package indexer

import (
	"context"
	"log/slog"

	"github.com/0xADE/ade-steam-search/internal/indexer/steam"
)

// Load scans libs and builds the index from the installed app manifests.
func Load(ctx context.Context, libs []string) (*Index, error) {
	apps := make(chan *steam.App, 100)
	go steam.ScanLibraries(libs, apps)
	return Build(ctx, apps)
}

// Build consumes catalog yields until apps is closed. Failed yields are
// logged and skipped, nameless and filtered entries are dropped, and a
// repeated id overwrites the earlier one.
func Build(ctx context.Context, apps <-chan *steam.App) (*Index, error) {
	entries := make(map[string]string)

	for app := range apps {
		// Keep draining so the producer can finish.
		if ctx.Err() != nil {
			continue
		}

		if app.Err != nil {
			slog.Error("failed reading app", "path", app.Path, "error", app.Err)
			continue
		}
		if ShouldFilter(app.ID) {
			slog.Debug("skipping non-game entry", "id", app.ID, "name", app.Name)
			continue
		}
		if !app.HasName {
			slog.Debug("skipping entry without a name", "id", app.ID, "path", app.Path)
			continue
		}
		entries[app.ID] = app.Name
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.Info("catalog loaded", "entries", len(entries))
	return &Index{entries: entries}, nil
}
