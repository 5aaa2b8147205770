package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/godbus/dbus/v5"
	"golang.org/x/sync/errgroup"

	"github.com/0xADE/ade-steam-search/internal/config"
	"github.com/0xADE/ade-steam-search/internal/indexer"
	"github.com/0xADE/ade-steam-search/internal/indexer/steam"
	"github.com/0xADE/ade-steam-search/internal/launcher"
	"github.com/0xADE/ade-steam-search/internal/logging"
	"github.com/0xADE/ade-steam-search/internal/search"
	"github.com/0xADE/ade-steam-search/server"
)

var errCatalogChanged = errors.New("installed titles changed")

func main() {
	// Initialize configuration
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Get()

	logging.Setup(cfg.LogLevel())

	if err := run(cfg); err != nil {
		slog.Error("steam search provider failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, err := steam.Locate(cfg.SteamRoot())
	if err != nil {
		return err
	}
	libs := steam.Libraries(root, cfg.ExtraLibraries())
	slog.Debug("steam libraries", "root", root, "libraries", libs)

	idx, err := indexer.Load(ctx, libs)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer conn.Close()

	l, err := launcher.New(cfg.Launcher(), cfg.Opener(), conn)
	if err != nil {
		return err
	}

	provider := search.NewProvider(idx, search.Steam, l, slog.Default())
	srv, err := server.NewServer(conn, provider, cfg.BusName(), cfg.ObjectPath())
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	if cfg.ExitOnChange() {
		g.Go(func() error {
			if indexer.AwaitChange(gctx, libs) {
				return errCatalogChanged
			}
			return nil
		})
	}

	err = g.Wait()
	if stopErr := srv.Stop(); stopErr != nil {
		slog.Warn("error stopping server", "error", stopErr)
	}

	switch {
	case errors.Is(err, errCatalogChanged):
		// The bus activates a fresh process with a new snapshot on the next search.
		slog.Info("exiting to reload catalog")
		return nil
	case errors.Is(err, context.Canceled):
		slog.Info("steam search provider stopped")
		return nil
	}
	return err
}
