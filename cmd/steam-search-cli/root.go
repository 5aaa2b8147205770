package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/0xADE/ade-steam-search/client/provider"
)

var (
	flagBusName    string
	flagObjectPath string
	flagTimeout    time.Duration
)

var rootCmd = &cobra.Command{
	Use:          "steam-search-cli",
	Short:        "Query the Steam search provider the way GNOME Shell does",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBusName, "bus-name", "", "Provider bus name (default $STEAM_SEARCH_BUS_NAME or dev.ade.Steam.SearchProvider)")
	rootCmd.PersistentFlags().StringVar(&flagObjectPath, "object-path", "", "Provider object path (default $STEAM_SEARCH_OBJECT_PATH or /dev/ade/Steam/SearchProvider)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 10*time.Second, "Timeout for each bus call")
}

func newClient() (*provider.Client, error) {
	return provider.NewClient(flagBusName, flagObjectPath)
}
