package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/0xADE/ade-steam-search/internal/config"
	"github.com/0xADE/ade-steam-search/internal/indexer"
	"github.com/0xADE/ade-steam-search/internal/indexer/steam"
	"github.com/0xADE/ade-steam-search/internal/logging"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the local catalog without contacting the provider",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel())

	root, err := steam.Locate(cfg.SteamRoot())
	if err != nil {
		return err
	}

	idx, err := indexer.Load(cmd.Context(), steam.Libraries(root, cfg.ExtraLibraries()))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, e := range idx.Entries() {
		fmt.Fprintf(w, "%s\t%s\n", e.ID, e.Name)
	}
	return w.Flush()
}
