package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <term>...",
	Short: "Run an initial search and print the result metadata",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
	defer cancel()

	ids, err := client.Search(ctx, args)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("no results")
		return nil
	}

	results, err := client.Describe(ctx, ids)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tICON")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.ID, r.Name, r.Icon)
	}
	return w.Flush()
}
