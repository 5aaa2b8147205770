package main

import (
	"context"

	"github.com/spf13/cobra"
)

var activateCmd = &cobra.Command{
	Use:   "activate <id>",
	Short: "Launch a result as if it was selected in the shell",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
		defer cancel()
		return client.Activate(ctx, args[0], nil)
	},
}

func init() {
	rootCmd.AddCommand(activateCmd)
}
