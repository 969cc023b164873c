package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/kingrea/promptlayers/internal/picker"
)

func newPickCmd(a *app) *cobra.Command {
	var output outputFlags
	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Choose a base and preferences interactively, then compose",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output.resolve(cmd)
			ws, err := a.workspace()
			if err != nil {
				return err
			}
			// The picker draws on stderr so stdout carries only the composition.
			req, err := picker.Run(ws.Catalog.Entries(), a.stdin, a.stderr)
			if errors.Is(err, picker.ErrCancelled) {
				a.printer().Note("cancelled")
				return nil
			}
			if err != nil {
				return err
			}
			return a.composeOnce(ws, req, output)
		},
	}
	output.bind(cmd.Flags())
	return cmd
}
