package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/promptlayers/internal/compose"
)

func newValidateCmd(a *app) *cobra.Command {
	var (
		base        string
		preferences []string
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a composition request without writing output",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := compose.Request{BaseID: base, PreferenceIDs: preferences}
			if err := compose.RequestError(compose.ValidateRequest(req)); err != nil {
				return err
			}
			ws, err := a.workspace()
			if err != nil {
				return err
			}
			warnings, err := ws.Check(req)
			if err != nil {
				return err
			}
			p := a.printer()
			p.Warnings(warnings)
			p.Field("ok", fmt.Sprintf("%s with %d preference(s)", base, len(preferences)))
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "base document id")
	cmd.Flags().StringArrayVar(&preferences, "preference", nil, "preference document id (repeatable)")
	return cmd
}
