package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/promptlayers/internal/document"
	"github.com/kingrea/promptlayers/internal/render"
)

func newListCmd(a *app) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known documents with their role and last-updated date",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter document.Role
			if role != "" {
				r, err := document.ParseRole(role)
				if err != nil {
					return &usageError{err: err}
				}
				filter = r
			}
			ws, err := a.workspace()
			if err != nil {
				return err
			}

			var rows []render.CatalogRow
			for _, l := range ws.List() {
				if filter != "" && l.Entry.Role != filter {
					continue
				}
				rows = append(rows, render.CatalogRow{
					Entry:       l.Entry,
					LastUpdated: l.LastUpdated,
					Missing:     l.Missing,
					Unreadable:  l.Err != nil,
				})
			}
			if len(rows) == 0 {
				a.printer().Note("no documents found under " + ws.Config.Root)
				return nil
			}
			_, err = fmt.Fprintln(a.stdout, render.CatalogTable(rows))
			return err
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "only show documents with this role (base or preference)")
	return cmd
}
