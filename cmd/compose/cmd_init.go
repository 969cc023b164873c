package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kingrea/promptlayers/internal/config"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default compose.yaml at the document root",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(a.root)
			if err != nil {
				return err
			}
			path, created, err := config.Init(root)
			if err != nil {
				return err
			}
			p := a.printer()
			if !created {
				p.Note(path + " already exists")
				return nil
			}
			p.Field("created", path)
			return nil
		},
	}
}
