package main

import (
	"github.com/spf13/cobra"

	"github.com/kingrea/promptlayers/internal/recipe"
)

func newBuildCmd(a *app) *cobra.Command {
	var opts recipe.Options
	cmd := &cobra.Command{
		Use:   "build [recipe...]",
		Short: "Build the recipes declared in compose.yaml (all when none are named)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspace()
			if err != nil {
				return err
			}
			recipes, err := recipe.Select(ws.Config, args)
			if err != nil {
				return err
			}
			p := a.printer()
			if len(recipes) == 0 {
				p.Note("no recipes configured")
				return nil
			}

			outcomes, err := recipe.Build(cmd.Context(), ws, recipes, opts)
			for _, o := range outcomes {
				switch {
				case o.Skipped:
					p.Note(o.Recipe.Name + ": skipped")
				case o.Err != nil:
					// the returned error is printed by run
					if o.Err != err {
						p.Error(o.Err)
					}
				case o.Unchanged:
					printWarnings(p, o.Recipe.Name, o.Warnings)
					p.Field(o.Recipe.Name, o.Out+" (unchanged)")
				default:
					printWarnings(p, o.Recipe.Name, o.Warnings)
					p.Field(o.Recipe.Name, o.Out)
				}
			}
			return err
		},
	}
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", recipe.DefaultConcurrency, "recipes composed at once")
	cmd.Flags().BoolVar(&opts.FailFast, "fail-fast", false, "stop starting recipes after the first failure")
	return cmd
}
