// Package recipe builds the named compositions declared in compose.yaml.
// Every recipe is an independent request composed on its own goroutine.
package recipe

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kingrea/promptlayers/internal/compose"
	"github.com/kingrea/promptlayers/internal/config"
	"github.com/kingrea/promptlayers/internal/digest"
	"github.com/kingrea/promptlayers/internal/fsutil"
	"github.com/kingrea/promptlayers/internal/workspace"
)

// DefaultConcurrency bounds how many recipes are composed at once.
const DefaultConcurrency = 4

// Options tunes a build.
type Options struct {
	// Concurrency limits parallel recipes; <= 0 means DefaultConcurrency.
	Concurrency int
	// FailFast stops scheduling further recipes after the first failure.
	FailFast bool
}

// Outcome reports one recipe.
type Outcome struct {
	Recipe   config.Recipe
	Out      string
	Warnings []string
	Digest   string
	Err      error
	Skipped  bool
	// Unchanged is set when Out already held this exact text and was not
	// rewritten.
	Unchanged bool
}

// Select returns the recipes named, in the order given, or every configured
// recipe when names is empty. Unknown names make the request invalid.
func Select(cfg *config.Config, names []string) ([]config.Recipe, error) {
	if len(names) == 0 {
		return cfg.Recipes(), nil
	}
	var selected []config.Recipe
	var problems []string
	for _, name := range names {
		r, ok := cfg.Recipe(name)
		if !ok {
			problems = append(problems, fmt.Sprintf("unknown recipe %q", name))
			continue
		}
		selected = append(selected, r)
	}
	if len(problems) > 0 {
		return nil, &compose.InvalidRequestError{Problems: problems}
	}
	return selected, nil
}

// Build composes every recipe and writes its output. Outcomes come back in
// recipe order; the returned error is the first failure in that order.
func Build(ctx context.Context, ws *workspace.Workspace, recipes []config.Recipe, opts Options) ([]Outcome, error) {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	outcomes := make([]Outcome, len(recipes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, r := range recipes {
		outcomes[i] = Outcome{Recipe: r, Out: ws.Config.RecipeOutPath(r)}
		g.Go(func() error {
			if gctx.Err() != nil {
				outcomes[i].Skipped = true
				outcomes[i].Err = gctx.Err()
				return nil
			}
			outcomes[i] = buildOne(ws, r, outcomes[i])
			if outcomes[i].Err != nil && opts.FailFast {
				return outcomes[i].Err
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		if o.Err != nil && !o.Skipped {
			return outcomes, o.Err
		}
	}
	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

func buildOne(ws *workspace.Workspace, r config.Recipe, out Outcome) Outcome {
	req := compose.Request{BaseID: r.Base, PreferenceIDs: r.Preferences}
	res, warnings, err := ws.Run(req, r.Separator)
	if err != nil {
		out.Err = fmt.Errorf("recipe %s: %w", r.Name, err)
		return out
	}
	out.Warnings = warnings
	id, err := digest.Of(res.Text)
	if err != nil {
		out.Err = fmt.Errorf("recipe %s: %w", r.Name, err)
		return out
	}
	out.Digest = id
	if existing, err := os.ReadFile(out.Out); err == nil {
		if same, _ := digest.Verify(string(existing), id); same {
			out.Unchanged = true
			ws.Logger.Debug("recipe unchanged", zap.String("recipe", r.Name), zap.String("out", out.Out))
			return out
		}
	}
	if err := fsutil.WriteFileAtomic(out.Out, []byte(res.Text), 0o644); err != nil {
		out.Err = fmt.Errorf("recipe %s: write %s: %w", r.Name, out.Out, err)
		return out
	}
	ws.Logger.Info("recipe built",
		zap.String("recipe", r.Name),
		zap.String("out", out.Out),
		zap.Strings("sources", res.SourceOrder),
		zap.String("digest", id),
	)
	return out
}
