package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/kingrea/promptlayers/internal/compose"
	"github.com/kingrea/promptlayers/internal/digest"
	"github.com/kingrea/promptlayers/internal/fsutil"
	"github.com/kingrea/promptlayers/internal/render"
	"github.com/kingrea/promptlayers/internal/watch"
	"github.com/kingrea/promptlayers/internal/workspace"
)

// outputFlags control where a composition goes and how it is joined.
type outputFlags struct {
	separator    string
	separatorSet bool
	out          string
	digest       bool
}

func (o *outputFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.separator, "separator", "", `text placed between documents; \n and \t are interpreted (default from config)`)
	fs.StringVar(&o.out, "out", "", "write the composition to this file instead of stdout")
	fs.BoolVar(&o.digest, "digest", false, "print the content identifier of the composed text to stderr")
}

// resolve captures whether --separator was given; an empty separator is valid.
func (o *outputFlags) resolve(cmd *cobra.Command) {
	o.separatorSet = cmd.Flags().Changed("separator")
}

func (o *outputFlags) separatorOverride() *string {
	if !o.separatorSet {
		return nil
	}
	sep := unescapeSeparator(o.separator)
	return &sep
}

func newRootCmd(a *app) *cobra.Command {
	var (
		base        string
		preferences []string
		output      outputFlags
		watchMode   bool
	)

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Layer preference documents onto a base instruction document",
		Long: `compose concatenates a base instruction document with zero or more preference
documents, in the order given, separated by a horizontal rule.

Missing preferences are skipped with a warning on stderr. A missing base exits 1,
an unreadable document exits 2 and an invalid request exits 3.`,
		Example: `  compose --base INSTR --preference PREF1 --preference PREF2
  compose --base expect/INSTRUCTIONS --preference expect/preferences/team --out build/expect.md`,
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			output.resolve(cmd)
			if watchMode && output.out == "" {
				return usagef("--watch requires --out")
			}
			req := compose.Request{BaseID: base, PreferenceIDs: preferences}
			if err := compose.RequestError(compose.ValidateRequest(req)); err != nil {
				return err
			}
			ws, err := a.workspace()
			if err != nil {
				return err
			}
			if watchMode {
				return a.watch(cmd, ws, req, output)
			}
			return a.composeOnce(ws, req, output)
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.root, "root", "", "document root (default: current directory)")
	pf.StringVar(&a.configPath, "config", "", "config file (default: <root>/compose.yaml)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging on stderr")

	f := cmd.Flags()
	f.StringVar(&base, "base", "", "base document id")
	f.StringArrayVar(&preferences, "preference", nil, "preference document id (repeatable, applied in order)")
	output.bind(f)
	f.BoolVar(&watchMode, "watch", false, "recompose whenever a source document changes (requires --out)")

	cmd.AddCommand(
		newListCmd(a),
		newValidateCmd(a),
		newBuildCmd(a),
		newPickCmd(a),
		newServeMCPCmd(a),
		newInitCmd(a),
		newVersionCmd(a),
	)
	return cmd
}

// composeOnce runs one composition and emits text, warnings and digest.
func (a *app) composeOnce(ws *workspace.Workspace, req compose.Request, output outputFlags) error {
	res, warnings, err := ws.Run(req, output.separatorOverride())
	if err != nil {
		return err
	}
	if err := a.emit(res, output); err != nil {
		return err
	}
	p := a.printer()
	p.Warnings(warnings)
	if output.digest {
		sum, err := digest.Of(res.Text)
		if err != nil {
			return err
		}
		p.Field("digest", sum)
	}
	ws.Logger.Info("composed",
		zap.String("base", req.BaseID),
		zap.Strings("sources", res.SourceOrder),
		zap.Int("warnings", len(warnings)),
		zap.String("out", output.out),
	)
	return nil
}

func (a *app) emit(res compose.Result, output outputFlags) error {
	if output.out == "" {
		_, err := io.WriteString(a.stdout, res.Text)
		return err
	}
	if err := fsutil.WriteFileAtomic(output.out, []byte(res.Text), 0o644); err != nil {
		return fmt.Errorf("compose: write %s: %w", output.out, err)
	}
	return nil
}

// watch recomposes into --out until interrupted. Only the first composition
// is fatal; later failures are reported and the previous output is kept.
func (a *app) watch(cmd *cobra.Command, ws *workspace.Workspace, req compose.Request, output outputFlags) error {
	p := a.printer()
	var emitErr error
	onBuild := func(b watch.Build) {
		if b.Err != nil {
			p.Error(b.Err)
			return
		}
		if err := a.emit(b.Result, output); err != nil {
			p.Error(err)
			emitErr = err
			return
		}
		emitErr = nil
		p.Warnings(b.Warnings)
		if output.digest {
			if sum, err := digest.Of(b.Result.Text); err == nil {
				p.Field("digest", sum)
			}
		}
		p.Note("wrote " + output.out)
	}
	w := watch.New(ws, req, onBuild, watch.WithSeparator(output.separatorOverride()))
	if err := w.Run(cmd.Context()); err != nil {
		return err
	}
	return emitErr
}

// printWarnings is shared by subcommands that prefix warnings with a name.
func printWarnings(p *render.Printer, name string, warnings []string) {
	if name == "" {
		p.Warnings(warnings)
		return
	}
	prefixed := make([]string, len(warnings))
	for i, w := range warnings {
		prefixed[i] = name + ": " + w
	}
	p.Warnings(prefixed)
}
