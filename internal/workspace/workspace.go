// Package workspace bundles everything a composition needs for one document
// root: its config, the known document table, and a locator over it.
package workspace

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kingrea/promptlayers/internal/compose"
	"github.com/kingrea/promptlayers/internal/config"
	"github.com/kingrea/promptlayers/internal/document"
)

// Workspace is an opened document root.
type Workspace struct {
	Config  *config.Config
	Catalog *document.Catalog
	Locator *document.FileLocator
	Logger  *zap.Logger
}

// Open loads config for root and builds the catalog. configPath may be empty.
func Open(root, configPath string, logger *zap.Logger) (*Workspace, error) {
	cfg, err := config.Load(root, configPath)
	if err != nil {
		return nil, err
	}
	return New(cfg, logger)
}

// New builds a workspace from an already loaded config.
func New(cfg *config.Config, logger *zap.Logger) (*Workspace, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	catalog, err := BuildCatalog(cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("workspace opened",
		zap.String("root", cfg.Root),
		zap.String("config", cfg.Path),
		zap.Int("documents", catalog.Len()),
	)
	return &Workspace{
		Config:  cfg,
		Catalog: catalog,
		Locator: document.NewFileLocator(cfg.Root, catalog),
		Logger:  logger,
	}, nil
}

// BuildCatalog registers the explicit documents from cfg and, when enabled,
// the discovered module layout.
func BuildCatalog(cfg *config.Config) (*document.Catalog, error) {
	catalog := document.NewCatalog()
	for _, ref := range cfg.Documents() {
		role, err := document.ParseRole(ref.Role)
		if err != nil {
			return nil, fmt.Errorf("workspace: %s: %w", ref.ID, err)
		}
		if err := catalog.Register(document.Entry{ID: ref.ID, Path: ref.Path, Role: role}); err != nil {
			return nil, fmt.Errorf("workspace: %w", err)
		}
	}
	if cfg.Discover() {
		if err := catalog.Discover(cfg.Root); err != nil {
			return nil, fmt.Errorf("workspace: %w", err)
		}
	}
	return catalog, nil
}

// Composer returns a composer over the workspace. A nil separator uses the
// configured one.
func (w *Workspace) Composer(separator *string) *compose.Composer {
	sep := w.Config.Separator()
	if separator != nil {
		sep = *separator
	}
	return compose.New(w.Locator, compose.WithSeparator(sep), compose.WithLogger(w.Logger))
}

// Run validates, composes, and checks the result, returning every warning in
// the order it was produced: request findings, composition, result findings.
func (w *Workspace) Run(req compose.Request, separator *string) (compose.Result, []string, error) {
	findings := compose.ValidateRequest(req)
	if err := compose.RequestError(findings); err != nil {
		return compose.Result{}, nil, err
	}
	res, err := w.Composer(separator).Compose(req)
	if err != nil {
		return compose.Result{}, nil, err
	}
	warnings := append([]string{}, compose.Warnings(findings)...)
	warnings = append(warnings, res.Warnings...)
	warnings = append(warnings, compose.Warnings(compose.ValidateResult(res, w.Config.MinLength()))...)
	return res, warnings, nil
}

// Check validates req and resolves every id without composing. Its errors and
// warnings match Run's, minus the checks on the composed text.
func (w *Workspace) Check(req compose.Request) ([]string, error) {
	findings := compose.ValidateRequest(req)
	if err := compose.RequestError(findings); err != nil {
		return nil, err
	}
	res, err := w.Composer(nil).Resolve(req)
	if err != nil {
		return nil, err
	}
	return append(compose.Warnings(findings), res.Warnings...), nil
}

// Listing is a catalog entry with its current state on disk.
type Listing struct {
	Entry       document.Entry
	LastUpdated time.Time
	Missing     bool
	Err         error
}

// List resolves every catalog entry so callers can show freshness. Failures
// are recorded per entry rather than returned.
func (w *Workspace) List() []Listing {
	entries := w.Catalog.Entries()
	out := make([]Listing, 0, len(entries))
	for _, entry := range entries {
		l := Listing{Entry: entry}
		doc, err := w.Locator.Resolve(entry.ID)
		var notFound *document.NotFoundError
		switch {
		case errors.As(err, &notFound):
			l.Missing = true
		case err != nil:
			l.Err = err
		default:
			l.LastUpdated = doc.LastUpdated
		}
		out = append(out, l)
	}
	return out
}
