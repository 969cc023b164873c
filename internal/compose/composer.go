// Package compose concatenates a base instruction document with ordered
// preference documents. Later preferences override earlier guidance only by
// appearing later in the text; there is no structured merge.
package compose

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kingrea/promptlayers/internal/document"
)

// DefaultSeparator is two newlines plus a horizontal rule marker.
const DefaultSeparator = "\n\n---\n\n"

// Request names a base document and the preferences layered on it, in order.
type Request struct {
	BaseID        string
	PreferenceIDs []string
}

// Result is the combined document. SourceOrder lists the base id first and
// then every applied preference id in request order.
type Result struct {
	Text        string
	SourceOrder []string
	Warnings    []string
	Sources     []document.Document
}

// Composer builds Results from Requests. It holds no per-request state and
// may be shared between goroutines.
type Composer struct {
	locator   document.Locator
	separator string
	logger    *zap.Logger
}

// Option customizes a Composer during construction.
type Option func(*Composer)

// WithSeparator overrides the text inserted between documents.
func WithSeparator(sep string) Option {
	return func(c *Composer) {
		c.separator = sep
	}
}

// WithLogger attaches a diagnostic logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Composer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a composer reading documents through locator.
func New(locator document.Locator, opts ...Option) *Composer {
	c := &Composer{
		locator:   locator,
		separator: DefaultSeparator,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose resolves and joins the requested documents. A missing base is
// fatal and yields no Result; missing preferences become warnings.
func (c *Composer) Compose(req Request) (Result, error) {
	res, err := c.Resolve(req)
	if err != nil {
		return Result{}, err
	}
	var b strings.Builder
	for i, doc := range res.Sources {
		if i > 0 {
			b.WriteString(c.separator)
		}
		b.WriteString(doc.Text)
	}
	res.Text = b.String()
	return res, nil
}

// Resolve reads every document Compose would use, in order, without joining
// them. It fails and warns exactly as Compose does; Text is left empty.
func (c *Composer) Resolve(req Request) (Result, error) {
	if err := RequestError(ValidateRequest(req)); err != nil {
		return Result{}, err
	}
	baseID := strings.TrimSpace(req.BaseID)

	base, err := c.locator.Resolve(baseID)
	if err != nil {
		var nf *document.NotFoundError
		if errors.As(err, &nf) {
			return Result{}, &BaseNotFoundError{ID: baseID, Path: nf.Path, Err: err}
		}
		return Result{}, fmt.Errorf("compose: base %s: %w", baseID, err)
	}
	c.logger.Debug("resolved base", zap.String("id", baseID), zap.String("path", base.Path))

	var warnings warningSet
	sources := []document.Document{base.WithRole(document.RoleBase)}
	order := []string{baseID}

	previous := ""
	for i, raw := range req.PreferenceIDs {
		id := strings.TrimSpace(raw)
		if i > 0 && id == previous {
			warnings.add(fmt.Sprintf("preference %s repeated consecutively: applied once", id))
			continue
		}
		previous = id

		doc, err := c.locator.Resolve(id)
		if err != nil {
			var nf *document.NotFoundError
			if errors.As(err, &nf) {
				skipped := &PreferenceNotFoundError{ID: id, Path: nf.Path}
				c.logger.Debug("preference skipped", zap.String("id", id), zap.String("path", nf.Path))
				warnings.add(skipped.Error())
				continue
			}
			return Result{}, fmt.Errorf("compose: preference %s: %w", id, err)
		}
		c.logger.Debug("resolved preference", zap.String("id", id), zap.String("path", doc.Path))
		sources = append(sources, doc.WithRole(document.RolePreference))
		order = append(order, id)
	}

	return Result{
		SourceOrder: order,
		Warnings:    warnings.list(),
		Sources:     sources,
	}, nil
}

// warningSet keeps the first occurrence of each message in order.
type warningSet struct {
	seen  map[string]struct{}
	items []string
}

func (w *warningSet) add(msg string) {
	if w.seen == nil {
		w.seen = map[string]struct{}{}
	}
	if _, ok := w.seen[msg]; ok {
		return
	}
	w.seen[msg] = struct{}{}
	w.items = append(w.items, msg)
}

func (w *warningSet) list() []string {
	return w.items
}
