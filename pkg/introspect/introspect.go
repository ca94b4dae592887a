// Package introspect is the entry point to the accessibility and selector
// machinery of a parsed page: role and name computation, accessibility
// snapshots and the selector language.
package introspect

import (
	"context"
	"fmt"

	"github.com/xkilldash9x/scalpel-introspect/internal/aria"
	"github.com/xkilldash9x/scalpel-introspect/internal/browser/dom"
	"github.com/xkilldash9x/scalpel-introspect/internal/config"
	"github.com/xkilldash9x/scalpel-introspect/internal/selector"
	"github.com/xkilldash9x/scalpel-introspect/internal/snapshot"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// NameOptions adjusts accessible name and description computation.
type NameOptions struct {
	// IncludeHidden lets hidden content contribute to the result.
	IncludeHidden bool
}

// Introspector answers accessibility and selector questions about one
// document. It is not safe for concurrent use.
type Introspector struct {
	doc       *dom.Document
	aria      *aria.Computer
	evaluator *selector.Evaluator
	builder   *snapshot.Builder
	logger    *zap.Logger

	cfg      config.IntrospectionConfig
	registry *selector.Registry
	refs     snapshot.RefRegistry
}

// Option configures an Introspector.
type Option func(*Introspector)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(i *Introspector) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithRegistry shares an engine registry between introspectors.
func WithRegistry(r *selector.Registry) Option {
	return func(i *Introspector) { i.registry = r }
}

// WithRefRegistry replaces the in-memory ref_N registry.
func WithRefRegistry(r snapshot.RefRegistry) Option {
	return func(i *Introspector) { i.refs = r }
}

// WithConfig applies the introspection section of the configuration.
func WithConfig(cfg config.IntrospectionConfig) Option {
	return func(i *Introspector) { i.cfg = cfg }
}

// New creates an Introspector over doc.
func New(doc *dom.Document, opts ...Option) *Introspector {
	i := &Introspector{
		doc:    doc,
		logger: zap.NewNop(),
		cfg:    config.NewDefaultConfig().Introspection(),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.registry == nil {
		i.registry = selector.NewDefaultRegistry(selector.WithNearThreshold(i.cfg.NearThreshold))
	}
	i.aria = aria.NewComputer(doc)
	i.evaluator = selector.NewEvaluator(i.registry, i.aria, i.logger)
	i.builder = snapshot.NewBuilder(i.aria, i.refs, i.logger)
	i.logger = i.logger.Named("introspect")
	return i
}

// Document returns the document being inspected.
func (i *Introspector) Document() *dom.Document { return i.doc }

// cached runs fn inside the document's cache session when caching is
// enabled.
func (i *Introspector) cached(fn func()) {
	if !i.cfg.CacheEnabled {
		fn()
		return
	}
	_ = i.doc.Session().Run(func() error {
		fn()
		return nil
	})
}

// ComputeAccessibleName returns the accessible name of el.
func (i *Introspector) ComputeAccessibleName(el *html.Node, opts NameOptions) string {
	var name string
	i.cached(func() { name = i.aria.AccessibleName(el, opts.IncludeHidden) })
	return name
}

// ComputeAccessibleDescription returns the accessible description of el.
func (i *Introspector) ComputeAccessibleDescription(el *html.Node, opts NameOptions) string {
	var desc string
	i.cached(func() { desc = i.aria.AccessibleDescription(el, opts.IncludeHidden) })
	return desc
}

// GetAriaRole returns the role of el, or "" when it has none.
func (i *Introspector) GetAriaRole(el *html.Node) string {
	if !dom.IsElement(el) {
		return ""
	}
	var role string
	i.cached(func() { role = i.aria.Role(el) })
	return role
}

// GenerateA11yTree returns the flat accessibility tree below root.
func (i *Introspector) GenerateA11yTree(ctx context.Context, root *html.Node, opts snapshot.LegacyOptions) ([]snapshot.LegacyNode, error) {
	return i.builder.GenerateA11yTree(ctx, root, opts)
}

// GenerateAriaTree returns the nested accessibility tree below root.
func (i *Introspector) GenerateAriaTree(ctx context.Context, root *html.Node, opts snapshot.AriaOptions) (*snapshot.AriaSnapshot, error) {
	return i.builder.GenerateAriaTree(ctx, root, opts)
}

// QuerySelector returns the first element under root matching sel.
func (i *Introspector) QuerySelector(root *html.Node, sel string, opts selector.QueryOptions) *html.Node {
	return i.evaluator.QuerySelector(root, sel, opts)
}

// QuerySelectorAll returns every element under root matching sel.
func (i *Introspector) QuerySelectorAll(root *html.Node, sel string, opts selector.QueryOptions) []*html.Node {
	return i.evaluator.QuerySelectorAll(root, sel, opts)
}

// RegisterEngine adds a custom selector engine.
func (i *Introspector) RegisterEngine(e selector.Engine) error {
	if err := i.registry.Register(e); err != nil {
		return fmt.Errorf("introspect: %w", err)
	}
	i.logger.Debug("Registered selector engine.", zap.String("engine", e.Name()))
	return nil
}

// ElementByRef resolves a reference id issued by the latest tree
// generation.
func (i *Introspector) ElementByRef(ref string) (*html.Node, bool) {
	return i.builder.Refs().Lookup(ref)
}
