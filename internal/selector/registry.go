// internal/selector/registry.go
package selector

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/net/html"
)

// Sentinel errors returned by Registry.Register.
var (
	ErrEngineExists  = errors.New("selector engine already registered")
	ErrInvalidEngine = errors.New("selector engine must be non-nil and named")
)

// Engine is a named query dialect.
type Engine interface {
	Name() string
	// Query returns the first match of body under root, or nil.
	Query(env *Env, root *html.Node, body string) *html.Node
	// QueryAll returns every match of body under root in document order.
	QueryAll(env *Env, root *html.Node, body string) []*html.Node
}

// QueryAllFunc implements the matching of an engine built with NewEngine.
type QueryAllFunc func(env *Env, root *html.Node, body string) []*html.Node

type funcEngine struct {
	name     string
	queryAll QueryAllFunc
}

// NewEngine builds an Engine from a QueryAll implementation. Query returns
// the first element QueryAll yields.
func NewEngine(name string, fn QueryAllFunc) Engine {
	return &funcEngine{name: name, queryAll: fn}
}

func (e *funcEngine) Name() string { return e.name }

func (e *funcEngine) Query(env *Env, root *html.Node, body string) *html.Node {
	if found := e.queryAll(env, root, body); len(found) > 0 {
		return found[0]
	}
	return nil
}

func (e *funcEngine) QueryAll(env *Env, root *html.Node, body string) []*html.Node {
	return e.queryAll(env, root, body)
}

// Registry maps engine names to engines. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{engines: make(map[string]Engine)}
}

// RegistryOption adjusts the built-in engines of NewDefaultRegistry.
type RegistryOption func(*builtinConfig)

type builtinConfig struct {
	nearThreshold float64
}

// WithNearThreshold sets the distance near accepts when a selector gives no
// maximum of its own.
func WithNearThreshold(t float64) RegistryOption {
	return func(c *builtinConfig) {
		if t > 0 {
			c.nearThreshold = t
		}
	}
}

// NewDefaultRegistry creates a registry holding the built-in engines.
func NewDefaultRegistry(opts ...RegistryOption) *Registry {
	cfg := builtinConfig{nearThreshold: DefaultNearThreshold}
	for _, opt := range opts {
		opt(&cfg)
	}
	r := NewRegistry()
	for _, e := range builtinEngines(cfg) {
		if err := r.Register(e); err != nil {
			// Built-in names are unique; a collision is a bug in this package.
			panic(err)
		}
	}
	return r
}

// Register adds e. Names are unique.
func (r *Registry) Register(e Engine) error {
	if e == nil || e.Name() == "" {
		return ErrInvalidEngine
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.engines[e.Name()]; exists {
		return fmt.Errorf("register %q: %w", e.Name(), ErrEngineExists)
	}
	r.engines[e.Name()] = e
	return nil
}

// Get returns the engine registered under name.
func (r *Registry) Get(name string) (Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[name]
	return e, ok
}

// Has reports whether an engine is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func builtinEngines(cfg builtinConfig) []Engine {
	engines := []Engine{
		NewEngine("css", queryCSS),
		NewEngine("xpath", queryXPath),
		NewEngine("text", queryText),
		NewEngine("role", queryRole),
		NewEngine("id", attributeEngine("id")),
		NewEngine("data-testid", attributeEngine("data-testid")),
		NewEngine("internal:has", queryHas(true)),
		NewEngine("internal:has-not", queryHas(false)),
		NewEngine("internal:has-text", queryHasText(true)),
		NewEngine("internal:has-not-text", queryHasText(false)),
		NewEngine("internal:and", queryAnd),
		NewEngine("internal:or", queryOr),
		NewEngine("internal:label", queryLabel),
		NewEngine("internal:visible", queryVisible),
	}
	for _, dir := range layoutDirections {
		fn := queryLayout(dir, cfg.nearThreshold)
		engines = append(engines, NewEngine(string(dir), fn), NewEngine("internal:"+string(dir), fn))
	}
	return engines
}
