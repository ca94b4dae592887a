// internal/snapshot/refs.go
package snapshot

import (
	"fmt"
	"sync"

	"golang.org/x/net/html"
)

// RefRegistry hands out reference ids for elements and resolves them back.
type RefRegistry interface {
	// Assign returns the id of el, issuing a new one on first use.
	Assign(el *html.Node) string
	// Lookup resolves an id issued since the last Clear.
	Lookup(ref string) (*html.Node, bool)
	// Clear forgets every issued id.
	Clear()
}

// MemoryRegistry is an in-process RefRegistry issuing ids of the form ref_N.
type MemoryRegistry struct {
	mu    sync.Mutex
	next  int
	byRef map[string]*html.Node
	byEl  map[*html.Node]string
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		byRef: make(map[string]*html.Node),
		byEl:  make(map[*html.Node]string),
	}
}

func (r *MemoryRegistry) Assign(el *html.Node) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ref, ok := r.byEl[el]; ok {
		return ref
	}
	r.next++
	ref := fmt.Sprintf("ref_%d", r.next)
	r.byRef[ref] = el
	r.byEl[el] = ref
	return ref
}

func (r *MemoryRegistry) Lookup(ref string) (*html.Node, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	el, ok := r.byRef[ref]
	return el, ok
}

// Clear forgets every id. Numbering starts over.
func (r *MemoryRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next = 0
	clear(r.byRef)
	clear(r.byEl)
}
