// The process-wide schema registry and label-set resolution.
//
// Resolution answers the question the result decoder asks for every row:
// "the database returned a node with labels {A, B} - which registered
// schema is that?". Among registered schemas whose primary label appears
// in the observed set, the one that is a subtype of the most other
// candidates wins, which picks the most-derived schema without any runtime
// type identity.
package schema

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// UnknownLabelSetError reports an observed label set with no registered
// schema behind it.
type UnknownLabelSetError struct {
	Labels []string
}

func (e *UnknownLabelSetError) Error() string {
	return fmt.Sprintf("schema: no registered node schema for label set {%s}", strings.Join(e.Labels, ", "))
}

// UnknownRelationshipTypeError reports a relationship type tag with no
// registered schema behind it.
type UnknownRelationshipTypeError struct {
	Type string
}

func (e *UnknownRelationshipTypeError) Error() string {
	return fmt.Sprintf("schema: no registered relationship schema for type %q", e.Type)
}

// Registry maps primary labels and relationship type tags to their
// Descriptors. Registration is expected at startup; resolution happens on
// every decoded row, so resolved label sets are memoized.
//
// Thread Safety:
//
//	Register and the Resolve methods are safe for concurrent use.
//	Re-registering a label after its label set has been resolved refreshes
//	the memoization (the cache is scoped per registry generation), but
//	dynamic registration after first resolution is not a supported pattern.
type Registry struct {
	mu         sync.RWMutex
	nodes      map[string]*Descriptor
	rels       map[string]*Descriptor
	generation uint64
	resolved   map[string]*Descriptor // sorted label-set key -> winner, current generation only
}

// NewRegistry returns an empty registry. Most callers use the package
// default via Register/ResolveNode/ResolveRelationship instead.
func NewRegistry() *Registry {
	return &Registry{
		nodes:    map[string]*Descriptor{},
		rels:     map[string]*Descriptor{},
		resolved: map[string]*Descriptor{},
	}
}

// Register adds a Descriptor to the registry, keyed by its primary label
// or type tag. Registering the same key twice overwrites: last writer
// wins.
func (r *Registry) Register(d *Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d.IsRelationship() {
		r.rels[d.Type()] = d
	} else {
		r.nodes[d.Label()] = d
	}
	r.generation++
	r.resolved = map[string]*Descriptor{}
}

// ResolveNode finds the single most specific schema for an observed label
// set.
//
// Candidates are the registered schemas whose primary label appears in the
// observed set. Each candidate scores one point for every candidate it is
// a subtype of (including itself); the highest score wins, ties broken by
// sorted label order. Returns *UnknownLabelSetError when no candidate
// exists.
func (r *Registry) ResolveNode(labels []string) (*Descriptor, error) {
	key := labelSetKey(labels)

	r.mu.RLock()
	if d, ok := r.resolved[key]; ok {
		r.mu.RUnlock()
		return d, nil
	}
	generation := r.generation
	winner := r.resolveNodeLocked(labels)
	r.mu.RUnlock()

	if winner == nil {
		return nil, &UnknownLabelSetError{Labels: sortedCopy(labels)}
	}

	r.mu.Lock()
	// A Register between the read and write locks invalidates the result;
	// skip caching and let the next resolution recompute.
	if r.generation == generation {
		r.resolved[key] = winner
	}
	r.mu.Unlock()
	return winner, nil
}

func (r *Registry) resolveNodeLocked(labels []string) *Descriptor {
	candidates := make([]*Descriptor, 0, len(labels))
	for _, label := range sortedCopy(labels) {
		if d, ok := r.nodes[label]; ok {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	var winner *Descriptor
	best := -1
	for _, candidate := range candidates {
		score := 0
		for _, other := range candidates {
			if candidate.SubtypeOf(other) {
				score++
			}
		}
		if score > best {
			best = score
			winner = candidate
		}
	}
	return winner
}

// ResolveRelationship finds the schema registered for a relationship type
// tag. Returns *UnknownRelationshipTypeError when absent.
func (r *Registry) ResolveRelationship(relType string) (*Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.rels[relType]
	if !ok {
		return nil, &UnknownRelationshipTypeError{Type: relType}
	}
	return d, nil
}

// Reset drops every registration and memoized resolution. Intended for
// test isolation.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nodes = map[string]*Descriptor{}
	r.rels = map[string]*Descriptor{}
	r.resolved = map[string]*Descriptor{}
	r.generation++
}

func labelSetKey(labels []string) string {
	return strings.Join(sortedCopy(labels), ":")
}

func sortedCopy(labels []string) []string {
	out := make([]string, len(labels))
	copy(out, labels)
	sort.Strings(out)
	return out
}

// defaultRegistry is the process-wide registry, initialized lazily on
// first use and shared by every schema definition that does not carry its
// own registry.
var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Register adds a Descriptor to the process-wide registry.
func Register(d *Descriptor) {
	Default().Register(d)
}

// ResolveNode resolves a label set against the process-wide registry.
func ResolveNode(labels []string) (*Descriptor, error) {
	return Default().ResolveNode(labels)
}

// ResolveRelationship resolves a type tag against the process-wide
// registry.
func ResolveRelationship(relType string) (*Descriptor, error) {
	return Default().ResolveRelationship(relType)
}

// Reset clears the process-wide registry. Intended for test isolation.
func Reset() {
	Default().Reset()
}
