package ogm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/orneryd/bifrost/pkg/model"
)

// Common errors
var (
	// ErrNotFound means a load matched no stored entity. It is the only
	// error kind GetOrCreate recovers from.
	ErrNotFound = errors.New("ogm: no matching entity found")

	// ErrNoDiskStorage means a schema declares on-disk fields but the
	// client was built without a disk storage store.
	ErrNoDiskStorage = errors.New("ogm: on-disk fields require disk storage; configure the client with WithDiskStorage")

	// ErrExecution means the database execution capability failed while
	// running a statement: connectivity loss, a malformed statement, or
	// a constraint violation reported by the backend itself. The
	// underlying failure is chained and stays reachable with errors.As.
	ErrExecution = errors.New("ogm: statement execution failed")
)

// UniquenessError reports a save that found more than one stored entity
// matching the instance's unique fields (or, for relationships, its
// endpoint pair and properties). It carries every conflicting match; no
// write is performed.
type UniquenessError struct {
	Nodes         []*model.Node
	Relationships []*model.Relationship
}

func (e *UniquenessError) Error() string {
	var descriptions []string
	for _, n := range e.Nodes {
		descriptions = append(descriptions, n.String())
	}
	for _, r := range e.Relationships {
		descriptions = append(descriptions, r.String())
	}
	return fmt.Sprintf("ogm: uniqueness constraint matches multiple entities: %s", strings.Join(descriptions, ", "))
}

// AmbiguousMatchError reports a load whose match predicate identified more
// than one stored entity. Unlike ErrNotFound it does not trigger the
// GetOrCreate fallback: silently picking one of several matches, or
// creating yet another, would both be wrong.
type AmbiguousMatchError struct {
	Count int
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("ogm: load matched %d entities, expected exactly one", e.Count)
}

// execError wraps a failure from the database execution capability so
// that callers can match it with errors.Is(err, ErrExecution).
func execError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrExecution, op, err)
}

// isNotFound reports whether err is the not-found kind that GetOrCreate
// may recover from.
func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
