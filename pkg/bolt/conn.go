// Package bolt defines the database execution capability the OGM consumes
// and the wire-level value model it decodes from.
//
// The persistence engine never talks to a driver directly: it issues
// Cypher text through the Conn interface and interprets the rows that come
// back. Two implementations ship with Bifrost:
//
//   - Neo4jConn: the production adapter over the official Neo4j Go driver,
//     wire-compatible with both Neo4j and Memgraph Bolt endpoints.
//   - MemoryConn: a scripted in-memory conn for unit tests.
//
// Wire values: a row cell is either an already-native scalar, or one of
// the composite wire structs Node, Relationship and Path that adapters
// normalize driver-specific types into. The ogm result decoder turns those
// into typed model entities.
package bolt

import (
	"context"
	"errors"
)

// ErrConnClosed means a statement was issued on a closed connection.
var ErrConnClosed = errors.New("bolt: connection closed")

// Row is one result row, keyed by the column names of the RETURN clause.
type Row map[string]any

// Conn is the execution capability consumed by the OGM: sequential,
// request-response statement execution against one logical session.
// Cancellation and timeouts belong to the caller's context; a cancelled
// execution surfaces as an error from the call, never as a partial result.
type Conn interface {
	// Execute runs a statement and discards any results. It fails on any
	// backend error.
	Execute(ctx context.Context, query string, params map[string]any) error

	// ExecuteAndFetch runs a statement and returns its rows, fully
	// consumed. An iteration failure mid-result surfaces as an error with
	// no rows.
	ExecuteAndFetch(ctx context.Context, query string, params map[string]any) ([]Row, error)

	// Close releases the connection's resources.
	Close(ctx context.Context) error
}

// Node is a node as returned by the database: its internal id, label set
// and properties, before any schema resolution.
type Node struct {
	ID     int64
	Labels []string
	Props  map[string]any
}

// Relationship is a relationship as returned by the database, with the
// internal ids of its two endpoints.
type Relationship struct {
	ID      int64
	StartID int64
	EndID   int64
	Type    string
	Props   map[string]any
}

// Path is a graph path as returned by the database. The driver guarantees
// the node/relationship alternation; the decoder asserts it anyway.
type Path struct {
	Nodes         []Node
	Relationships []Relationship
}
