package bolt

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/orneryd/bifrost/pkg/cypher"
)

// Options configures a Neo4jConn.
type Options struct {
	// URI is the Bolt endpoint, e.g. "bolt://localhost:7687". Required.
	URI string

	// Database selects a named database on multi-database servers.
	// Optional; the server default is used when empty.
	Database string

	// Username and Password authenticate the connection. Empty Username
	// means no auth.
	Username string
	Password string

	// MaxConnections caps the driver's connection pool. Zero keeps the
	// driver default.
	MaxConnections int
}

// ErrMissingURI means Options.URI was not provided.
var ErrMissingURI = fmt.Errorf("bolt: connection URI is required")

// Neo4jConn adapts the official Neo4j Go driver to the Conn interface.
// Memgraph speaks the same Bolt protocol, so the one adapter serves both
// backends.
type Neo4jConn struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jConn opens a Bolt connection and verifies connectivity before
// returning.
func NewNeo4jConn(ctx context.Context, opts Options) (*Neo4jConn, error) {
	if opts.URI == "" {
		return nil, ErrMissingURI
	}

	auth := neo4j.NoAuth()
	if opts.Username != "" {
		auth = neo4j.BasicAuth(opts.Username, opts.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(opts.URI, auth, func(c *neo4j.Config) {
		if opts.MaxConnections > 0 {
			c.MaxConnectionPoolSize = opts.MaxConnections
		}
	})
	if err != nil {
		return nil, fmt.Errorf("bolt: create driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("bolt: verify connectivity: %w", err)
	}

	return &Neo4jConn{driver: driver, database: opts.Database}, nil
}

func (c *Neo4jConn) Execute(ctx context.Context, query string, params map[string]any) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return fmt.Errorf("bolt: execute: %w", err)
	}
	if _, err := result.Consume(ctx); err != nil {
		return fmt.Errorf("bolt: execute: %w", err)
	}
	return nil
}

func (c *Neo4jConn) ExecuteAndFetch(ctx context.Context, query string, params map[string]any) ([]Row, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("bolt: execute: %w", err)
	}

	var rows []Row
	for result.Next(ctx) {
		record := result.Record()
		row := make(Row, len(record.Keys))
		for _, key := range record.Keys {
			value, _ := record.Get(key)
			row[key] = convertDriverValue(value)
		}
		rows = append(rows, row)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("bolt: fetch: %w", err)
	}
	return rows, nil
}

// VerifyConnectivity checks that the backing server is reachable.
func (c *Neo4jConn) VerifyConnectivity(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

func (c *Neo4jConn) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// convertDriverValue normalizes driver dbtype values into the wire model:
// graph entities become the package's Node/Relationship/Path structs, the
// driver's temporal kinds become the cypher codec's temporal types, and
// everything else passes through untouched.
func convertDriverValue(value any) any {
	switch v := value.(type) {
	case dbtype.Node:
		return Node{ID: v.Id, Labels: v.Labels, Props: convertProps(v.Props)}
	case dbtype.Relationship:
		return Relationship{
			ID:      v.Id,
			StartID: v.StartId,
			EndID:   v.EndId,
			Type:    v.Type,
			Props:   convertProps(v.Props),
		}
	case dbtype.Path:
		path := Path{
			Nodes:         make([]Node, len(v.Nodes)),
			Relationships: make([]Relationship, len(v.Relationships)),
		}
		for i, n := range v.Nodes {
			path.Nodes[i] = convertDriverValue(n).(Node)
		}
		for i, r := range v.Relationships {
			path.Relationships[i] = convertDriverValue(r).(Relationship)
		}
		return path
	case dbtype.Date:
		return cypher.DateOf(v.Time())
	case dbtype.LocalTime:
		return cypher.LocalTimeOf(v.Time())
	case dbtype.LocalDateTime:
		return cypher.LocalDateTimeOf(v.Time())
	case dbtype.Time:
		return time.Time(v)
	case dbtype.Duration:
		return cypher.Duration{
			Months:  v.Months,
			Days:    v.Days,
			Seconds: v.Seconds,
			Nanos:   int64(v.Nanos),
		}
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = convertDriverValue(item)
		}
		return out
	case map[string]any:
		return convertProps(v)
	default:
		return value
	}
}

func convertProps(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = convertDriverValue(v)
	}
	return out
}
