// Package ogm is the persistence engine of Bifrost: it maps typed node
// and relationship instances onto Cypher statements and resolves which
// stored entity an instance refers to.
//
// The identity-resolution protocol behind Save, Load and GetOrCreate is a
// three-state guard chain, checked in priority order:
//
//  1. The instance has a database identity - update or fetch by internal
//     id. The identity is trusted and never re-verified.
//  2. The schema declares unique fields and at least one is set - match
//     on them. Exactly one stored match adopts that identity; several
//     matches are a conflict, never a silent pick.
//  3. Neither - create unconditionally (save) or match on the full
//     non-nil property set (load).
//
// Relationships follow the same chain with the endpoint pair playing the
// role of the unique fields.
//
// Every operation issues its statements sequentially over a bolt.Conn and
// mutates the instance only after a full, successful response: a failed
// save or load leaves the instance exactly as passed in, except that a
// successful create commits the new identity even if a later disk-store
// write fails (the graph-side state is already durable at that point).
//
// The check-then-create sequence of state 2 is two round trips, not one
// atomic operation: concurrent callers racing to create the same
// logically-unique entity can both succeed unless the backing store
// enforces a uniqueness constraint of its own (see EnsureSchema).
package ogm

import (
	"context"
	"fmt"

	"github.com/orneryd/bifrost/pkg/bolt"
	"github.com/orneryd/bifrost/pkg/diskstorage"
	"github.com/orneryd/bifrost/pkg/model"
	"github.com/orneryd/bifrost/pkg/schema"
)

// Client executes the object-graph mapping protocol over a bolt.Conn.
//
// Example:
//
//	conn, _ := bolt.NewNeo4jConn(ctx, bolt.Options{URI: "bolt://localhost:7687"})
//	client := ogm.NewClient(conn)
//
//	alice, _ := model.NewNode(personSchema, model.Props{"email": "a@x.com"})
//	created, err := client.GetOrCreateNode(ctx, alice)
type Client struct {
	conn     bolt.Conn
	disk     diskstorage.Store
	registry *schema.Registry
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithDiskStorage attaches the side property store used for fields
// declared on-disk.
func WithDiskStorage(store diskstorage.Store) ClientOption {
	return func(c *Client) {
		c.disk = store
	}
}

// WithRegistry resolves wire labels against a specific registry instead
// of the process-wide default.
func WithRegistry(r *schema.Registry) ClientOption {
	return func(c *Client) {
		c.registry = r
	}
}

// NewClient builds a client over the given execution capability.
func NewClient(conn bolt.Conn, opts ...ClientOption) *Client {
	c := &Client{conn: conn, registry: schema.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SaveNode persists a node instance.
//
// With an identity it updates the stored node by internal id. Without one
// but with set unique fields, it adopts the identity of the single stored
// match and updates it, creates when there is no match, and fails with
// *UniquenessError when there are several. Otherwise it creates a new
// node. Nil properties are ignored; on-disk fields go to the side store
// after the graph write succeeds.
func (c *Client) SaveNode(ctx context.Context, node *model.Node) error {
	switch {
	case hasID(node):
		id, _ := node.ID()
		if err := c.updateNodeWithID(ctx, node, id); err != nil {
			return err
		}
	case node.HasUniqueFields():
		matches, err := c.fetchNodesWithUniqueFields(ctx, node)
		if err != nil {
			return err
		}
		switch len(matches) {
		case 0:
			if err := c.createNode(ctx, node); err != nil {
				return err
			}
		case 1:
			id, ok := matches[0].ID()
			if !ok {
				return execError("save node", fmt.Errorf("matched node carries no internal id"))
			}
			if err := c.updateNodeWithID(ctx, node, id); err != nil {
				return err
			}
			node.SetID(id)
		default:
			return &UniquenessError{Nodes: matches}
		}
	default:
		if err := c.createNode(ctx, node); err != nil {
			return err
		}
	}

	return c.saveNodeDiskFields(ctx, node)
}

// LoadNode refreshes a node instance from its authoritative stored copy.
//
// Dispatch mirrors SaveNode: by identity, then by unique fields, then by
// the full non-nil property set. Exactly one stored match is required:
// zero fails with ErrNotFound, several with *AmbiguousMatchError. On
// success every declared field and the identity are overwritten in place;
// on-disk fields are overlaid afterwards, keeping the in-graph value when
// the side store has none.
func (c *Client) LoadNode(ctx context.Context, node *model.Node) error {
	stored, err := c.fetchNode(ctx, node)
	if err != nil {
		return err
	}
	if err := c.loadNodeDiskFields(stored); err != nil {
		return err
	}
	node.CopyFrom(stored)
	return nil
}

// GetOrCreateNode loads the node and, only when nothing matches, saves it
// instead. The returned flag is true when the node was created. Any load
// failure other than not-found (ambiguity included) propagates.
func (c *Client) GetOrCreateNode(ctx context.Context, node *model.Node) (bool, error) {
	err := c.LoadNode(ctx, node)
	if err == nil {
		return false, nil
	}
	if !isNotFound(err) {
		return false, err
	}
	if err := c.SaveNode(ctx, node); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) fetchNode(ctx context.Context, node *model.Node) (*model.Node, error) {
	switch {
	case hasID(node):
		id, _ := node.ID()
		return c.fetchNodeWithID(ctx, node.Schema(), id)
	case node.HasUniqueFields():
		matches, err := c.fetchNodesWithUniqueFields(ctx, node)
		if err != nil {
			return nil, err
		}
		return exactlyOneNode(matches)
	default:
		return c.fetchNodeWithAllProperties(ctx, node)
	}
}

func (c *Client) updateNodeWithID(ctx context.Context, node *model.Node, id model.GraphID) error {
	setClause, err := node.SetClause("node")
	if err != nil {
		return err
	}
	query := fmt.Sprintf("MATCH (node:%s) WHERE id(node) = %d", node.Schema().LabelExpr(), id)
	if setClause != "" {
		query += " " + setClause
	}
	query += " RETURN node;"

	if _, err := c.conn.ExecuteAndFetch(ctx, query, nil); err != nil {
		return execError("update node", err)
	}
	return nil
}

func (c *Client) createNode(ctx context.Context, node *model.Node) error {
	setClause, err := node.SetClause("node")
	if err != nil {
		return err
	}
	query := fmt.Sprintf("CREATE (node:%s)", node.Schema().LabelExpr())
	if setClause != "" {
		query += " " + setClause
	}
	query += " RETURN node;"

	rows, err := c.conn.ExecuteAndFetch(ctx, query, nil)
	if err != nil {
		return execError("create node", err)
	}
	wire, err := firstWireNode(rows)
	if err != nil {
		return execError("create node", err)
	}
	node.SetID(model.GraphID(wire.ID))
	return nil
}

func (c *Client) fetchNodesWithUniqueFields(ctx context.Context, node *model.Node) ([]*model.Node, error) {
	block, err := node.UniqueFieldsBlock("node")
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("MATCH (node:%s) WHERE %s RETURN node;", node.Schema().LabelExpr(), block)

	rows, err := c.conn.ExecuteAndFetch(ctx, query, nil)
	if err != nil {
		return nil, execError("match unique fields", err)
	}
	return c.decodeNodeRows(rows)
}

func (c *Client) fetchNodeWithID(ctx context.Context, d *schema.Descriptor, id model.GraphID) (*model.Node, error) {
	query := fmt.Sprintf("MATCH (node:%s) WHERE id(node) = %d RETURN node;", d.LabelExpr(), id)

	rows, err := c.conn.ExecuteAndFetch(ctx, query, nil)
	if err != nil {
		return nil, execError("load node", err)
	}
	nodes, err := c.decodeNodeRows(rows)
	if err != nil {
		return nil, err
	}
	return exactlyOneNode(nodes)
}

func (c *Client) fetchNodeWithAllProperties(ctx context.Context, node *model.Node) (*model.Node, error) {
	block, err := node.AssignmentBlock("node", model.And)
	if err != nil {
		return nil, err
	}
	if block == "" {
		// nothing to match on
		return nil, ErrNotFound
	}
	query := fmt.Sprintf("MATCH (node:%s) WHERE %s RETURN node;", node.Schema().LabelExpr(), block)

	rows, err := c.conn.ExecuteAndFetch(ctx, query, nil)
	if err != nil {
		return nil, execError("load node", err)
	}
	nodes, err := c.decodeNodeRows(rows)
	if err != nil {
		return nil, err
	}
	return exactlyOneNode(nodes)
}

// saveNodeDiskFields persists on-disk fields after the graph write. The
// node's identity is already durable here, so a failing store write does
// not roll it back.
func (c *Client) saveNodeDiskFields(ctx context.Context, node *model.Node) error {
	_ = ctx
	onDisk := node.Schema().OnDiskFields()
	if len(onDisk) == 0 {
		return nil
	}
	id, ok := node.ID()
	if !ok {
		return execError("save on-disk fields", fmt.Errorf("node carries no internal id"))
	}
	for _, field := range onDisk {
		value := node.Get(field)
		if value == nil {
			continue
		}
		if c.disk == nil {
			return ErrNoDiskStorage
		}
		if err := c.disk.SaveNodeProperty(int64(id), field, value); err != nil {
			return err
		}
	}
	return nil
}

// loadNodeDiskFields overlays on-disk fields onto the freshly decoded
// stored copy, before the caller's instance is touched. A missing stored
// value keeps the in-graph value; any other store failure propagates.
func (c *Client) loadNodeDiskFields(stored *model.Node) error {
	onDisk := stored.Schema().OnDiskFields()
	if len(onDisk) == 0 {
		return nil
	}
	id, ok := stored.ID()
	if !ok {
		return execError("load on-disk fields", fmt.Errorf("node carries no internal id"))
	}
	for _, field := range onDisk {
		if c.disk == nil {
			return ErrNoDiskStorage
		}
		value, err := c.disk.LoadNodeProperty(int64(id), field, stored.Get(field))
		if err != nil {
			return err
		}
		if err := stored.Set(field, value); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) decodeNodeRows(rows []bolt.Row) ([]*model.Node, error) {
	nodes := make([]*model.Node, 0, len(rows))
	for _, row := range rows {
		wire, ok := row["node"].(bolt.Node)
		if !ok {
			return nil, execError("decode", fmt.Errorf("row has no node column"))
		}
		node, err := c.decodeNode(wire)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func exactlyOneNode(nodes []*model.Node) (*model.Node, error) {
	switch len(nodes) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return nodes[0], nil
	default:
		return nil, &AmbiguousMatchError{Count: len(nodes)}
	}
}

func firstWireNode(rows []bolt.Row) (bolt.Node, error) {
	if len(rows) == 0 {
		return bolt.Node{}, fmt.Errorf("statement returned no rows")
	}
	wire, ok := rows[0]["node"].(bolt.Node)
	if !ok {
		return bolt.Node{}, fmt.Errorf("row has no node column")
	}
	return wire, nil
}

func hasID(e interface{ ID() (model.GraphID, bool) }) bool {
	_, ok := e.ID()
	return ok
}
