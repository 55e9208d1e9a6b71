package ogm

import (
	"github.com/orneryd/bifrost/pkg/bolt"
	"github.com/orneryd/bifrost/pkg/model"
)

// DecodeRow maps a wire result row onto registered schema types.
//
// Graph values are resolved through the client's registry: a wire node
// becomes a *model.Node typed as the most derived schema matching its
// label set, a wire relationship a *model.Relationship typed by its
// relationship type, and a wire path a *model.Path over both. Scalar
// values, lists and maps pass through verbatim, with nested graph
// values decoded in place.
//
// Rows with labels or types no schema covers fail with
// *schema.UnknownLabelSetError or *schema.UnknownRelationshipTypeError.
func (c *Client) DecodeRow(row bolt.Row) (map[string]any, error) {
	decoded := make(map[string]any, len(row))
	for column, value := range row {
		v, err := c.decodeValue(value)
		if err != nil {
			return nil, err
		}
		decoded[column] = v
	}
	return decoded, nil
}

func (c *Client) decodeValue(value any) (any, error) {
	switch v := value.(type) {
	case bolt.Node:
		return c.decodeNode(v)
	case bolt.Relationship:
		return c.decodeRelationship(v)
	case bolt.Path:
		return c.decodePath(v)
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			decoded, err := c.decodeValue(elem)
			if err != nil {
				return nil, err
			}
			out[i] = decoded
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, elem := range v {
			decoded, err := c.decodeValue(elem)
			if err != nil {
				return nil, err
			}
			out[key] = decoded
		}
		return out, nil
	default:
		return value, nil
	}
}

// decodeNode builds a typed node from its wire form. Properties the
// resolved schema does not declare are dropped rather than smuggled in
// as undeclared fields.
func (c *Client) decodeNode(wire bolt.Node) (*model.Node, error) {
	d, err := c.registry.ResolveNode(wire.Labels)
	if err != nil {
		return nil, err
	}
	props := make(model.Props, len(wire.Props))
	for _, field := range d.Fields() {
		if value, ok := wire.Props[field]; ok {
			props[field] = value
		}
	}
	node, err := model.NewNode(d, props)
	if err != nil {
		return nil, err
	}
	node.SetID(model.GraphID(wire.ID))
	return node, nil
}

func (c *Client) decodeRelationship(wire bolt.Relationship) (*model.Relationship, error) {
	d, err := c.registry.ResolveRelationship(wire.Type)
	if err != nil {
		return nil, err
	}
	props := make(model.Props, len(wire.Props))
	for _, field := range d.Fields() {
		if value, ok := wire.Props[field]; ok {
			props[field] = value
		}
	}
	start := model.GraphID(wire.StartID)
	end := model.GraphID(wire.EndID)
	rel, err := model.NewRelationship(d, &start, &end, props)
	if err != nil {
		return nil, err
	}
	rel.SetID(model.GraphID(wire.ID))
	return rel, nil
}

func (c *Client) decodePath(wire bolt.Path) (*model.Path, error) {
	nodes := make([]*model.Node, len(wire.Nodes))
	for i, wn := range wire.Nodes {
		node, err := c.decodeNode(wn)
		if err != nil {
			return nil, err
		}
		nodes[i] = node
	}
	rels := make([]*model.Relationship, len(wire.Relationships))
	for i, wr := range wire.Relationships {
		rel, err := c.decodeRelationship(wr)
		if err != nil {
			return nil, err
		}
		rels[i] = rel
	}
	return model.NewPath(nodes, rels)
}
