package model

import (
	"fmt"

	"github.com/orneryd/bifrost/pkg/schema"
)

// Node is a graph node instance: a node schema plus property values and,
// once persisted or loaded, the database identity.
type Node struct {
	entity
}

// NewNode constructs a node from its schema and initial properties. Every
// property name must be declared on the schema.
func NewNode(d *schema.Descriptor, props Props) (*Node, error) {
	e, err := newEntity(d, props)
	if err != nil {
		return nil, err
	}
	return &Node{entity: e}, nil
}

// Label returns the schema's primary label.
func (n *Node) Label() string { return n.schema.Label() }

// Labels returns the schema's full label set, sorted.
func (n *Node) Labels() []string { return n.schema.Labels() }

// CopyFrom overwrites every declared field and the identity with the
// values from other. The load path uses this to refresh an instance from
// the authoritative stored copy.
func (n *Node) CopyFrom(other *Node) {
	for _, p := range other.Properties() {
		n.props[p.Name] = p.Value
	}
	if id, ok := other.ID(); ok {
		n.SetID(id)
	}
}

func (n *Node) String() string {
	id := "<nil>"
	if v, ok := n.ID(); ok {
		id = fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf("<%s id=%s labels=%s properties=%v>", n.Label(), id, n.schema.LabelExpr(), n.props)
}
