package model

import (
	"fmt"

	"github.com/orneryd/bifrost/pkg/schema"
)

// Relationship is a directed relationship instance between two stored
// nodes. Both endpoint identities are required at construction: a
// relationship cannot exist without its endpoints, even before it is
// persisted as a database-native relationship.
type Relationship struct {
	entity
	startNodeID GraphID
	endNodeID   GraphID
}

// NewRelationship constructs a relationship from its schema, the two
// endpoint identities and initial properties. A nil endpoint fails with
// ErrMissingEndpoint before any database interaction.
func NewRelationship(d *schema.Descriptor, startNodeID, endNodeID *GraphID, props Props) (*Relationship, error) {
	if startNodeID == nil || endNodeID == nil {
		return nil, ErrMissingEndpoint
	}
	e, err := newEntity(d, props)
	if err != nil {
		return nil, err
	}
	return &Relationship{entity: e, startNodeID: *startNodeID, endNodeID: *endNodeID}, nil
}

// Type returns the schema's relationship type tag.
func (r *Relationship) Type() string { return r.schema.Type() }

// StartNodeID returns the identity of the relationship's start node.
func (r *Relationship) StartNodeID() GraphID { return r.startNodeID }

// EndNodeID returns the identity of the relationship's end node.
func (r *Relationship) EndNodeID() GraphID { return r.endNodeID }

// CopyFrom overwrites every declared field, the endpoints and the identity
// with the values from other.
func (r *Relationship) CopyFrom(other *Relationship) {
	for _, p := range other.Properties() {
		r.props[p.Name] = p.Value
	}
	r.startNodeID = other.startNodeID
	r.endNodeID = other.endNodeID
	if id, ok := other.ID(); ok {
		r.SetID(id)
	}
}

func (r *Relationship) String() string {
	id := "<nil>"
	if v, ok := r.ID(); ok {
		id = fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf("<%s id=%s start_node_id=%d end_node_id=%d properties=%v>",
		r.Type(), id, r.startNodeID, r.endNodeID, r.props)
}
