package ogm

import (
	"context"
	"fmt"

	"github.com/orneryd/bifrost/pkg/bolt"
	"github.com/orneryd/bifrost/pkg/model"
)

// SaveRelationship persists a relationship instance.
//
// The dispatch matches SaveNode with the endpoint pair standing in for
// the unique fields: with an identity the stored relationship is updated
// by internal id; otherwise the (start, end, non-nil properties) match
// either adopts the single stored relationship's identity, creates one
// when nothing matches, or fails with *UniquenessError when several do.
// Both endpoint identities are guaranteed by construction.
func (c *Client) SaveRelationship(ctx context.Context, rel *model.Relationship) error {
	switch {
	case hasID(rel):
		id, _ := rel.ID()
		if err := c.updateRelationshipWithID(ctx, rel, id); err != nil {
			return err
		}
	default:
		matches, err := c.fetchRelationshipsWithEndpoints(ctx, rel)
		if err != nil {
			return err
		}
		switch len(matches) {
		case 0:
			if err := c.createRelationship(ctx, rel); err != nil {
				return err
			}
		case 1:
			id, ok := matches[0].ID()
			if !ok {
				return execError("save relationship", fmt.Errorf("matched relationship carries no internal id"))
			}
			if err := c.updateRelationshipWithID(ctx, rel, id); err != nil {
				return err
			}
			rel.SetID(id)
		default:
			return &UniquenessError{Relationships: matches}
		}
	}

	return c.saveRelationshipDiskFields(ctx, rel)
}

// LoadRelationship refreshes a relationship instance from its stored
// copy: by identity when present, otherwise by the endpoint pair plus
// every non-nil property, requiring exactly one match.
func (c *Client) LoadRelationship(ctx context.Context, rel *model.Relationship) error {
	stored, err := c.fetchRelationship(ctx, rel)
	if err != nil {
		return err
	}
	if err := c.loadRelationshipDiskFields(stored); err != nil {
		return err
	}
	rel.CopyFrom(stored)
	return nil
}

// GetOrCreateRelationship loads the relationship and, only when nothing
// matches, saves it instead. The returned flag is true when the
// relationship was created.
func (c *Client) GetOrCreateRelationship(ctx context.Context, rel *model.Relationship) (bool, error) {
	err := c.LoadRelationship(ctx, rel)
	if err == nil {
		return false, nil
	}
	if !isNotFound(err) {
		return false, err
	}
	if err := c.SaveRelationship(ctx, rel); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) fetchRelationship(ctx context.Context, rel *model.Relationship) (*model.Relationship, error) {
	if hasID(rel) {
		id, _ := rel.ID()
		return c.fetchRelationshipWithID(ctx, rel, id)
	}
	matches, err := c.fetchRelationshipsWithEndpoints(ctx, rel)
	if err != nil {
		return nil, err
	}
	return exactlyOneRelationship(matches)
}

func (c *Client) updateRelationshipWithID(ctx context.Context, rel *model.Relationship, id model.GraphID) error {
	setClause, err := rel.SetClause("relationship")
	if err != nil {
		return err
	}
	query := fmt.Sprintf("MATCH ()-[relationship:%s]->() WHERE id(relationship) = %d", rel.Type(), id)
	if setClause != "" {
		query += " " + setClause
	}
	query += " RETURN relationship;"

	if _, err := c.conn.ExecuteAndFetch(ctx, query, nil); err != nil {
		return execError("update relationship", err)
	}
	return nil
}

func (c *Client) createRelationship(ctx context.Context, rel *model.Relationship) error {
	setClause, err := rel.SetClause("relationship")
	if err != nil {
		return err
	}
	query := fmt.Sprintf(
		"MATCH (start_node), (end_node) WHERE id(start_node) = %d AND id(end_node) = %d CREATE (start_node)-[relationship:%s]->(end_node)",
		rel.StartNodeID(), rel.EndNodeID(), rel.Type(),
	)
	if setClause != "" {
		query += " " + setClause
	}
	query += " RETURN relationship;"

	rows, err := c.conn.ExecuteAndFetch(ctx, query, nil)
	if err != nil {
		return execError("create relationship", err)
	}
	wire, err := firstWireRelationship(rows)
	if err != nil {
		return execError("create relationship", err)
	}
	rel.SetID(model.GraphID(wire.ID))
	return nil
}

func (c *Client) fetchRelationshipsWithEndpoints(ctx context.Context, rel *model.Relationship) ([]*model.Relationship, error) {
	propsBlock, err := rel.AssignmentBlock("relationship", model.And)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(
		"MATCH (start_node)-[relationship:%s]->(end_node) WHERE id(start_node) = %d AND id(end_node) = %d",
		rel.Type(), rel.StartNodeID(), rel.EndNodeID(),
	)
	if propsBlock != "" {
		query += " AND " + propsBlock
	}
	query += " RETURN relationship;"

	rows, err := c.conn.ExecuteAndFetch(ctx, query, nil)
	if err != nil {
		return nil, execError("match relationship", err)
	}
	return c.decodeRelationshipRows(rows)
}

func (c *Client) fetchRelationshipWithID(ctx context.Context, rel *model.Relationship, id model.GraphID) (*model.Relationship, error) {
	query := fmt.Sprintf("MATCH ()-[relationship:%s]->() WHERE id(relationship) = %d RETURN relationship;", rel.Type(), id)

	rows, err := c.conn.ExecuteAndFetch(ctx, query, nil)
	if err != nil {
		return nil, execError("load relationship", err)
	}
	rels, err := c.decodeRelationshipRows(rows)
	if err != nil {
		return nil, err
	}
	return exactlyOneRelationship(rels)
}

func (c *Client) saveRelationshipDiskFields(ctx context.Context, rel *model.Relationship) error {
	_ = ctx
	onDisk := rel.Schema().OnDiskFields()
	if len(onDisk) == 0 {
		return nil
	}
	id, ok := rel.ID()
	if !ok {
		return execError("save on-disk fields", fmt.Errorf("relationship carries no internal id"))
	}
	for _, field := range onDisk {
		value := rel.Get(field)
		if value == nil {
			continue
		}
		if c.disk == nil {
			return ErrNoDiskStorage
		}
		if err := c.disk.SaveRelationshipProperty(int64(id), field, value); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) loadRelationshipDiskFields(stored *model.Relationship) error {
	onDisk := stored.Schema().OnDiskFields()
	if len(onDisk) == 0 {
		return nil
	}
	id, ok := stored.ID()
	if !ok {
		return execError("load on-disk fields", fmt.Errorf("relationship carries no internal id"))
	}
	for _, field := range onDisk {
		if c.disk == nil {
			return ErrNoDiskStorage
		}
		value, err := c.disk.LoadRelationshipProperty(int64(id), field, stored.Get(field))
		if err != nil {
			return err
		}
		if err := stored.Set(field, value); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) decodeRelationshipRows(rows []bolt.Row) ([]*model.Relationship, error) {
	rels := make([]*model.Relationship, 0, len(rows))
	for _, row := range rows {
		wire, ok := row["relationship"].(bolt.Relationship)
		if !ok {
			return nil, execError("decode", fmt.Errorf("row has no relationship column"))
		}
		rel, err := c.decodeRelationship(wire)
		if err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}
	return rels, nil
}

func exactlyOneRelationship(rels []*model.Relationship) (*model.Relationship, error) {
	switch len(rels) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return rels[0], nil
	default:
		return nil, &AmbiguousMatchError{Count: len(rels)}
	}
}

func firstWireRelationship(rows []bolt.Row) (bolt.Relationship, error) {
	if len(rows) == 0 {
		return bolt.Relationship{}, fmt.Errorf("statement returned no rows")
	}
	wire, ok := rows[0]["relationship"].(bolt.Relationship)
	if !ok {
		return bolt.Relationship{}, fmt.Errorf("row has no relationship column")
	}
	return wire, nil
}
