package ogm

import (
	"context"
	"fmt"

	"github.com/orneryd/bifrost/pkg/convert"
	"github.com/orneryd/bifrost/pkg/schema"
)

// Column names of SHOW INDEX INFO; and SHOW CONSTRAINT INFO; results.
const (
	colLabel          = "label"
	colProperty       = "property"
	colProperties     = "properties"
	colConstraintType = "constraint type"

	constraintUnique = "unique"
	constraintExists = "exists"
)

// CreateIndex creates a label or label+property index.
func (c *Client) CreateIndex(ctx context.Context, index schema.Index) error {
	query := fmt.Sprintf("CREATE INDEX ON %s;", index.ToCypher())
	if err := c.conn.Execute(ctx, query, nil); err != nil {
		return execError("create index", err)
	}
	return nil
}

// DropIndex drops a label or label+property index.
func (c *Client) DropIndex(ctx context.Context, index schema.Index) error {
	query := fmt.Sprintf("DROP INDEX ON %s;", index.ToCypher())
	if err := c.conn.Execute(ctx, query, nil); err != nil {
		return execError("drop index", err)
	}
	return nil
}

// GetIndexes lists the indexes present in the database.
func (c *Client) GetIndexes(ctx context.Context) ([]schema.Index, error) {
	rows, err := c.conn.ExecuteAndFetch(ctx, "SHOW INDEX INFO;", nil)
	if err != nil {
		return nil, execError("show index info", err)
	}
	indexes := make([]schema.Index, 0, len(rows))
	for _, row := range rows {
		index := schema.Index{Label: stringAt(row, colLabel)}
		if prop := stringAt(row, colProperty); prop != "" {
			index.Property = prop
		}
		indexes = append(indexes, index)
	}
	return indexes, nil
}

// EnsureIndexes makes the database indexes match the given set exactly:
// indexes not listed are dropped, missing ones are created.
func (c *Client) EnsureIndexes(ctx context.Context, indexes []schema.Index) error {
	existing, err := c.GetIndexes(ctx)
	if err != nil {
		return err
	}
	wanted := make(map[schema.Index]bool, len(indexes))
	for _, index := range indexes {
		wanted[index] = true
	}
	present := make(map[schema.Index]bool, len(existing))
	for _, index := range existing {
		present[index] = true
		if !wanted[index] {
			if err := c.DropIndex(ctx, index); err != nil {
				return err
			}
		}
	}
	for _, index := range indexes {
		if !present[index] {
			if err := c.CreateIndex(ctx, index); err != nil {
				return err
			}
		}
	}
	return nil
}

// CreateConstraint creates a uniqueness or existence constraint.
func (c *Client) CreateConstraint(ctx context.Context, constraint schema.Constraint) error {
	query := fmt.Sprintf("CREATE CONSTRAINT ON %s;", constraint.ToCypher())
	if err := c.conn.Execute(ctx, query, nil); err != nil {
		return execError("create constraint", err)
	}
	return nil
}

// DropConstraint drops a uniqueness or existence constraint.
func (c *Client) DropConstraint(ctx context.Context, constraint schema.Constraint) error {
	query := fmt.Sprintf("DROP CONSTRAINT ON %s;", constraint.ToCypher())
	if err := c.conn.Execute(ctx, query, nil); err != nil {
		return execError("drop constraint", err)
	}
	return nil
}

// GetConstraints lists the constraints present in the database. Rows with
// a constraint type other than unique or exists are skipped.
func (c *Client) GetConstraints(ctx context.Context) ([]schema.Constraint, error) {
	rows, err := c.conn.ExecuteAndFetch(ctx, "SHOW CONSTRAINT INFO;", nil)
	if err != nil {
		return nil, execError("show constraint info", err)
	}
	constraints := make([]schema.Constraint, 0, len(rows))
	for _, row := range rows {
		label := stringAt(row, colLabel)
		switch stringAt(row, colConstraintType) {
		case constraintUnique:
			constraints = append(constraints, schema.UniqueConstraint{
				Label:      label,
				Properties: convert.ToStringSlice(row[colProperties]),
			})
		case constraintExists:
			props := convert.ToStringSlice(row[colProperties])
			if len(props) == 0 {
				continue
			}
			constraints = append(constraints, schema.ExistsConstraint{
				Label:    label,
				Property: props[0],
			})
		}
	}
	return constraints, nil
}

// EnsureSchema applies every index and constraint a descriptor's field
// flags request. Existing schema objects are left alone; EnsureSchema only
// adds, it never drops.
func (c *Client) EnsureSchema(ctx context.Context, d *schema.Descriptor) error {
	existingIndexes, err := c.GetIndexes(ctx)
	if err != nil {
		return err
	}
	presentIndexes := make(map[schema.Index]bool, len(existingIndexes))
	for _, index := range existingIndexes {
		presentIndexes[index] = true
	}
	for _, index := range d.Indexes() {
		if presentIndexes[index] {
			continue
		}
		if err := c.CreateIndex(ctx, index); err != nil {
			return err
		}
	}

	existingConstraints, err := c.GetConstraints(ctx)
	if err != nil {
		return err
	}
	presentConstraints := make(map[string]bool, len(existingConstraints))
	for _, constraint := range existingConstraints {
		presentConstraints[constraint.ToCypher()] = true
	}
	for _, constraint := range d.Constraints() {
		if presentConstraints[constraint.ToCypher()] {
			continue
		}
		if err := c.CreateConstraint(ctx, constraint); err != nil {
			return err
		}
	}
	return nil
}

func stringAt(row map[string]any, column string) string {
	s, _ := row[column].(string)
	return s
}
