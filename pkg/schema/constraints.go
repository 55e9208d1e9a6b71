// Index and constraint value types.
//
// These are the DDL counterparts of the Field flags: a Descriptor with
// indexed or unique fields maps to a set of Index/Constraint values the
// client applies with CREATE INDEX ON / CREATE CONSTRAINT ON statements.
package schema

import (
	"fmt"
	"strings"
)

// Index identifies a label index, optionally scoped to one property.
type Index struct {
	Label    string
	Property string
}

// ToCypher renders the index expression used by CREATE INDEX ON and
// DROP INDEX ON, e.g. ":Person(email)".
func (i Index) ToCypher() string {
	if i.Property == "" {
		return fmt.Sprintf(":%s", i.Label)
	}
	return fmt.Sprintf(":%s(%s)", i.Label, i.Property)
}

// Constraint is a label-scoped schema constraint expressible as Cypher DDL.
type Constraint interface {
	// ToCypher renders the constraint expression used by
	// CREATE CONSTRAINT ON and DROP CONSTRAINT ON.
	ToCypher() string
}

// UniqueConstraint asserts that the listed properties jointly identify at
// most one stored node per label.
type UniqueConstraint struct {
	Label      string
	Properties []string
}

func (c UniqueConstraint) ToCypher() string {
	props := make([]string, len(c.Properties))
	for i, p := range c.Properties {
		props[i] = "n." + p
	}
	return fmt.Sprintf("(n:%s) ASSERT %s IS UNIQUE", c.Label, strings.Join(props, ", "))
}

// ExistsConstraint asserts that the property is set on every stored node
// with the label.
type ExistsConstraint struct {
	Label    string
	Property string
}

func (c ExistsConstraint) ToCypher() string {
	return fmt.Sprintf("(n:%s) ASSERT EXISTS (n.%s)", c.Label, c.Property)
}

// Indexes returns the indexes requested by the schema's flags: the label
// index when requested plus one label+property index per indexed field.
func (d *Descriptor) Indexes() []Index {
	var out []Index
	if d.index {
		out = append(out, Index{Label: d.label})
	}
	for _, name := range d.fieldOrder {
		if d.fields[name].Index {
			out = append(out, Index{Label: d.label, Property: name})
		}
	}
	return out
}

// Constraints returns the constraints requested by the schema's unique and
// exists field flags.
func (d *Descriptor) Constraints() []Constraint {
	var out []Constraint
	for _, name := range d.fieldOrder {
		f := d.fields[name]
		if f.Unique {
			out = append(out, UniqueConstraint{Label: d.label, Properties: []string{name}})
		}
		if f.Exists {
			out = append(out, ExistsConstraint{Label: d.label, Property: name})
		}
	}
	return out
}
