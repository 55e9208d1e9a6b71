// Package schema defines graph schemas and the process-wide registry that
// maps wire-level labels and relationship types back to them.
//
// A Descriptor is the static description of one node or relationship type:
// its primary label (or type tag), the full label set including labels
// inherited from extended schemas, and the ordered field list with
// per-field index/unique/exists/on-disk flags. Descriptors are built once
// with NewNodeSchema or NewRelationshipSchema, are immutable afterwards
// and live in the Registry for the process lifetime.
//
// Inheritance is label-union: a schema that Extends another absorbs the
// parent's labels and fields, which is what later lets the registry pick
// the most-derived schema for an observed label set.
//
// Example:
//
//	person := schema.NewNodeSchema("Person",
//		schema.WithField("name", schema.Field{}),
//		schema.WithField("email", schema.Field{Unique: true, Index: true}),
//	)
//	admin := schema.NewNodeSchema("Admin", schema.Extends(person),
//		schema.WithField("clearance", schema.Field{}),
//	)
//	// admin.Labels() == {"Admin", "Person"}
package schema

import (
	"sort"
	"strings"
)

// Field carries the per-field metadata declared on a schema.
type Field struct {
	// Index requests a label+property index when the schema is ensured
	// against the database.
	Index bool

	// Unique marks the field as individually sufficient to identify a
	// stored entity. Unique fields drive identity resolution on save and
	// load.
	Unique bool

	// Exists requests an existence constraint: the property must be set
	// on every stored entity with this label.
	Exists bool

	// OnDisk stores the field's value in the side property store keyed by
	// entity identity instead of in the graph itself.
	OnDisk bool
}

// Descriptor is the immutable schema of one node or relationship type.
type Descriptor struct {
	label      string
	relType    string
	labels     map[string]struct{}
	fieldOrder []string
	fields     map[string]Field
	index      bool
}

// Option configures a Descriptor under construction.
type Option func(*Descriptor)

// WithField declares a field and its metadata. Declaration order is
// preserved and is the order Properties() and the fragment builders use.
func WithField(name string, f Field) Option {
	return func(d *Descriptor) {
		d.addField(name, f)
	}
}

// WithLabelIndex requests a plain label index for the node schema.
func WithLabelIndex() Option {
	return func(d *Descriptor) {
		d.index = true
	}
}

// Extends declares the schema a subtype of parent: the parent's labels and
// fields are absorbed, matching inheritance-by-label-union. Parent fields
// come first in field order; a field redeclared on the child overrides the
// parent's metadata.
func Extends(parent *Descriptor) Option {
	return func(d *Descriptor) {
		for label := range parent.labels {
			d.labels[label] = struct{}{}
		}
		for _, name := range parent.fieldOrder {
			d.addField(name, parent.fields[name])
		}
	}
}

// NewNodeSchema builds a node Descriptor with the given primary label.
// The label set always includes the primary label itself.
func NewNodeSchema(label string, opts ...Option) *Descriptor {
	d := &Descriptor{
		label:  label,
		labels: map[string]struct{}{label: {}},
		fields: map[string]Field{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewRelationshipSchema builds a relationship Descriptor with the given
// type tag. Relationships carry exactly one tag and no label set.
func NewRelationshipSchema(relType string, opts ...Option) *Descriptor {
	d := &Descriptor{
		relType: relType,
		labels:  map[string]struct{}{},
		fields:  map[string]Field{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Descriptor) addField(name string, f Field) {
	if _, exists := d.fields[name]; !exists {
		d.fieldOrder = append(d.fieldOrder, name)
	}
	d.fields[name] = f
}

// Label returns the primary label of a node schema, or "" for a
// relationship schema.
func (d *Descriptor) Label() string { return d.label }

// Type returns the type tag of a relationship schema, or "" for a node
// schema.
func (d *Descriptor) Type() string { return d.relType }

// IsRelationship reports whether the schema describes a relationship.
func (d *Descriptor) IsRelationship() bool { return d.relType != "" }

// Labels returns the full label set, sorted.
func (d *Descriptor) Labels() []string {
	labels := make([]string, 0, len(d.labels))
	for label := range d.labels {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// HasLabel reports whether the label set contains label.
func (d *Descriptor) HasLabel(label string) bool {
	_, ok := d.labels[label]
	return ok
}

// LabelExpr renders the label set for use inside a Cypher pattern,
// e.g. "Admin:Person".
func (d *Descriptor) LabelExpr() string {
	return strings.Join(d.Labels(), ":")
}

// Fields returns the declared field names in declaration order.
func (d *Descriptor) Fields() []string {
	out := make([]string, len(d.fieldOrder))
	copy(out, d.fieldOrder)
	return out
}

// FieldMeta returns the metadata for a declared field.
func (d *Descriptor) FieldMeta(name string) (Field, bool) {
	f, ok := d.fields[name]
	return f, ok
}

// UniqueFields returns the names of fields flagged unique, in declaration
// order.
func (d *Descriptor) UniqueFields() []string {
	var out []string
	for _, name := range d.fieldOrder {
		if d.fields[name].Unique {
			out = append(out, name)
		}
	}
	return out
}

// OnDiskFields returns the names of fields flagged on-disk, in declaration
// order.
func (d *Descriptor) OnDiskFields() []string {
	var out []string
	for _, name := range d.fieldOrder {
		if d.fields[name].OnDisk {
			out = append(out, name)
		}
	}
	return out
}

// IndexRequested reports whether a plain label index was requested.
func (d *Descriptor) IndexRequested() bool { return d.index }

// SubtypeOf reports whether the schema was declared as a subtype of other,
// i.e. whether its label set absorbed other's primary label. A node schema
// is a subtype of itself.
func (d *Descriptor) SubtypeOf(other *Descriptor) bool {
	return other.label != "" && d.HasLabel(other.label)
}
