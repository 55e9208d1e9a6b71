// Package model holds the in-memory representation of graph entities:
// nodes, relationships and paths.
//
// An entity pairs a schema.Descriptor with a property map and an optional
// database identity. Entities are built by callers (before a save) or by
// the ogm result decoder (after a fetch), and render themselves into the
// Cypher fragments the persistence engine splices into statements.
//
// Example:
//
//	person := schema.NewNodeSchema("Person",
//		schema.WithField("name", schema.Field{}),
//		schema.WithField("email", schema.Field{Unique: true}),
//	)
//	alice, _ := model.NewNode(person, model.Props{"name": "Alice", "email": "a@x.com"})
//	block, _ := alice.UniqueFieldsBlock("node")
//	// block == "node.email = 'a@x.com'"
//
// Entities are not thread-safe; the persistence engine mutates them in
// place during save and load.
package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/orneryd/bifrost/pkg/cypher"
	"github.com/orneryd/bifrost/pkg/schema"
)

// Common errors
var (
	// ErrMissingEndpoint means a relationship was constructed or operated
	// on without both endpoint identities.
	ErrMissingEndpoint = errors.New("model: relationship requires both start and end node ids")

	// ErrInvalidPath means a path was constructed with a node count that
	// is not one greater than its relationship count.
	ErrInvalidPath = errors.New("model: path requires len(nodes) == len(relationships)+1")

	// ErrUnknownField means a property name is not declared on the
	// entity's schema.
	ErrUnknownField = errors.New("model: unknown field")
)

// GraphID is the database-assigned internal identity of a stored entity.
type GraphID int64

// Props is a property map passed to the entity constructors.
type Props map[string]any

// JoinOperator joins the clauses of an equality predicate block.
type JoinOperator string

// Join operators accepted by AssignmentBlock.
const (
	And JoinOperator = "AND"
	Or  JoinOperator = "OR"
	Xor JoinOperator = "XOR"
)

// Property is one named property value, produced by Properties() in
// schema declaration order.
type Property struct {
	Name  string
	Value any
}

// entity is the state shared by Node and Relationship: schema reference,
// property values and the optional database identity.
type entity struct {
	schema *schema.Descriptor
	props  map[string]any
	id     *GraphID
}

func newEntity(d *schema.Descriptor, props Props) (entity, error) {
	e := entity{schema: d, props: make(map[string]any, len(props))}
	for name, value := range props {
		if err := e.set(name, value); err != nil {
			return entity{}, err
		}
	}
	return e, nil
}

func (e *entity) set(name string, value any) error {
	if _, ok := e.schema.FieldMeta(name); !ok {
		return fmt.Errorf("%w %q on schema %s", ErrUnknownField, name, e.schemaName())
	}
	e.props[name] = value
	return nil
}

func (e *entity) schemaName() string {
	if e.schema.IsRelationship() {
		return e.schema.Type()
	}
	return e.schema.Label()
}

// Schema returns the entity's schema descriptor.
func (e *entity) Schema() *schema.Descriptor { return e.schema }

// Set assigns a property value. The field must be declared on the schema.
func (e *entity) Set(name string, value any) error { return e.set(name, value) }

// Get returns a property value; unset fields read as nil.
func (e *entity) Get(name string) any { return e.props[name] }

// ID returns the database identity, or ok=false for an entity that has
// never been persisted or loaded.
func (e *entity) ID() (GraphID, bool) {
	if e.id == nil {
		return 0, false
	}
	return *e.id, true
}

// SetID assigns the database identity. The persistence engine calls this
// once an entity is created or retargeted by a load.
func (e *entity) SetID(id GraphID) {
	e.id = &id
}

// Properties returns every declared field with its current value, in
// schema declaration order, including nil values.
func (e *entity) Properties() []Property {
	fields := e.schema.Fields()
	out := make([]Property, 0, len(fields))
	for _, name := range fields {
		out = append(out, Property{Name: name, Value: e.props[name]})
	}
	return out
}

// AssignmentBlock builds an equality predicate over every non-nil field:
//
//	variable.field = literal OP variable.field2 = literal2
//
// Nil-valued fields are skipped. Returns "" when no field is set.
func (e *entity) AssignmentBlock(variable string, op JoinOperator) (string, error) {
	var clauses []string
	for _, p := range e.Properties() {
		if p.Value == nil {
			continue
		}
		literal, err := cypher.EscapeValue(p.Value)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, fmt.Sprintf("%s.%s = %s", variable, p.Name, literal))
	}
	return strings.Join(clauses, fmt.Sprintf(" %s ", op)), nil
}

// SetClause builds the SET fragment applied on create and update:
//
//	SET variable.field = literal SET variable.field2 = literal2
//
// Nil-valued and on-disk fields are skipped; on-disk values never touch
// the graph.
func (e *entity) SetClause(variable string) (string, error) {
	var clauses []string
	for _, p := range e.Properties() {
		if p.Value == nil {
			continue
		}
		if meta, _ := e.schema.FieldMeta(p.Name); meta.OnDisk {
			continue
		}
		literal, err := cypher.EscapeValue(p.Value)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, fmt.Sprintf("SET %s.%s = %s", variable, p.Name, literal))
	}
	return strings.Join(clauses, " "), nil
}

// UniqueFieldsBlock builds an OR-joined equality predicate restricted to
// the schema's unique fields: any single unique field match identifies the
// entity. Returns "" when no unique field has a value.
func (e *entity) UniqueFieldsBlock(variable string) (string, error) {
	var clauses []string
	for _, name := range e.schema.UniqueFields() {
		value := e.props[name]
		if value == nil {
			continue
		}
		literal, err := cypher.EscapeValue(value)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, fmt.Sprintf("%s.%s = %s", variable, name, literal))
	}
	return strings.Join(clauses, " OR "), nil
}

// HasUniqueFields reports whether at least one unique field has a value.
func (e *entity) HasUniqueFields() bool {
	for _, name := range e.schema.UniqueFields() {
		if e.props[name] != nil {
			return true
		}
	}
	return false
}
