package ogm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/bifrost/pkg/bolt"
	"github.com/orneryd/bifrost/pkg/model"
	"github.com/orneryd/bifrost/pkg/schema"
)

func newDecodeClient(t *testing.T) (*Client, *schema.Registry) {
	t.Helper()
	registry := schema.NewRegistry()
	client := NewClient(bolt.NewMemoryConn(), WithRegistry(registry))
	return client, registry
}

func TestDecodeRowResolvesMostDerivedSchema(t *testing.T) {
	client, registry := newDecodeClient(t)

	person := schema.NewNodeSchema("Person",
		schema.WithField("name", schema.Field{}),
	)
	admin := schema.NewNodeSchema("Admin", schema.Extends(person),
		schema.WithField("clearance", schema.Field{}),
	)
	registry.Register(person)
	registry.Register(admin)

	decoded, err := client.DecodeRow(bolt.Row{
		"n": bolt.Node{
			ID:     4,
			Labels: []string{"Person", "Admin"},
			Props:  map[string]any{"name": "Alice", "clearance": "top"},
		},
	})
	require.NoError(t, err)

	node, ok := decoded["n"].(*model.Node)
	require.True(t, ok)
	assert.Equal(t, "Admin", node.Label())
	assert.Equal(t, "top", node.Get("clearance"))

	id, ok := node.ID()
	require.True(t, ok)
	assert.Equal(t, model.GraphID(4), id)
}

func TestDecodeRowDropsUndeclaredProperties(t *testing.T) {
	client, registry := newDecodeClient(t)
	registry.Register(personSchema())

	decoded, err := client.DecodeRow(bolt.Row{
		"n": bolt.Node{
			ID:     1,
			Labels: []string{"Person"},
			Props:  map[string]any{"name": "Alice", "shoe_size": int64(42)},
		},
	})
	require.NoError(t, err)

	node := decoded["n"].(*model.Node)
	assert.Equal(t, "Alice", node.Get("name"))
	assert.Nil(t, node.Get("shoe_size"))
}

func TestDecodeRowUnknownLabels(t *testing.T) {
	client, _ := newDecodeClient(t)

	_, err := client.DecodeRow(bolt.Row{
		"n": bolt.Node{ID: 1, Labels: []string{"Stranger"}},
	})

	var unknown *schema.UnknownLabelSetError
	require.ErrorAs(t, err, &unknown)
}

func TestDecodeRowRelationship(t *testing.T) {
	client, registry := newDecodeClient(t)
	registry.Register(followsSchema())

	decoded, err := client.DecodeRow(bolt.Row{
		"r": bolt.Relationship{
			ID:      9,
			StartID: 1,
			EndID:   2,
			Type:    "FOLLOWS",
			Props:   map[string]any{"since": int64(2024)},
		},
	})
	require.NoError(t, err)

	rel, ok := decoded["r"].(*model.Relationship)
	require.True(t, ok)
	assert.Equal(t, "FOLLOWS", rel.Type())
	assert.Equal(t, model.GraphID(1), rel.StartNodeID())
	assert.Equal(t, model.GraphID(2), rel.EndNodeID())
	assert.Equal(t, int64(2024), rel.Get("since"))

	id, ok := rel.ID()
	require.True(t, ok)
	assert.Equal(t, model.GraphID(9), id)
}

func TestDecodeRowUnknownRelationshipType(t *testing.T) {
	client, _ := newDecodeClient(t)

	_, err := client.DecodeRow(bolt.Row{
		"r": bolt.Relationship{ID: 9, Type: "UNSEEN"},
	})

	var unknown *schema.UnknownRelationshipTypeError
	require.ErrorAs(t, err, &unknown)
}

func TestDecodeRowPath(t *testing.T) {
	client, registry := newDecodeClient(t)
	registry.Register(personSchema())
	registry.Register(followsSchema())

	decoded, err := client.DecodeRow(bolt.Row{
		"p": bolt.Path{
			Nodes: []bolt.Node{
				{ID: 1, Labels: []string{"Person"}, Props: map[string]any{"name": "Alice"}},
				{ID: 2, Labels: []string{"Person"}, Props: map[string]any{"name": "Bob"}},
			},
			Relationships: []bolt.Relationship{
				{ID: 9, StartID: 1, EndID: 2, Type: "FOLLOWS"},
			},
		},
	})
	require.NoError(t, err)

	path, ok := decoded["p"].(*model.Path)
	require.True(t, ok)
	require.Len(t, path.Nodes(), 2)
	require.Len(t, path.Relationships(), 1)

	hops := path.Traverse()
	require.Len(t, hops, 3)
	assert.Equal(t, "Alice", hops[0].(*model.Node).Get("name"))
	assert.Equal(t, "Bob", hops[2].(*model.Node).Get("name"))
}

func TestDecodeRowNestedListsAndScalars(t *testing.T) {
	client, registry := newDecodeClient(t)
	registry.Register(personSchema())

	decoded, err := client.DecodeRow(bolt.Row{
		"count": int64(3),
		"names": []any{"Alice", "Bob"},
		"nodes": []any{
			bolt.Node{ID: 1, Labels: []string{"Person"}, Props: map[string]any{"name": "Alice"}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), decoded["count"])
	assert.Equal(t, []any{"Alice", "Bob"}, decoded["names"])

	nodes := decoded["nodes"].([]any)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Alice", nodes[0].(*model.Node).Get("name"))
}
