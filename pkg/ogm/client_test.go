package ogm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/bifrost/pkg/bolt"
	"github.com/orneryd/bifrost/pkg/diskstorage"
	"github.com/orneryd/bifrost/pkg/model"
	"github.com/orneryd/bifrost/pkg/schema"
)

func personSchema() *schema.Descriptor {
	return schema.NewNodeSchema("Person",
		schema.WithField("name", schema.Field{}),
		schema.WithField("email", schema.Field{Unique: true}),
	)
}

func newTestClient(t *testing.T, d *schema.Descriptor, opts ...ClientOption) (*Client, *bolt.MemoryConn) {
	t.Helper()
	conn := bolt.NewMemoryConn()
	registry := schema.NewRegistry()
	registry.Register(d)
	opts = append([]ClientOption{WithRegistry(registry)}, opts...)
	return NewClient(conn, opts...), conn
}

func wirePerson(id int64, name, email string) bolt.Node {
	return bolt.Node{
		ID:     id,
		Labels: []string{"Person"},
		Props:  map[string]any{"name": name, "email": email},
	}
}

func TestSaveNodeCreatesWithoutUniqueFields(t *testing.T) {
	person := personSchema()
	client, conn := newTestClient(t, person)

	node, err := model.NewNode(person, model.Props{"name": "Alice"})
	require.NoError(t, err)

	conn.PushResult([]bolt.Row{{"node": wirePerson(7, "Alice", "")}})

	require.NoError(t, client.SaveNode(context.Background(), node))

	id, ok := node.ID()
	require.True(t, ok)
	assert.Equal(t, model.GraphID(7), id)

	statements := conn.Statements()
	require.Len(t, statements, 1)
	assert.Equal(t, "CREATE (node:Person) SET node.name = 'Alice' RETURN node;", statements[0].Query)
}

func TestSaveNodeAdoptsIdentityFromUniqueMatch(t *testing.T) {
	person := personSchema()
	client, conn := newTestClient(t, person)

	node, err := model.NewNode(person, model.Props{"name": "Alice", "email": "a@x.com"})
	require.NoError(t, err)

	conn.PushResult([]bolt.Row{{"node": wirePerson(42, "Old Name", "a@x.com")}})
	conn.PushResult([]bolt.Row{{"node": wirePerson(42, "Alice", "a@x.com")}})

	require.NoError(t, client.SaveNode(context.Background(), node))

	id, ok := node.ID()
	require.True(t, ok)
	assert.Equal(t, model.GraphID(42), id)

	statements := conn.Statements()
	require.Len(t, statements, 2)
	assert.Equal(t, "MATCH (node:Person) WHERE node.email = 'a@x.com' RETURN node;", statements[0].Query)
	assert.Equal(t, "MATCH (node:Person) WHERE id(node) = 42 SET node.name = 'Alice' SET node.email = 'a@x.com' RETURN node;", statements[1].Query)
}

func TestSaveNodeUniquenessConflict(t *testing.T) {
	person := personSchema()
	client, conn := newTestClient(t, person)

	node, err := model.NewNode(person, model.Props{"email": "a@x.com"})
	require.NoError(t, err)

	conn.PushResult([]bolt.Row{
		{"node": wirePerson(1, "First", "a@x.com")},
		{"node": wirePerson(2, "Second", "a@x.com")},
	})

	err = client.SaveNode(context.Background(), node)

	var uniqueness *UniquenessError
	require.ErrorAs(t, err, &uniqueness)
	assert.Len(t, uniqueness.Nodes, 2)
	assert.Empty(t, uniqueness.Relationships)

	// No write after the conflicting match.
	assert.Len(t, conn.Statements(), 1)
	_, ok := node.ID()
	assert.False(t, ok)
}

func TestSaveNodeWithIdentityUpdates(t *testing.T) {
	person := personSchema()
	client, conn := newTestClient(t, person)

	node, err := model.NewNode(person, model.Props{"name": "Alice"})
	require.NoError(t, err)
	node.SetID(9)

	require.NoError(t, client.SaveNode(context.Background(), node))

	statements := conn.Statements()
	require.Len(t, statements, 1)
	assert.Equal(t, "MATCH (node:Person) WHERE id(node) = 9 SET node.name = 'Alice' RETURN node;", statements[0].Query)
}

func TestLoadNodeNotFound(t *testing.T) {
	person := personSchema()
	client, _ := newTestClient(t, person)

	node, err := model.NewNode(person, model.Props{"email": "missing@x.com"})
	require.NoError(t, err)

	err = client.LoadNode(context.Background(), node)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadNodeOverwritesFields(t *testing.T) {
	person := personSchema()
	client, conn := newTestClient(t, person)

	node, err := model.NewNode(person, model.Props{"name": "Local", "email": "a@x.com"})
	require.NoError(t, err)

	conn.PushResult([]bolt.Row{{"node": wirePerson(5, "Stored", "a@x.com")}})

	require.NoError(t, client.LoadNode(context.Background(), node))

	id, ok := node.ID()
	require.True(t, ok)
	assert.Equal(t, model.GraphID(5), id)
	assert.Equal(t, "Stored", node.Get("name"))
	assert.Equal(t, "a@x.com", node.Get("email"))
}

func TestLoadNodeAmbiguousMatch(t *testing.T) {
	person := personSchema()
	client, conn := newTestClient(t, person)

	node, err := model.NewNode(person, model.Props{"email": "a@x.com"})
	require.NoError(t, err)

	conn.PushResult([]bolt.Row{
		{"node": wirePerson(1, "First", "a@x.com")},
		{"node": wirePerson(2, "Second", "a@x.com")},
	})

	err = client.LoadNode(context.Background(), node)

	var ambiguous *AmbiguousMatchError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, 2, ambiguous.Count)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestLoadNodeFailedMatchLeavesInstanceUntouched(t *testing.T) {
	person := personSchema()
	client, conn := newTestClient(t, person)

	node, err := model.NewNode(person, model.Props{"name": "Local", "email": "a@x.com"})
	require.NoError(t, err)

	conn.FailWith(errors.New("connection reset"))

	err = client.LoadNode(context.Background(), node)
	require.Error(t, err)

	assert.Equal(t, "Local", node.Get("name"))
	_, ok := node.ID()
	assert.False(t, ok)
}

func TestExecutionFailuresMatchSentinel(t *testing.T) {
	person := personSchema()
	client, conn := newTestClient(t, person)

	node, err := model.NewNode(person, model.Props{"name": "Alice"})
	require.NoError(t, err)

	driverErr := errors.New("connection reset")
	conn.FailWith(driverErr)

	err = client.SaveNode(context.Background(), node)
	assert.ErrorIs(t, err, ErrExecution)
	assert.ErrorIs(t, err, driverErr)

	err = client.LoadNode(context.Background(), node)
	assert.ErrorIs(t, err, ErrExecution)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestGetOrCreateNodeCreates(t *testing.T) {
	person := personSchema()
	client, conn := newTestClient(t, person)

	node, err := model.NewNode(person, model.Props{"name": "Alice", "email": "a@x.com"})
	require.NoError(t, err)

	// Load and the save-side unique match both come up empty, then the
	// create returns the stored node.
	conn.PushResult(nil)
	conn.PushResult(nil)
	conn.PushResult([]bolt.Row{{"node": wirePerson(11, "Alice", "a@x.com")}})

	created, err := client.GetOrCreateNode(context.Background(), node)
	require.NoError(t, err)
	assert.True(t, created)

	id, ok := node.ID()
	require.True(t, ok)
	assert.Equal(t, model.GraphID(11), id)
}

func TestGetOrCreateNodeFindsExisting(t *testing.T) {
	person := personSchema()
	client, conn := newTestClient(t, person)

	node, err := model.NewNode(person, model.Props{"email": "a@x.com"})
	require.NoError(t, err)

	conn.PushResult([]bolt.Row{{"node": wirePerson(11, "Alice", "a@x.com")}})

	created, err := client.GetOrCreateNode(context.Background(), node)
	require.NoError(t, err)
	assert.False(t, created)

	id, ok := node.ID()
	require.True(t, ok)
	assert.Equal(t, model.GraphID(11), id)
	assert.Equal(t, "Alice", node.Get("name"))
}

func TestGetOrCreateNodeDoesNotCreateOnAmbiguity(t *testing.T) {
	person := personSchema()
	client, conn := newTestClient(t, person)

	node, err := model.NewNode(person, model.Props{"email": "a@x.com"})
	require.NoError(t, err)

	conn.PushResult([]bolt.Row{
		{"node": wirePerson(1, "First", "a@x.com")},
		{"node": wirePerson(2, "Second", "a@x.com")},
	})

	created, err := client.GetOrCreateNode(context.Background(), node)

	var ambiguous *AmbiguousMatchError
	require.ErrorAs(t, err, &ambiguous)
	assert.False(t, created)
	assert.Len(t, conn.Statements(), 1)
}

func documentSchema() *schema.Descriptor {
	return schema.NewNodeSchema("Document",
		schema.WithField("title", schema.Field{Unique: true}),
		schema.WithField("body", schema.Field{OnDisk: true}),
	)
}

func TestSaveNodeOnDiskFieldRequiresStore(t *testing.T) {
	document := documentSchema()
	client, conn := newTestClient(t, document)

	node, err := model.NewNode(document, model.Props{"title": "Report", "body": "full text"})
	require.NoError(t, err)

	conn.PushResult(nil)
	conn.PushResult([]bolt.Row{{"node": bolt.Node{ID: 3, Labels: []string{"Document"}, Props: map[string]any{"title": "Report"}}}})

	err = client.SaveNode(context.Background(), node)
	assert.ErrorIs(t, err, ErrNoDiskStorage)
}

func TestSaveNodeKeepsOnDiskFieldOutOfGraph(t *testing.T) {
	document := documentSchema()
	store, err := diskstorage.NewBadgerStore(diskstorage.BadgerOptions{InMemory: true})
	require.NoError(t, err)
	defer store.Close()

	client, conn := newTestClient(t, document, WithDiskStorage(store))

	node, err := model.NewNode(document, model.Props{"title": "Report", "body": "full text"})
	require.NoError(t, err)

	conn.PushResult(nil)
	conn.PushResult([]bolt.Row{{"node": bolt.Node{ID: 3, Labels: []string{"Document"}, Props: map[string]any{"title": "Report"}}}})

	require.NoError(t, client.SaveNode(context.Background(), node))

	statements := conn.Statements()
	require.Len(t, statements, 2)
	assert.NotContains(t, statements[1].Query, "body")

	stored, err := store.LoadNodeProperty(3, "body", nil)
	require.NoError(t, err)
	assert.Equal(t, "full text", stored)
}

func TestLoadNodeOverlaysOnDiskField(t *testing.T) {
	document := documentSchema()
	store, err := diskstorage.NewBadgerStore(diskstorage.BadgerOptions{InMemory: true})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.SaveNodeProperty(3, "body", "full text"))

	client, conn := newTestClient(t, document, WithDiskStorage(store))

	node, err := model.NewNode(document, model.Props{"title": "Report"})
	require.NoError(t, err)

	conn.PushResult([]bolt.Row{{"node": bolt.Node{ID: 3, Labels: []string{"Document"}, Props: map[string]any{"title": "Report"}}}})

	require.NoError(t, client.LoadNode(context.Background(), node))

	assert.Equal(t, "full text", node.Get("body"))
}

func TestLoadNodeKeepsOnDiskIntegerKind(t *testing.T) {
	document := schema.NewNodeSchema("Document",
		schema.WithField("title", schema.Field{Unique: true}),
		schema.WithField("views", schema.Field{OnDisk: true}),
	)
	store, err := diskstorage.NewBadgerStore(diskstorage.BadgerOptions{InMemory: true})
	require.NoError(t, err)
	defer store.Close()

	client, conn := newTestClient(t, document, WithDiskStorage(store))

	node, err := model.NewNode(document, model.Props{"title": "Report", "views": 5})
	require.NoError(t, err)

	conn.PushResult(nil)
	conn.PushResult([]bolt.Row{{"node": bolt.Node{ID: 3, Labels: []string{"Document"}, Props: map[string]any{"title": "Report"}}}})
	require.NoError(t, client.SaveNode(context.Background(), node))

	loaded, err := model.NewNode(document, model.Props{"title": "Report"})
	require.NoError(t, err)
	conn.PushResult([]bolt.Row{{"node": bolt.Node{ID: 3, Labels: []string{"Document"}, Props: map[string]any{"title": "Report"}}}})
	require.NoError(t, client.LoadNode(context.Background(), loaded))

	assert.Equal(t, int64(5), loaded.Get("views"))
}

func TestLoadNodeKeepsGraphValueWhenStoreHasNone(t *testing.T) {
	document := documentSchema()
	store, err := diskstorage.NewBadgerStore(diskstorage.BadgerOptions{InMemory: true})
	require.NoError(t, err)
	defer store.Close()

	client, conn := newTestClient(t, document, WithDiskStorage(store))

	node, err := model.NewNode(document, model.Props{"title": "Report"})
	require.NoError(t, err)

	conn.PushResult([]bolt.Row{{"node": bolt.Node{ID: 3, Labels: []string{"Document"}, Props: map[string]any{"title": "Report"}}}})

	require.NoError(t, client.LoadNode(context.Background(), node))

	assert.Nil(t, node.Get("body"))
}
