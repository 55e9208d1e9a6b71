// Package diskstorage implements the side property store for fields
// declared on-disk in a schema.
//
// On-disk property values never enter the graph database: the persistence
// engine writes them here keyed by the owning entity's internal id and
// field name, and overlays them onto instances after a load. The store is
// an optional collaborator - an OGM client without one fails only when a
// schema actually declares an on-disk field.
//
// BadgerStore is the shipped implementation, backed by BadgerDB with
// values serialized as JSON. Each value carries a numeric kind tag so
// that integer and float properties keep their kind across the round
// trip: integers read back as int64 and floats as float64, matching the
// types the bolt driver reports for in-graph properties.
package diskstorage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/orneryd/bifrost/pkg/convert"
)

// ErrPropertyNotFound is the not-found-class error: the entity/field pair
// has no stored value. Loaders treat it as "use the fallback"; every other
// error is a real failure and propagates.
var ErrPropertyNotFound = errors.New("diskstorage: property not found")

// Store persists and retrieves individual property values keyed by entity
// identity and field name.
type Store interface {
	// SaveNodeProperty stores a node's field value.
	SaveNodeProperty(nodeID int64, field string, value any) error

	// LoadNodeProperty returns a node's stored field value, or fallback
	// when no value is stored.
	LoadNodeProperty(nodeID int64, field string, fallback any) (any, error)

	// SaveRelationshipProperty stores a relationship's field value.
	SaveRelationshipProperty(relID int64, field string, value any) error

	// LoadRelationshipProperty returns a relationship's stored field
	// value, or fallback when no value is stored.
	LoadRelationshipProperty(relID int64, field string, fallback any) (any, error)

	// Close releases the store's resources.
	Close() error
}

// Key prefixes separating node and relationship properties.
// Single-byte prefixes, following the storage key layout convention.
const (
	prefixNodeProperty = byte(0x01) // 0x01 + nodeID + 0x00 + field -> JSON(record)
	prefixRelProperty  = byte(0x02) // 0x02 + relID + 0x00 + field -> JSON(record)
)

// Numeric kind tags stored alongside each value. JSON alone decodes
// every number as float64; the tag is what lets load hand an integer
// property back as int64.
const (
	kindInt   = "int"
	kindFloat = "float"
)

// record is the stored envelope for one property value.
type record struct {
	Kind  string `json:"kind,omitempty"`
	Value any    `json:"value"`
}

func kindOf(value any) string {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return kindInt
	case float32, float64:
		return kindFloat
	}
	return ""
}

// BadgerStore is a BadgerDB-backed Store.
//
// Example:
//
//	store, err := diskstorage.NewBadgerStore(diskstorage.BadgerOptions{DataDir: "./props"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	store.SaveNodeProperty(42, "blob", "a very large value")
type BadgerStore struct {
	db *badger.DB
}

// BadgerOptions configures a BadgerStore.
type BadgerOptions struct {
	// DataDir is the directory for data files. Required unless InMemory.
	DataDir string

	// InMemory runs BadgerDB without persistence. Useful for tests.
	InMemory bool

	// SyncWrites forces fsync after each write. Slower but more durable.
	SyncWrites bool
}

// NewBadgerStore opens (or creates) a badger-backed property store.
func NewBadgerStore(opts BadgerOptions) (*BadgerStore, error) {
	badgerOpts := badger.DefaultOptions(opts.DataDir)
	badgerOpts.InMemory = opts.InMemory
	badgerOpts.SyncWrites = opts.SyncWrites
	badgerOpts.Logger = nil
	if opts.InMemory {
		badgerOpts.Dir = ""
		badgerOpts.ValueDir = ""
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("diskstorage: open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) SaveNodeProperty(nodeID int64, field string, value any) error {
	return s.save(propertyKey(prefixNodeProperty, nodeID, field), value)
}

func (s *BadgerStore) LoadNodeProperty(nodeID int64, field string, fallback any) (any, error) {
	return s.load(propertyKey(prefixNodeProperty, nodeID, field), fallback)
}

func (s *BadgerStore) SaveRelationshipProperty(relID int64, field string, value any) error {
	return s.save(propertyKey(prefixRelProperty, relID, field), value)
}

func (s *BadgerStore) LoadRelationshipProperty(relID int64, field string, fallback any) (any, error) {
	return s.load(propertyKey(prefixRelProperty, relID, field), fallback)
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) save(key []byte, value any) error {
	data, err := json.Marshal(record{Kind: kindOf(value), Value: value})
	if err != nil {
		return fmt.Errorf("diskstorage: encode property: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("diskstorage: save property: %w", err)
	}
	return nil
}

func (s *BadgerStore) load(key []byte, fallback any) (any, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fallback, nil
	}
	if err != nil {
		return nil, fmt.Errorf("diskstorage: load property: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("diskstorage: decode property: %w", err)
	}
	switch rec.Kind {
	case kindInt:
		if n, ok := convert.ToInt64(rec.Value); ok {
			return n, nil
		}
	case kindFloat:
		if f, ok := convert.ToFloat64(rec.Value); ok {
			return f, nil
		}
	}
	return rec.Value, nil
}

func propertyKey(prefix byte, id int64, field string) []byte {
	key := make([]byte, 0, 1+8+1+len(field))
	key = append(key, prefix)
	for shift := 56; shift >= 0; shift -= 8 {
		key = append(key, byte(id>>shift))
	}
	key = append(key, 0x00)
	key = append(key, field...)
	return key
}
