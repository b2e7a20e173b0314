package mdb

import (
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
)

// Database is the handle for one logical Mongo database.
// It caches the collections opened under it.
type Database struct {
	access      *Access
	database    *mongo.Database
	collections map[string]*Collection
	mu          sync.Mutex
}

func newDatabase(access *Access, name string) *Database {
	return &Database{
		access:      access,
		database:    access.client.Database(name),
		collections: make(map[string]*Collection),
	}
}

// Name of the database.
func (d *Database) Name() string {
	return d.database.Name()
}

// Mongo returns the underlying Mongo database object.
func (d *Database) Mongo() *mongo.Database {
	return d.database
}

// CollectionFinisher provides a way to add special processing when provisioning a collection.
type CollectionFinisher func(access *Access, collection *Collection) error

// CreateCollection returns the handle for the named collection, creating it if necessary.
// Finishers are only run when the handle is first provisioned.
// If a finisher fails the handle is not cached so the next call tries again.
func (d *Database) CreateCollection(name string, finishers ...CollectionFinisher) (*Collection, error) {
	if name == "" {
		return nil, ErrNoCollectionName
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if collection, found := d.collections[name]; found {
		return collection, nil
	}

	collection := &Collection{
		Collection: d.database.Collection(name),
		access:     d.access,
		database:   d,
	}

	for i, finisher := range finishers {
		if err := finisher(d.access, collection); err != nil {
			return nil, fmt.Errorf("collection finisher #%d: %w", i, err)
		}
	}

	d.collections[name] = collection
	d.access.Info("Provisioned collection " + collection.FullName())

	return collection, nil
}

// Collection is a synonym for CreateCollection.
func (d *Database) Collection(name string, finishers ...CollectionFinisher) (*Collection, error) {
	return d.CreateCollection(name, finishers...)
}

// Collections returns the sorted names of all provisioned collections.
func (d *Database) Collections() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	names := make([]string, 0, len(d.collections))
	for name := range d.collections {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Drop the database on the server.
// Cached collection handles remain valid, Mongo recreates on the next write.
func (d *Database) Drop() error {
	ctx, cancel := d.access.ContextWithTimeout(d.access.config.Timeout.Collection)
	defer cancel()
	if err := d.database.Drop(ctx); err != nil {
		return fmt.Errorf("drop database %s: %w", d.Name(), err)
	}

	return nil
}
