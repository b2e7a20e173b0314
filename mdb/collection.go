package mdb

import (
	"context"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection is the handle for one Mongo collection within a Database.
type Collection struct {
	*mongo.Collection
	access   *Access
	database *Database
}

// FullName returns the collection name qualified by its database name.
func (c *Collection) FullName() string {
	return c.database.Name() + "." + c.Name()
}

// ContextWithTimeout returns the base context with the collection access timeout.
func (c *Collection) ContextWithTimeout() (context.Context, context.CancelFunc) {
	return c.access.ContextWithTimeout(c.access.config.Collection)
}

// InsertRecords writes the records using InsertOne for a single record
// or InsertMany for a sequence.
// Every record is checked before anything is sent to the server.
func (c *Collection) InsertRecords(records Records) error {
	if records == nil {
		return fmt.Errorf("nil records: %w", ErrTypeMismatch)
	}

	documents := records.Documents()
	if len(documents) == 0 {
		return ErrNoRecords
	}
	for i, document := range documents {
		if document == nil {
			return fmt.Errorf("element %d is nil: %w", i, ErrTypeMismatch)
		}
	}

	ctx, cancel := c.access.ContextWithTimeout(c.access.config.Timeout.Insert)
	defer cancel()

	if !records.Multiple() {
		if _, err := c.InsertOne(ctx, documents[0]); err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
		c.access.Info("Inserted 1 record into " + c.FullName())
		return nil
	}

	items := make([]interface{}, len(documents))
	for i, document := range documents {
		items[i] = document
	}
	result, err := c.InsertMany(ctx, items)
	if err != nil {
		return fmt.Errorf("insert %d records: %w", len(items), err)
	}
	c.access.Info("Inserted " + strconv.Itoa(len(result.InsertedIDs)) + " records into " + c.FullName())

	return nil
}

// Count documents in collection matching filter.
func (c *Collection) Count(filter bson.D) (int64, error) {
	if filter == nil {
		filter = NoFilter()
	}

	ctx, cancel := c.ContextWithTimeout()
	defer cancel()
	if count, err := c.CountDocuments(ctx, filter); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	} else {
		return count, nil
	}
}

// DeleteAll items from this collection.
func (c *Collection) DeleteAll() error {
	ctx, cancel := c.ContextWithTimeout()
	defer cancel()
	_, err := c.DeleteMany(ctx, NoFilter())
	if err != nil {
		return fmt.Errorf("delete all: %w", err)
	}
	return nil
}

// Drop collection.
func (c *Collection) Drop() error {
	ctx, cancelFn := c.ContextWithTimeout()
	defer cancelFn()
	if err := c.Collection.Drop(ctx); err != nil {
		return fmt.Errorf("drop collection %s: %w", c.FullName(), err)
	}
	return nil
}

////////////////////////////////////////////////////////////////////////////////

// NoFilter returns an empty bson.D object for use as an empty filter.
func NoFilter() bson.D {
	return bson.D{}
}
