package mdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
)

// Record is a single document to be stored.
// Field order is preserved when it is written.
type Record = bson.D

// Records is either a single Record or a sequence of them.
// Construct values with One or Many, or RecordsOf for untyped payloads.
type Records interface {
	// Documents returns the records in insertion order.
	Documents() []Record

	// Multiple is true if the records should be written with a multi-insert.
	Multiple() bool
}

// ErrTypeMismatch is returned when a payload is not a mapping or a sequence of mappings.
var ErrTypeMismatch = errors.New("records must be a mapping or a sequence of mappings")

// ErrNoRecords is returned when asked to insert an empty sequence.
var ErrNoRecords = errors.New("no records to insert")

type single struct {
	record Record
}

func (s single) Documents() []Record {
	return []Record{s.record}
}

func (s single) Multiple() bool {
	return false
}

type multiple struct {
	records []Record
}

func (m multiple) Documents() []Record {
	return m.records
}

func (m multiple) Multiple() bool {
	return true
}

// One wraps a single record.
func One(record Record) Records {
	return single{record: record}
}

// Many wraps a sequence of records.
func Many(records ...Record) Records {
	return multiple{records: records}
}

// RecordsOf converts an untyped payload into Records.
// Mappings (bson.D, bson.M, map[string]interface{}) become One,
// sequences of mappings become Many.
// Map keys are sorted so that the resulting documents are deterministic.
// Anything else returns ErrTypeMismatch.
func RecordsOf(payload interface{}) (Records, error) {
	switch p := payload.(type) {
	case Records:
		return p, nil
	case []Record:
		for i, record := range p {
			if record == nil {
				return nil, fmt.Errorf("element %d is nil: %w", i, ErrTypeMismatch)
			}
		}
		return Many(p...), nil
	case []bson.M:
		records := make([]Record, len(p))
		for i, m := range p {
			if m == nil {
				return nil, fmt.Errorf("element %d is nil: %w", i, ErrTypeMismatch)
			}
			records[i] = fromMap(m)
		}
		return Many(records...), nil
	case []map[string]interface{}:
		records := make([]Record, len(p))
		for i, m := range p {
			if m == nil {
				return nil, fmt.Errorf("element %d is nil: %w", i, ErrTypeMismatch)
			}
			records[i] = fromMap(m)
		}
		return Many(records...), nil
	case bson.A:
		return manyOf(p)
	case []interface{}:
		return manyOf(p)
	}

	if record, ok := recordOf(payload); ok {
		return One(record), nil
	}

	return nil, fmt.Errorf("payload type %T: %w", payload, ErrTypeMismatch)
}

// manyOf checks every element before any conversion result is returned.
func manyOf(items []interface{}) (Records, error) {
	records := make([]Record, len(items))
	for i, item := range items {
		record, ok := recordOf(item)
		if !ok {
			return nil, fmt.Errorf("element %d type %T: %w", i, item, ErrTypeMismatch)
		}
		records[i] = record
	}

	return Many(records...), nil
}

func recordOf(item interface{}) (Record, bool) {
	switch m := item.(type) {
	case bson.D:
		return m, m != nil
	case bson.M:
		return fromMap(m), m != nil
	case map[string]interface{}:
		return fromMap(m), m != nil
	default:
		return nil, false
	}
}

func fromMap(m map[string]interface{}) Record {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	record := make(Record, 0, len(keys))
	for _, key := range keys {
		record = append(record, bson.E{Key: key, Value: m[key]})
	}

	return record
}

// ParseExtJSON parses relaxed MongoDB Extended JSON holding either
// a single document or an array of documents.
// The data must be exactly one JSON value, trailing content is rejected
// with bsonrw.ErrInvalidJSON.
func ParseExtJSON(data []byte) (Records, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("unmarshal extended JSON: %w", bsonrw.ErrInvalidJSON)
	}

	// The decoder requires a document at the top level so wrap the payload.
	// A single valid JSON value cannot add keys to the wrapper.
	wrapped := make([]byte, 0, len(data)+14)
	wrapped = append(wrapped, `{"records":`...)
	wrapped = append(wrapped, data...)
	wrapped = append(wrapped, '}')

	var holder struct {
		Records interface{} `bson:"records"`
	}
	if err := bson.UnmarshalExtJSON(wrapped, false, &holder); err != nil {
		return nil, fmt.Errorf("unmarshal extended JSON: %w", err)
	}

	return RecordsOf(holder.Records)
}
