package mdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsonrw"

	"github.com/madkins23/go-mongo-ingest/test"
)

func TestOne(t *testing.T) {
	records := One(test.Record1)
	assert.False(t, records.Multiple())
	assert.Equal(t, []Record{test.Record1}, records.Documents())
}

func TestMany(t *testing.T) {
	records := Many(test.Record1, test.Record2)
	assert.True(t, records.Multiple())
	assert.Equal(t, []Record{test.Record1, test.Record2}, records.Documents())
	assert.Empty(t, Many().Documents())
	assert.True(t, Many().Multiple())
}

func TestRecordsOfMappings(t *testing.T) {
	sorted := Record{{"alpha", "one"}, {"bravo", 1}}
	for name, payload := range map[string]interface{}{
		"bson.D": bson.D{{"alpha", "one"}, {"bravo", 1}},
		"bson.M": bson.M{"bravo": 1, "alpha": "one"},
		"map":    map[string]interface{}{"bravo": 1, "alpha": "one"},
	} {
		t.Run(name, func(t *testing.T) {
			records, err := RecordsOf(payload)
			require.NoError(t, err)
			assert.False(t, records.Multiple())
			assert.Equal(t, []Record{sorted}, records.Documents())
		})
	}
}

func TestRecordsOfSequences(t *testing.T) {
	expected := []Record{{{"a", 1}}, {{"b", 2}}}
	for name, payload := range map[string]interface{}{
		"[]bson.D":    []bson.D{{{"a", 1}}, {{"b", 2}}},
		"[]bson.M":    []bson.M{{"a": 1}, {"b": 2}},
		"[]map":       []map[string]interface{}{{"a": 1}, {"b": 2}},
		"bson.A":      bson.A{bson.D{{"a", 1}}, bson.M{"b": 2}},
		"[]interface": []interface{}{map[string]interface{}{"a": 1}, bson.D{{"b", 2}}},
		"Records":     Many(Record{{"a", 1}}, Record{{"b", 2}}),
	} {
		t.Run(name, func(t *testing.T) {
			records, err := RecordsOf(payload)
			require.NoError(t, err)
			assert.True(t, records.Multiple())
			assert.Equal(t, expected, records.Documents())
		})
	}
}

func TestRecordsOfEmptySequence(t *testing.T) {
	records, err := RecordsOf([]interface{}{})
	require.NoError(t, err)
	assert.True(t, records.Multiple())
	assert.Empty(t, records.Documents())
}

func TestRecordsOfMismatch(t *testing.T) {
	for name, payload := range map[string]interface{}{
		"nil":           nil,
		"string":        "alpha",
		"int":           17,
		"struct":        struct{ Alpha string }{"one"},
		"string map":    map[string]string{"alpha": "one"},
		"nil bson.D":    bson.D(nil),
		"nil bson.M":    bson.M(nil),
		"strings":       []string{"alpha", "bravo"},
		"mixed":         []interface{}{bson.M{"a": 1}, "bravo"},
		"nested":        []interface{}{[]interface{}{bson.M{"a": 1}}},
		"nil element":   []interface{}{bson.M{"a": 1}, nil},
		"nil []bson.D":  []bson.D{{{"a", 1}}, nil},
		"nil []bson.M":  []bson.M{{"a": 1}, nil},
		"nil []map":     []map[string]interface{}{nil},
		"bson.A scalar": bson.A{1, 2},
	} {
		t.Run(name, func(t *testing.T) {
			records, err := RecordsOf(payload)
			assert.ErrorIs(t, err, ErrTypeMismatch)
			assert.Nil(t, records)
		})
	}
}

func TestParseExtJSONDocument(t *testing.T) {
	records, err := ParseExtJSON([]byte(`{"alpha": "one", "bravo": 1}`))
	require.NoError(t, err)
	require.False(t, records.Multiple())
	require.Len(t, records.Documents(), 1)
	assert.Equal(t, Record{{"alpha", "one"}, {"bravo", int32(1)}}, records.Documents()[0])
}

func TestParseExtJSONArray(t *testing.T) {
	records, err := ParseExtJSON([]byte(`[{"a": 1, "b": 2}, {"a": 3, "b": 4.5}]`))
	require.NoError(t, err)
	require.True(t, records.Multiple())
	assert.Equal(t, []Record{
		{{"a", int32(1)}, {"b", int32(2)}},
		{{"a", int32(3)}, {"b", 4.5}},
	}, records.Documents())
}

func TestParseExtJSONMismatch(t *testing.T) {
	for _, payload := range []string{`"alpha"`, `17`, `[1, 2]`, `[{"a": 1}, "b"]`, `null`} {
		_, err := ParseExtJSON([]byte(payload))
		assert.ErrorIs(t, err, ErrTypeMismatch, payload)
	}
}

func TestParseExtJSONBad(t *testing.T) {
	for _, payload := range []string{
		`{"alpha": `,
		``,
		`{"a": 1}, "records": {"b": 2}`,
		`{"a": 1}} trailing garbage`,
		`{"a": 1}, "x": 5`,
		`[{"a": 1}], "records": [{"b": 2}]`,
		`{"a": 1} {"b": 2}`,
	} {
		records, err := ParseExtJSON([]byte(payload))
		require.Error(t, err, payload)
		assert.ErrorIs(t, err, bsonrw.ErrInvalidJSON, payload)
		assert.NotErrorIs(t, err, ErrTypeMismatch, payload)
		assert.Nil(t, records, payload)
	}
}

func TestParseExtJSONWhitespace(t *testing.T) {
	records, err := ParseExtJSON([]byte("\n  {\"alpha\": {\"$numberLong\": \"7\"}}\n"))
	require.NoError(t, err)
	require.Len(t, records.Documents(), 1)
	assert.Equal(t, Record{{"alpha", int64(7)}}, records.Documents()[0])
}
