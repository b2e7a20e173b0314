package mdbtab

import (
	"encoding/csv"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
)

// ReadCSV reads comma separated data with a header row.
func ReadCSV(r io.Reader, opts ...Option) ([]bson.D, error) {
	cfg := newConfig(opts)

	reader := csv.NewReader(r)
	reader.Comma = cfg.comma
	// Row width is checked against the header in toDocuments.
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}

	return toDocuments(rows, func(_, _ int, cell string) (interface{}, error) {
		return cellValue(cell, cfg.rawStrings), nil
	})
}
