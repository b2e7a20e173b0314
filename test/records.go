package test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"
)

// SimpleCSV has the two rows [{"a":1,"b":2},{"a":3,"b":4}].
const SimpleCSV = "a,b\n1,2\n3,4\n"

// MixedCSV exercises cell type conversion.
const MixedCSV = `alpha,bravo,charlie,delta,echo
one,1,1.5,true,
two,2,2.25,FALSE,x
three,3,,false
`

////////////////////////////////////////////////////////////////////////////////

var (
	SimpleRows = []bson.D{
		{{"a", int64(1)}, {"b", int64(2)}},
		{{"a", int64(3)}, {"b", int64(4)}},
	}
	MixedRows = []bson.D{
		{{"alpha", "one"}, {"bravo", int64(1)}, {"charlie", 1.5}, {"delta", true}, {"echo", nil}},
		{{"alpha", "two"}, {"bravo", int64(2)}, {"charlie", 2.25}, {"delta", false}, {"echo", "x"}},
		{{"alpha", "three"}, {"bravo", int64(3)}, {"charlie", nil}, {"delta", false}, {"echo", nil}},
	}
)

////////////////////////////////////////////////////////////////////////////////

const (
	Charlie1 = "One is the loneliest number"
)

var (
	Record1 = bson.D{
		{"alpha", "one"},
		{"bravo", int64(1)},
		{"charlie", Charlie1},
	}
	Record2 = bson.D{
		{"alpha", "two"},
		{"bravo", int64(2)},
		{"charlie", "It takes two to tango"},
	}
	Record3 = bson.D{
		{"alpha", "three"},
		{"bravo", int64(3)},
		{"charlie", "Three can keep a secret if two of them are dead"},
	}
)

////////////////////////////////////////////////////////////////////////////////

// WriteFile writes content to name in a fresh temporary directory and returns the path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// WriteXLSX writes rows to the named sheet of a new workbook and returns the path.
// The first row is the header.
func WriteXLSX(t *testing.T, name, sheet string, rows [][]interface{}) string {
	t.Helper()
	workbook := excelize.NewFile()
	defer func() { _ = workbook.Close() }()
	if sheet != "Sheet1" {
		_, err := workbook.NewSheet(sheet)
		require.NoError(t, err)
		require.NoError(t, workbook.DeleteSheet("Sheet1"))
	}
	for r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		require.NoError(t, err)
		require.NoError(t, workbook.SetSheetRow(sheet, cell, &rows[r]))
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, workbook.SaveAs(path))
	return path
}
