// Package mdbtab reads tabular files (CSV and Excel) into BSON documents.
//
// The first row of the file names the fields.
// Each following row becomes one bson.D with the fields in column order.
// Whole files are read into memory, there is no streaming.
//
// CSV cell text is converted to int64, float64 or bool where it parses as one.
// Empty cells, infinities and the usual missing value markers
// (NA, N/A, NULL, null, #N/A, NaN, None and similar) become nil.
// Everything else stays a string.
//
// Excel cells are read by stored value rather than display text.
// Number cells become int64 or float64, or time.Time when they carry a date format.
// Boolean cells become bool, error cells nil and text cells stay strings.
//
// Types are decided cell by cell, not per column.
// A column holding 1 and x is stored as an int64 and a string,
// and an integer column with a blank keeps its int64 values next to a nil.
// Loaders that infer a type for the whole column would store two strings
// in the first case and float64 values in the second.
// Use WithRawStrings to skip conversion entirely.
package mdbtab
