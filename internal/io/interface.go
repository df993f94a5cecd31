// Package io provides I/O operations for reading and writing DataFrame data.
//
// Key components:
//   - DataReader/DataWriter interfaces for pluggable I/O backends
//   - CSVReader/CSVWriter with kind inference and "NA" for missing values
//   - JSONReader/JSONWriter for row objects, as an array or one per line
//   - TableWriter for aligned terminal output
package io

import (
	"io"

	"github.com/paveg/rframe/internal/dataframe"
)

const (
	// DefaultNA is the text written for, and read as, a missing value
	DefaultNA = "NA"
	// DefaultMaxRows is the number of rows TableWriter prints by default
	DefaultMaxRows = 20
)

// DataReader defines the interface for reading data from various sources
type DataReader interface {
	// Read reads data from the source and returns a DataFrame
	Read() (*dataframe.DataFrame, error)
}

// DataWriter defines the interface for writing data to various destinations
type DataWriter interface {
	// Write writes the DataFrame to the destination
	Write(df *dataframe.DataFrame) error
}

// CSVOptions contains configuration options for CSV operations
type CSVOptions struct {
	// Delimiter is the field delimiter (default: comma)
	Delimiter rune
	// Comment is the comment character (default: 0 = disabled)
	Comment rune
	// Header indicates whether the first row contains headers
	Header bool
	// SkipInitialSpace indicates whether to skip initial whitespace
	SkipInitialSpace bool
	// NA is the missing value token. Empty fields are always missing.
	NA string
	// InferKinds detects integer, numeric, logical and date columns.
	// Without it every column is character.
	InferKinds bool
}

// DefaultCSVOptions returns default CSV options
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter:  ',',
		Header:     true,
		NA:         DefaultNA,
		InferKinds: true,
	}
}

// CSVReader reads CSV data and converts it to DataFrames
type CSVReader struct {
	reader  io.Reader
	options CSVOptions
}

// NewCSVReader creates a new CSV reader with the specified options
func NewCSVReader(reader io.Reader, options CSVOptions) *CSVReader {
	return &CSVReader{
		reader:  reader,
		options: options,
	}
}

// CSVWriter writes DataFrames to CSV format
type CSVWriter struct {
	writer  io.Writer
	options CSVOptions
}

// NewCSVWriter creates a new CSV writer with the specified options
func NewCSVWriter(writer io.Writer, options CSVOptions) *CSVWriter {
	return &CSVWriter{
		writer:  writer,
		options: options,
	}
}

// JSONFormat selects the JSON layout
type JSONFormat int

const (
	// JSONArray is a single array of row objects
	JSONArray JSONFormat = iota
	// JSONLines is one row object per line
	JSONLines
)

// JSONOptions contains configuration options for JSON operations
type JSONOptions struct {
	Format JSONFormat
	// MaxRecords limits the rows read, 0 reads everything
	MaxRecords int
	// Indent pretty-prints JSONArray output
	Indent bool
	// Strict fails on values with no scalar mapping instead of storing them as text
	Strict bool
}

// DefaultJSONOptions returns default JSON options
func DefaultJSONOptions() JSONOptions {
	return JSONOptions{Format: JSONArray}
}

// JSONReader reads row objects into DataFrames
type JSONReader struct {
	reader  io.Reader
	options JSONOptions
}

// NewJSONReader creates a new JSON reader with the specified options
func NewJSONReader(reader io.Reader, options JSONOptions) *JSONReader {
	return &JSONReader{reader: reader, options: options}
}

// JSONWriter writes DataFrames as row objects
type JSONWriter struct {
	writer  io.Writer
	options JSONOptions
}

// NewJSONWriter creates a new JSON writer with the specified options
func NewJSONWriter(writer io.Writer, options JSONOptions) *JSONWriter {
	return &JSONWriter{writer: writer, options: options}
}

// TableOptions configures TableWriter
type TableOptions struct {
	// MaxRows limits the printed rows, 0 prints everything
	MaxRows int
	// ShowKinds adds a second header line with column kinds
	ShowKinds bool
	// Title is printed above the table when set
	Title string
}

// DefaultTableOptions returns default table options
func DefaultTableOptions() TableOptions {
	return TableOptions{MaxRows: DefaultMaxRows, ShowKinds: true}
}

// TableWriter renders DataFrames as aligned text tables
type TableWriter struct {
	writer  io.Writer
	options TableOptions
}

// NewTableWriter creates a new table writer with the specified options
func NewTableWriter(writer io.Writer, options TableOptions) *TableWriter {
	return &TableWriter{writer: writer, options: options}
}
