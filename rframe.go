// Package rframe provides a typed, missing-value-aware DataFrame library.
// This package is the public API for the library; the implementation lives
// in internal packages.
//
// A DataFrame is an ordered set of equal-length named Series. Every Series
// holds Scalars of one Kind, and every kind has its own missing value, which
// prints as "NA".
//
//	df := rframe.New()
//	_ = df.AddValues(map[string]any{"city": "Oslo", "temp": 4.5})
//	_ = df.AddValues(map[string]any{"city": "Lima", "temp": nil})
//	fmt.Println(df.NRow()) // 2
package rframe

import (
	stdio "io"
	"strings"

	"github.com/paveg/rframe/internal/binding"
	"github.com/paveg/rframe/internal/collect"
	"github.com/paveg/rframe/internal/config"
	"github.com/paveg/rframe/internal/convert"
	"github.com/paveg/rframe/internal/dataframe"
	"github.com/paveg/rframe/internal/errors"
	"github.com/paveg/rframe/internal/io"
	"github.com/paveg/rframe/internal/scalar"
	"github.com/paveg/rframe/internal/series"
)

type (
	// DataFrame is a table of named, typed columns with optional grouping
	DataFrame = dataframe.DataFrame
	// Row is a read-only view of one DataFrame row
	Row = dataframe.Row
	// Group is one partition of a grouped DataFrame
	Group = dataframe.Group
	// Predicate selects rows by the value of one column
	Predicate = dataframe.Predicate
	// Series is a homogeneous column
	Series = series.Series
	// Scalar is a single value of one Kind, or that kind's missing value
	Scalar = scalar.Scalar
	// Kind identifies a scalar type
	Kind = scalar.Kind
	// Record is an ordered list of named values
	Record = scalar.Record
	// Named is one entry of a Record
	Named = scalar.Named
	// Levels is the label set of a factor
	Levels = scalar.Levels
	// Config holds library-wide settings
	Config = config.Config
	// Error is the error type returned by DataFrame operations
	Error = errors.DataFrameError
)

// Shape declares the accessors of a record type bound to DataFrame rows
type Shape[T any] = binding.Shape[T]

// Binder reads DataFrame rows as T
type Binder[T any] = binding.Binder[T]

// BoundRow is one row read through a Binder
type BoundRow[T any] = binding.BoundRow[T]

// Rule extracts one column value from an item being collected
type Rule[T any] = collect.Rule[T]

// Collector turns items into DataFrame rows
type Collector[T any] = collect.Collector[T]

// Scalar kinds
const (
	KindUntyped = scalar.KindUntyped
	KindInteger = scalar.KindInteger
	KindNumber  = scalar.KindNumber
	KindText    = scalar.KindText
	KindLogical = scalar.KindLogical
	KindDate    = scalar.KindDate
	KindFactor  = scalar.KindFactor
)

// Error kinds, for use with errors.Is
var (
	ErrBoundary         = errors.ErrBoundary
	ErrNameNotFound     = errors.ErrNameNotFound
	ErrIncompatibleType = errors.ErrIncompatibleType
	ErrUnconvertable    = errors.ErrUnconvertableType
	ErrUnsupported      = errors.ErrUnsupported
)

// NA is the untyped missing value
var NA = scalar.NA

// New creates an empty DataFrame
func New() *DataFrame {
	return dataframe.New()
}

// FromColumns creates a DataFrame from parallel name and series lists
func FromColumns(names []string, cols []*Series) (*DataFrame, error) {
	return dataframe.FromColumns(names, cols)
}

// BindRows concatenates frames into a new DataFrame
func BindRows(frames ...*DataFrame) (*DataFrame, error) {
	return dataframe.BindRows(frames...)
}

// Where creates a Predicate on column
func Where(column string, match func(Scalar) bool) Predicate {
	return dataframe.Where(column, match)
}

// Vector converts a Go slice, such as []int32 or []*string, to a Series
func Vector(values any) (*Series, error) {
	return convert.Vector(values)
}

// Value converts a Go value to a Scalar
func Value(v any) (Scalar, error) {
	return convert.FromHost(v)
}

// Integer returns an integer scalar
func Integer(v int32) Scalar { return scalar.Integer(v) }

// Number returns a numeric scalar
func Number(v float64) Scalar { return scalar.Number(v) }

// Text returns a character scalar
func Text(v string) Scalar { return scalar.Text(v) }

// Logical returns a logical scalar
func Logical(v bool) Scalar { return scalar.Logical(v) }

// Date parses a yyyy-mm-dd date. Bad input yields a missing date.
func Date(v string) Scalar { return scalar.ParseDate(v) }

// Missing returns the missing value of kind
func Missing(kind Kind) Scalar { return scalar.Missing(kind) }

// NewShape creates an empty binding shape for T
func NewShape[T any]() *Shape[T] {
	return binding.NewShape[T]()
}

// Bind checks shape against df and returns a binder over a copy of df.
// With strict set, a missing or mistyped column is an error; otherwise its
// accessor reads missing values.
func Bind[T any](shape *Shape[T], df *DataFrame, strict bool) (*Binder[T], error) {
	if strict {
		return binding.Bind(shape, df, binding.Strict())
	}
	return binding.Bind(shape, df, binding.Permissive())
}

// Mapping creates a collection Rule
func Mapping[T any](label string, fn func(T) any) Rule[T] {
	return collect.Mapping(label, fn)
}

// Collect builds a DataFrame with one row per item
func Collect[T any](items []T, rules ...Rule[T]) (*DataFrame, error) {
	return collect.NewCollector(rules).Collect(items)
}

// CollectMaps builds a DataFrame with one row per map
func CollectMaps(rows []map[string]any) (*DataFrame, error) {
	return collect.CollectMaps(rows)
}

// ReadCSV reads CSV with a header line, inferring column kinds
func ReadCSV(r stdio.Reader) (*DataFrame, error) {
	return io.NewCSVReader(r, io.DefaultCSVOptions()).Read()
}

// WriteCSV writes df as CSV with a header line and NA for missing values
func WriteCSV(w stdio.Writer, df *DataFrame) error {
	return io.NewCSVWriter(w, io.DefaultCSVOptions()).Write(df)
}

// ReadJSON reads a JSON array of row objects, or one object per line when
// lines is set
func ReadJSON(r stdio.Reader, lines bool) (*DataFrame, error) {
	opts := io.DefaultJSONOptions()
	if lines {
		opts.Format = io.JSONLines
	}
	return io.NewJSONReader(r, opts).Read()
}

// WriteJSON writes df as a JSON array of row objects, or one object per line
// when lines is set
func WriteJSON(w stdio.Writer, df *DataFrame, lines bool) error {
	opts := io.DefaultJSONOptions()
	if lines {
		opts.Format = io.JSONLines
	}
	return io.NewJSONWriter(w, opts).Write(df)
}

// Print renders df as a table
func Print(w stdio.Writer, df *DataFrame) error {
	return io.NewTableWriter(w, io.DefaultTableOptions()).Write(df)
}

// Format renders df as a table string
func Format(df *DataFrame) (string, error) {
	var sb strings.Builder
	if err := Print(&sb, df); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// DefaultConfig returns the default settings
func DefaultConfig() Config {
	return config.NewConfig()
}

// Configure replaces the library-wide settings after validating them
func Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	config.SetGlobalConfig(cfg)
	return nil
}

// CurrentConfig returns the library-wide settings
func CurrentConfig() Config {
	return config.GetGlobalConfig()
}
