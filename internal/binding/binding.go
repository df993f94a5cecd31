// Package binding projects DataFrame rows onto caller-declared record types.
//
// A Shape lists named accessors, each reading one column as a declared kind
// and storing it into a T through a setter. Bind checks the shape against a
// frame once; rows are then read without further validation.
package binding

import (
	"fmt"
	"iter"

	"github.com/paveg/rframe/internal/config"
	"github.com/paveg/rframe/internal/dataframe"
	"github.com/paveg/rframe/internal/errors"
	"github.com/paveg/rframe/internal/logging"
	"github.com/paveg/rframe/internal/scalar"
	"github.com/paveg/rframe/internal/series"
	"go.uber.org/zap"
)

// Setter stores a bound value into a record
type Setter[T any] func(*T, scalar.Scalar)

type field[T any] struct {
	name   string
	column string
	kind   scalar.Kind
	set    Setter[T]
}

// Shape declares the accessors of a record type T
type Shape[T any] struct {
	fields []field[T]
}

// NewShape creates an empty shape
func NewShape[T any]() *Shape[T] {
	return &Shape[T]{}
}

// Field adds an accessor reading the column of the same name
func (s *Shape[T]) Field(name string, kind scalar.Kind, set Setter[T]) *Shape[T] {
	return s.FieldAs(name, name, kind, set)
}

// FieldAs adds an accessor reading column. KindUntyped accepts any column kind.
func (s *Shape[T]) FieldAs(name, column string, kind scalar.Kind, set Setter[T]) *Shape[T] {
	s.fields = append(s.fields, field[T]{name: name, column: column, kind: kind, set: set})
	return s
}

// Names returns the accessor names in declaration order
func (s *Shape[T]) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}
	return names
}

type options struct {
	strict bool
}

// Option configures Bind
type Option func(*options)

// Strict makes Bind fail on a missing or mistyped column
func Strict() Option {
	return func(o *options) { o.strict = true }
}

// Permissive makes Bind substitute an all-missing column of the declared
// kind for a missing or mistyped column. The substitute is private to the
// accessor; the bound frame is not changed.
func Permissive() Option {
	return func(o *options) { o.strict = false }
}

// Binder reads the rows of a frame as T
type Binder[T any] struct {
	fields map[string]field[T]
	order  []field[T]
	subs   map[string]*series.Series
	df     *dataframe.DataFrame
}

// assignable reports whether a column of kind actual can be read as declared
func assignable(declared, actual scalar.Kind) bool {
	if declared == scalar.KindUntyped || actual == scalar.KindUntyped || declared == actual {
		return true
	}
	_, err := scalar.Missing(actual).As(declared)
	return err == nil
}

// Bind validates shape against df. The binder works on a copy of df taken
// here, so later changes to df are not seen.
func Bind[T any](shape *Shape[T], df *dataframe.DataFrame, opts ...Option) (*Binder[T], error) {
	o := options{strict: config.GetGlobalConfig().StrictBinding}
	for _, opt := range opts {
		opt(&o)
	}

	b := &Binder[T]{
		fields: make(map[string]field[T], len(shape.fields)),
		subs:   make(map[string]*series.Series),
		df:     df.Clone(),
	}
	for _, f := range shape.fields {
		if _, dup := b.fields[f.name]; dup {
			return nil, errors.NewDuplicateColumnError("Bind", f.name)
		}
		if err := b.check(f, o.strict); err != nil {
			return nil, err
		}
		b.fields[f.name] = f
		b.order = append(b.order, f)
	}
	return b, nil
}

func (b *Binder[T]) check(f field[T], strict bool) error {
	kind, err := b.df.KindOf(f.column)
	var problem error
	switch {
	case err != nil:
		problem = &errors.DataFrameError{
			Kind:    errors.KindUnconvertableType,
			Op:      "Bind",
			Column:  f.column,
			Message: fmt.Sprintf("no column for accessor %q", f.name),
		}
	case !assignable(f.kind, kind):
		problem = errors.NewTypeMismatchError("Bind", f.column, f.kind.String(), kind.String())
	default:
		return nil
	}

	if strict {
		return problem
	}
	logging.Named("binding").Warn("substituting missing values",
		zap.String("accessor", f.name), zap.String("column", f.column), zap.Error(problem))
	b.subs[f.name] = series.Missing(f.kind, b.df.NRow())
	return nil
}

// Len returns the number of rows
func (b *Binder[T]) Len() int {
	return b.df.NRow()
}

// Frame returns the frame the binder reads
func (b *Binder[T]) Frame() *dataframe.DataFrame {
	return b.df
}

// Row returns the bound row at index i
func (b *Binder[T]) Row(i int) (*BoundRow[T], error) {
	r, err := b.df.Row(i)
	if err != nil {
		return nil, err
	}
	return &BoundRow[T]{binder: b, row: r}, nil
}

// All iterates over the rows coerced to T
func (b *Binder[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, r := range b.df.Rows() {
			v, err := (&BoundRow[T]{binder: b, row: r}).Coerce()
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

// Slice returns every row coerced to T
func (b *Binder[T]) Slice() ([]T, error) {
	out := make([]T, 0, b.Len())
	for v, err := range b.All() {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// BoundRow is one row read through a Binder
type BoundRow[T any] struct {
	binder *Binder[T]
	row    *dataframe.Row
}

// Index returns the row index
func (r *BoundRow[T]) Index() int {
	return r.row.Index()
}

// Row returns the underlying row view
func (r *BoundRow[T]) Row() *dataframe.Row {
	return r.row
}

// Get returns the accessor's value converted to its declared kind
func (r *BoundRow[T]) Get(accessor string) (scalar.Scalar, error) {
	f, ok := r.binder.fields[accessor]
	if !ok {
		return scalar.NA, errors.NewUnsupportedError("BoundRow.Get", fmt.Sprintf("accessor %q", accessor))
	}
	if sub, ok := r.binder.subs[accessor]; ok {
		return sub.At(r.row.Index()), nil
	}
	v, err := r.row.Get(f.column)
	if err != nil {
		return scalar.NA, err
	}
	if f.kind == scalar.KindUntyped {
		return v, nil
	}
	c, err := v.As(f.kind)
	if err != nil {
		return scalar.NA, errors.Wrap("BoundRow.Get", f.column, err)
	}
	return c, nil
}

// Coerce builds a T from every accessor
func (r *BoundRow[T]) Coerce() (T, error) {
	var out T
	for _, f := range r.binder.order {
		v, err := r.Get(f.name)
		if err != nil {
			return out, err
		}
		if f.set != nil {
			f.set(&out, v)
		}
	}
	return out, nil
}

// Lag returns the bound row n positions before this one
func (r *BoundRow[T]) Lag(n int) (*BoundRow[T], error) {
	prev, err := r.row.Lag(n)
	if err != nil {
		return nil, err
	}
	return &BoundRow[T]{binder: r.binder, row: prev}, nil
}

// Lead returns the bound row n positions after this one
func (r *BoundRow[T]) Lead(n int) (*BoundRow[T], error) {
	next, err := r.row.Lead(n)
	if err != nil {
		return nil, err
	}
	return &BoundRow[T]{binder: r.binder, row: next}, nil
}

// LagCoerce returns the row n positions before this one as T
func (r *BoundRow[T]) LagCoerce(n int) (T, error) {
	prev, err := r.Lag(n)
	if err != nil {
		var zero T
		return zero, err
	}
	return prev.Coerce()
}

// LeadCoerce returns the row n positions after this one as T
func (r *BoundRow[T]) LeadCoerce(n int) (T, error) {
	next, err := r.Lead(n)
	if err != nil {
		var zero T
		return zero, err
	}
	return next.Coerce()
}
