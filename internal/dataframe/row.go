package dataframe

import (
	"iter"
	"slices"

	"github.com/paveg/rframe/internal/errors"
	"github.com/paveg/rframe/internal/scalar"
	"github.com/paveg/rframe/internal/validation"
)

// Row is a materialized view of one row of a DataFrame
type Row struct {
	df     *DataFrame
	index  int
	values scalar.Record
	groups []string
}

// Row returns the row at index i
func (df *DataFrame) Row(i int) (*Row, error) {
	df.mu.RLock()
	defer df.mu.RUnlock()
	if err := validation.ValidateIndex(i, df.rows, "Row"); err != nil {
		return nil, err
	}
	return df.rowLocked(i), nil
}

func (df *DataFrame) rowLocked(i int) *Row {
	return &Row{
		df:     df,
		index:  i,
		values: df.recordLocked(i, df.order),
		groups: slices.Clone(df.groups),
	}
}

// Rows iterates over the rows of a snapshot taken when iteration starts
func (df *DataFrame) Rows() iter.Seq2[int, *Row] {
	snap := df.snapshot()
	return func(yield func(int, *Row) bool) {
		for i := 0; i < snap.rows; i++ {
			if !yield(i, snap.rowLocked(i)) {
				return
			}
		}
	}
}

// Index returns the row index in its frame
func (r *Row) Index() int {
	return r.index
}

// Frame returns the DataFrame the row was read from
func (r *Row) Frame() *DataFrame {
	return r.df
}

// Get returns the value of the named column
func (r *Row) Get(name string) (scalar.Scalar, error) {
	v, ok := r.values.Get(name)
	if !ok {
		return scalar.NA, errors.NewColumnNotFoundError("Row.Get", name)
	}
	return v, nil
}

// Values returns the row as a record in column order
func (r *Row) Values() scalar.Record {
	return append(scalar.Record(nil), r.values...)
}

// Lag returns the row n positions before this one
func (r *Row) Lag(n int) (*Row, error) {
	return r.move("Lag", r.index-n)
}

// Lead returns the row n positions after this one
func (r *Row) Lead(n int) (*Row, error) {
	return r.move("Lead", r.index+n)
}

func (r *Row) move(op string, i int) (*Row, error) {
	r.df.mu.RLock()
	defer r.df.mu.RUnlock()
	if err := validation.ValidateIndex(i, r.df.rows, op); err != nil {
		return nil, err
	}
	return r.df.rowLocked(i), nil
}

// Group returns the values of the frame's grouping columns for this row
func (r *Row) Group() scalar.Record {
	out := make(scalar.Record, 0, len(r.groups))
	for _, g := range r.groups {
		if v, ok := r.values.Get(g); ok {
			out = append(out, scalar.Named{Name: g, Value: v})
		}
	}
	return out
}

func (r *Row) String() string {
	return r.values.String()
}
