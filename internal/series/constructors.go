package series

import (
	"time"

	"github.com/paveg/rframe/internal/scalar"
)

// FromInts creates an integer series. math.MinInt32 entries are missing.
func FromInts(values []int32) *Series {
	s := &Series{kind: scalar.KindInteger, values: make([]scalar.Scalar, len(values))}
	for i, v := range values {
		s.values[i] = scalar.Integer(v)
	}
	return s
}

// FromFloats creates a numeric series. Entries carrying the missing-number
// payload are missing; NaN and infinities are kept.
func FromFloats(values []float64) *Series {
	s := &Series{kind: scalar.KindNumber, values: make([]scalar.Scalar, len(values))}
	for i, v := range values {
		s.values[i] = scalar.Number(v)
	}
	return s
}

// FromStrings creates a text series with no missing values
func FromStrings(values []string) *Series {
	s := &Series{kind: scalar.KindText, values: make([]scalar.Scalar, len(values))}
	for i, v := range values {
		s.values[i] = scalar.Text(v)
	}
	return s
}

// FromNullableStrings creates a text series where nil entries are missing
func FromNullableStrings(values []*string) *Series {
	s := &Series{kind: scalar.KindText, values: make([]scalar.Scalar, len(values))}
	for i, v := range values {
		s.values[i] = scalar.TextPtr(v)
	}
	return s
}

// FromBools creates a logical series with no missing values
func FromBools(values []bool) *Series {
	s := &Series{kind: scalar.KindLogical, values: make([]scalar.Scalar, len(values))}
	for i, v := range values {
		s.values[i] = scalar.Logical(v)
	}
	return s
}

// FromLogicalInts creates a logical series from its integer wire form
func FromLogicalInts(values []int32) *Series {
	s := &Series{kind: scalar.KindLogical, values: make([]scalar.Scalar, len(values))}
	for i, v := range values {
		s.values[i] = scalar.LogicalInt(v)
	}
	return s
}

// FromDates creates a date series
func FromDates(values []time.Time) *Series {
	s := &Series{kind: scalar.KindDate, values: make([]scalar.Scalar, len(values))}
	for i, v := range values {
		s.values[i] = scalar.Date(v)
	}
	return s
}

// FromDateStrings creates a date series from yyyy-mm-dd strings. Unparsable
// entries are missing.
func FromDateStrings(values []string) *Series {
	s := &Series{kind: scalar.KindDate, values: make([]scalar.Scalar, len(values))}
	for i, v := range values {
		s.values[i] = scalar.ParseDate(v)
	}
	return s
}

// FromFactorCodes creates a factor series from 1-based codes into labels
func FromFactorCodes(codes []int32, labels []string) *Series {
	levels := scalar.NewLevels(labels...)
	s := &Series{kind: scalar.KindFactor, levels: levels, values: make([]scalar.Scalar, len(codes))}
	for i, c := range codes {
		s.values[i] = scalar.Factor(c, levels)
	}
	return s
}
