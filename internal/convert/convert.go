// Package convert maps Go host values to scalars and series and back.
package convert

import (
	"math"
	"time"

	"github.com/paveg/rframe/internal/errors"
	"github.com/paveg/rframe/internal/scalar"
	"github.com/paveg/rframe/internal/series"
	"golang.org/x/exp/constraints"
)

// numberLike matches json.Number from both encoding/json and goccy/go-json
type numberLike interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

// Signed converts a signed integer. Values outside the int32 range, or equal
// to the reserved missing sentinel, become numbers.
func Signed[T constraints.Signed](v T) scalar.Scalar {
	i := int64(v)
	if i <= math.MinInt32 || i > math.MaxInt32 {
		return scalar.Number(float64(i))
	}
	return scalar.Integer(int32(i))
}

// Unsigned converts an unsigned integer. Values above math.MaxInt32 become numbers.
func Unsigned[T constraints.Unsigned](v T) scalar.Scalar {
	u := uint64(v)
	if u > math.MaxInt32 {
		return scalar.Number(float64(u))
	}
	return scalar.Integer(int32(u))
}

// Float converts a floating point value
func Float[T constraints.Float](v T) scalar.Scalar {
	return scalar.Number(float64(v))
}

// FromHost converts a Go value to a scalar. nil becomes untyped NA and nil
// pointers become the missing value of the pointed-to kind.
func FromHost(v any) (scalar.Scalar, error) {
	switch x := v.(type) {
	case nil:
		return scalar.NA, nil
	case scalar.Scalar:
		return x, nil
	case int:
		return Signed(x), nil
	case int8:
		return Signed(x), nil
	case int16:
		return Signed(x), nil
	case int32:
		return Signed(x), nil
	case int64:
		return Signed(x), nil
	case uint:
		return Unsigned(x), nil
	case uint8:
		return Unsigned(x), nil
	case uint16:
		return Unsigned(x), nil
	case uint32:
		return Unsigned(x), nil
	case uint64:
		return Unsigned(x), nil
	case float32:
		return Float(x), nil
	case float64:
		return Float(x), nil
	case string:
		return scalar.Text(x), nil
	case bool:
		return scalar.Logical(x), nil
	case time.Time:
		return scalar.Date(x), nil
	case *int32:
		return scalar.IntegerPtr(x), nil
	case *int:
		if x == nil {
			return scalar.Missing(scalar.KindInteger), nil
		}
		return Signed(*x), nil
	case *int64:
		if x == nil {
			return scalar.Missing(scalar.KindInteger), nil
		}
		return Signed(*x), nil
	case *float64:
		return scalar.NumberPtr(x), nil
	case *string:
		return scalar.TextPtr(x), nil
	case *bool:
		return scalar.LogicalPtr(x), nil
	case *time.Time:
		return scalar.DatePtr(x), nil
	case numberLike:
		if i, err := x.Int64(); err == nil {
			return Signed(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return scalar.NA, errors.NewUnconvertableTypeError("FromHost", "", v)
		}
		return scalar.Number(f), nil
	}
	return scalar.NA, errors.NewUnconvertableTypeError("FromHost", "", v)
}

// ToHost returns the Go value of s, nil when missing
func ToHost(s scalar.Scalar) any {
	return s.Get()
}

// Vector converts a Go slice to a series
func Vector(values any) (*series.Series, error) {
	switch x := values.(type) {
	case *series.Series:
		return x, nil
	case []scalar.Scalar:
		return series.Of(x...)
	case []int32:
		return series.FromInts(x), nil
	case []int:
		return signedVector(x), nil
	case []int8:
		return signedVector(x), nil
	case []int16:
		return signedVector(x), nil
	case []int64:
		return signedVector(x), nil
	case []uint8:
		return unsignedVector(x), nil
	case []uint16:
		return unsignedVector(x), nil
	case []uint32:
		return unsignedVector(x), nil
	case []uint64:
		return unsignedVector(x), nil
	case []float32:
		return floatVector(x), nil
	case []float64:
		return series.FromFloats(x), nil
	case []string:
		return series.FromStrings(x), nil
	case []*string:
		return series.FromNullableStrings(x), nil
	case []bool:
		return series.FromBools(x), nil
	case []time.Time:
		return series.FromDates(x), nil
	case []any:
		s := series.New(scalar.KindUntyped)
		for _, item := range x {
			v, err := FromHost(item)
			if err != nil {
				return nil, err
			}
			if err := s.Append(v); err != nil {
				return nil, err
			}
		}
		return s, nil
	}
	return nil, errors.NewUnconvertableTypeError("Vector", "", values)
}

// signedVector keeps an integer column when every value fits in int32
func signedVector[T constraints.Signed](values []T) *series.Series {
	wide := false
	for _, v := range values {
		if i := int64(v); i <= math.MinInt32 || i > math.MaxInt32 {
			wide = true
			break
		}
	}
	kind := scalar.KindInteger
	if wide {
		kind = scalar.KindNumber
	}
	s := series.New(kind)
	for _, v := range values {
		if wide {
			_ = s.Append(scalar.Number(float64(v)))
		} else {
			_ = s.Append(scalar.Integer(int32(v)))
		}
	}
	return s
}

func unsignedVector[T constraints.Unsigned](values []T) *series.Series {
	wide := false
	for _, v := range values {
		if uint64(v) > math.MaxInt32 {
			wide = true
			break
		}
	}
	kind := scalar.KindInteger
	if wide {
		kind = scalar.KindNumber
	}
	s := series.New(kind)
	for _, v := range values {
		if wide {
			_ = s.Append(scalar.Number(float64(v)))
		} else {
			_ = s.Append(scalar.Integer(int32(v)))
		}
	}
	return s
}

func floatVector[T constraints.Float](values []T) *series.Series {
	s := series.New(scalar.KindNumber)
	for _, v := range values {
		_ = s.Append(Float(v))
	}
	return s
}

// Raw exports a series as its wire-level Go slice: []int32 for integers,
// logicals, dates and factor codes (math.MinInt32 for missing), []float64 for
// numbers (missing payload for missing) and []*string for text.
func Raw(s *series.Series) any {
	switch s.Kind() {
	case scalar.KindNumber:
		out := make([]float64, s.Len())
		for i := range out {
			out[i] = math.Float64frombits(s.At(i).NumberBits())
		}
		return out
	case scalar.KindText:
		out := make([]*string, s.Len())
		for i := range out {
			if str, ok := s.At(i).Str(); ok {
				out[i] = &str
			}
		}
		return out
	case scalar.KindInteger, scalar.KindLogical, scalar.KindDate, scalar.KindFactor:
		out := make([]int32, s.Len())
		for i := range out {
			out[i] = s.At(i).Primitive()
		}
		return out
	}
	return make([]any, s.Len())
}
