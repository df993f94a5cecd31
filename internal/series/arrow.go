package series

import (
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/rframe/internal/errors"
	"github.com/paveg/rframe/internal/scalar"
)

// Arrow exports the series as an Arrow array. Missing values become nulls and
// factors become int32-indexed string dictionaries. The caller owns the
// returned array and must Release it.
func (s *Series) Arrow(mem memory.Allocator) arrow.Array {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	switch s.kind {
	case scalar.KindInteger:
		builder := array.NewInt32Builder(mem)
		defer builder.Release()
		for _, v := range s.values {
			if i, ok := v.Int(); ok {
				builder.Append(i)
			} else {
				builder.AppendNull()
			}
		}
		return builder.NewArray()
	case scalar.KindNumber:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		for _, v := range s.values {
			if f, ok := v.Float(); ok {
				builder.Append(f)
			} else {
				builder.AppendNull()
			}
		}
		return builder.NewArray()
	case scalar.KindText:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		for _, v := range s.values {
			if str, ok := v.Str(); ok {
				builder.Append(str)
			} else {
				builder.AppendNull()
			}
		}
		return builder.NewArray()
	case scalar.KindLogical:
		builder := array.NewBooleanBuilder(mem)
		defer builder.Release()
		for _, v := range s.values {
			if b, ok := v.Bool(); ok {
				builder.Append(b)
			} else {
				builder.AppendNull()
			}
		}
		return builder.NewArray()
	case scalar.KindDate:
		builder := array.NewDate32Builder(mem)
		defer builder.Release()
		for _, v := range s.values {
			if d, ok := v.Days(); ok {
				builder.Append(arrow.Date32(d))
			} else {
				builder.AppendNull()
			}
		}
		return builder.NewArray()
	case scalar.KindFactor:
		return s.factorArrow(mem)
	default:
		return array.NewNull(len(s.values))
	}
}

func (s *Series) factorArrow(mem memory.Allocator) arrow.Array {
	dictBuilder := array.NewStringBuilder(mem)
	defer dictBuilder.Release()
	dictBuilder.AppendValues(s.levels.Labels(), nil)
	dict := dictBuilder.NewArray()
	defer dict.Release()

	indexBuilder := array.NewInt32Builder(mem)
	defer indexBuilder.Release()
	for _, v := range s.values {
		if code, ok := v.Code(); ok {
			indexBuilder.Append(code - 1)
		} else {
			indexBuilder.AppendNull()
		}
	}
	indices := indexBuilder.NewArray()
	defer indices.Release()

	return array.NewDictionaryArray(scalar.KindFactor.ArrowType(), indices, dict)
}

// FromArrow imports an Arrow array. Nulls become missing values. Int64
// columns stay integer when every value fits in 32 bits and become numeric
// otherwise.
func FromArrow(arr arrow.Array) (*Series, error) {
	n := arr.Len()
	switch a := arr.(type) {
	case *array.Null:
		return Missing(scalar.KindUntyped, n), nil
	case *array.Int8:
		return fromInts(n, a.IsNull, func(i int) int64 { return int64(a.Value(i)) }), nil
	case *array.Int16:
		return fromInts(n, a.IsNull, func(i int) int64 { return int64(a.Value(i)) }), nil
	case *array.Int32:
		return fromInts(n, a.IsNull, func(i int) int64 { return int64(a.Value(i)) }), nil
	case *array.Int64:
		return fromInts(n, a.IsNull, a.Value), nil
	case *array.Float32:
		return build(scalar.KindNumber, n, a.IsNull, func(i int) scalar.Scalar { return scalar.Number(float64(a.Value(i))) }), nil
	case *array.Float64:
		return build(scalar.KindNumber, n, a.IsNull, func(i int) scalar.Scalar { return scalar.Number(a.Value(i)) }), nil
	case *array.String:
		return build(scalar.KindText, n, a.IsNull, func(i int) scalar.Scalar { return scalar.Text(a.Value(i)) }), nil
	case *array.LargeString:
		return build(scalar.KindText, n, a.IsNull, func(i int) scalar.Scalar { return scalar.Text(a.Value(i)) }), nil
	case *array.Boolean:
		return build(scalar.KindLogical, n, a.IsNull, func(i int) scalar.Scalar { return scalar.Logical(a.Value(i)) }), nil
	case *array.Date32:
		return build(scalar.KindDate, n, a.IsNull, func(i int) scalar.Scalar { return scalar.DateDays(int32(a.Value(i))) }), nil
	case *array.Dictionary:
		return fromDictionary(a)
	}
	return nil, errors.NewUnconvertableTypeError("FromArrow", "", arr.DataType())
}

func build(kind scalar.Kind, n int, isNull func(int) bool, at func(int) scalar.Scalar) *Series {
	s := &Series{kind: kind, values: make([]scalar.Scalar, n)}
	na := scalar.Missing(kind)
	for i := 0; i < n; i++ {
		if isNull(i) {
			s.values[i] = na
			continue
		}
		s.values[i] = at(i)
	}
	return s
}

func fromInts(n int, isNull func(int) bool, at func(int) int64) *Series {
	kind := scalar.KindInteger
	for i := 0; i < n; i++ {
		if isNull(i) {
			continue
		}
		// MinInt32 is reserved for missing
		if v := at(i); v <= math.MinInt32 || v > math.MaxInt32 {
			kind = scalar.KindNumber
			break
		}
	}
	if kind == scalar.KindNumber {
		return build(kind, n, isNull, func(i int) scalar.Scalar { return scalar.Number(float64(at(i))) })
	}
	return build(kind, n, isNull, func(i int) scalar.Scalar { return scalar.Integer(int32(at(i))) })
}

func fromDictionary(a *array.Dictionary) (*Series, error) {
	dict, ok := a.Dictionary().(*array.String)
	if !ok {
		return nil, errors.NewUnconvertableTypeError("FromArrow", "", a.Dictionary().DataType())
	}
	labels := make([]string, dict.Len())
	for i := range labels {
		labels[i] = dict.Value(i)
	}
	levels := scalar.NewLevels(labels...)
	s := &Series{kind: scalar.KindFactor, levels: levels, values: make([]scalar.Scalar, a.Len())}
	for i := range s.values {
		if a.IsNull(i) {
			s.values[i] = scalar.Factor(scalar.NAInteger, levels)
			continue
		}
		s.values[i] = levels.Value(labels[a.GetValueIndex(i)])
	}
	return s, nil
}
