package series

import (
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/rframe/internal/errors"
	"github.com/paveg/rframe/internal/scalar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromotion(t *testing.T) {
	s := New(scalar.KindUntyped)
	require.NoError(t, s.Append(scalar.NA))
	require.NoError(t, s.Append(scalar.NA))
	assert.False(t, s.Resolved())

	require.NoError(t, s.Append(scalar.Integer(5)))
	assert.Equal(t, scalar.KindInteger, s.Kind())
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.At(0).Equal(scalar.Missing(scalar.KindInteger)))
	assert.Equal(t, "<integer[3]>{NA, NA, 5}", s.String())

	// a second kind is rejected once resolved
	err := s.Append(scalar.Text("x"))
	assert.ErrorIs(t, err, errors.ErrIncompatibleType)
	assert.Equal(t, 3, s.Len())

	// untyped NA still fits
	require.NoError(t, s.Append(scalar.NA))
	assert.True(t, s.At(3).IsMissing())
	assert.Equal(t, scalar.KindInteger, s.At(3).Kind())
}

func TestAppendCoercesWidening(t *testing.T) {
	s := New(scalar.KindNumber)
	require.NoError(t, s.Append(scalar.Integer(2)))
	f, ok := s.At(0).Float()
	require.True(t, ok)
	assert.Equal(t, 2.0, f)
}

func TestAppendAll(t *testing.T) {
	tests := []struct {
		name     string
		left     *Series
		right    *Series
		wantKind scalar.Kind
		wantLen  int
		wantErr  bool
	}{
		{"same kind", FromInts([]int32{1, 2}), FromInts([]int32{3}), scalar.KindInteger, 3, false},
		{"unresolved left", Missing(scalar.KindUntyped, 2), FromStrings([]string{"a"}), scalar.KindText, 3, false},
		{"unresolved right", FromStrings([]string{"a"}), Missing(scalar.KindUntyped, 2), scalar.KindText, 3, false},
		{"mismatch", FromInts([]int32{1}), FromFloats([]float64{1}), scalar.KindInteger, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.left.AppendAll(tt.right)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrIncompatibleType)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantKind, tt.left.Kind())
			assert.Equal(t, tt.wantLen, tt.left.Len())
		})
	}
}

func TestFactorRemapping(t *testing.T) {
	s := FromFactorCodes([]int32{1, 2}, []string{"a", "b"})
	other := FromFactorCodes([]int32{1, math.MinInt32}, []string{"b", "a"})

	require.NoError(t, s.AppendAll(other))
	require.Equal(t, 4, s.Len())
	assert.Equal(t, "b", s.At(2).Label())
	code, _ := s.At(2).Code()
	assert.Equal(t, int32(2), code)
	assert.True(t, s.At(3).IsMissing())

	unknown := FromFactorCodes([]int32{1}, []string{"c"})
	assert.ErrorIs(t, s.AppendAll(unknown), errors.ErrIncompatibleType)
	assert.Equal(t, []string{"a", "b"}, s.Levels().Labels())
}

func TestFactoriesAndPadding(t *testing.T) {
	p := Padded(scalar.Text("z"), 3)
	assert.Equal(t, "<character[3]>{NA, NA, z}", p.String())
	assert.Equal(t, 1, Padded(scalar.Text("z"), 0).Len())
	assert.True(t, Singleton(scalar.Integer(1)).Equal(FromInts([]int32{1})))
	assert.True(t, Rep(scalar.Logical(true), 2).Equal(FromBools([]bool{true, true})))

	m := Missing(scalar.KindDate, 2)
	assert.Equal(t, scalar.KindDate, m.Kind())
	m.Pad(1)
	assert.Equal(t, 3, m.Len())
	require.NoError(t, m.Fill(scalar.ParseDate("2021-01-02"), 2))
	assert.Equal(t, "<date[5]>{NA, NA, NA, 2021-01-02, 2021-01-02}", m.String())
}

func TestPreviewTruncates(t *testing.T) {
	s := FromInts([]int32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11})
	assert.Equal(t, "<integer[11]>{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, ...}", s.String())
}

func TestSubset(t *testing.T) {
	s := FromStrings([]string{"a", "b", "c"})
	out, err := s.Subset([]bool{true, false, true})
	require.NoError(t, err)
	assert.True(t, out.Equal(FromStrings([]string{"a", "c"})))

	out, err = s.Subset([]bool{false, true})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())

	_, err = s.Subset([]bool{true, true, true, true})
	assert.ErrorIs(t, err, errors.ErrBoundary)
}

func TestMatches(t *testing.T) {
	s := FromInts([]int32{1, math.MinInt32, 1})
	assert.Equal(t, []bool{true, false, true}, s.Matches(scalar.Integer(1)))
	assert.Equal(t, []bool{false, true, false}, s.Matches(scalar.NA))
	assert.Equal(t, []bool{false, false, false}, s.Matches(scalar.Text("1")))
}

func TestMatchesFuncRecoversFromPanic(t *testing.T) {
	s := FromInts([]int32{1, 2, 3})
	mask := s.MatchesFunc(func(v scalar.Scalar) bool {
		i, ok := v.Int()
		if !ok || i == 2 {
			panic("boom")
		}
		return true
	})
	assert.Equal(t, []bool{true, false, false}, mask)
}

func TestDistinctKeepsFirstSeenOrder(t *testing.T) {
	s := FromFloats([]float64{2, math.NaN(), 1, 2, math.NaN(), scalar.NANumber(), scalar.NANumber()})
	d := s.Distinct()
	assert.Equal(t, 4, d.Len())
	assert.Equal(t, "<numeric[4]>{2, NaN, 1, NA}", d.String())
}

func TestAsAndCast(t *testing.T) {
	ints := FromInts([]int32{1, 2})
	same, err := ints.As(scalar.KindInteger)
	require.NoError(t, err)
	assert.Same(t, ints, same)

	_, err = ints.As(scalar.KindText)
	assert.ErrorIs(t, err, errors.ErrIncompatibleType)

	un, err := Missing(scalar.KindUntyped, 2).As(scalar.KindText)
	require.NoError(t, err)
	assert.Equal(t, scalar.KindText, un.Kind())

	nums, err := ints.Cast(scalar.KindNumber)
	require.NoError(t, err)
	assert.True(t, nums.Equal(FromFloats([]float64{1, 2})))

	_, err = FromStrings([]string{"x"}).Cast(scalar.KindInteger)
	assert.ErrorIs(t, err, errors.ErrIncompatibleType)
}

func TestMap(t *testing.T) {
	s := FromInts([]int32{1, math.MinInt32, 3})
	doubled, err := s.Map(func(v scalar.Scalar) scalar.Scalar {
		i, ok := v.Int()
		if !ok {
			return scalar.NA
		}
		return scalar.Number(float64(i) * 2)
	})
	require.NoError(t, err)
	assert.Equal(t, scalar.KindNumber, doubled.Kind())
	assert.Equal(t, "<numeric[3]>{2, NA, 6}", doubled.String())

	_, err = s.Map(func(v scalar.Scalar) scalar.Scalar {
		if i, _ := v.Int(); i == 3 {
			return scalar.Text("three")
		}
		return v
	})
	assert.ErrorIs(t, err, errors.ErrIncompatibleType)

	empty, err := New(scalar.KindNumber).Map(func(v scalar.Scalar) scalar.Scalar { return v })
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, scalar.KindNumber, empty.Kind())
}

func TestSliceAndClone(t *testing.T) {
	s := FromStrings([]string{"a", "b", "c"})
	mid, err := s.Slice(1, 3)
	require.NoError(t, err)
	assert.True(t, mid.Equal(FromStrings([]string{"b", "c"})))

	_, err = s.Slice(-1, 2)
	assert.ErrorIs(t, err, errors.ErrBoundary)
	_, err = s.Slice(0, 4)
	assert.ErrorIs(t, err, errors.ErrBoundary)

	c := s.Clone()
	require.NoError(t, c.Append(scalar.Text("d")))
	assert.Equal(t, 3, s.Len())
	assert.False(t, s.Equal(c))
}

func TestTake(t *testing.T) {
	s := FromStrings([]string{"a", "b", "c"})
	picked, err := s.Take([]int{2, 0, 2})
	require.NoError(t, err)
	assert.True(t, picked.Equal(FromStrings([]string{"c", "a", "c"})))

	_, err = s.Take([]int{3})
	assert.ErrorIs(t, err, errors.ErrBoundary)
}

func TestTypedConstructors(t *testing.T) {
	x := "x"
	assert.Equal(t, "<character[2]>{x, NA}", FromNullableStrings([]*string{&x, nil}).String())
	assert.Equal(t, "<logical[3]>{true, false, NA}", FromLogicalInts([]int32{1, 0, math.MinInt32}).String())
	assert.Equal(t, "<date[2]>{2020-02-29, NA}", FromDateStrings([]string{"2020-02-29", "-1-01-01"}).String())
	assert.Equal(t, "<factor[2]>{lo, NA}", FromFactorCodes([]int32{1, 9}, []string{"lo", "hi"}).String())
}

func TestArrowRoundTrip(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	columns := map[string]*Series{
		"integer":   FromInts([]int32{1, math.MinInt32, 3}),
		"numeric":   FromFloats([]float64{1.5, math.NaN(), scalar.NANumber()}),
		"character": FromNullableStrings([]*string{nil}),
		"logical":   FromBools([]bool{true, false}),
		"date":      FromDateStrings([]string{"1999-12-31", "bad"}),
		"factor":    FromFactorCodes([]int32{2, 1, math.MinInt32}, []string{"lo", "hi"}),
		"untyped":   Missing(scalar.KindUntyped, 2),
	}
	for name, s := range columns {
		t.Run(name, func(t *testing.T) {
			arr := s.Arrow(mem)
			defer arr.Release()
			assert.Equal(t, s.Len(), arr.Len())

			back, err := FromArrow(arr)
			require.NoError(t, err)
			assert.True(t, s.Equal(back), "got %s want %s", back, s)
		})
	}
}

func TestFromArrowWideIntegers(t *testing.T) {
	mem := memory.NewGoAllocator()

	narrow := array.NewInt64Builder(mem)
	defer narrow.Release()
	narrow.AppendValues([]int64{1, 2}, nil)
	narrow.AppendNull()
	small := narrow.NewArray()
	defer small.Release()

	s, err := FromArrow(small)
	require.NoError(t, err)
	assert.Equal(t, "<integer[3]>{1, 2, NA}", s.String())

	wide := array.NewInt64Builder(mem)
	defer wide.Release()
	wide.AppendValues([]int64{1, math.MaxInt32 + 1}, nil)
	big := wide.NewArray()
	defer big.Release()

	s, err = FromArrow(big)
	require.NoError(t, err)
	assert.Equal(t, scalar.KindNumber, s.Kind())
	assert.Equal(t, "<numeric[2]>{1, 2147483648}", s.String())
}
