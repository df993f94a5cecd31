package binding_test

import (
	"testing"

	"github.com/paveg/rframe/internal/binding"
	"github.com/paveg/rframe/internal/config"
	"github.com/paveg/rframe/internal/dataframe"
	dferrors "github.com/paveg/rframe/internal/errors"
	"github.com/paveg/rframe/internal/scalar"
	"github.com/paveg/rframe/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reading struct {
	Site  string
	Count int32
	Value float64
	Known bool
}

func readingShape() *binding.Shape[reading] {
	return binding.NewShape[reading]().
		Field("site", scalar.KindText, func(r *reading, v scalar.Scalar) {
			r.Site, _ = v.Str()
		}).
		FieldAs("count", "n", scalar.KindInteger, func(r *reading, v scalar.Scalar) {
			r.Count, _ = v.Int()
		}).
		Field("value", scalar.KindNumber, func(r *reading, v scalar.Scalar) {
			r.Value, r.Known = v.Float()
		})
}

func readings(t *testing.T) *dataframe.DataFrame {
	t.Helper()
	df, err := dataframe.FromColumns(
		[]string{"site", "n", "value"},
		[]*series.Series{
			series.FromStrings([]string{"a", "b", "c"}),
			series.FromInts([]int32{1, 2, 3}),
			// integers widen to numbers when read
			series.MustOf(scalar.Integer(10), scalar.Missing(scalar.KindInteger), scalar.Integer(30)),
		},
	)
	require.NoError(t, err)
	return df
}

func TestBindAndCoerce(t *testing.T) {
	b, err := binding.Bind(readingShape(), readings(t))
	require.NoError(t, err)
	assert.Equal(t, 3, b.Len())

	rows, err := b.Slice()
	require.NoError(t, err)
	assert.Equal(t, []reading{
		{Site: "a", Count: 1, Value: 10, Known: true},
		{Site: "b", Count: 2},
		{Site: "c", Count: 3, Value: 30, Known: true},
	}, rows)
}

func TestBoundRowAccessors(t *testing.T) {
	b, err := binding.Bind(readingShape(), readings(t))
	require.NoError(t, err)

	r, err := b.Row(1)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Index())

	v, err := r.Get("value")
	require.NoError(t, err)
	assert.Equal(t, scalar.KindNumber, v.Kind())
	assert.True(t, v.IsMissing())

	_, err = r.Get("n")
	assert.ErrorIs(t, err, dferrors.ErrUnsupported)

	prev, err := r.LagCoerce(1)
	require.NoError(t, err)
	assert.Equal(t, "a", prev.Site)

	next, err := r.LeadCoerce(1)
	require.NoError(t, err)
	assert.Equal(t, int32(3), next.Count)

	_, err = r.Lead(2)
	assert.ErrorIs(t, err, dferrors.ErrBoundary)
	_, err = r.LagCoerce(2)
	assert.ErrorIs(t, err, dferrors.ErrBoundary)

	_, err = b.Row(3)
	assert.ErrorIs(t, err, dferrors.ErrBoundary)
}

func TestStrictBinding(t *testing.T) {
	df := readings(t)

	shape := binding.NewShape[reading]().Field("missing", scalar.KindText, nil)
	_, err := binding.Bind(shape, df, binding.Strict())
	assert.ErrorIs(t, err, dferrors.ErrUnconvertableType)

	shape = binding.NewShape[reading]().Field("site", scalar.KindNumber, nil)
	_, err = binding.Bind(shape, df, binding.Strict())
	assert.ErrorIs(t, err, dferrors.ErrIncompatibleType)

	shape = binding.NewShape[reading]().Field("site", scalar.KindText, nil).Field("site", scalar.KindText, nil)
	_, err = binding.Bind(shape, df)
	assert.ErrorIs(t, err, dferrors.ErrIncompatibleType)
}

func TestStrictFromConfig(t *testing.T) {
	original := config.GetGlobalConfig()
	defer config.SetGlobalConfig(original)

	cfg := config.NewConfig()
	cfg.StrictBinding = false
	config.SetGlobalConfig(cfg)

	shape := binding.NewShape[reading]().Field("missing", scalar.KindText, nil)
	_, err := binding.Bind(shape, readings(t))
	assert.NoError(t, err)
}

func TestPermissiveBinding(t *testing.T) {
	df := readings(t)
	shape := readingShape().
		Field("label", scalar.KindText, func(r *reading, v scalar.Scalar) {
			if s, ok := v.Str(); ok {
				r.Site = s
			}
		}).
		FieldAs("flag", "site", scalar.KindLogical, func(r *reading, v scalar.Scalar) {
			r.Known, _ = v.Bool()
		})

	b, err := binding.Bind(shape, df, binding.Permissive())
	require.NoError(t, err)

	r, err := b.Row(0)
	require.NoError(t, err)
	label, err := r.Get("label")
	require.NoError(t, err)
	assert.Equal(t, scalar.KindText, label.Kind())
	assert.True(t, label.IsMissing())

	flag, err := r.Get("flag")
	require.NoError(t, err)
	assert.True(t, flag.IsMissing())

	got, err := r.Coerce()
	require.NoError(t, err)
	assert.Equal(t, "a", got.Site)
	assert.False(t, got.Known)

	// the source frame is untouched
	assert.False(t, df.HasColumn("label"))
	kind, err := df.KindOf("site")
	require.NoError(t, err)
	assert.Equal(t, scalar.KindText, kind)
	assert.False(t, b.Frame().HasColumn("label"))
}

func TestUntypedAccessorAcceptsAnyKind(t *testing.T) {
	var seen []scalar.Kind
	shape := binding.NewShape[struct{}]().Field("site", scalar.KindUntyped, func(_ *struct{}, v scalar.Scalar) {
		seen = append(seen, v.Kind())
	})
	b, err := binding.Bind(shape, readings(t), binding.Strict())
	require.NoError(t, err)

	count := 0
	for _, err := range b.All() {
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 3, count)
	assert.Equal(t, []scalar.Kind{scalar.KindText, scalar.KindText, scalar.KindText}, seen)
	assert.Equal(t, []string{"site"}, shape.Names())
}
