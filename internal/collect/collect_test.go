package collect_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/paveg/rframe/internal/collect"
	"github.com/paveg/rframe/internal/config"
	"github.com/paveg/rframe/internal/dataframe"
	dferrors "github.com/paveg/rframe/internal/errors"
	"github.com/paveg/rframe/internal/monitoring"
	"github.com/paveg/rframe/internal/scalar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type order struct {
	ID    int
	Buyer string
	Total float64
	Items []string
	Extra any
}

func smallChunks(t *testing.T) {
	t.Helper()
	original := config.GetGlobalConfig()
	cfg := config.NewConfig()
	cfg.CollectChunkSize = 3
	cfg.WorkerPoolSize = 4
	config.SetGlobalConfig(cfg)
	t.Cleanup(func() { config.SetGlobalConfig(original) })
}

func orders(n int) []order {
	out := make([]order, n)
	for i := range out {
		out[i] = order{
			ID:    i,
			Buyer: fmt.Sprintf("b%d", i%3),
			Total: float64(i) * 1.5,
			Items: []string{"x", "y"}[:i%3],
		}
	}
	return out
}

func TestSeriesBuilder(t *testing.T) {
	a := collect.NewSeriesBuilder()
	require.NoError(t, a.Add(scalar.NA))
	require.NoError(t, a.Add(scalar.Integer(1)))

	b := collect.NewSeriesBuilder()
	require.NoError(t, b.Add(scalar.Integer(2)))

	require.NoError(t, a.Merge(b))
	s := a.Series()
	assert.Equal(t, scalar.KindInteger, s.Kind())
	assert.Equal(t, 3, a.Len())
	assert.True(t, s.At(0).IsMissing())

	t.Run("merge widens", func(t *testing.T) {
		n := collect.NewSeriesBuilder()
		require.NoError(t, n.Add(scalar.Number(0.5)))
		require.NoError(t, n.Merge(a))
		assert.Equal(t, scalar.KindNumber, n.Series().Kind())
		assert.Equal(t, 4, n.Len())
	})

	t.Run("merge rejects incompatible kinds", func(t *testing.T) {
		txt := collect.NewSeriesBuilder()
		require.NoError(t, txt.Add(scalar.Text("x")))
		assert.ErrorIs(t, txt.Merge(a), dferrors.ErrIncompatibleType)
	})

	t.Run("concurrent adds", func(t *testing.T) {
		b := collect.NewSeriesBuilder()
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, b.Add(scalar.Integer(int32(i))))
			}()
		}
		wg.Wait()
		assert.Equal(t, 100, b.Len())
	})
}

func TestCollectSeries(t *testing.T) {
	smallChunks(t)

	items := make([]int, 20)
	for i := range items {
		items[i] = i
	}
	s, err := collect.CollectSeries(items, func(i int) (scalar.Scalar, error) {
		return scalar.Integer(int32(i * 2)), nil
	})
	require.NoError(t, err)
	require.Equal(t, 20, s.Len())
	for i := 0; i < 20; i++ {
		assert.Equal(t, int32(i*2), s.At(i).Get())
	}

	boom := errors.New("boom")
	_, err = collect.CollectSeries(items, func(i int) (scalar.Scalar, error) {
		if i == 7 {
			return scalar.NA, boom
		}
		return scalar.Integer(1), nil
	})
	assert.ErrorIs(t, err, boom)
}

func orderRules() []collect.Rule[order] {
	return []collect.Rule[order]{
		collect.Mapping("id", func(o order) any { return o.ID }),
		collect.Mapping("buyer", func(o order) any { return o.Buyer }),
		collect.Mapping("total", func(o order) any { return o.Total }),
	}
}

func TestCollector(t *testing.T) {
	smallChunks(t)

	df, err := collect.NewCollector(orderRules()).Collect(orders(10))
	require.NoError(t, err)
	assert.Equal(t, 10, df.NRow())
	assert.Equal(t, []string{"id", "buyer", "total"}, df.Names())

	ids, err := df.PullAs("id", scalar.KindInteger)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		assert.Equal(t, int32(i), ids.At(i).Get())
	}
}

func TestCollectorCombineIsAssociative(t *testing.T) {
	c := collect.NewCollector(orderRules())

	a, b, d := c.Supplier(), c.Supplier(), c.Supplier()
	for i, o := range orders(6) {
		switch i / 2 {
		case 0:
			require.NoError(t, c.Accumulate(a, o))
		case 1:
			require.NoError(t, c.Accumulate(b, o))
		default:
			require.NoError(t, c.Accumulate(d, o))
		}
	}

	ab, err := c.Combine(a.Clone(), b.Clone())
	require.NoError(t, err)
	left, err := c.Combine(ab, d.Clone())
	require.NoError(t, err)

	bd, err := c.Combine(b.Clone(), d.Clone())
	require.NoError(t, err)
	right, err := c.Combine(a.Clone(), bd)
	require.NoError(t, err)

	assert.True(t, left.Equal(right))
	assert.Equal(t, 6, left.NRow())
}

func TestStringFallback(t *testing.T) {
	rules := []collect.Rule[order]{
		collect.Mapping("id", func(o order) any { return o.ID }),
		collect.Mapping("extra", func(o order) any { return o.Extra }),
	}
	items := []order{{ID: 1, Extra: struct{ A int }{A: 5}}, {ID: 2, Extra: nil}}

	df, err := collect.NewCollector(rules).Collect(items)
	require.NoError(t, err)
	extra, err := df.Pull("extra")
	require.NoError(t, err)
	assert.Equal(t, scalar.KindText, extra.Kind())
	assert.Equal(t, "{5}", extra.At(0).Get())
	assert.True(t, extra.At(1).IsMissing())

	_, err = collect.NewCollector(rules, collect.StrictConversion()).Collect(items)
	assert.ErrorIs(t, err, dferrors.ErrUnconvertableType)
}

func TestFlatCollector(t *testing.T) {
	smallChunks(t)

	flat := collect.FlatMapping(func(o order) []string { return o.Items },
		collect.Mapping("item", func(s string) any { return s }),
	)
	c := collect.NewFlatCollector(orderRules()[:2], flat)

	df, err := c.Collect(orders(6))
	require.NoError(t, err)

	// orders 1 and 4 have one item, 2 and 5 have two, 0 and 3 have none
	assert.Equal(t, 6, df.NRow())
	assert.Equal(t, []string{"id", "buyer", "item"}, df.Names())
	assert.Equal(t, "{id=2, buyer=b2, item=x}", df.Records()[1].String())
	assert.Equal(t, "{id=2, buyer=b2, item=y}", df.Records()[2].String())
}

func TestCollectMaps(t *testing.T) {
	df, err := collect.CollectMaps([]map[string]any{
		{"b": 1, "a": "x"},
		{"c": true},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, df.Names())
	assert.Equal(t, "{a=NA, b=NA, c=true}", df.Records()[1].String())
}

func TestCollectRecordsMetrics(t *testing.T) {
	original := monitoring.GetGlobalCollector()
	defer monitoring.SetGlobalCollector(original)

	collector := monitoring.NewMetricsCollector(true)
	monitoring.SetGlobalCollector(collector)

	_, err := collect.NewCollector(orderRules()).Collect(orders(4))
	require.NoError(t, err)

	metrics := collector.GetMetrics()
	require.Len(t, metrics, 1)
	assert.Equal(t, "Collect", metrics[0].Operation)
	assert.Equal(t, int64(4), metrics[0].RowsProcessed)
}

func TestCollectIndependentOfChunkSize(t *testing.T) {
	original := config.GetGlobalConfig()
	t.Cleanup(func() { config.SetGlobalConfig(original) })
	collectWith := func(size int, rows []map[string]any) (*dataframe.DataFrame, error) {
		cfg := config.NewConfig()
		cfg.CollectChunkSize = size
		config.SetGlobalConfig(cfg)
		return collect.CollectMaps(rows)
	}

	rows := []map[string]any{
		{"x": 1.5},
		{"x": 2},
		{"x": nil, "y": 1},
		{"x": 3, "y": true},
	}
	whole, err := collectWith(config.DefaultCollectChunkSize, rows)
	require.NoError(t, err)
	for _, size := range []int{1, 2, 3} {
		chunked, err := collectWith(size, rows)
		require.NoError(t, err, "chunk size %d", size)
		assert.True(t, whole.Equal(chunked), "chunk size %d: %v != %v", size, chunked.Records(), whole.Records())
	}

	kind, err := whole.KindOf("x")
	require.NoError(t, err)
	assert.Equal(t, scalar.KindNumber, kind)
	kind, err = whole.KindOf("y")
	require.NoError(t, err)
	assert.Equal(t, scalar.KindInteger, kind)

	// a number cannot narrow into an integer column, in one chunk or many
	narrowing := []map[string]any{{"x": 2}, {"x": 1.5}}
	for _, size := range []int{1, config.DefaultCollectChunkSize} {
		_, err := collectWith(size, narrowing)
		assert.ErrorIs(t, err, dferrors.ErrIncompatibleType, "chunk size %d", size)
	}
}
