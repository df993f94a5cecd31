package parallel_test

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/paveg/rframe/internal/parallel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkerPool(t *testing.T) {
	pool := parallel.NewWorkerPool(0)
	defer pool.Close()
	assert.Equal(t, runtime.NumCPU(), pool.Workers())

	pool2 := parallel.NewWorkerPool(4)
	defer pool2.Close()
	assert.Equal(t, 4, pool2.Workers())

	pool3 := parallel.NewWorkerPool(-1)
	defer pool3.Close()
	assert.Equal(t, runtime.NumCPU(), pool3.Workers())
}

func TestTryProcessIndexedPreservesOrder(t *testing.T) {
	pool := parallel.NewWorkerPool(3)
	defer pool.Close()

	input := make([]int, 50)
	for i := range input {
		input[i] = i
	}

	results, err := parallel.TryProcessIndexed(pool, input, func(i, x int) (int, error) {
		return i + x*x, nil
	})

	require.NoError(t, err)
	require.Len(t, results, len(input))
	for i, r := range results {
		assert.Equal(t, i+i*i, r)
	}
}

func TestTryProcessIndexedEmpty(t *testing.T) {
	pool := parallel.NewWorkerPool(2)
	defer pool.Close()

	results, err := parallel.TryProcessIndexed(pool, []int{}, func(_ int, x int) (int, error) { return x, nil })
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestTryProcessIndexedStopsOnError(t *testing.T) {
	pool := parallel.NewWorkerPool(1)
	defer pool.Close()

	boom := errors.New("boom")
	var calls atomic.Int32

	results, err := parallel.TryProcessIndexed(pool, []int{1, 2, 3, 4}, func(_ int, x int) (int, error) {
		calls.Add(1)
		if x == 2 {
			return 0, boom
		}
		return x, nil
	})

	require.ErrorIs(t, err, boom)
	assert.Nil(t, results)
	// a single worker stops right after the failing item
	assert.Equal(t, int32(2), calls.Load())
}

func TestTryProcessIndexedRecoversPanics(t *testing.T) {
	pool := parallel.NewWorkerPool(2)
	defer pool.Close()

	_, err := parallel.TryProcessIndexed(pool, []string{"a", "b"}, func(i int, s string) (string, error) {
		if i == 1 {
			panic("bad group")
		}
		return s, nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "item 1 panicked: bad group")
}

func TestClosedPoolReportsError(t *testing.T) {
	pool := parallel.NewWorkerPool(2)
	pool.Close()

	_, err := parallel.TryProcessIndexed(pool, []int{1}, func(_ int, x int) (int, error) { return x, nil })
	assert.ErrorIs(t, err, context.Canceled)
}
