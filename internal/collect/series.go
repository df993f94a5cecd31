// Package collect accumulates streams of values into series and rows into
// DataFrames.
//
// Every accumulator starts from an empty seed, takes items one at a time
// behind a lock, and merges with another partial result associatively. That
// lets Collect split its input into chunks, fold them in parallel and
// combine the partials in input order.
package collect

import (
	"sync"

	"github.com/paveg/rframe/internal/config"
	"github.com/paveg/rframe/internal/scalar"
	"github.com/paveg/rframe/internal/series"
	"golang.org/x/sync/errgroup"
)

// SeriesBuilder accumulates scalars into a series
type SeriesBuilder struct {
	mu sync.Mutex
	s  *series.Series
}

// NewSeriesBuilder creates an empty, unresolved builder
func NewSeriesBuilder() *SeriesBuilder {
	return &SeriesBuilder{s: series.New(scalar.KindUntyped)}
}

// Add appends v
func (b *SeriesBuilder) Add(v scalar.Scalar) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.s.Append(v)
}

// Merge appends every value collected by other, widening them to this
// builder's kind where Append would
func (b *SeriesBuilder) Merge(other *SeriesBuilder) error {
	tail := other.Series()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.s.Resolved() && tail.Resolved() && tail.Kind() != b.s.Kind() {
		cast, err := tail.Cast(b.s.Kind())
		if err != nil {
			return err
		}
		tail = cast
	}
	return b.s.AppendAll(tail)
}

// Len returns the number of values collected
func (b *SeriesBuilder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.s.Len()
}

// Series returns a copy of the collected series
func (b *SeriesBuilder) Series() *series.Series {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.s.Clone()
}

// CollectSeries maps every item to a scalar and collects them in input order
func CollectSeries[T any](items []T, fn func(T) (scalar.Scalar, error)) (*series.Series, error) {
	chunks := partition(items, config.GetGlobalConfig().CollectChunkSize)
	partials := make([]*SeriesBuilder, len(chunks))

	var g errgroup.Group
	g.SetLimit(config.GetGlobalConfig().Workers())
	for i, chunk := range chunks {
		g.Go(func() error {
			b := NewSeriesBuilder()
			for _, item := range chunk {
				v, err := fn(item)
				if err != nil {
					return err
				}
				if err := b.Add(v); err != nil {
					return err
				}
			}
			partials[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := NewSeriesBuilder()
	for _, p := range partials {
		if err := out.Merge(p); err != nil {
			return nil, err
		}
	}
	return out.Series(), nil
}

// partition splits items into consecutive chunks of at most size items
func partition[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = config.DefaultCollectChunkSize
	}
	var chunks [][]T
	for start := 0; start < len(items); start += size {
		chunks = append(chunks, items[start:min(start+size, len(items))])
	}
	return chunks
}
