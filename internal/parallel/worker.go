// Package parallel provides the worker pool used to fan out per-group work.
//
// Work items are independent sub-frames, so workers never share mutable
// state. Results are returned in input order, and the first failure stops
// the pool from handing out more work.
package parallel

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// WorkerPool manages a pool of goroutines for parallel processing
type WorkerPool struct {
	numWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewWorkerPool creates a new worker pool. A non-positive size uses the CPU count.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		numWorkers: numWorkers,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Workers returns the number of worker goroutines
func (wp *WorkerPool) Workers() int {
	return wp.numWorkers
}

// TryProcessIndexed executes work items in parallel while preserving order.
// The first error, or a panic in worker, stops the remaining items from
// being started and is returned.
func TryProcessIndexed[T, R any](
	wp *WorkerPool,
	items []T,
	worker func(int, T) (R, error),
) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(wp.ctx)
	defer cancel()

	itemCh := make(chan indexedItem[T], len(items))
	resultCh := make(chan indexedResult[R], len(items))

	var (
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	var wg sync.WaitGroup
	for i := 0; i < min(wp.numWorkers, len(items)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range itemCh {
				select {
				case <-ctx.Done():
					return
				default:
				}
				result, err := safeCall(worker, item)
				if err != nil {
					fail(err)
					return
				}
				resultCh <- indexedResult[R]{index: item.index, result: result}
			}
		}()
	}

	// Items fit in the buffer, so sending never blocks
	for i, item := range items {
		itemCh <- indexedItem[T]{index: i, value: item}
	}
	close(itemCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]R, len(items))
	for result := range resultCh {
		results[result.index] = result.result
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if err := wp.ctx.Err(); err != nil {
		return nil, fmt.Errorf("worker pool closed: %w", err)
	}
	return results, nil
}

func safeCall[T, R any](worker func(int, T) (R, error), item indexedItem[T]) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("item %d panicked: %v", item.index, r)
		}
	}()
	return worker(item.index, item.value)
}

// Close shuts down the worker pool
func (wp *WorkerPool) Close() {
	wp.cancel()
}

// indexedItem holds an item with its index
type indexedItem[T any] struct {
	index int
	value T
}

// indexedResult holds a result with its index
type indexedResult[R any] struct {
	index  int
	result R
}
