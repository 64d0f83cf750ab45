// Package parallel runs independent jobs on a bounded set of goroutines.
//
// The table engine itself is single-threaded. This package serves the IO
// layer, where several files can be read at once before their frames are
// combined in order.
package parallel

import (
	"context"
	"runtime"
	"sync"
)

// WorkerPool bounds the number of goroutines used by Map.
type WorkerPool struct {
	numWorkers int
}

// NewWorkerPool creates a pool of numWorkers goroutines. A non-positive
// count uses runtime.NumCPU.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{numWorkers: numWorkers}
}

// Workers returns the size of the pool.
func (wp *WorkerPool) Workers() int {
	return wp.numWorkers
}

// Map applies worker to every item and returns the results in item order.
// The first error cancels the jobs not yet started and is returned together
// with its index.
func Map[T, R any](ctx context.Context, wp *WorkerPool, items []T, worker func(context.Context, T) (R, error)) ([]R, error) {
	if len(items) == 0 {
		return nil, ctx.Err()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	itemCh := make(chan indexedItem[T])
	results := make([]R, len(items))

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for range min(wp.numWorkers, len(items)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range itemCh {
				if ctx.Err() != nil {
					continue
				}
				result, err := worker(ctx, item.value)
				if err != nil {
					fail(&JobError{Index: item.index, Err: err})
					continue
				}
				results[item.index] = result
			}
		}()
	}

feed:
	for i, item := range items {
		select {
		case <-ctx.Done():
			break feed
		case itemCh <- indexedItem[T]{index: i, value: item}:
		}
	}
	close(itemCh)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// JobError reports which item made Map fail.
type JobError struct {
	Index int
	Err   error
}

func (e *JobError) Error() string {
	return e.Err.Error()
}

func (e *JobError) Unwrap() error {
	return e.Err
}

type indexedItem[T any] struct {
	index int
	value T
}
