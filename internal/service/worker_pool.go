package service

import (
	"context"
	"sync"
)

type poolResult[R any] struct {
	value R
	err   error
}

// runPool fans inputs out over a fixed number of goroutines and returns
// results in input order. It stops dispatching once ctx is cancelled;
// undispatched slots keep ctx.Err().
func runPool[T, R any](ctx context.Context, workers int, inputs []T, fn func(context.Context, T) (R, error)) []poolResult[R] {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}
	results := make([]poolResult[R], len(inputs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				v, err := fn(ctx, inputs[i])
				results[i] = poolResult[R]{value: v, err: err}
			}
		}()
	}

dispatch:
	for i := range inputs {
		select {
		case jobs <- i:
		case <-ctx.Done():
			for j := i; j < len(inputs); j++ {
				results[j] = poolResult[R]{err: ctx.Err()}
			}
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()
	return results
}
