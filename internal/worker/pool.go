// Package worker runs independent jobs on a bounded set of goroutines and
// returns their results in input order. The batch command uses it to fan
// out cursor-agent invocations, each with its own process.
package worker

import (
	"context"
	"runtime"
	"sync"
)

// Result pairs a job's value with its input index.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// Pool bounds how many jobs run at once.
type Pool[In, Out any] struct {
	concurrency int
}

// NewPool creates a pool running at most concurrency jobs at a time.
// Non-positive concurrency means runtime.NumCPU().
func NewPool[In, Out any](concurrency int) *Pool[In, Out] {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	return &Pool[In, Out]{concurrency: concurrency}
}

// Process applies fn to every item and returns results in input order. A
// failing item does not stop the others. Once ctx is done, items not yet
// started are skipped with ctx's error.
func (p *Pool[In, Out]) Process(ctx context.Context, items []In, fn func(context.Context, In) (Out, error)) []Result[Out] {
	if len(items) == 0 {
		return nil
	}
	workers := min(p.concurrency, len(items))

	jobs := make(chan int, len(items))
	for i := range items {
		jobs <- i
	}
	close(jobs)

	results := make([]Result[Out], len(items))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					results[i] = Result[Out]{Index: i, Err: context.Cause(ctx)}
					continue
				}
				val, err := fn(ctx, items[i])
				results[i] = Result[Out]{Index: i, Value: val, Err: err}
			}
		}()
	}
	wg.Wait()
	return results
}
