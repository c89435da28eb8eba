// Package parallel provides chunked parallel execution over index ranges.
// Distance computations and per-row prediction loops use it to spread
// work across CPU cores without per-call goroutine churn.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize splits the half-open range [0, items) into per-core chunks
// and runs fn(start, end) for each chunk on its own goroutine, returning
// once all chunks are done.
func Parallelize(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	// Ceiling division so the last chunk picks up the remainder.
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}

		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially over the whole range when
// items is at or below threshold, and parallelizes otherwise. Small inputs
// are not worth the goroutine overhead.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}

	Parallelize(items, fn)
}
