package sim

import "sync"

// parallelFor applies fn to contiguous chunks of [0, n) across at most
// workers goroutines and waits for all of them. fn must be independent
// across indices; the join happens before parallelFor returns, so dependent
// pipeline stages can start immediately after.
func parallelFor(workers, n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}
