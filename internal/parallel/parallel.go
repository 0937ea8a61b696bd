// Package parallel runs data-parallel loops over disjoint index ranges.
package parallel

import "golang.org/x/sync/errgroup"

// For splits [0, n) into at most workers contiguous chunks and calls fn once
// per chunk, concurrently. fn must only write state owned by its own range.
// The first non-nil error is returned after all chunks finish.
func For(n, workers int, fn func(lo, hi int) error) error {
	if n <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	if workers == 1 {
		return fn(0, n)
	}

	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			return fn(lo, hi)
		})
	}
	return g.Wait()
}
