package render

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minChunk keeps tiny meshes on a single goroutine.
const minChunk = 256

// resolveWorkers maps the Options.Workers convention (0 = all CPUs) to a
// concrete count.
func resolveWorkers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// parallelRange splits [0, n) into contiguous chunks and runs fn on each,
// with at most workers chunks in flight. fn must only write to the indices
// in its own [lo, hi).
func parallelRange(n, workers int, fn func(lo, hi int)) {
	if n == 0 {
		return
	}
	if workers <= 1 || n <= minChunk {
		fn(0, n)
		return
	}

	chunk := max((n+workers-1)/workers, minChunk)

	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}
