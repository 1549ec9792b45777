package shared

import (
	"context"
	"sync"
)

// Chunk splits items into groups of at most size. The last chunk may be
// shorter. A non-positive size yields a single chunk with all items.
func Chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]T{items}
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// ForEach processes items with at most workers goroutines. Item order within
// a worker is not guaranteed; callers that need ordering should use workers=1.
// Errors from fn are collected per item and do not stop the other items.
// ForEach stops admitting new items once ctx is cancelled and returns
// ctx.Err() in that case.
func ForEach[T any](ctx context.Context, items []T, workers int, fn func(ctx context.Context, item T) error) ([]error, error) {
	if workers <= 0 {
		workers = 1
	}

	errs := make([]error, len(items))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i := range items {
		select {
		case <-ctx.Done():
			wg.Wait()
			return errs, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			errs[idx] = fn(ctx, items[idx])
		}(i)
	}

	wg.Wait()
	return errs, nil
}
