package objectstore

import (
	"context"
	"fmt"
	"iter"
)

// Pages lazily yields every page of a listing, following continuation tokens.
// Iteration stops at the first error, which is yielded once.
func Pages(ctx context.Context, store Store, in ListInput) iter.Seq2[*ListPage, error] {
	return func(yield func(*ListPage, error) bool) {
		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			page, err := store.List(ctx, in)
			if err != nil {
				yield(nil, fmt.Errorf("[objectstore Pages] list %q: %w", in.Prefix, err))
				return
			}
			if !yield(page, nil) {
				return
			}
			if !page.Truncated || page.NextContinuationToken == "" {
				return
			}
			in.ContinuationToken = page.NextContinuationToken
		}
	}
}

// Walk lazily yields every object under in.Prefix across all pages. Only one
// page is buffered at a time, so very large subtrees can be streamed.
func Walk(ctx context.Context, store Store, in ListInput) iter.Seq2[ObjectInfo, error] {
	return func(yield func(ObjectInfo, error) bool) {
		for page, err := range Pages(ctx, store, in) {
			if err != nil {
				yield(ObjectInfo{}, err)
				return
			}
			for _, obj := range page.Objects {
				if !yield(obj, nil) {
					return
				}
			}
		}
	}
}
