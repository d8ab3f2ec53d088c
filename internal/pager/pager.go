// Package pager follows paginated upstream listings until the cursor runs
// out or a per-page stop predicate fires.
package pager

import (
	"context"
)

// FetchFunc fetches the page at cursor and returns its items and the cursor
// of the next page. The zero cursor means there are no more pages.
type FetchFunc[T any, C comparable] func(ctx context.Context, cursor C) ([]T, C, error)

// StopFunc is checked after each page. Returning true ends the listing after
// that page; its items are still collected.
type StopFunc[T any] func(page []T) bool

// Collect fetches pages starting at start and returns all collected items
func Collect[T any, C comparable](ctx context.Context, start C, fetch FetchFunc[T, C], stop StopFunc[T]) ([]T, error) {
	var (
		zero   C
		all    []T
		cursor = start
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		items, next, err := fetch(ctx, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		if stop != nil && stop(items) {
			return all, nil
		}
		if next == zero || next == cursor {
			return all, nil
		}
		cursor = next
	}
}
