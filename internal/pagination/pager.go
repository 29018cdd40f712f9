// Package pagination drives cursor-paginated list endpoints.
package pagination

import (
	"context"
	"fmt"

	"yt_harvester/internal/domain"
)

// DefaultMaxPages bounds a single FetchAll call when no limit is configured.
const DefaultMaxPages = 1000

// Page is one response of a cursor-paginated endpoint.
// An empty NextPageToken marks the last page.
type Page[T any] struct {
	Items         []T
	NextPageToken string
}

// PageFunc requests the page identified by pageToken. The first call receives "".
type PageFunc[T any] func(ctx context.Context, pageToken string) (Page[T], error)

// FetchAll calls fetch until a page carries no next token and returns all items
// in fetch order. A failed page aborts the whole call without partial results.
func FetchAll[T any](ctx context.Context, maxPages int, fetch PageFunc[T]) ([]T, error) {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	var all []T
	token := ""

	for page := 0; page < maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := fetch(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}

		all = append(all, resp.Items...)

		if resp.NextPageToken == "" {
			return all, nil
		}
		token = resp.NextPageToken
	}

	return nil, fmt.Errorf("%w: stopped after %d pages", domain.ErrTooManyPages, maxPages)
}
