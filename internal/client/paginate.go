package client

import (
	"context"
	"net/url"
	"strconv"
)

// DefaultPerPage is the page size requested from every listing
// endpoint. The server may return fewer items on any page; only an
// empty page ends the walk.
const DefaultPerPage = 500

// Pages walks a page-numbered listing endpoint, decoding each page
// into []T and handing it to visit. Pages are requested starting at 1
// and incrementing by one; iteration stops when the server returns an
// empty page, when visit asks to stop, or on the first fetch or
// decode failure. A short but non-empty page does not end the walk.
func Pages[T any](ctx context.Context, c *Client, path string, query url.Values, perPage int, visit func(page []T) (stop bool, err error)) error {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	for page := 1; ; page++ {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("per_page", strconv.Itoa(perPage))
		q.Set("page", strconv.Itoa(page))

		var items []T
		if err := c.GetJSON(ctx, path, q, &items); err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}

		stop, err := visit(items)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

// FetchAll accumulates every item from a paginated endpoint, in the
// order the server returned them.
func FetchAll[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var all []T
	err := Pages(ctx, c, path, query, DefaultPerPage, func(page []T) (bool, error) {
		all = append(all, page...)
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}
