package api

import (
	"context"
	"net/http"
)

// Page is the envelope of a cursor-paginated list response.
type Page[T any] struct {
	Results []T     `json:"results"`
	Next    *string `json:"next"`
}

// ListPage fetches a single page from endpoint, which may be a relative
// path or a cursor URL returned by a previous page. It returns the cursor
// for the following page ("" when exhausted) and the page items.
func ListPage[T any](ctx context.Context, d *Dispatcher, endpoint string) (string, []T, error) {
	var page Page[T]
	if err := d.DoJSON(ctx, Request{Method: http.MethodGet, Endpoint: endpoint}, &page); err != nil {
		return "", nil, err
	}

	next := ""
	if page.Next != nil {
		next = *page.Next
	}
	if page.Results == nil {
		page.Results = []T{}
	}
	return next, page.Results, nil
}

// PageWalker follows "next" cursors one page at a time. It holds exactly
// one active cursor and is not safe for concurrent use.
type PageWalker[T any] struct {
	dispatcher *Dispatcher
	cursor     string
	done       bool
}

// NewPageWalker starts a walk at the first-page endpoint.
func NewPageWalker[T any](d *Dispatcher, firstPage string) *PageWalker[T] {
	return &PageWalker[T]{
		dispatcher: d,
		cursor:     firstPage,
	}
}

// Next fetches the next page. It returns nil, nil once every page has been
// consumed. After an error the walker is finished and fetches nothing more.
func (w *PageWalker[T]) Next(ctx context.Context) ([]T, error) {
	if w.done {
		return nil, nil
	}
	next, items, err := ListPage[T](ctx, w.dispatcher, w.cursor)
	if err != nil {
		w.done = true
		w.cursor = ""
		return nil, err
	}

	w.cursor = next
	if next == "" {
		w.done = true
	}
	return items, nil
}

// HasMore reports whether another call to Next may return items.
func (w *PageWalker[T]) HasMore() bool {
	return !w.done
}

// Cursor returns the endpoint the next call to Next will fetch.
func (w *PageWalker[T]) Cursor() string {
	return w.cursor
}

// Collect drains every remaining page in order. On failure the items
// gathered so far are returned along with the error.
func (w *PageWalker[T]) Collect(ctx context.Context) ([]T, error) {
	all := []T{}
	for w.HasMore() {
		items, err := w.Next(ctx)
		if err != nil {
			return all, err
		}
		all = append(all, items...)
	}
	return all, nil
}
