package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nhle/ghnotif/internal/github"
)

const defaultPageSize = 50

// Fetcher retrieves every page of raw notification stubs for the
// authenticated user. The first page is fetched synchronously to learn
// the page count; remaining pages are fetched concurrently. Any page
// failing fails the whole call: a partial inbox would be silently
// incomplete, so all-or-nothing is preferred over best-effort.
type Fetcher struct {
	client         *Client
	pageSize       int
	maxConcurrency int
}

// NewFetcher creates a Fetcher. maxConcurrency bounds the in-flight
// page requests; values below one fall back to a serial fetch.
func NewFetcher(client *Client, pageSize, maxConcurrency int) *Fetcher {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &Fetcher{
		client:         client,
		pageSize:       pageSize,
		maxConcurrency: maxConcurrency,
	}
}

// FetchAllStubs returns the full unread inbox as raw stubs. Output
// order across pages is unspecified; the hydrator re-orders by recency.
func (f *Fetcher) FetchAllStubs(ctx context.Context) ([]github.Stub, error) {
	var first []github.Stub
	headers, err := f.client.getWithHeaders(ctx, f.pagePath(1), &first)
	if err != nil {
		return nil, fmt.Errorf("fetching notifications page 1: %w", err)
	}

	lastPage := lastPageNumber(headers)
	if lastPage <= 1 {
		return first, nil
	}

	pages := make([][]github.Stub, lastPage+1)
	pages[1] = first

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.maxConcurrency)
	for page := 2; page <= lastPage; page++ {
		g.Go(func() error {
			var stubs []github.Stub
			if err := f.client.Get(gctx, f.pagePath(page), &stubs); err != nil {
				return fmt.Errorf("fetching notifications page %d: %w", page, err)
			}
			mu.Lock()
			pages[page] = stubs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make([]github.Stub, 0, lastPage*f.pageSize)
	for _, page := range pages[1:] {
		all = append(all, page...)
	}
	return all, nil
}

func (f *Fetcher) pagePath(page int) string {
	return fmt.Sprintf("/notifications?page=%d&per_page=%d", page, f.pageSize)
}

// lastPageNumber extracts the rel="last" page number from the Link
// header of a paginated response. Returns 1 when there is no further
// page.
func lastPageNumber(headers http.Header) int {
	link := headers.Get("Link")
	if link == "" {
		return 1
	}

	for _, part := range strings.Split(link, ",") {
		sections := strings.Split(part, ";")
		if len(sections) < 2 {
			continue
		}
		if !strings.Contains(sections[1], `rel="last"`) {
			continue
		}

		raw := strings.Trim(strings.TrimSpace(sections[0]), "<>")
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		page, err := strconv.Atoi(u.Query().Get("page"))
		if err != nil {
			continue
		}
		return page
	}
	return 1
}
