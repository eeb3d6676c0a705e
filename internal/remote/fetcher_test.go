package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nhle/ghnotif/internal/httpcache"
)

func TestFetchAllStubsSinglePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("per_page"); got != "50" {
			t.Errorf("per_page = %q, want %q", got, "50")
		}
		fmt.Fprint(w, `[{"id":"1","subject":{"type":"Issue"}},{"id":"2","subject":{"type":"Release"}}]`)
	}))
	t.Cleanup(server.Close)

	fetcher := NewFetcher(NewClient(server.URL, "token"), 50, 4)

	stubs, err := fetcher.FetchAllStubs(context.Background())
	if err != nil {
		t.Fatalf("FetchAllStubs(): %v", err)
	}
	if len(stubs) != 2 {
		t.Fatalf("len(stubs) = %d, want 2", len(stubs))
	}
	if stubs[0].ID != "1" || stubs[1].ID != "2" {
		t.Errorf("unexpected stub ids: %s, %s", stubs[0].ID, stubs[1].ID)
	}
}

func TestFetchAllStubsFollowsLinkHeader(t *testing.T) {
	pages := map[string]string{
		"1": `[{"id":"a"},{"id":"b"}]`,
		"2": `[{"id":"c"},{"id":"d"}]`,
		"3": `[{"id":"e"}]`,
	}

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		if page == "1" {
			w.Header().Set("Link", fmt.Sprintf(
				`<%s/notifications?page=2&per_page=2>; rel="next", <%s/notifications?page=3&per_page=2>; rel="last"`,
				server.URL, server.URL,
			))
		}
		body, ok := pages[page]
		if !ok {
			t.Errorf("unexpected page requested: %q", page)
			body = "[]"
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)

	fetcher := NewFetcher(NewClient(server.URL, "token"), 2, 4)

	stubs, err := fetcher.FetchAllStubs(context.Background())
	if err != nil {
		t.Fatalf("FetchAllStubs(): %v", err)
	}
	if len(stubs) != 5 {
		t.Fatalf("len(stubs) = %d, want 5", len(stubs))
	}

	// All pages are joined in page order regardless of fetch order.
	wantIDs := []string{"a", "b", "c", "d", "e"}
	for i, want := range wantIDs {
		if stubs[i].ID != want {
			t.Errorf("stubs[%d].ID = %q, want %q", i, stubs[i].ID, want)
		}
	}
}

func TestFetchAllStubsRevalidatedInboxKeepsAllPages(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			if r.Header.Get("If-None-Match") == `"p1"` {
				// Bare 304 without the Link header, as servers may send.
				w.WriteHeader(http.StatusNotModified)
				return
			}
			w.Header().Set("ETag", `"p1"`)
			w.Header().Set("Link", fmt.Sprintf(
				`<%s/notifications?page=2&per_page=1>; rel="next", <%s/notifications?page=2&per_page=1>; rel="last"`,
				server.URL, server.URL,
			))
			fmt.Fprint(w, `[{"id":"a"}]`)
		case "2":
			fmt.Fprint(w, `[{"id":"b"}]`)
		default:
			t.Errorf("unexpected page requested: %q", r.URL.Query().Get("page"))
			fmt.Fprint(w, "[]")
		}
	}))
	t.Cleanup(server.Close)

	store, err := httpcache.Open(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory cache: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	fetcher := NewFetcher(NewClient(server.URL, "token", WithCache(store)), 1, 4)

	first, err := fetcher.FetchAllStubs(context.Background())
	if err != nil {
		t.Fatalf("first FetchAllStubs(): %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("first fetch: len(stubs) = %d, want 2", len(first))
	}

	second, err := fetcher.FetchAllStubs(context.Background())
	if err != nil {
		t.Fatalf("revalidated FetchAllStubs(): %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("unchanged inbox: second fetch returned %d stubs, want 2", len(second))
	}
	for i := range first {
		if second[i].ID != first[i].ID {
			t.Errorf("second[%d].ID = %q, want %q", i, second[i].ID, first[i].ID)
		}
	}
}

func TestFetchAllStubsFailsWhenAnyPageFails(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			w.Header().Set("Link", fmt.Sprintf(
				`<%s/notifications?page=2&per_page=50>; rel="last"`, server.URL,
			))
			fmt.Fprint(w, `[{"id":"a"}]`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"message":"boom"}`)
		}
	}))
	t.Cleanup(server.Close)

	fetcher := NewFetcher(NewClient(server.URL, "token"), 50, 4)

	stubs, err := fetcher.FetchAllStubs(context.Background())
	if err == nil {
		t.Fatal("expected an error when a page fetch fails")
	}
	if stubs != nil {
		t.Errorf("a failed fetch must not return partial results, got %d stubs", len(stubs))
	}
}

func TestLastPageNumber(t *testing.T) {
	tests := []struct {
		name string
		link string
		want int
	}{
		{
			name: "no header",
			link: "",
			want: 1,
		},
		{
			name: "next and last",
			link: `<https://api.github.com/notifications?page=2>; rel="next", <https://api.github.com/notifications?page=7>; rel="last"`,
			want: 7,
		},
		{
			name: "only prev and first",
			link: `<https://api.github.com/notifications?page=1>; rel="prev", <https://api.github.com/notifications?page=1>; rel="first"`,
			want: 1,
		},
		{
			name: "malformed url is ignored",
			link: `<:%>; rel="last"`,
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := http.Header{}
			if tt.link != "" {
				headers.Set("Link", tt.link)
			}
			if got := lastPageNumber(headers); got != tt.want {
				t.Errorf("lastPageNumber() = %d, want %d", got, tt.want)
			}
		})
	}
}
