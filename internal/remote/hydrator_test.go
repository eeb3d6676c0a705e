package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nhle/ghnotif/internal/github"
)

// offlineResolver builds a resolver whose client fails the test on any
// network call, for exercising paths that must stay local.
func offlineResolver(t *testing.T) *Resolver {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected network call: %s %s", r.Method, r.URL)
		fmt.Fprint(w, `{}`)
	}))
	t.Cleanup(server.Close)

	return NewResolver(NewClient(server.URL, "token"))
}

func TestHydrateOrdersByRecency(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	stubs := []github.Stub{
		{ID: "old", UpdatedAt: base.Add(-time.Hour), Subject: github.Subject{Type: "SomethingElse"}},
		{ID: "newest", UpdatedAt: base.Add(time.Hour), Subject: github.Subject{Type: "SomethingElse"}},
		{ID: "middle", UpdatedAt: base, Subject: github.Subject{Type: "SomethingElse"}},
	}

	hydrator := NewHydrator(offlineResolver(t), 4)

	notifications, err := hydrator.Hydrate(context.Background(), stubs)
	if err != nil {
		t.Fatalf("Hydrate(): %v", err)
	}

	wantOrder := []string{"newest", "middle", "old"}
	for i, want := range wantOrder {
		if notifications[i].Stub.ID != want {
			t.Errorf("notifications[%d].ID = %q, want %q", i, notifications[i].Stub.ID, want)
		}
	}
}

func TestHydrateOrderingIsStableForEqualTimestamps(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	stubs := []github.Stub{
		{ID: "first", UpdatedAt: ts, Subject: github.Subject{Type: "SomethingElse"}},
		{ID: "second", UpdatedAt: ts, Subject: github.Subject{Type: "SomethingElse"}},
		{ID: "third", UpdatedAt: ts, Subject: github.Subject{Type: "SomethingElse"}},
	}

	hydrator := NewHydrator(offlineResolver(t), 4)

	// Repeated hydration of identical input must produce identical
	// orderings.
	for run := 0; run < 5; run++ {
		notifications, err := hydrator.Hydrate(context.Background(), stubs)
		if err != nil {
			t.Fatalf("Hydrate() run %d: %v", run, err)
		}
		for i, want := range []string{"first", "second", "third"} {
			if notifications[i].Stub.ID != want {
				t.Fatalf(
					"run %d: notifications[%d].ID = %q, want %q",
					run, i, notifications[i].Stub.ID, want,
				)
			}
		}
	}
}

func TestHydrateSingleFailureFailsTheBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	}))
	t.Cleanup(server.Close)

	stubs := []github.Stub{
		{ID: "good-1", Subject: github.Subject{Type: "SomethingElse"}},
		{ID: "bad", Subject: github.Subject{Type: "Issue", URL: server.URL + "/repos/o/r/issues/1"}},
		{ID: "good-2", Subject: github.Subject{Type: "CheckSuite"}},
	}

	hydrator := NewHydrator(NewResolver(NewClient(server.URL, "token")), 4)

	notifications, err := hydrator.Hydrate(context.Background(), stubs)
	if notifications != nil {
		t.Errorf("a failed batch must not return partial results, got %d", len(notifications))
	}

	var hydrationErr *HydrationError
	if !errors.As(err, &hydrationErr) {
		t.Fatalf("expected a HydrationError, got %T: %v", err, err)
	}
	if len(hydrationErr.Failures) != 1 {
		t.Fatalf("len(Failures) = %d, want 1", len(hydrationErr.Failures))
	}
	if hydrationErr.Failures[0].ID != "bad" {
		t.Errorf("Failures[0].ID = %q, want %q", hydrationErr.Failures[0].ID, "bad")
	}
}

func TestHydrateKeepsErrorIdentity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"Bad credentials"}`)
	}))
	t.Cleanup(server.Close)

	stubs := []github.Stub{
		{ID: "1", Subject: github.Subject{Type: "Issue", URL: server.URL + "/repos/o/r/issues/1"}},
	}

	hydrator := NewHydrator(NewResolver(NewClient(server.URL, "token")), 4)

	_, err := hydrator.Hydrate(context.Background(), stubs)
	if !IsAuthError(err) {
		t.Errorf("an auth failure must keep its identity through aggregation, got: %v", err)
	}
}

func TestHydrateEmptyBatch(t *testing.T) {
	hydrator := NewHydrator(offlineResolver(t), 4)

	notifications, err := hydrator.Hydrate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Hydrate(nil): %v", err)
	}
	if len(notifications) != 0 {
		t.Errorf("len = %d, want 0", len(notifications))
	}
}
