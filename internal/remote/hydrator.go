package remote

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nhle/ghnotif/internal/github"
)

const defaultHydrateConcurrency = 16

// Hydrator resolves a batch of stubs into hydrated notifications with
// a bounded concurrent fan-out, then joins and orders the results.
//
// The batch is all-or-nothing: if any stub fails to resolve, the whole
// hydration fails with a HydrationError and the caller keeps its
// previous collection. Dropping failed stubs to Unknown instead would
// trade consistency for availability; this implementation keeps the
// consistent-view behavior and tests it.
type Hydrator struct {
	resolver       *Resolver
	maxConcurrency int
}

// NewHydrator creates a Hydrator. maxConcurrency caps in-flight
// resolutions to respect upstream rate limits; values below one use
// the default cap.
func NewHydrator(resolver *Resolver, maxConcurrency int) *Hydrator {
	if maxConcurrency <= 0 {
		maxConcurrency = defaultHydrateConcurrency
	}
	return &Hydrator{
		resolver:       resolver,
		maxConcurrency: maxConcurrency,
	}
}

// Hydrate resolves every stub concurrently, waits for all of them, and
// returns notifications sorted by recency, most recently updated
// first. The sort is stable: stubs with identical timestamps keep
// their relative input order, so repeated refreshes over unchanged
// remote data produce identical orderings.
func (h *Hydrator) Hydrate(
	ctx context.Context,
	stubs []github.Stub,
) ([]github.Notification, error) {
	results := make([]github.Notification, len(stubs))

	var mu sync.Mutex
	var failures []StubFailure

	// Every task runs to completion even after a failure; errors are
	// aggregated afterward instead of cancelling the group.
	g := new(errgroup.Group)
	g.SetLimit(h.maxConcurrency)
	for i, stub := range stubs {
		g.Go(func() (err error) {
			defer func() {
				// A panicking resolution is a failed task, not a dead
				// worker.
				if r := recover(); r != nil {
					err = nil
					mu.Lock()
					failures = append(failures, StubFailure{
						ID:  stub.ID,
						Err: fmt.Errorf("resolution panicked: %v", r),
					})
					mu.Unlock()
				}
			}()

			target, err := h.resolver.Resolve(ctx, stub)
			if err != nil {
				mu.Lock()
				failures = append(failures, StubFailure{ID: stub.ID, Err: err})
				mu.Unlock()
				return nil
			}

			results[i] = github.Notification{Stub: stub, Target: target}
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) > 0 {
		sort.Slice(failures, func(i, j int) bool {
			return failures[i].ID < failures[j].ID
		})
		return nil, &HydrationError{Failures: failures}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Stub.UpdatedAt.After(results[j].Stub.UpdatedAt)
	})
	return results, nil
}
