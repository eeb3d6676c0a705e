// Package pipeline runs the notification synchronization pipeline on a
// single long-lived background worker. The UI submits requests and
// keeps rendering; the worker processes them one at a time, in
// submission order, so a mark-as-read can never race a refresh's cache
// replace.
package pipeline

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/nhle/ghnotif/internal/cache"
	"github.com/nhle/ghnotif/internal/github"
	"github.com/nhle/ghnotif/internal/remote"
)

// requestTimeout bounds a single pipeline request end to end.
const requestTimeout = 90 * time.Second

// Op identifies a pipeline operation.
type Op int

const (
	OpRefresh Op = iota
	OpMarkAsRead
	OpResolveOpenURL
	OpOpenItem
)

// Request is one unit of work for the worker. ID correlates the
// responses emitted while serving it.
type Request struct {
	ID uuid.UUID
	Op Op

	// Notification is the acted-on entry for everything but OpRefresh.
	Notification github.Notification
}

// TaskStartedMsg signals that the worker picked up a request; the UI
// renders its loading indicator while one is outstanding.
type TaskStartedMsg struct {
	ID uuid.UUID
}

// TaskDoneMsg signals that the request finished, successfully or not.
type TaskDoneMsg struct {
	ID uuid.UUID
}

// NotificationsReplacedMsg is emitted after a refresh swapped the
// cache contents.
type NotificationsReplacedMsg struct {
	Count int
}

// NotificationRemovedMsg is emitted after a successful mark-as-read
// removed an entry from the cache.
type NotificationRemovedMsg struct {
	ID string
}

// OpenURLResolvedMsg carries the browser URL for an open-in-browser
// request.
type OpenURLResolvedMsg struct {
	URL string
}

// ItemLoadedMsg carries the lazily loaded detail view for an opened
// notification. Exactly one field is set.
type ItemLoadedMsg struct {
	Issue       *github.Issue
	PullRequest *github.PullRequest
	Discussion  *github.Discussion
}

// OperationFailedMsg reports a failed request. The error keeps its
// typed identity, so the UI can distinguish auth and rate-limit
// failures via remote.IsAuthError / remote.IsRateLimitError.
type OperationFailedMsg struct {
	ID  uuid.UUID
	Err error
}

// Worker owns the pipeline. All remote calls and all cache mutations
// happen on its single goroutine.
type Worker struct {
	fetcher  *remote.Fetcher
	resolver *remote.Resolver
	hydrator *remote.Hydrator
	client   *remote.Client
	cache    *cache.Cache

	requestCh chan Request
	resultCh  chan tea.Msg
	stopCh    chan struct{}

	mu      gosync.Mutex
	running bool
	busy    bool
}

// New wires a Worker from its collaborators. Nothing starts until
// Start is called.
func New(
	client *remote.Client,
	fetcher *remote.Fetcher,
	resolver *remote.Resolver,
	hydrator *remote.Hydrator,
	c *cache.Cache,
) *Worker {
	return &Worker{
		fetcher:   fetcher,
		resolver:  resolver,
		hydrator:  hydrator,
		client:    client,
		cache:     c,
		requestCh: make(chan Request, 16),
		resultCh:  make(chan tea.Msg, 16),
		stopCh:    make(chan struct{}),
	}
}

// Cache exposes the read-only view the UI renders from.
func (w *Worker) Cache() *cache.Cache {
	return w.cache
}

// Busy reports whether a pipeline request is currently being served.
func (w *Worker) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy
}

// Start launches the worker goroutine and returns a command that
// subscribes to its responses.
func (w *Worker) Start() tea.Cmd {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return w.waitForResult()
	}
	w.running = true
	w.mu.Unlock()

	go w.run()
	return w.waitForResult()
}

// Stop halts the worker after the in-flight request, if any, finishes.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	close(w.stopCh)
	w.running = false
}

// Refresh queues a full inbox refresh.
func (w *Worker) Refresh() tea.Cmd {
	return w.enqueue(Request{ID: uuid.New(), Op: OpRefresh})
}

// MarkAsRead queues marking the notification as read remotely and, on
// success, removing it from the cache.
func (w *Worker) MarkAsRead(n github.Notification) tea.Cmd {
	return w.enqueue(Request{ID: uuid.New(), Op: OpMarkAsRead, Notification: n})
}

// ResolveOpenURL queues resolving the notification's browser URL.
func (w *Worker) ResolveOpenURL(n github.Notification) tea.Cmd {
	return w.enqueue(Request{ID: uuid.New(), Op: OpResolveOpenURL, Notification: n})
}

// OpenItem queues the lazy detail load for the notification's target.
func (w *Worker) OpenItem(n github.Notification) tea.Cmd {
	return w.enqueue(Request{ID: uuid.New(), Op: OpOpenItem, Notification: n})
}

// enqueue submits the request without blocking the UI loop. A full
// queue rejects the request with an OperationFailedMsg instead of
// stalling rendering.
func (w *Worker) enqueue(req Request) tea.Cmd {
	select {
	case w.requestCh <- req:
		return nil
	default:
		return func() tea.Msg {
			return OperationFailedMsg{
				ID:  req.ID,
				Err: fmt.Errorf("pipeline busy: request queue is full"),
			}
		}
	}
}

// WaitForNextResult returns a command that waits for the next worker
// response. Call it after handling each response to keep listening.
func (w *Worker) WaitForNextResult() tea.Cmd {
	return w.waitForResult()
}

func (w *Worker) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-w.resultCh:
			return msg
		case <-w.stopCh:
			return nil
		}
	}
}

// run is the worker loop: one request at a time, in submission order.
func (w *Worker) run() {
	for {
		select {
		case <-w.stopCh:
			return
		case req := <-w.requestCh:
			w.setBusy(true)
			w.send(TaskStartedMsg{ID: req.ID})

			if err := w.serve(req); err != nil {
				w.send(OperationFailedMsg{ID: req.ID, Err: err})
			}

			w.send(TaskDoneMsg{ID: req.ID})
			w.setBusy(false)
		}
	}
}

// serve executes one request. Every error is returned, never allowed
// to kill the worker; panics in the pipeline become errors too.
func (w *Worker) serve(req Request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline request panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	switch req.Op {
	case OpRefresh:
		return w.refresh(ctx)
	case OpMarkAsRead:
		return w.markAsRead(ctx, req.Notification)
	case OpResolveOpenURL:
		return w.resolveOpenURL(ctx, req.Notification)
	case OpOpenItem:
		return w.openItem(ctx, req.Notification)
	default:
		return fmt.Errorf("unknown pipeline op %d", req.Op)
	}
}

// refresh runs fetch, hydrate, and cache replace end to end. Any stage
// failing aborts the refresh and leaves the previous cache contents
// untouched.
func (w *Worker) refresh(ctx context.Context) error {
	stubs, err := w.fetcher.FetchAllStubs(ctx)
	if err != nil {
		return err
	}

	notifications, err := w.hydrator.Hydrate(ctx, stubs)
	if err != nil {
		return err
	}

	w.cache.Replace(notifications)
	w.send(NotificationsReplacedMsg{Count: len(notifications)})
	return nil
}

// markAsRead removes the entry from the cache only after the remote
// call succeeded, so local state never diverges from a remote failure.
func (w *Worker) markAsRead(ctx context.Context, n github.Notification) error {
	if err := w.client.MarkThreadRead(ctx, n.Stub.ID); err != nil {
		return err
	}

	w.cache.Remove(n.Stub.ID)
	w.send(NotificationRemovedMsg{ID: n.Stub.ID})
	return nil
}

func (w *Worker) resolveOpenURL(ctx context.Context, n github.Notification) error {
	url, err := w.resolver.BrowseURL(ctx, n)
	if err != nil {
		return err
	}

	w.send(OpenURLResolvedMsg{URL: url})
	return nil
}

// openItem loads the detail view for the notification's target.
func (w *Worker) openItem(ctx context.Context, n github.Notification) error {
	switch target := n.Target.(type) {
	case github.IssueMeta:
		events, err := w.resolver.IssueTimeline(ctx, target.Repo, target.Number)
		if err != nil {
			return err
		}
		w.send(ItemLoadedMsg{Issue: &github.Issue{Meta: target, Events: events}})
		return nil

	case github.PullRequestMeta:
		events, err := w.resolver.PullRequestTimeline(ctx, target.Repo, target.Number)
		if err != nil {
			return err
		}
		w.send(ItemLoadedMsg{PullRequest: &github.PullRequest{Meta: target, Events: events}})
		return nil

	case github.DiscussionMeta:
		disc, err := w.resolver.FetchDiscussion(ctx, target)
		if err != nil {
			return err
		}
		if disc == nil {
			return fmt.Errorf("discussion #%d not found in %s/%s",
				target.Number, target.Repo.Owner, target.Repo.Name)
		}
		w.send(ItemLoadedMsg{Discussion: disc})
		return nil

	default:
		return fmt.Errorf("no detail view for a %s notification", n.Target.Kind())
	}
}

func (w *Worker) setBusy(busy bool) {
	w.mu.Lock()
	w.busy = busy
	w.mu.Unlock()
}

// send delivers a response, giving up only when the worker is stopped.
func (w *Worker) send(msg tea.Msg) {
	select {
	case w.resultCh <- msg:
	case <-w.stopCh:
	}
}
