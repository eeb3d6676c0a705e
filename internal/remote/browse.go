package remote

import (
	"context"
	"fmt"

	"github.com/nhle/ghnotif/internal/github"
)

// MarkThreadRead marks a notification thread as read on the server.
// Callers only touch local state after this succeeds.
func (c *Client) MarkThreadRead(ctx context.Context, id string) error {
	if err := c.Patch(ctx, "/notifications/threads/"+id); err != nil {
		return fmt.Errorf("marking thread %s as read: %w", id, err)
	}
	return nil
}

// BrowseURL resolves the canonical browser-openable URL for a
// notification. The strategy depends on the target type:
//
//   - Release: the release page captured during hydration.
//   - Issue: the latest comment when one exists, else the issue itself.
//   - PullRequest: the PR page itself. The web UI would jump to the
//     latest activity instead; keeping the plain PR page is a smaller,
//     predictable behavior and intentional.
//
// Targets with nothing a browser could show return NoBrowsableURLError.
func (r *Resolver) BrowseURL(ctx context.Context, n github.Notification) (string, error) {
	subject := n.Stub.Subject

	switch target := n.Target.(type) {
	case github.ReleaseMeta:
		if target.HTMLURL != "" {
			return target.HTMLURL, nil
		}
		if subject.URL == "" {
			return "", &NoBrowsableURLError{APIURL: n.Stub.URL}
		}
		var detail releaseDetail
		if err := r.client.Get(ctx, subject.URL, &detail); err != nil {
			return "", fmt.Errorf("fetching release for browsing: %w", err)
		}
		return detail.HTMLURL, nil

	case github.IssueMeta:
		if subject.LatestCommentURL != "" {
			var comment commentDetail
			if err := r.client.Get(ctx, subject.LatestCommentURL, &comment); err != nil {
				return "", fmt.Errorf("fetching latest comment for browsing: %w", err)
			}
			return comment.HTMLURL, nil
		}
		if subject.URL == "" {
			return "", &NoBrowsableURLError{APIURL: n.Stub.URL}
		}
		var detail issueDetail
		if err := r.client.Get(ctx, subject.URL, &detail); err != nil {
			return "", fmt.Errorf("fetching issue for browsing: %w", err)
		}
		return detail.HTMLURL, nil

	case github.PullRequestMeta:
		if subject.URL == "" {
			return "", &NoBrowsableURLError{APIURL: n.Stub.URL}
		}
		var detail pullDetail
		if err := r.client.Get(ctx, subject.URL, &detail); err != nil {
			return "", fmt.Errorf("fetching pull request for browsing: %w", err)
		}
		if detail.HTMLURL == "" {
			return "", &NoBrowsableURLError{APIURL: n.Stub.URL}
		}
		return detail.HTMLURL, nil

	default:
		return "", &NoBrowsableURLError{APIURL: n.Stub.URL}
	}
}
