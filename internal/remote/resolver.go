package remote

import (
	"context"
	"fmt"

	"github.com/nhle/ghnotif/internal/github"
)

// noDescription substitutes for empty issue/PR/release bodies.
const noDescription = "No description provided."

// discussionSearchQuery locates a discussion by a repo- and
// title-scoped text search; discussions have no REST detail endpoint.
const discussionSearchQuery = `
query($query: String!) {
  search(query: $query, type: DISCUSSION, first: 10) {
    edges {
      node {
        ... on Discussion {
          number
          title
          isAnswered
        }
      }
    }
  }
}`

// Resolver classifies a stub's subject type and issues whatever
// secondary lookups that classification needs to build a typed target.
type Resolver struct {
	client *Client
}

// NewResolver creates a Resolver on top of the given client.
func NewResolver(client *Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve hydrates a single stub into its target. Unrecognized subject
// types resolve to Unknown without any network call. A failed detail
// fetch for a known-fetchable type (Issue, PullRequest, Release) is an
// error; an ambiguous discussion search is not, it degrades to Unknown.
func (r *Resolver) Resolve(ctx context.Context, stub github.Stub) (github.Target, error) {
	switch github.ClassifySubject(stub.Subject.Type) {
	case github.KindIssue:
		if stub.Subject.URL == "" {
			return github.Unknown{}, nil
		}
		return r.resolveIssue(ctx, stub)

	case github.KindPullRequest:
		if stub.Subject.URL == "" {
			return github.Unknown{}, nil
		}
		return r.resolvePullRequest(ctx, stub)

	case github.KindRelease:
		if stub.Subject.URL == "" {
			return github.Unknown{}, nil
		}
		return r.resolveRelease(ctx, stub)

	case github.KindDiscussion:
		return r.resolveDiscussion(ctx, stub)

	case github.KindCiBuild:
		// CheckSuites carry no detail endpoint; nothing to fetch.
		return github.CiBuild{}, nil

	default:
		return github.Unknown{}, nil
	}
}

func (r *Resolver) resolveIssue(ctx context.Context, stub github.Stub) (github.Target, error) {
	var detail issueDetail
	if err := r.client.Get(ctx, stub.Subject.URL, &detail); err != nil {
		return nil, fmt.Errorf("fetching issue detail: %w", err)
	}

	state := github.IssueOpen
	if detail.ClosedAt != nil {
		if detail.StateReason == "completed" {
			state = github.IssueClosedCompleted
		} else {
			state = github.IssueClosedNotPlanned
		}
	}

	body := detail.Body
	if body == "" {
		body = noDescription
	}

	return github.IssueMeta{
		Repo:      stub.Repo(),
		Title:     detail.Title,
		Body:      body,
		Number:    detail.Number,
		Author:    github.User{Login: detail.User.Login},
		State:     state,
		CreatedAt: detail.CreatedAt,
	}, nil
}

func (r *Resolver) resolvePullRequest(ctx context.Context, stub github.Stub) (github.Target, error) {
	var detail pullDetail
	if err := r.client.Get(ctx, stub.Subject.URL, &detail); err != nil {
		return nil, fmt.Errorf("fetching pull request detail: %w", err)
	}

	// Merged PRs also carry a closed timestamp, so merged wins.
	state := github.PullRequestOpen
	switch {
	case detail.MergedAt != nil:
		state = github.PullRequestMerged
	case detail.ClosedAt != nil:
		state = github.PullRequestClosed
	}

	body := detail.Body
	if body == "" {
		body = noDescription
	}

	return github.PullRequestMeta{
		Repo:      stub.Repo(),
		Title:     detail.Title,
		Body:      body,
		Number:    detail.Number,
		Author:    github.User{Login: detail.User.Login},
		State:     state,
		CreatedAt: detail.CreatedAt,
	}, nil
}

func (r *Resolver) resolveRelease(ctx context.Context, stub github.Stub) (github.Target, error) {
	var detail releaseDetail
	if err := r.client.Get(ctx, stub.Subject.URL, &detail); err != nil {
		return nil, fmt.Errorf("fetching release detail: %w", err)
	}

	title := detail.Name
	if title == "" {
		title = detail.TagName
	}
	body := detail.Body
	if body == "" {
		body = noDescription
	}

	return github.ReleaseMeta{
		Repo:    stub.Repo(),
		Title:   title,
		Body:    body,
		Author:  github.User{Login: detail.Author.Login},
		TagName: detail.TagName,
		HTMLURL: detail.HTMLURL,
	}, nil
}

// resolveDiscussion locates the discussion through search. Discussion
// metadata is best-effort: zero or ambiguous matches produce Unknown
// rather than failing the stub.
func (r *Resolver) resolveDiscussion(ctx context.Context, stub github.Stub) (github.Target, error) {
	repo := stub.Repo()
	search := fmt.Sprintf(
		"repo:%s/%s in:title %q", repo.Owner, repo.Name, stub.Subject.Title,
	)

	var data discussionSearchData
	err := r.client.GraphQL(
		ctx, discussionSearchQuery,
		map[string]interface{}{"query": search},
		&data,
	)
	if err != nil {
		return nil, fmt.Errorf("searching discussion: %w", err)
	}

	matched := -1
	for i, edge := range data.Search.Edges {
		if edge.Node.Title != stub.Subject.Title {
			continue
		}
		if matched >= 0 {
			// Two discussions with the same title; no way to tell
			// which one the notification refers to.
			return github.Unknown{}, nil
		}
		matched = i
	}
	if matched < 0 {
		return github.Unknown{}, nil
	}

	node := data.Search.Edges[matched].Node
	state := github.DiscussionUnanswered
	if node.IsAnswered {
		state = github.DiscussionAnswered
	}

	return github.DiscussionMeta{
		Repo:   repo,
		Title:  node.Title,
		Number: node.Number,
		State:  state,
	}, nil
}
