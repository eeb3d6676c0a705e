package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/nhle/ghnotif/internal/github"
)

// Timeline queries ask for the event fragments this client renders;
// every other node type comes back as a bare __typename and degrades
// to an unknown event.

const sharedTimelineFragments = `
          ... on IssueComment { author { login } body createdAt }
          ... on ClosedEvent {
            actor { login } createdAt
            closer {
              __typename
              ... on Commit { abbreviatedOid }
              ... on PullRequest { number }
            }
          }
          ... on ReopenedEvent { actor { login } createdAt }
          ... on LabeledEvent { actor { login } createdAt label { name } }
          ... on UnlabeledEvent { actor { login } createdAt label { name } }
          ... on AssignedEvent {
            actor { login } createdAt
            assignee { ... on User { login } ... on Bot { login } }
          }
          ... on UnassignedEvent {
            actor { login } createdAt
            assignee { ... on User { login } ... on Bot { login } }
          }
          ... on MilestonedEvent { actor { login } createdAt milestoneTitle }
          ... on RenamedTitleEvent {
            actor { login } createdAt previousTitle currentTitle
          }
          ... on LockedEvent { actor { login } createdAt }
          ... on UnlockedEvent { actor { login } createdAt }
          ... on PinnedEvent { actor { login } createdAt }
          ... on UnpinnedEvent { actor { login } createdAt }
          ... on ReferencedEvent {
            actor { login } createdAt
            commit { abbreviatedOid messageHeadline }
          }
          ... on CrossReferencedEvent {
            actor { login } createdAt
            source {
              __typename
              ... on Issue { number title }
              ... on PullRequest { number title }
            }
          }`

const issueTimelineQuery = `
query($owner: String!, $repo: String!, $number: Int!) {
  repository(owner: $owner, name: $repo) {
    issue(number: $number) {
      timelineItems(first: 100) {
        nodes {
          __typename` + sharedTimelineFragments + `
        }
      }
    }
  }
}`

const pullRequestTimelineQuery = `
query($owner: String!, $repo: String!, $number: Int!) {
  repository(owner: $owner, name: $repo) {
    pullRequest(number: $number) {
      timelineItems(first: 100) {
        nodes {
          __typename` + sharedTimelineFragments + `
          ... on MergedEvent { actor { login } createdAt mergeRefName }
          ... on PullRequestReview { author { login } body createdAt state }
          ... on PullRequestCommit {
            commit {
              abbreviatedOid messageHeadline committedDate
              committer { user { login } name }
            }
          }
          ... on ReviewRequestedEvent {
            actor { login } createdAt
            requestedReviewer {
              ... on User { login }
              ... on Team { name }
            }
          }
          ... on ReadyForReviewEvent { actor { login } createdAt }
          ... on ConvertToDraftEvent { actor { login } createdAt }
          ... on HeadRefDeletedEvent { actor { login } createdAt headRefName }
        }
      }
    }
  }
}`

const discussionDetailQuery = `
query($owner: String!, $repo: String!, $number: Int!) {
  repository(owner: $owner, name: $repo) {
    discussion(number: $number) {
      author { login }
      body
      createdAt
      upvoteCount
      comments(first: 50) {
        nodes {
          author { login }
          isAnswer
          upvoteCount
          body
          createdAt
          replies(first: 50) {
            nodes { author { login } body createdAt }
          }
        }
      }
    }
  }
}`

type wireActor struct {
	Login string `json:"login"`
	Name  string `json:"name"`
}

func (a *wireActor) user() github.User {
	if a == nil {
		return github.User{}
	}
	if a.Login != "" {
		return github.User{Login: a.Login}
	}
	return github.User{Login: a.Name}
}

// timelineNode is the union of every timeline fragment's fields; the
// converter picks the relevant ones based on __typename.
type timelineNode struct {
	Typename  string     `json:"__typename"`
	Actor     *wireActor `json:"actor"`
	Author    *wireActor `json:"author"`
	CreatedAt time.Time  `json:"createdAt"`
	Body      string     `json:"body"`

	Label *struct {
		Name string `json:"name"`
	} `json:"label"`

	Assignee *struct {
		Login string `json:"login"`
	} `json:"assignee"`

	Closer *struct {
		Typename       string `json:"__typename"`
		AbbreviatedOid string `json:"abbreviatedOid"`
		Number         int    `json:"number"`
	} `json:"closer"`

	Commit *struct {
		AbbreviatedOid  string    `json:"abbreviatedOid"`
		MessageHeadline string    `json:"messageHeadline"`
		CommittedDate   time.Time `json:"committedDate"`
		Committer       *struct {
			User *wireActor `json:"user"`
			Name string     `json:"name"`
		} `json:"committer"`
	} `json:"commit"`

	Source *struct {
		Typename string `json:"__typename"`
		Number   int    `json:"number"`
		Title    string `json:"title"`
	} `json:"source"`

	MilestoneTitle string `json:"milestoneTitle"`
	PreviousTitle  string `json:"previousTitle"`
	CurrentTitle   string `json:"currentTitle"`
	State          string `json:"state"`
	MergeRefName   string `json:"mergeRefName"`
	HeadRefName    string `json:"headRefName"`

	RequestedReviewer *struct {
		Login string `json:"login"`
		Name  string `json:"name"`
	} `json:"requestedReviewer"`
}

type timelineItems struct {
	TimelineItems struct {
		Nodes []timelineNode `json:"nodes"`
	} `json:"timelineItems"`
}

// IssueTimeline fetches the chronological activity on an issue. Called
// lazily when the user opens an item, never during eager hydration.
func (r *Resolver) IssueTimeline(
	ctx context.Context,
	repo github.RepoMeta,
	number int,
) ([]github.TimelineEvent, error) {
	var data struct {
		Repository struct {
			Issue *timelineItems `json:"issue"`
		} `json:"repository"`
	}
	err := r.client.GraphQL(ctx, issueTimelineQuery, timelineVars(repo, number), &data)
	if err != nil {
		return nil, fmt.Errorf("fetching issue timeline: %w", err)
	}
	if data.Repository.Issue == nil {
		return nil, nil
	}
	return convertTimeline(data.Repository.Issue.TimelineItems.Nodes), nil
}

// PullRequestTimeline fetches the chronological activity on a pull
// request, including commits, reviews, and merge events.
func (r *Resolver) PullRequestTimeline(
	ctx context.Context,
	repo github.RepoMeta,
	number int,
) ([]github.TimelineEvent, error) {
	var data struct {
		Repository struct {
			PullRequest *timelineItems `json:"pullRequest"`
		} `json:"repository"`
	}
	err := r.client.GraphQL(ctx, pullRequestTimelineQuery, timelineVars(repo, number), &data)
	if err != nil {
		return nil, fmt.Errorf("fetching pull request timeline: %w", err)
	}
	if data.Repository.PullRequest == nil {
		return nil, nil
	}
	return convertTimeline(data.Repository.PullRequest.TimelineItems.Nodes), nil
}

// FetchDiscussion loads the full discussion thread for an already
// resolved DiscussionMeta.
func (r *Resolver) FetchDiscussion(
	ctx context.Context,
	meta github.DiscussionMeta,
) (*github.Discussion, error) {
	var data struct {
		Repository struct {
			Discussion *struct {
				Author      *wireActor `json:"author"`
				Body        string     `json:"body"`
				CreatedAt   time.Time  `json:"createdAt"`
				UpvoteCount int        `json:"upvoteCount"`
				Comments    struct {
					Nodes []struct {
						Author      *wireActor `json:"author"`
						IsAnswer    bool       `json:"isAnswer"`
						UpvoteCount int        `json:"upvoteCount"`
						Body        string     `json:"body"`
						CreatedAt   time.Time  `json:"createdAt"`
						Replies     struct {
							Nodes []struct {
								Author    *wireActor `json:"author"`
								Body      string     `json:"body"`
								CreatedAt time.Time  `json:"createdAt"`
							} `json:"nodes"`
						} `json:"replies"`
					} `json:"nodes"`
				} `json:"comments"`
			} `json:"discussion"`
		} `json:"repository"`
	}

	err := r.client.GraphQL(
		ctx, discussionDetailQuery, timelineVars(meta.Repo, meta.Number), &data,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching discussion detail: %w", err)
	}

	disc := data.Repository.Discussion
	if disc == nil {
		return nil, nil
	}

	answers := make([]github.DiscussionAnswer, 0, len(disc.Comments.Nodes))
	for _, node := range disc.Comments.Nodes {
		replies := make([]github.DiscussionReply, 0, len(node.Replies.Nodes))
		for _, reply := range node.Replies.Nodes {
			replies = append(replies, github.DiscussionReply{
				Author:    reply.Author.user(),
				Body:      reply.Body,
				CreatedAt: reply.CreatedAt,
			})
		}
		answers = append(answers, github.DiscussionAnswer{
			Author:    node.Author.user(),
			IsAnswer:  node.IsAnswer,
			Upvotes:   node.UpvoteCount,
			Body:      node.Body,
			CreatedAt: node.CreatedAt,
			Replies:   replies,
		})
	}

	return &github.Discussion{
		Meta:      meta,
		Author:    disc.Author.user(),
		Upvotes:   disc.UpvoteCount,
		Body:      disc.Body,
		CreatedAt: disc.CreatedAt,
		Answers:   answers,
	}, nil
}

func timelineVars(repo github.RepoMeta, number int) map[string]interface{} {
	return map[string]interface{}{
		"owner":  repo.Owner,
		"repo":   repo.Name,
		"number": number,
	}
}

// convertTimeline maps raw GraphQL nodes to domain events, preserving
// input order.
func convertTimeline(nodes []timelineNode) []github.TimelineEvent {
	events := make([]github.TimelineEvent, 0, len(nodes))
	for _, node := range nodes {
		events = append(events, convertTimelineNode(node))
	}
	return events
}

func convertTimelineNode(node timelineNode) github.TimelineEvent {
	ev := github.TimelineEvent{
		Actor:     node.Actor.user(),
		CreatedAt: node.CreatedAt,
	}

	switch node.Typename {
	case "IssueComment":
		ev.Kind = github.EventCommented
		ev.Actor = node.Author.user()
		ev.Body = node.Body

	case "ClosedEvent":
		ev.Kind = github.EventClosed
		if node.Closer != nil {
			if node.Closer.Typename == "Commit" {
				ev.Closer = node.Closer.AbbreviatedOid
			} else {
				ev.Closer = fmt.Sprintf("#%d", node.Closer.Number)
			}
		}

	case "ReopenedEvent":
		ev.Kind = github.EventReopened

	case "MergedEvent":
		ev.Kind = github.EventMerged
		ev.Branch = node.MergeRefName

	case "LabeledEvent":
		ev.Kind = github.EventLabeled
		if node.Label != nil {
			ev.Label = node.Label.Name
		}

	case "UnlabeledEvent":
		ev.Kind = github.EventUnlabeled
		if node.Label != nil {
			ev.Label = node.Label.Name
		}

	case "AssignedEvent", "UnassignedEvent":
		ev.Kind = github.EventAssigned
		if node.Typename == "UnassignedEvent" {
			ev.Kind = github.EventUnassigned
		}
		if node.Assignee != nil {
			ev.Reviewer = node.Assignee.Login
		}

	case "MilestonedEvent":
		ev.Kind = github.EventMilestoned
		ev.To = node.MilestoneTitle

	case "RenamedTitleEvent":
		ev.Kind = github.EventRenamed
		ev.From = node.PreviousTitle
		ev.To = node.CurrentTitle

	case "LockedEvent":
		ev.Kind = github.EventLocked
	case "UnlockedEvent":
		ev.Kind = github.EventUnlocked
	case "PinnedEvent":
		ev.Kind = github.EventPinned
	case "UnpinnedEvent":
		ev.Kind = github.EventUnpinned

	case "ReferencedEvent":
		ev.Kind = github.EventReferenced
		if node.Commit != nil {
			ev.CommitID = node.Commit.AbbreviatedOid
			ev.CommitSummary = node.Commit.MessageHeadline
		}

	case "CrossReferencedEvent":
		ev.Kind = github.EventCrossReferenced
		if node.Source != nil {
			ev.CommitSummary = node.Source.Title
			ev.Closer = fmt.Sprintf("#%d", node.Source.Number)
		}

	case "PullRequestReview":
		ev.Kind = github.EventReviewed
		ev.Actor = node.Author.user()
		ev.Body = node.Body
		ev.ReviewState = node.State

	case "PullRequestCommit":
		ev.Kind = github.EventCommitted
		if node.Commit != nil {
			ev.CommitID = node.Commit.AbbreviatedOid
			ev.CommitSummary = node.Commit.MessageHeadline
			ev.CreatedAt = node.Commit.CommittedDate
			if node.Commit.Committer != nil {
				if node.Commit.Committer.User != nil {
					ev.Actor = node.Commit.Committer.User.user()
				} else {
					ev.Actor = github.User{Login: node.Commit.Committer.Name}
				}
			}
		}

	case "ReviewRequestedEvent":
		ev.Kind = github.EventReviewRequested
		if node.RequestedReviewer != nil {
			ev.Reviewer = node.RequestedReviewer.Login
			if ev.Reviewer == "" {
				ev.Reviewer = node.RequestedReviewer.Name
			}
		}

	case "ReadyForReviewEvent":
		ev.Kind = github.EventReadyForReview
	case "ConvertToDraftEvent":
		ev.Kind = github.EventConvertedToDraft

	case "HeadRefDeletedEvent":
		ev.Kind = github.EventHeadRefDeleted
		ev.Branch = node.HeadRefName

	case "SubscribedEvent":
		ev.Kind = github.EventSubscribed
	case "MentionedEvent":
		ev.Kind = github.EventMentioned

	default:
		ev.Kind = github.EventUnknown
		ev.Raw = node.Typename
	}

	return ev
}
