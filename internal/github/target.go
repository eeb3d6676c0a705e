package github

import "time"

// TargetKind enumerates the closed set of notification subject kinds.
type TargetKind int

const (
	KindUnknown TargetKind = iota
	KindIssue
	KindPullRequest
	KindRelease
	KindDiscussion
	KindCiBuild
)

func (k TargetKind) String() string {
	switch k {
	case KindIssue:
		return "issue"
	case KindPullRequest:
		return "pull request"
	case KindRelease:
		return "release"
	case KindDiscussion:
		return "discussion"
	case KindCiBuild:
		return "ci build"
	default:
		return "unknown"
	}
}

// ClassifySubject maps a raw subject type tag to a TargetKind. Matching
// is case-sensitive and exact; any unrecognized tag classifies as
// KindUnknown, never an error.
func ClassifySubject(subjectType string) TargetKind {
	switch subjectType {
	case "Issue":
		return KindIssue
	case "PullRequest":
		return KindPullRequest
	case "Release":
		return KindRelease
	case "Discussion":
		return KindDiscussion
	case "CheckSuite":
		return KindCiBuild
	default:
		return KindUnknown
	}
}

// Target is the closed tagged union over notification subject kinds.
// Exactly one concrete type exists per TargetKind; Unknown is the safe
// fallback when classification or hydration cannot produce a richer
// variant.
type Target interface {
	Kind() TargetKind
}

// TargetNumber returns the issue/PR/discussion number carried by a
// target, if the variant has one.
func TargetNumber(t Target) (int, bool) {
	switch v := t.(type) {
	case IssueMeta:
		return v.Number, true
	case PullRequestMeta:
		return v.Number, true
	case DiscussionMeta:
		return v.Number, true
	default:
		return 0, false
	}
}

// IssueState is the lifecycle state of an issue, including the closed
// reason GitHub attaches via state_reason.
type IssueState int

const (
	IssueOpen IssueState = iota
	IssueClosedCompleted
	IssueClosedNotPlanned
)

// IsOpen reports whether the issue is still open.
func (s IssueState) IsOpen() bool { return s == IssueOpen }

func (s IssueState) String() string {
	if s == IssueOpen {
		return "Open"
	}
	return "Closed"
}

// IssueMeta is the hydrated metadata for an Issue target.
type IssueMeta struct {
	Repo      RepoMeta
	Title     string
	Body      string
	Number    int
	Author    User
	State     IssueState
	CreatedAt time.Time
}

func (IssueMeta) Kind() TargetKind { return KindIssue }

// PullRequestState is the lifecycle state of a pull request. Merged
// takes precedence over closed.
type PullRequestState int

const (
	PullRequestOpen PullRequestState = iota
	PullRequestClosed
	PullRequestMerged
)

func (s PullRequestState) String() string {
	switch s {
	case PullRequestMerged:
		return "Merged"
	case PullRequestClosed:
		return "Closed"
	default:
		return "Open"
	}
}

// PullRequestMeta is the hydrated metadata for a PullRequest target.
type PullRequestMeta struct {
	Repo      RepoMeta
	Title     string
	Body      string
	Number    int
	Author    User
	State     PullRequestState
	CreatedAt time.Time
}

func (PullRequestMeta) Kind() TargetKind { return KindPullRequest }

// ReleaseMeta is the hydrated metadata for a Release target. Title
// falls back to the tag name when the release has no display name.
type ReleaseMeta struct {
	Repo    RepoMeta
	Title   string
	Body    string
	Author  User
	TagName string

	// HTMLURL is the browser-facing release page, captured during
	// hydration so opening a release needs no extra fetch.
	HTMLURL string
}

func (ReleaseMeta) Kind() TargetKind { return KindRelease }

// DiscussionState reports whether a discussion has an accepted answer.
type DiscussionState int

const (
	DiscussionUnanswered DiscussionState = iota
	DiscussionAnswered
)

func (s DiscussionState) String() string {
	if s == DiscussionAnswered {
		return "Answered"
	}
	return "Unanswered"
}

// DiscussionMeta is the hydrated metadata for a Discussion target.
// Discussions have no REST detail endpoint, so this is located through
// search and is best-effort.
type DiscussionMeta struct {
	Repo   RepoMeta
	Title  string
	Number int
	State  DiscussionState
}

func (DiscussionMeta) Kind() TargetKind { return KindDiscussion }

// CiBuild marks a CheckSuite notification. It carries no metadata and
// needs no secondary fetch.
type CiBuild struct{}

func (CiBuild) Kind() TargetKind { return KindCiBuild }

// Unknown is the fallback target for unrecognized subject types and for
// known types whose metadata could not be located.
type Unknown struct{}

func (Unknown) Kind() TargetKind { return KindUnknown }
