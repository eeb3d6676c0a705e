package github

import "time"

// EventKind tags a single entry in an issue or pull request timeline.
type EventKind string

const (
	EventCommented        EventKind = "commented"
	EventClosed           EventKind = "closed"
	EventReopened         EventKind = "reopened"
	EventMerged           EventKind = "merged"
	EventCommitted        EventKind = "committed"
	EventLabeled          EventKind = "labeled"
	EventUnlabeled        EventKind = "unlabeled"
	EventAssigned         EventKind = "assigned"
	EventUnassigned       EventKind = "unassigned"
	EventMilestoned       EventKind = "milestoned"
	EventRenamed          EventKind = "renamed"
	EventLocked           EventKind = "locked"
	EventUnlocked         EventKind = "unlocked"
	EventPinned           EventKind = "pinned"
	EventUnpinned         EventKind = "unpinned"
	EventReferenced       EventKind = "referenced"
	EventCrossReferenced  EventKind = "cross-referenced"
	EventReviewed         EventKind = "reviewed"
	EventReviewRequested  EventKind = "review requested"
	EventReadyForReview   EventKind = "ready for review"
	EventConvertedToDraft EventKind = "converted to draft"
	EventHeadRefDeleted   EventKind = "head branch deleted"
	EventSubscribed       EventKind = "subscribed"
	EventMentioned        EventKind = "mentioned"
	EventUnknown          EventKind = "unknown"
)

// TimelineEvent is one entry of the chronological activity on an issue
// or pull request. Only the fields relevant to its Kind are populated;
// unknown GraphQL node types degrade to EventUnknown with the raw type
// name preserved in Raw.
type TimelineEvent struct {
	Kind      EventKind
	Actor     User
	CreatedAt time.Time

	// Body holds comment or review text.
	Body string

	// Label is the label name for labeled/unlabeled events.
	Label string

	// From and To carry the titles for renamed events.
	From string
	To   string

	// Commit details for committed/referenced events.
	CommitID      string
	CommitSummary string

	// Branch is the merge base or deleted head ref.
	Branch string

	// ReviewState is APPROVED, CHANGES_REQUESTED, etc.
	ReviewState string

	// Reviewer is the requested reviewer login for review requests.
	Reviewer string

	// Closer describes what closed the item (a commit id or "#N").
	Closer string

	// Raw is the upstream type name for events this client does not
	// model.
	Raw string
}

// Issue is a fully loaded issue: hydrated metadata plus its timeline.
// Built lazily when the user opens the item.
type Issue struct {
	Meta   IssueMeta
	Events []TimelineEvent
}

// PullRequest is a fully loaded pull request with its timeline.
type PullRequest struct {
	Meta   PullRequestMeta
	Events []TimelineEvent
}

// Discussion is a fully loaded discussion thread with suggested
// answers and their replies.
type Discussion struct {
	Meta      DiscussionMeta
	Author    User
	Upvotes   int
	Body      string
	CreatedAt time.Time
	Answers   []DiscussionAnswer
}

// DiscussionAnswer is a top-level discussion comment proposed as an
// answer.
type DiscussionAnswer struct {
	Author    User
	IsAnswer  bool
	Upvotes   int
	Body      string
	CreatedAt time.Time
	Replies   []DiscussionReply
}

// DiscussionReply is a nested reply to a suggested answer.
type DiscussionReply struct {
	Author    User
	Body      string
	CreatedAt time.Time
}
