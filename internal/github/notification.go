package github

import "time"

// Stub is a raw notification record as returned by the GitHub
// notifications list endpoint, before hydration. It is immutable once
// fetched; the Resolver turns it into a typed Target.
type Stub struct {
	// ID is the notification thread id and the sole identity of a
	// notification. Equality and cache lookups use only this field.
	ID string `json:"id"`

	// Unread reports whether the thread has unread activity.
	Unread bool `json:"unread"`

	// Reason is why the user received this notification
	// (e.g., "mention", "review_requested", "subscribed").
	Reason string `json:"reason"`

	// UpdatedAt is the recency key used for inbox ordering.
	UpdatedAt time.Time `json:"updated_at"`

	// URL is the API URL of the notification thread itself.
	URL string `json:"url"`

	Subject    Subject    `json:"subject"`
	Repository Repository `json:"repository"`
}

// Subject describes what a notification is about. Type is a free-form
// tag ("Issue", "PullRequest", "Release", "Discussion", "CheckSuite",
// ...); URL, when present, points at the type-specific detail endpoint.
type Subject struct {
	Title string `json:"title"`

	// URL is the detail API URL. Empty for subjects without a detail
	// endpoint (Discussions, CheckSuites).
	URL string `json:"url"`

	// LatestCommentURL points at the newest comment in the thread,
	// when one exists.
	LatestCommentURL string `json:"latest_comment_url"`

	Type string `json:"type"`
}

// Repository is the repository a notification belongs to.
type Repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Owner    User   `json:"owner"`
}

// User is a GitHub account, identified by its @ login.
type User struct {
	Login string `json:"login"`
}

func (u User) String() string {
	if u.Login == "" {
		return "@ghost"
	}
	return "@" + u.Login
}

// RepoMeta identifies a repository by owner and name. It keys secondary
// lookups and is carried by target metadata for display.
type RepoMeta struct {
	Owner string
	Name  string
}

// Repo derives the RepoMeta for the stub's repository.
func (s Stub) Repo() RepoMeta {
	return RepoMeta{
		Owner: s.Repository.Owner.Login,
		Name:  s.Repository.Name,
	}
}

// Notification is a hydrated inbox entry: the raw stub plus the typed
// target produced by resolution. Target payloads may differ between
// syncs, so identity is always Stub.ID.
type Notification struct {
	Stub   Stub
	Target Target
}

// Equal reports identity equality, which is by stub id only.
func (n Notification) Equal(other Notification) bool {
	return n.Stub.ID == other.Stub.ID
}
