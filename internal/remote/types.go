package remote

import "time"

// Wire types mirroring the GitHub REST payloads the resolver consumes.
// Only the fields this client reads are declared.

type wireUser struct {
	Login string `json:"login"`
}

type issueDetail struct {
	Title       string     `json:"title"`
	Number      int        `json:"number"`
	Body        string     `json:"body"`
	User        wireUser   `json:"user"`
	StateReason string     `json:"state_reason"`
	ClosedAt    *time.Time `json:"closed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	HTMLURL     string     `json:"html_url"`
}

type pullDetail struct {
	Title     string     `json:"title"`
	Number    int        `json:"number"`
	Body      string     `json:"body"`
	User      wireUser   `json:"user"`
	MergedAt  *time.Time `json:"merged_at"`
	ClosedAt  *time.Time `json:"closed_at"`
	CreatedAt time.Time  `json:"created_at"`
	HTMLURL   string     `json:"html_url"`
}

type releaseDetail struct {
	Name    string   `json:"name"`
	TagName string   `json:"tag_name"`
	Body    string   `json:"body"`
	Author  wireUser `json:"author"`
	HTMLURL string   `json:"html_url"`
}

type commentDetail struct {
	HTMLURL string `json:"html_url"`
}

// discussionSearchData is the GraphQL search response used to locate a
// discussion by repo and title.
type discussionSearchData struct {
	Search struct {
		Edges []struct {
			Node struct {
				Number     int    `json:"number"`
				Title      string `json:"title"`
				IsAnswered bool   `json:"isAnswered"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"search"`
}
