package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nhle/ghnotif/internal/github"
)

func newTestStub(subjectType, detailURL string) github.Stub {
	return github.Stub{
		ID:     "42",
		Unread: true,
		Subject: github.Subject{
			Title: "Fix the frobnicator",
			Type:  subjectType,
			URL:   detailURL,
		},
		Repository: github.Repository{
			Name:     "hello",
			FullName: "octocat/hello",
			Owner:    github.User{Login: "octocat"},
		},
	}
}

func TestResolveIssueStates(t *testing.T) {
	tests := []struct {
		name      string
		detail    string
		wantState github.IssueState
		wantBody  string
	}{
		{
			name:      "open",
			detail:    `{"title":"t","number":1,"body":"text","user":{"login":"alice"},"closed_at":null}`,
			wantState: github.IssueOpen,
			wantBody:  "text",
		},
		{
			name:      "closed as completed",
			detail:    `{"title":"t","number":1,"body":"text","user":{"login":"alice"},"closed_at":"2024-01-02T03:04:05Z","state_reason":"completed"}`,
			wantState: github.IssueClosedCompleted,
			wantBody:  "text",
		},
		{
			name:      "closed as not planned",
			detail:    `{"title":"t","number":1,"body":"text","user":{"login":"alice"},"closed_at":"2024-01-02T03:04:05Z","state_reason":"not_planned"}`,
			wantState: github.IssueClosedNotPlanned,
			wantBody:  "text",
		},
		{
			name:      "closed with missing reason",
			detail:    `{"title":"t","number":1,"body":"text","user":{"login":"alice"},"closed_at":"2024-01-02T03:04:05Z"}`,
			wantState: github.IssueClosedNotPlanned,
			wantBody:  "text",
		},
		{
			name:      "empty body gets placeholder",
			detail:    `{"title":"t","number":1,"body":"","user":{"login":"alice"},"closed_at":null}`,
			wantState: github.IssueOpen,
			wantBody:  "No description provided.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, tt.detail)
			}))
			t.Cleanup(server.Close)

			resolver := NewResolver(NewClient(server.URL, "token"))
			stub := newTestStub("Issue", server.URL+"/repos/octocat/hello/issues/1")

			target, err := resolver.Resolve(context.Background(), stub)
			if err != nil {
				t.Fatalf("Resolve(): %v", err)
			}

			issue, ok := target.(github.IssueMeta)
			if !ok {
				t.Fatalf("target is %T, want IssueMeta", target)
			}
			if issue.State != tt.wantState {
				t.Errorf("State = %v, want %v", issue.State, tt.wantState)
			}
			if issue.Body != tt.wantBody {
				t.Errorf("Body = %q, want %q", issue.Body, tt.wantBody)
			}
			if issue.Repo != (github.RepoMeta{Owner: "octocat", Name: "hello"}) {
				t.Errorf("Repo = %+v", issue.Repo)
			}
		})
	}
}

func TestResolvePullRequestStates(t *testing.T) {
	tests := []struct {
		name      string
		detail    string
		wantState github.PullRequestState
	}{
		{
			name:      "open",
			detail:    `{"title":"t","number":2,"user":{"login":"bob"}}`,
			wantState: github.PullRequestOpen,
		},
		{
			name:      "closed",
			detail:    `{"title":"t","number":2,"user":{"login":"bob"},"closed_at":"2024-01-02T03:04:05Z"}`,
			wantState: github.PullRequestClosed,
		},
		{
			name:      "merged wins over closed",
			detail:    `{"title":"t","number":2,"user":{"login":"bob"},"closed_at":"2024-01-02T03:04:05Z","merged_at":"2024-01-02T03:04:05Z"}`,
			wantState: github.PullRequestMerged,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, tt.detail)
			}))
			t.Cleanup(server.Close)

			resolver := NewResolver(NewClient(server.URL, "token"))
			stub := newTestStub("PullRequest", server.URL+"/repos/octocat/hello/pulls/2")

			target, err := resolver.Resolve(context.Background(), stub)
			if err != nil {
				t.Fatalf("Resolve(): %v", err)
			}

			pr, ok := target.(github.PullRequestMeta)
			if !ok {
				t.Fatalf("target is %T, want PullRequestMeta", target)
			}
			if pr.State != tt.wantState {
				t.Errorf("State = %v, want %v", pr.State, tt.wantState)
			}
		})
	}
}

func TestResolveReleaseTitleFallsBackToTag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"name":"","tag_name":"v1.2.3","body":"","author":{"login":"carol"},"html_url":"https://github.com/octocat/hello/releases/tag/v1.2.3"}`)
	}))
	t.Cleanup(server.Close)

	resolver := NewResolver(NewClient(server.URL, "token"))
	stub := newTestStub("Release", server.URL+"/repos/octocat/hello/releases/1")

	target, err := resolver.Resolve(context.Background(), stub)
	if err != nil {
		t.Fatalf("Resolve(): %v", err)
	}

	release, ok := target.(github.ReleaseMeta)
	if !ok {
		t.Fatalf("target is %T, want ReleaseMeta", target)
	}
	if release.Title != "v1.2.3" {
		t.Errorf("Title = %q, want the tag name fallback", release.Title)
	}
	if release.Body != "No description provided." {
		t.Errorf("Body = %q, want the empty-body placeholder", release.Body)
	}
	if release.HTMLURL == "" {
		t.Error("HTMLURL must be captured during hydration")
	}
}

func TestResolveFetchFailureIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	}))
	t.Cleanup(server.Close)

	resolver := NewResolver(NewClient(server.URL, "token"))
	stub := newTestStub("Issue", server.URL+"/repos/octocat/hello/issues/1")

	if _, err := resolver.Resolve(context.Background(), stub); err == nil {
		t.Fatal("a failed issue detail fetch must be an error, not Unknown")
	}
}

func TestResolveWithoutNetworkCall(t *testing.T) {
	tests := []struct {
		name        string
		subjectType string
		detailURL   string
		wantTarget  github.Target
	}{
		{name: "issue without detail url", subjectType: "Issue", wantTarget: github.Unknown{}},
		{name: "pull request without detail url", subjectType: "PullRequest", wantTarget: github.Unknown{}},
		{name: "release without detail url", subjectType: "Release", wantTarget: github.Unknown{}},
		{name: "check suite", subjectType: "CheckSuite", wantTarget: github.CiBuild{}},
		{name: "unrecognized type", subjectType: "SecurityAdvisory", wantTarget: github.Unknown{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls++
				fmt.Fprint(w, `{}`)
			}))
			t.Cleanup(server.Close)

			resolver := NewResolver(NewClient(server.URL, "token"))
			stub := newTestStub(tt.subjectType, tt.detailURL)

			target, err := resolver.Resolve(context.Background(), stub)
			if err != nil {
				t.Fatalf("Resolve(): %v", err)
			}
			if target != tt.wantTarget {
				t.Errorf("target = %#v, want %#v", target, tt.wantTarget)
			}
			if calls != 0 {
				t.Errorf("expected no network calls, got %d", calls)
			}
		})
	}
}

func TestResolveDiscussion(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     github.Target
	}{
		{
			name:     "unique exact title match",
			response: `{"data":{"search":{"edges":[{"node":{"number":12,"title":"Fix the frobnicator","isAnswered":true}}]}}}`,
			want: github.DiscussionMeta{
				Repo:   github.RepoMeta{Owner: "octocat", Name: "hello"},
				Title:  "Fix the frobnicator",
				Number: 12,
				State:  github.DiscussionAnswered,
			},
		},
		{
			name:     "near matches are skipped",
			response: `{"data":{"search":{"edges":[{"node":{"number":9,"title":"Fix the frobnicator please","isAnswered":false}},{"node":{"number":12,"title":"Fix the frobnicator","isAnswered":false}}]}}}`,
			want: github.DiscussionMeta{
				Repo:   github.RepoMeta{Owner: "octocat", Name: "hello"},
				Title:  "Fix the frobnicator",
				Number: 12,
				State:  github.DiscussionUnanswered,
			},
		},
		{
			name:     "no matches degrade to unknown",
			response: `{"data":{"search":{"edges":[]}}}`,
			want:     github.Unknown{},
		},
		{
			name:     "ambiguous titles degrade to unknown",
			response: `{"data":{"search":{"edges":[{"node":{"number":9,"title":"Fix the frobnicator","isAnswered":false}},{"node":{"number":12,"title":"Fix the frobnicator","isAnswered":true}}]}}}`,
			want:     github.Unknown{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, tt.response)
			}))
			t.Cleanup(server.Close)

			resolver := NewResolver(NewClient(server.URL, "token"))
			stub := newTestStub("Discussion", "")

			target, err := resolver.Resolve(context.Background(), stub)
			if err != nil {
				t.Fatalf("Resolve(): %v", err)
			}
			if target != tt.want {
				t.Errorf("target = %#v, want %#v", target, tt.want)
			}
		})
	}
}

func TestResolveDiscussionSearchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"message":"upstream down"}`)
	}))
	t.Cleanup(server.Close)

	resolver := NewResolver(NewClient(server.URL, "token"))
	stub := newTestStub("Discussion", "")

	if _, err := resolver.Resolve(context.Background(), stub); err == nil {
		t.Fatal("a failed discussion search call must be an error")
	}
}
