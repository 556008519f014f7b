package forge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danobi/prr/internal/parser"
)

func TestGitlabFetchDiff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/merge_requests/9/changes") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("PRIVATE-TOKEN") != "glpat-xyz" {
			t.Errorf("missing/incorrect PRIVATE-TOKEN header: %q", r.Header.Get("PRIVATE-TOKEN"))
		}
		changes := glMRChanges{TargetBranch: "main", SourceBranch: "feature"}
		changes.DiffRefs.BaseSha = "base1"
		changes.DiffRefs.HeadSha = "head1"
		changes.Changes = append(changes.Changes, struct {
			OldPath string `json:"old_path"`
			NewPath string `json:"new_path"`
			Diff    string `json:"diff"`
		}{OldPath: "foo.go", NewPath: "foo.go", Diff: "@@ -1 +1 @@\n-old\n+new\n"})
		json.NewEncoder(w).Encode(changes)
	}))
	defer srv.Close()

	g := NewGitlabForge(srv.URL, "glpat-xyz")
	diff, err := g.FetchDiff(context.Background(), "group", "proj", 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff.BaseSHA != "base1" || diff.HeadSHA != "head1" {
		t.Errorf("BaseSHA/HeadSHA = %q/%q", diff.BaseSHA, diff.HeadSHA)
	}
	if !strings.Contains(diff.Patch, "diff --git a/foo.go b/foo.go") {
		t.Errorf("Patch missing synthesized header: %q", diff.Patch)
	}
}

func TestGitlabFetchDiff_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"401 Unauthorized"}`))
	}))
	defer srv.Close()

	g := NewGitlabForge(srv.URL, "bad-token")
	if _, err := g.FetchDiff(context.Background(), "group", "proj", 9); err == nil {
		t.Fatal("expected error")
	}
}

func TestGitlabSubmitReview(t *testing.T) {
	var discussionCount, noteCount int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/changes"):
			changes := glMRChanges{}
			changes.DiffRefs.BaseSha = "base1"
			changes.DiffRefs.HeadSha = "head1"
			json.NewEncoder(w).Encode(changes)
		case strings.HasSuffix(r.URL.Path, "/discussions"):
			discussionCount++
			w.Write([]byte(`{}`))
		case strings.HasSuffix(r.URL.Path, "/notes"):
			noteCount++
			w.Write([]byte(`{}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	g := NewGitlabForge(srv.URL, "glpat-xyz")
	req := SubmitRequest{
		Action: parser.Approve,
		Body:   "LGTM",
		Comments: []parser.InlineComment{
			{NewFile: "foo.go", OldFile: "foo.go", Line: parser.LineLocation{Side: parser.SideRight, R: 3}, Comment: "nice"},
		},
	}

	if err := g.SubmitReview(context.Background(), "group", "proj", 9, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if discussionCount != 1 {
		t.Errorf("discussionCount = %d, want 1", discussionCount)
	}
	if noteCount != 1 {
		t.Errorf("noteCount = %d, want 1", noteCount)
	}
}

func TestGitlabActionPrefix(t *testing.T) {
	if got := gitlabActionPrefix(parser.Approve); !strings.Contains(got, "Approved") {
		t.Errorf("Approve prefix = %q", got)
	}
	if got := gitlabActionPrefix(parser.RequestChanges); !strings.Contains(got, "Changes requested") {
		t.Errorf("RequestChanges prefix = %q", got)
	}
	if got := gitlabActionPrefix(parser.CommentAction); got != "" {
		t.Errorf("CommentAction prefix = %q, want empty", got)
	}
}
