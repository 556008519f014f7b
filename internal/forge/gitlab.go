package forge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/danobi/prr/internal/parser"
)

// DefaultGitlabBaseURL is used when Config.URL is unset, i.e. gitlab.com.
const DefaultGitlabBaseURL = "https://gitlab.com/api/v4"

// GitlabForge talks to a GitLab instance's REST API directly. No GitLab
// SDK appears anywhere in the example pack this tool was grounded on, so
// this adapter is net/http rather than a generated client.
type GitlabForge struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewGitlabForge builds a GitlabForge. baseURL may be empty to use
// gitlab.com.
func NewGitlabForge(baseURL, token string) *GitlabForge {
	if baseURL == "" {
		baseURL = DefaultGitlabBaseURL
	}
	return &GitlabForge{baseURL: baseURL, token: token, client: &http.Client{}}
}

func (g *GitlabForge) projectID(owner, repo string) string {
	return url.PathEscape(owner + "/" + repo)
}

func (g *GitlabForge) do(ctx context.Context, method, path string, body io.Reader, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("PRIVATE-TOKEN", g.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("gitlab request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read gitlab response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gitlab request to %s failed: status %d: %s", path, resp.StatusCode, string(data))
	}

	if dest != nil {
		if err := json.Unmarshal(data, dest); err != nil {
			return fmt.Errorf("failed to parse gitlab response: %w", err)
		}
	}
	return nil
}

// glMRChanges is the JSON shape of GET .../merge_requests/:iid/changes.
type glMRChanges struct {
	DiffRefs struct {
		BaseSha string `json:"base_sha"`
		HeadSha string `json:"head_sha"`
	} `json:"diff_refs"`
	TargetBranch string `json:"target_branch"`
	SourceBranch string `json:"source_branch"`
	Changes      []struct {
		OldPath string `json:"old_path"`
		NewPath string `json:"new_path"`
		Diff    string `json:"diff"`
	} `json:"changes"`
}

// FetchDiff fetches the merge request's combined diff and head/base SHAs.
func (g *GitlabForge) FetchDiff(ctx context.Context, owner, repo string, number uint64) (*Diff, error) {
	path := fmt.Sprintf("/projects/%s/merge_requests/%d/changes", g.projectID(owner, repo), number)

	var changes glMRChanges
	if err := g.do(ctx, http.MethodGet, path, nil, &changes); err != nil {
		return nil, fmt.Errorf("failed to fetch diff for MR !%d: %w", number, err)
	}

	var patch bytes.Buffer
	for _, c := range changes.Changes {
		fmt.Fprintf(&patch, "diff --git a/%s b/%s\n", c.OldPath, c.NewPath)
		patch.WriteString(c.Diff)
		if patch.Len() > 0 && patch.Bytes()[patch.Len()-1] != '\n' {
			patch.WriteByte('\n')
		}
	}

	return &Diff{
		Patch:   patch.String(),
		BaseSHA: changes.DiffRefs.BaseSha,
		HeadSHA: changes.DiffRefs.HeadSha,
		BaseRef: changes.TargetBranch,
		HeadRef: changes.SourceBranch,
	}, nil
}

// glDiscussionPosition is the "position" object GitLab requires to anchor
// a discussion note to a specific diff line.
type glDiscussionPosition struct {
	BaseSHA      string `json:"base_sha"`
	StartSHA     string `json:"start_sha"`
	HeadSHA      string `json:"head_sha"`
	PositionType string `json:"position_type"`
	NewPath      string `json:"new_path"`
	OldPath      string `json:"old_path"`
	NewLine      uint64 `json:"new_line,omitempty"`
	OldLine      uint64 `json:"old_line,omitempty"`
}

// SubmitReview posts each inline comment as a diff discussion, then one
// summary note holding the review body, led by the review decision for
// Approve/RequestChanges (see gitlabActionPrefix) since GitLab models
// approval as a separate endpoint this tool does not assume access to (a
// personal access token may lack it). No summary note is posted when both
// the body and the decision prefix are empty.
func (g *GitlabForge) SubmitReview(ctx context.Context, owner, repo string, number uint64, req SubmitRequest) error {
	diff, err := g.FetchDiff(ctx, owner, repo, number)
	if err != nil {
		return fmt.Errorf("failed to resolve diff refs for MR !%d: %w", number, err)
	}

	id := g.projectID(owner, repo)

	for _, c := range req.Comments {
		pos := glDiscussionPosition{
			BaseSHA:      diff.BaseSHA,
			StartSHA:     diff.BaseSHA,
			HeadSHA:      diff.HeadSHA,
			PositionType: "text",
			NewPath:      c.NewFile,
			OldPath:      c.OldFile,
		}
		switch c.Line.Side {
		case parser.SideLeft:
			pos.OldLine = c.Line.Line()
		case parser.SideRight:
			pos.NewLine = c.Line.Line()
		default:
			// A context line is anchored by both its old and new number.
			pos.OldLine = c.Line.L
			pos.NewLine = c.Line.R
		}

		payload := struct {
			Body     string                `json:"body"`
			Position glDiscussionPosition `json:"position"`
		}{Body: c.Comment, Position: pos}

		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode discussion payload: %w", err)
		}

		path := fmt.Sprintf("/projects/%s/merge_requests/%d/discussions", id, number)
		if err := g.do(ctx, http.MethodPost, path, bytes.NewReader(data), nil); err != nil {
			return fmt.Errorf("failed to post inline comment on %s: %w", c.NewFile, err)
		}
	}

	summary := req.Body
	if prefix := gitlabActionPrefix(req.Action); prefix != "" {
		summary = prefix + "\n\n" + summary
	}
	if summary != "" {
		notePayload, err := json.Marshal(struct {
			Body string `json:"body"`
		}{Body: summary})
		if err != nil {
			return fmt.Errorf("failed to encode summary note: %w", err)
		}
		path := fmt.Sprintf("/projects/%s/merge_requests/%d/notes", id, number)
		if err := g.do(ctx, http.MethodPost, path, bytes.NewReader(notePayload), nil); err != nil {
			return fmt.Errorf("failed to post review summary: %w", err)
		}
	}

	return nil
}

// gitlabActionPrefix renders the review action as a leading line on the
// summary note, since GitLab's notes API has no first-class "approve" /
// "request changes" review event the way GitHub's does.
func gitlabActionPrefix(action parser.ReviewAction) string {
	switch action {
	case parser.Approve:
		return "**Review: Approved**"
	case parser.RequestChanges:
		return "**Review: Changes requested**"
	default:
		return ""
	}
}
