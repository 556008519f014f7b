package forge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/danobi/prr/internal/parser"
)

// DefaultTimeout is the default deadline applied to gh CLI commands.
const DefaultTimeout = 30 * time.Second

// CommandRunner executes a CLI command and returns its stdout. The
// default implementation runs the gh CLI via exec.Command; tests inject
// a canned implementation.
type CommandRunner func(ctx context.Context, args ...string) (string, error)

// StdinCommandRunner executes a CLI command with stdin piped and returns
// stdout.
type StdinCommandRunner func(ctx context.Context, stdin string, args ...string) (string, error)

// GithubForge talks to GitHub by shelling out to the gh CLI.
type GithubForge struct {
	token    string
	run      CommandRunner
	runStdin StdinCommandRunner
	Timeout  time.Duration // deadline for gh CLI commands (0 uses DefaultTimeout)
}

// NewGithubForge verifies the gh CLI is installed. If token is non-empty
// it is exported as GH_TOKEN to the gh subprocess, so a prior `gh auth
// login` isn't required.
func NewGithubForge(token string) (*GithubForge, error) {
	if _, err := exec.LookPath("gh"); err != nil {
		return nil, fmt.Errorf("gh CLI not found: install from https://cli.github.com")
	}

	g := &GithubForge{
		token:    token,
		run:      defaultRunner(token),
		runStdin: defaultStdinRunner(token),
		Timeout:  DefaultTimeout,
	}

	if token == "" {
		if _, err := g.ghExec(context.Background(), "auth", "status"); err != nil {
			return nil, fmt.Errorf("gh not authenticated: run 'gh auth login' or set a token")
		}
	}

	return g, nil
}

// NewTestGithubForge creates a GithubForge with a canned CommandRunner,
// for tests.
func NewTestGithubForge(runner CommandRunner) *GithubForge {
	return &GithubForge{run: runner, runStdin: testStdinRunner(runner)}
}

// defaultRunner executes the gh CLI via exec.Command, exporting token as
// GH_TOKEN when set.
func defaultRunner(token string) CommandRunner {
	return func(ctx context.Context, args ...string) (string, error) {
		cmd := exec.CommandContext(ctx, "gh", args...)
		if token != "" {
			cmd.Env = append(cmd.Environ(), "GH_TOKEN="+token)
		}
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			return "", fmt.Errorf("gh %s failed: %s", strings.Join(args, " "), strings.TrimSpace(stderr.String()))
		}
		return stdout.String(), nil
	}
}

// defaultStdinRunner executes the gh CLI with stdin piped, exporting
// token as GH_TOKEN when set.
func defaultStdinRunner(token string) StdinCommandRunner {
	return func(ctx context.Context, stdin string, args ...string) (string, error) {
		cmd := exec.CommandContext(ctx, "gh", args...)
		if token != "" {
			cmd.Env = append(cmd.Environ(), "GH_TOKEN="+token)
		}
		cmd.Stdin = strings.NewReader(stdin)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			return "", fmt.Errorf("gh %s failed: %s", strings.Join(args, " "), strings.TrimSpace(stderr.String()))
		}
		return stdout.String(), nil
	}
}

// testStdinRunner adapts a CommandRunner into a StdinCommandRunner for
// tests. The stdin content is ignored since test runners use canned
// responses keyed on args.
func testStdinRunner(runner CommandRunner) StdinCommandRunner {
	return func(ctx context.Context, stdin string, args ...string) (string, error) {
		return runner(ctx, args...)
	}
}

func (g *GithubForge) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	timeout := g.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (g *GithubForge) ghExec(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	return g.run(ctx, args...)
}

func (g *GithubForge) ghExecWithStdin(ctx context.Context, stdin string, args ...string) (string, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	return g.runStdin(ctx, stdin, args...)
}

func (g *GithubForge) ghJSON(ctx context.Context, dest interface{}, args ...string) error {
	out, err := g.ghExec(ctx, args...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(out), dest); err != nil {
		return fmt.Errorf("failed to parse gh output: %w", err)
	}
	return nil
}

// ghPRView is the subset of `gh pr view --json` fields FetchDiff needs
// to populate head/base metadata alongside the raw diff.
type ghPRView struct {
	BaseRefName string `json:"baseRefName"`
	HeadRefName string `json:"headRefName"`
	HeadRefOid  string `json:"headRefOid"`
	BaseRefOid  string `json:"baseRefOid"`
}

// FetchDiff fetches the unified diff for PR number, plus head/base
// metadata via `gh pr view`.
func (g *GithubForge) FetchDiff(ctx context.Context, owner, repo string, number uint64) (*Diff, error) {
	repoFlag := owner + "/" + repo

	patch, err := g.ghExec(ctx, "api",
		fmt.Sprintf("repos/%s/%s/pulls/%d", owner, repo, number),
		"-H", "Accept: application/vnd.github.v3.diff")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch diff for PR #%d: %w", number, err)
	}

	var view ghPRView
	err = g.ghJSON(ctx, &view,
		"pr", "view", fmt.Sprintf("%d", number),
		"-R", repoFlag,
		"--json", "baseRefName,headRefName,headRefOid,baseRefOid")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch PR #%d metadata: %w", number, err)
	}

	return &Diff{
		Patch:   patch,
		BaseSHA: view.BaseRefOid,
		HeadSHA: view.HeadRefOid,
		BaseRef: view.BaseRefName,
		HeadRef: view.HeadRefName,
	}, nil
}

// ghReviewComment is one entry of the "comments" array in a GitHub
// create-review request body.
type ghReviewComment struct {
	Path      string `json:"path"`
	Line      uint64 `json:"line"`
	Body      string `json:"body"`
	Side      string `json:"side"`
	StartLine uint64 `json:"start_line,omitempty"`
	StartSide string `json:"start_side,omitempty"`
}

// ghReviewRequestBody is the JSON body POSTed to
// repos/:owner/:repo/pulls/:number/reviews.
type ghReviewRequestBody struct {
	Body     string            `json:"body"`
	Event    string            `json:"event"`
	Comments []ghReviewComment `json:"comments"`
}

func githubEvent(action parser.ReviewAction) (string, error) {
	switch action {
	case parser.Approve:
		return "APPROVE", nil
	case parser.RequestChanges:
		return "REQUEST_CHANGES", nil
	case parser.CommentAction:
		return "COMMENT", nil
	default:
		return "", fmt.Errorf("unknown review action %v", action)
	}
}

// lineAndSide converts a LineLocation into the (line, side) pair GitHub's
// review API expects. Both-sided locations (context lines) are anchored
// on the right/new side, matching the original tool's behavior.
func lineAndSide(loc parser.LineLocation) (uint64, string) {
	side := "RIGHT"
	if loc.Side == parser.SideLeft {
		side = "LEFT"
	}
	return loc.Line(), side
}

// SubmitReview posts req as a GitHub pull request review.
func (g *GithubForge) SubmitReview(ctx context.Context, owner, repo string, number uint64, req SubmitRequest) error {
	event, err := githubEvent(req.Action)
	if err != nil {
		return err
	}

	comments := make([]ghReviewComment, 0, len(req.Comments))
	for _, c := range req.Comments {
		line, side := lineAndSide(c.Line)
		jc := ghReviewComment{
			Path: c.NewFile,
			Line: line,
			Body: c.Comment,
			Side: side,
		}
		if c.StartLine != nil {
			startLine, startSide := lineAndSide(*c.StartLine)
			jc.StartLine = startLine
			jc.StartSide = startSide
		}
		comments = append(comments, jc)
	}

	body := ghReviewRequestBody{Body: req.Body, Event: event, Comments: comments}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode review payload: %w", err)
	}

	_, err = g.ghExecWithStdin(ctx, string(payload),
		"api", "--method", "POST",
		fmt.Sprintf("repos/%s/%s/pulls/%d/reviews", owner, repo, number),
		"--input", "-")
	if err != nil {
		return fmt.Errorf("failed to submit review for PR #%d: %w", number, err)
	}
	return nil
}
