// Package forge talks to the code-review host (GitHub or GitLab) on behalf
// of the review workflow: fetching a pull/merge request's diff and
// submitting a finished review back.
package forge

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/danobi/prr/internal/parser"
)

// Host identifies which forge a PR/MR reference belongs to.
type Host int

const (
	HostGithub Host = iota
	HostGitlab
)

func (h Host) String() string {
	switch h {
	case HostGithub:
		return "github"
	case HostGitlab:
		return "gitlab"
	default:
		return "unknown"
	}
}

func hostFromString(s string) (Host, bool) {
	switch s {
	case "github":
		return HostGithub, true
	case "gitlab":
		return HostGitlab, true
	default:
		return 0, false
	}
}

// Ref identifies a single pull/merge request on a forge.
type Ref struct {
	Host   Host
	Owner  string
	Repo   string
	Number uint64
}

// shortRef matches "[<host>:]<org>/<repo>/<number>", e.g.
// "danobi/prr/24" or "gitlab:danobi/prr/24".
var shortRef = regexp.MustCompile(`^(?:(?P<host>\w+):)?(?P<org>[\w\-_]+)/(?P<repo>[\w\-_]+)/(?P<num>\d+)$`)

// githubURL matches a github.com PR URL, e.g.
// https://github.com/danobi/prr-test-repo/pull/6
var githubURL = regexp.MustCompile(`github\.com/(?P<org>[^/]+)/(?P<repo>[^/]+)/pull/(?P<num>\d+)`)

// gitlabURL matches a gitlab.com MR URL, e.g.
// https://gitlab.com/danobi/prr-test-repo/-/merge_requests/6
var gitlabURL = regexp.MustCompile(`gitlab\.com/(?P<org>[^/]+)/(?P<repo>[^/]+)/-/merge_requests/(?P<num>\d+)`)

// ParseRef parses a PR/MR reference in one of three forms:
//
//	danobi/prr/24                                          (defaults to github)
//	gitlab:danobi/prr/24
//	https://github.com/danobi/prr/pull/24
//	https://gitlab.com/danobi/prr/-/merge_requests/24
func ParseRef(s string) (Ref, error) {
	if m := shortRef.FindStringSubmatch(s); m != nil {
		host := HostGithub
		if hostStr := m[shortRef.SubexpIndex("host")]; hostStr != "" {
			h, ok := hostFromString(hostStr)
			if !ok {
				return Ref{}, fmt.Errorf("unknown forge host %q", hostStr)
			}
			host = h
		}
		return buildRef(host, m[shortRef.SubexpIndex("org")], m[shortRef.SubexpIndex("repo")], m[shortRef.SubexpIndex("num")])
	}
	if m := githubURL.FindStringSubmatch(s); m != nil {
		return buildRef(HostGithub, m[githubURL.SubexpIndex("org")], m[githubURL.SubexpIndex("repo")], m[githubURL.SubexpIndex("num")])
	}
	if m := gitlabURL.FindStringSubmatch(s); m != nil {
		return buildRef(HostGitlab, m[gitlabURL.SubexpIndex("org")], m[gitlabURL.SubexpIndex("repo")], m[gitlabURL.SubexpIndex("num")])
	}
	return Ref{}, fmt.Errorf("invalid PR/MR reference %q: expected [<host>:]<org>/<repo>/<number> or a PR/MR URL", s)
}

func buildRef(host Host, org, repo, numStr string) (Ref, error) {
	num, err := strconv.ParseUint(numStr, 10, 64)
	if err != nil {
		return Ref{}, fmt.Errorf("invalid PR/MR number %q: %w", numStr, err)
	}
	return Ref{Host: host, Owner: org, Repo: repo, Number: num}, nil
}

// Diff is a fetched, unparsed PR/MR diff plus the metadata a submitted
// review needs to reference the right commit.
type Diff struct {
	Patch   string
	BaseSHA string
	HeadSHA string
	BaseRef string
	HeadRef string
}

// SubmitRequest is everything needed to post a finished review back to
// the forge.
type SubmitRequest struct {
	Action   parser.ReviewAction
	Body     string
	Comments []parser.InlineComment
}

// Forge fetches diffs and submits reviews for a single hosting service.
// GitHub and GitLab each get their own implementation; the review
// workflow in cmd/prr only ever talks to this interface.
type Forge interface {
	// FetchDiff retrieves the current diff and head/base metadata for
	// the given PR/MR number.
	FetchDiff(ctx context.Context, owner, repo string, number uint64) (*Diff, error)

	// SubmitReview posts a review (summary + inline comments) back to
	// the forge.
	SubmitReview(ctx context.Context, owner, repo string, number uint64, req SubmitRequest) error
}
