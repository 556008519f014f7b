// Package review lays out and persists review files: the blockquoted
// diff a reviewer annotates by hand, plus a small JSON sidecar tracking
// whether the review has been submitted yet.
package review

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/danobi/prr/internal/parser"
)

// Extra carries forge metadata a submitted review needs to reference the
// right commits; GitLab discussions require base/head SHAs that GitHub
// derives from the PR number alone.
type Extra struct {
	BaseSHA string `json:"baseSha,omitempty"`
	HeadSHA string `json:"headSha,omitempty"`
}

// meta is the on-disk sidecar, <number>.prr.json.
type meta struct {
	Submitted bool      `json:"submitted"`
	FetchedAt time.Time `json:"fetchedAt"`
	Extra     Extra     `json:"extra"`
}

// Review is a single fetched PR/MR's on-disk review file and metadata.
type Review struct {
	path     string // <workdir>/<owner>/<repo>/<number>.prr
	metaPath string // <workdir>/<owner>/<repo>/<number>.prr.json
	meta     meta
}

// Path returns the review file's path on disk.
func (r *Review) Path() string { return r.path }

func layout(workdir, owner, repo string, number uint64) (dir, path, metaPath string) {
	dir = filepath.Join(workdir, owner, repo)
	base := fmt.Sprintf("%d", number)
	path = filepath.Join(dir, base+".prr")
	metaPath = filepath.Join(dir, base+".prr.json")
	return
}

// New writes a fresh review file for diff, quoting every line with "> "
// so the parser can distinguish reviewer prose from the original diff.
// If a prior unsubmitted review exists for the same PR/MR, New fails
// unless force is set.
func New(workdir string, diff string, owner, repo string, number uint64, extra Extra, force bool) (*Review, error) {
	dir, path, metaPath := layout(workdir, owner, repo, number)

	if existing, err := loadMeta(metaPath); err == nil && !existing.Submitted && !force {
		return nil, fmt.Errorf("unsubmitted review already exists at %s (use --force to overwrite)", path)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create review directory: %w", err)
	}

	if err := writeAtomic(path, []byte(quoteDiff(diff))); err != nil {
		return nil, fmt.Errorf("failed to write review file: %w", err)
	}

	r := &Review{
		path:     path,
		metaPath: metaPath,
		meta:     meta{Submitted: false, FetchedAt: time.Now(), Extra: extra},
	}
	if err := r.saveMeta(); err != nil {
		return nil, err
	}
	return r, nil
}

// Existing loads an already-fetched review for submission.
func Existing(workdir, owner, repo string, number uint64) (*Review, error) {
	_, path, metaPath := layout(workdir, owner, repo, number)

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no review file found at %s: run 'prr get' first", path)
	}

	m, err := loadMeta(metaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load review metadata: %w", err)
	}

	return &Review{path: path, metaPath: metaPath, meta: m}, nil
}

// Extra returns the forge metadata recorded when the review was fetched.
func (r *Review) Extra() Extra { return r.meta.Extra }

// MarkSubmitted records that this review has been successfully posted,
// so a later `prr get` on the same PR refuses to clobber it without
// --force.
func (r *Review) MarkSubmitted() error {
	r.meta.Submitted = true
	return r.saveMeta()
}

// Comments parses the review file and splits the resulting token stream
// into the three shapes a submission needs: the chosen review action,
// the review summary prose, and the inline comments.
func (r *Review) Comments() (parser.ReviewAction, string, []parser.InlineComment, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return 0, "", nil, fmt.Errorf("failed to open review file: %w", err)
	}
	defer f.Close()

	action := parser.CommentAction
	haveAction := false
	var reviewBody string
	var inline []parser.InlineComment

	p := parser.NewReviewParser()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		comment, err := p.ParseLine(scanner.Text())
		if err != nil {
			return 0, "", nil, err
		}
		appendComment(comment, &action, &haveAction, &reviewBody, &inline)
	}
	if err := scanner.Err(); err != nil {
		return 0, "", nil, fmt.Errorf("failed to read review file: %w", err)
	}

	appendComment(p.Finish(), &action, &haveAction, &reviewBody, &inline)

	if !haveAction {
		return 0, "", nil, fmt.Errorf("review file has no @prr action (approve/reject/comment)")
	}

	return action, reviewBody, inline, nil
}

func appendComment(c *parser.Comment, action *parser.ReviewAction, haveAction *bool, reviewBody *string, inline *[]parser.InlineComment) {
	if c == nil {
		return
	}
	switch c.Kind {
	case parser.KindReview:
		*reviewBody = c.Review
	case parser.KindInline:
		*inline = append(*inline, c.Inline)
	case parser.KindReviewAction:
		*action = c.Action
		*haveAction = true
	}
}

func (r *Review) saveMeta() error {
	data, err := json.MarshalIndent(r.meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal review metadata: %w", err)
	}
	if err := writeAtomic(r.metaPath, data); err != nil {
		return fmt.Errorf("failed to write review metadata: %w", err)
	}
	return nil
}

func loadMeta(path string) (meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return meta{}, err
	}
	var m meta
	if err := json.Unmarshal(data, &m); err != nil {
		return meta{}, fmt.Errorf("failed to parse review metadata: %w", err)
	}
	return m, nil
}

// writeAtomic writes data to path via a temp file + rename, so a reader
// never observes a partially written review file.
func writeAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// quoteDiff prefixes every line of diff with "> ", the review file
// grammar's marker for "this line is part of the original diff, not
// reviewer prose".
func quoteDiff(diff string) string {
	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n") + "\n"
}
