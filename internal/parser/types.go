// Package parser implements the review-file parser: a line-oriented state
// machine that reads a reviewer-edited blockquoted-diff text file and
// emits a stream of structured comments. It is pure — no I/O, no
// concurrency, no context.Context — by design, so it can be driven one
// line at a time by whatever reads the review file.
package parser

import "fmt"

// Side tags which half of a diff a LineLocation refers to.
type Side int

const (
	// SideLeft is the "red"/removed side of the diff, the file pre-change.
	SideLeft Side = iota
	// SideRight is the "green"/added side of the diff, the file post-change.
	SideRight
	// SideBoth is a context line present unchanged on both sides.
	SideBoth
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	case SideBoth:
		return "both"
	default:
		return "unknown"
	}
}

// LineLocation identifies a position in a diff. Every location carries
// both the pre-change line number (L) and post-change line number (R) even
// though only one is meaningful for a Left or Right tag — GitLab's
// discussions API anchors a note on a context (Both) line by both numbers.
type LineLocation struct {
	Side Side
	L    uint64
	R    uint64
}

// Left builds a LineLocation anchored to the pre-change side.
func Left(l, r uint64) LineLocation { return LineLocation{Side: SideLeft, L: l, R: r} }

// Right builds a LineLocation anchored to the post-change side.
func Right(l, r uint64) LineLocation { return LineLocation{Side: SideRight, L: l, R: r} }

// Both builds a LineLocation anchored to a context line.
func Both(l, r uint64) LineLocation { return LineLocation{Side: SideBoth, L: l, R: r} }

// Line returns the line number a consumer should anchor to for this
// location's tag: L for Left, R for Right, and R for Both (the post-change
// number, since context lines exist identically on both sides).
func (loc LineLocation) Line() uint64 {
	if loc.Side == SideLeft {
		return loc.L
	}
	return loc.R
}

func (loc LineLocation) String() string {
	return fmt.Sprintf("%s(%d,%d)", loc.Side, loc.L, loc.R)
}

// InlineComment is file-anchored reviewer prose.
type InlineComment struct {
	// OldFile is the path before an eventual rename.
	OldFile string
	// NewFile is the path after an eventual rename; equal to OldFile when
	// the file was not renamed.
	NewFile string
	// Line is the anchor line the comment attaches to.
	Line LineLocation
	// StartLine, when non-nil, means the comment spans from *StartLine to
	// Line inclusive; both were produced within the same hunk.
	StartLine *LineLocation
	// Comment is the reviewer's prose, trailing whitespace trimmed,
	// internal newlines preserved.
	Comment string
}

// ReviewAction is an overall disposition for the whole review.
type ReviewAction int

const (
	// Approve requests the whole review is approved.
	Approve ReviewAction = iota
	// RequestChanges requests the author address the review comments.
	RequestChanges
	// CommentAction submits the review as a neutral comment.
	CommentAction
)

func (a ReviewAction) String() string {
	switch a {
	case Approve:
		return "approve"
	case RequestChanges:
		return "request_changes"
	case CommentAction:
		return "comment"
	default:
		return "unknown"
	}
}

// CommentKind discriminates the variants of Comment.
type CommentKind int

const (
	// KindReview tags the overall top-of-file summary prose.
	KindReview CommentKind = iota
	// KindInline tags a file-anchored InlineComment.
	KindInline
	// KindReviewAction tags an overall Approve/RequestChanges/Comment directive.
	KindReviewAction
)

// Comment is a single token emitted by the parser.
type Comment struct {
	Kind CommentKind
	// Review holds the summary text when Kind == KindReview.
	Review string
	// Inline holds the anchored comment when Kind == KindInline.
	Inline InlineComment
	// Action holds the directive when Kind == KindReviewAction.
	Action ReviewAction
}
