package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Compiled once per process, same discipline as the teacher's regexes:
// a package-level var initialized by regexp.MustCompile runs at package
// init time and is reused for every call.
var (
	diffHeaderRe = regexp.MustCompile(`^diff --git a/(.+) b/(.+)$`)
	hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,\d+)? \+(\d+)(?:,\d+)? @@`)
)

const quotePrefix = "> "

// isQuoted reports whether line carries the "> " quote prefix, and returns
// the line with that prefix stripped (line itself if not quoted).
func isQuoted(line string) (quoted bool, payload string) {
	if strings.HasPrefix(line, quotePrefix) {
		return true, line[len(quotePrefix):]
	}
	return false, line
}

// isDiffHeader reports whether payload is a `diff --git a/... b/...` line.
func isDiffHeader(payload string) bool {
	return strings.HasPrefix(payload, "diff --git ")
}

// parseDiffHeader extracts (oldFile, newFile) from a diff header payload.
func parseDiffHeader(payload string) (oldFile, newFile string, err error) {
	m := diffHeaderRe.FindStringSubmatch(payload)
	if m == nil {
		return "", "", &Error{Msg: "malformed diff header: " + payload}
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), nil
}

// parseHunkHeader extracts the (lstart, rstart) of a `@@ -l,n +r,m @@...`
// payload. It returns ok=false if payload is not a hunk header at all.
func parseHunkHeader(payload string) (lstart, rstart uint64, ok bool, err error) {
	m := hunkHeaderRe.FindStringSubmatch(payload)
	if m == nil {
		return 0, 0, false, nil
	}

	l, perr := strconv.ParseUint(m[1], 10, 64)
	if perr != nil {
		return 0, 0, true, &Error{Msg: "malformed hunk header: bad left start", Cause: perr}
	}
	r, perr := strconv.ParseUint(m[2], 10, 64)
	if perr != nil {
		return 0, 0, true, &Error{Msg: "malformed hunk header: bad right start", Cause: perr}
	}
	if l+r == 0 {
		return 0, 0, true, &Error{Msg: "malformed hunk header: both sides start at 0"}
	}
	return l, r, true, nil
}

// isLeftLine reports whether a diff body payload is a removed line.
func isLeftLine(payload string) bool { return strings.HasPrefix(payload, "-") }

// isRightLine reports whether a diff body payload is an added line.
func isRightLine(payload string) bool { return strings.HasPrefix(payload, "+") }

// directiveOf returns the directive word of an unquoted `@prr <word>`
// line, and ok=true if the line is such a directive at all (regardless of
// whether the word is recognized).
func directiveOf(line string) (directive string, ok bool) {
	t := strings.TrimSpace(line)
	rest, found := strings.CutPrefix(t, "@prr ")
	if !found {
		return "", false
	}
	return rest, true
}

// actionForDirective maps a recognized @prr directive word to a
// ReviewAction.
func actionForDirective(word string) (ReviewAction, error) {
	switch word {
	case "approve":
		return Approve, nil
	case "reject":
		return RequestChanges, nil
	case "comment":
		return CommentAction, nil
	default:
		return 0, &Error{Msg: "unknown @prr directive: " + word}
	}
}

// locationFor tags a diff body payload with the Side it belongs to, given
// the position (l, r) the line should carry.
func locationFor(payload string, l, r uint64) LineLocation {
	switch {
	case isLeftLine(payload):
		return Left(l, r)
	case isRightLine(payload):
		return Right(l, r)
	default:
		return Both(l, r)
	}
}
