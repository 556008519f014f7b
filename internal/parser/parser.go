package parser

import "strings"

// ReviewParser is a single-threaded, synchronous state machine over the
// lines of a review file. Create one with NewReviewParser, feed it lines
// in file order via ParseLine, and call Finish once at EOF to flush any
// comment still being accumulated.
type ReviewParser struct {
	state kind
	lineNo int

	// Start-state prose accumulator.
	startProse []string

	// Current file, valid from FilePreamble onward.
	oldFile, newFile string

	// Current position and line tag, valid from FileDiff onward.
	left, right uint64
	line        LineLocation
	spanStart   *LineLocation

	// Comment-state prose accumulator.
	commentLines []string
}

// NewReviewParser returns a parser in its initial Start state.
func NewReviewParser() *ReviewParser {
	return &ReviewParser{state: kindStart}
}

// ParseLine feeds a single input line (newline already stripped) to the
// parser. It returns a Comment if this line completed one, or an error if
// the line violates the review file grammar.
func (p *ReviewParser) ParseLine(line string) (*Comment, error) {
	p.lineNo++
	quoted, payload := isQuoted(line)

	switch p.state {
	case kindStart:
		return p.parseStart(line, quoted, payload)
	case kindFilePreamble:
		return p.parseFilePreamble(quoted, payload)
	case kindFileDiff:
		return p.parseFileDiff(line, quoted, payload)
	case kindSpanStartOrComment:
		return p.parseSpanStartOrComment(line, quoted, payload)
	case kindComment:
		return p.parseComment(line, quoted, payload)
	default:
		return nil, p.errf("unreachable parser state")
	}
}

// Finish flushes a pending inline comment if the parser ended mid-Comment
// state; otherwise it returns nil. It does not reset the parser — callers
// are expected to discard it afterward.
func (p *ReviewParser) Finish() *Comment {
	if p.state != kindComment {
		return nil
	}
	return p.buildInlineComment()
}

func (p *ReviewParser) errf(msg string) error {
	return &Error{Msg: msg, Line: p.lineNo}
}

func (p *ReviewParser) errInFile(msg string) error {
	return &Error{Msg: msg + " (file a/" + p.oldFile + " b/" + p.newFile + ")", Line: p.lineNo}
}

func (p *ReviewParser) parseStart(line string, quoted bool, payload string) (*Comment, error) {
	if quoted {
		if !isDiffHeader(payload) {
			return nil, p.errf("expected diff header from start, found '" + payload + "'")
		}

		var reviewComment *Comment
		if len(p.startProse) > 0 {
			reviewComment = &Comment{
				Kind:   KindReview,
				Review: strings.TrimSpace(strings.Join(p.startProse, "\n")),
			}
		}

		oldFile, newFile, err := parseDiffHeader(payload)
		if err != nil {
			return nil, p.wrapErr(err)
		}

		p.oldFile, p.newFile = oldFile, newFile
		p.state = kindFilePreamble
		return reviewComment, nil
	}

	if directive, ok := directiveOf(line); ok {
		action, err := actionForDirective(directive)
		if err != nil {
			return nil, p.wrapErr(err)
		}
		return &Comment{Kind: KindReviewAction, Action: action}, nil
	}

	if len(p.startProse) > 0 || strings.TrimSpace(line) != "" {
		p.startProse = append(p.startProse, line)
	}
	return nil, nil
}

func (p *ReviewParser) parseFilePreamble(quoted bool, payload string) (*Comment, error) {
	if !quoted {
		return nil, p.errInFile("unexpected comment in file preamble")
	}

	lstart, rstart, ok, err := parseHunkHeader(payload)
	if err != nil {
		return nil, p.wrapErr(err)
	}
	if !ok {
		return nil, nil
	}

	left, right := hunkStartPosition(lstart, rstart)
	p.left, p.right = left, right
	p.line = locationFor(payload, left, right)
	p.spanStart = nil
	p.state = kindFileDiff
	return nil, nil
}

func (p *ReviewParser) parseFileDiff(line string, quoted bool, payload string) (*Comment, error) {
	if quoted {
		if isDiffHeader(payload) {
			if p.spanStart != nil {
				return nil, p.errInFile("span not terminated with a comment before next file")
			}
			oldFile, newFile, err := parseDiffHeader(payload)
			if err != nil {
				return nil, p.wrapErr(err)
			}
			p.oldFile, p.newFile = oldFile, newFile
			p.state = kindFilePreamble
			return nil, nil
		}

		lstart, rstart, ok, err := parseHunkHeader(payload)
		if err != nil {
			return nil, p.wrapErr(err)
		}
		if ok {
			if p.spanStart != nil {
				return nil, p.errInFile("span cannot cross a hunk boundary")
			}
			left, right := hunkStartPosition(lstart, rstart)
			p.left, p.right = left, right
			p.line = locationFor(payload, left, right)
			return nil, nil
		}

		nl, nr := nextPosition(payload, p.left, p.right)
		p.left, p.right = nl, nr
		p.line = locationFor(payload, nl, nr)
		return nil, nil
	}

	if strings.TrimSpace(line) == "" {
		p.state = kindSpanStartOrComment
	} else {
		p.commentLines = []string{line}
		p.state = kindComment
	}
	return nil, nil
}

func (p *ReviewParser) parseSpanStartOrComment(line string, quoted bool, payload string) (*Comment, error) {
	if quoted {
		if p.spanStart != nil {
			return nil, p.errInFile("span not terminated with a comment")
		}
		nl, nr := nextPosition(payload, p.left, p.right)
		loc := locationFor(payload, nl, nr)
		p.left, p.right = nl, nr
		p.line = loc
		p.spanStart = &loc
		p.state = kindFileDiff
		return nil, nil
	}

	if strings.TrimSpace(line) == "" {
		return nil, nil
	}

	p.commentLines = []string{line}
	p.state = kindComment
	return nil, nil
}

func (p *ReviewParser) parseComment(line string, quoted bool, payload string) (*Comment, error) {
	if !quoted {
		p.commentLines = append(p.commentLines, line)
		return nil, nil
	}

	comment := p.buildInlineComment()

	if isDiffHeader(payload) {
		oldFile, newFile, err := parseDiffHeader(payload)
		if err != nil {
			return nil, p.wrapErr(err)
		}
		p.oldFile, p.newFile = oldFile, newFile
		p.state = kindFilePreamble
	} else {
		nl, nr := nextPosition(payload, p.left, p.right)
		p.left, p.right = nl, nr
		p.line = locationFor(payload, nl, nr)
		p.spanStart = nil
		p.state = kindFileDiff
	}

	p.commentLines = nil
	return comment, nil
}

func (p *ReviewParser) buildInlineComment() *Comment {
	text := strings.TrimRight(strings.Join(p.commentLines, "\n"), " \t\r\n")
	return &Comment{
		Kind: KindInline,
		Inline: InlineComment{
			OldFile:   p.oldFile,
			NewFile:   p.newFile,
			Line:      p.line,
			StartLine: p.spanStart,
			Comment:   text,
		},
	}
}

// wrapErr stamps the current line number onto an *Error produced by the
// classifier layer, which doesn't know the input position.
func (p *ReviewParser) wrapErr(err error) error {
	if pe, ok := err.(*Error); ok && pe.Line == 0 {
		pe.Line = p.lineNo
		return pe
	}
	return err
}
