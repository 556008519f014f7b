package parser

// kind discriminates the five states of ReviewParser. Each state's own
// fields live directly on ReviewParser rather than in a payload struct
// per variant: Go has no tagged-union type, and the "saved FileDiff"
// ownership transfer the spec describes between FileDiff,
// SpanStartOrComment, and Comment falls out for free if those fields
// simply aren't touched until the machine lands back in FileDiff.
type kind int

const (
	kindStart kind = iota
	kindFilePreamble
	kindFileDiff
	kindSpanStartOrComment
	kindComment
)
