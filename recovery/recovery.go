// Package recovery lets callers decide how parsing reacts to recoverable
// syntax defects in real-world PDFs.
package recovery

// Strategy is consulted when a component hits a defect it could work around.
type Strategy interface {
	OnError(err error, location Location) Action
}

// Location identifies where in the document a defect was seen.
type Location struct {
	ByteOffset int64
	ObjectNum  int
	ObjectGen  int
	Component  string
}

type Action int

const (
	ActionFail Action = iota
	ActionSkip
	ActionFix
	ActionWarn
)
