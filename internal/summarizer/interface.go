package summarizer

import "context"

// Summarizer turns a finalized transcript into meeting notes.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}
