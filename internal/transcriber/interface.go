package transcriber

import (
	"context"

	"github.com/MrMazzone/meeting-notes/internal/capture"
)

// Status classifies a per-segment transcription result so callers can
// tell silence from a crashed engine.
type Status string

const (
	// StatusOK covers successful transcription, including empty text
	// for a silent segment.
	StatusOK Status = "ok"
	// StatusDegraded means the result is usable but the source segment
	// was flagged (for example cut short by a stop).
	StatusDegraded Status = "degraded"
	// StatusFailed means the engine failed for this segment; the text
	// is empty and the stream continues.
	StatusFailed Status = "failed"
)

// Result is the text outcome for one segment, keyed by the segment's
// sequence index.
type Result struct {
	Seq    int
	Text   string
	Status Status
}

// Orchestrator consumes the segment stream, batches it, dispatches
// concurrent transcription jobs and reassembles an order-preserving
// transcript.
type Orchestrator interface {
	// Attach starts consuming the segment stream. One stream per
	// orchestrator.
	Attach(ctx context.Context, segments <-chan capture.Segment) error
	// Live returns a best-effort snapshot of the transcript so far.
	Live() string
	// Drain flushes any partial batch, awaits in-flight jobs and
	// returns the final ordered transcript. Valid exactly once, after
	// the segment stream has been closed by a capture stop.
	Drain(ctx context.Context) (string, error)
	// Results returns a copy of the per-segment results recorded so
	// far, in sequence order.
	Results() []Result
}
