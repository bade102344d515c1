package capture

import (
	"context"
	"time"
)

// Outcome classifies a captured segment artifact.
type Outcome string

const (
	// OutcomeOK means the artifact holds roughly the expected amount
	// of audio.
	OutcomeOK Outcome = "ok"
	// OutcomeShort means the artifact is non-empty but well under the
	// expected size, usually the segment cut off by a stop.
	OutcomeShort Outcome = "short"
)

// Segment is one fixed-duration slice of captured audio. Seq is
// 1-based and strictly increasing within a session.
type Segment struct {
	Seq      int
	Path     string
	Duration time.Duration
	Outcome  Outcome
}

// Controller drives periodic fixed-duration recording segments against
// a resolved endpoint.
type Controller interface {
	// Start begins recording from the named endpoint and returns the
	// ordered stream of completed segments. The stream is closed after
	// Stop once all in-flight segment jobs have finished.
	Start(ctx context.Context, device string) (<-chan Segment, error)
	// Stop disarms the tick, terminates any in-flight capture job and
	// waits for the stream to close.
	Stop()
}
