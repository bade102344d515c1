package session

import (
	"context"
	"time"

	"github.com/MrMazzone/meeting-notes/internal/summarizer"
)

// Result is the end-to-end outcome of one finished meeting.
type Result struct {
	Title      string
	Transcript string
	Summary    string
	Notes      summarizer.Notes
	MeetingID  int64
	// Degraded means capture ran microphone-only because the combined
	// mic+system endpoint could not be built.
	Degraded  bool
	StartedAt time.Time
	EndedAt   time.Time
}

// Session drives one meeting end to end: endpoint resolution, chunked
// capture, incremental transcription and final summarization. A
// session runs exactly once.
type Session interface {
	// Start resolves the capture endpoint and begins recording.
	Start(ctx context.Context) error
	// Live returns a best-effort snapshot of the transcript so far.
	Live() string
	// Stop ends capture, drains the transcription pipeline, summarizes
	// the transcript and exports and persists the notes.
	Stop(ctx context.Context, title string) (Result, error)
}
