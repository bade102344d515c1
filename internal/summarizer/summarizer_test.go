package summarizer

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/MrMazzone/meeting-notes/internal/logger"
)

// fakeBackend scripts one response or error per Generate call.
type fakeBackend struct {
	prompts   []string
	responses []string
	errs      []error
	calls     int
}

func (f *fakeBackend) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	i := f.calls
	f.calls++

	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", fmt.Errorf("unexpected call %d", i)
}

func testLogger() logger.Logger {
	return logger.NewWithWriter("error", os.Stderr)
}

func TestSummarizeSingleCall(t *testing.T) {
	backend := &fakeBackend{responses: []string{"  the notes  "}}
	s := newWithBackend(backend, testLogger())

	got, err := s.Summarize(context.Background(), "a short transcript.")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "the notes" {
		t.Errorf("summary = %q", got)
	}
	if backend.calls != 1 {
		t.Errorf("backend calls = %d, want 1", backend.calls)
	}
	if !strings.Contains(backend.prompts[0], "a short transcript.") {
		t.Error("prompt should embed the transcript")
	}
}

func TestSummarizeSingleCallFailureSurfaces(t *testing.T) {
	backend := &fakeBackend{errs: []error{fmt.Errorf("backend down")}}
	s := newWithBackend(backend, testLogger())

	if _, err := s.Summarize(context.Background(), "short."); err == nil {
		t.Error("single-call failure must surface to the caller")
	}
}

func TestSummarizeChunkedFlow(t *testing.T) {
	text := largeTranscript()
	n := len(ChunkTranscript(text))
	if n < 2 {
		t.Fatalf("test transcript should chunk, got %d", n)
	}

	responses := make([]string, 0, n+1)
	for i := 1; i <= n; i++ {
		responses = append(responses, fmt.Sprintf("partial %d", i))
	}
	responses = append(responses, "combined notes")

	backend := &fakeBackend{responses: responses}
	s := newWithBackend(backend, testLogger())

	got, err := s.Summarize(context.Background(), text)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "combined notes" {
		t.Errorf("summary = %q, want the reduced notes", got)
	}
	if backend.calls != n+1 {
		t.Errorf("backend calls = %d, want %d chunk calls plus one combine", backend.calls, n+1)
	}
	if !strings.Contains(backend.prompts[0], fmt.Sprintf("part 1 of %d", n)) {
		t.Error("chunk prompts should state their position")
	}
	if !strings.Contains(backend.prompts[n], "partial 1") {
		t.Error("combine prompt should carry the partial summaries")
	}
}

func TestSummarizeCombineFailureConcatenates(t *testing.T) {
	text := largeTranscript()
	n := len(ChunkTranscript(text))

	responses := make([]string, n)
	errs := make([]error, n+1)
	for i := range responses {
		responses[i] = fmt.Sprintf("partial %d", i+1)
	}
	// The reduce call blows the context window.
	errs[n] = fmt.Errorf("combine: %w", ErrContextTooLarge)

	backend := &fakeBackend{responses: append(responses, ""), errs: errs}
	s := newWithBackend(backend, testLogger())

	got, err := s.Summarize(context.Background(), text)
	if err != nil {
		t.Fatalf("multi-chunk flow must not fail when partials exist, got %v", err)
	}
	if !strings.Contains(got, "partial 1") || !strings.Contains(got, chunkSeparator) {
		t.Errorf("summary should be the separated concatenation, got %q", got[:80])
	}
}

func TestSummarizeFailedChunkSkipped(t *testing.T) {
	text := largeTranscript()
	n := len(ChunkTranscript(text))
	if n < 2 {
		t.Skip("needs at least 2 chunks")
	}

	responses := make([]string, n+1)
	errs := make([]error, n+1)
	for i := 0; i < n; i++ {
		responses[i] = fmt.Sprintf("partial %d", i+1)
	}
	errs[0] = fmt.Errorf("transient failure")
	responses[n] = "combined without part 1"

	backend := &fakeBackend{responses: responses, errs: errs}
	s := newWithBackend(backend, testLogger())

	got, err := s.Summarize(context.Background(), text)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "combined without part 1" {
		t.Errorf("summary = %q", got)
	}
}

func TestSummarizeAllChunksFailed(t *testing.T) {
	text := largeTranscript()
	n := len(ChunkTranscript(text))

	errs := make([]error, n)
	for i := range errs {
		errs[i] = fmt.Errorf("down")
	}

	backend := &fakeBackend{errs: errs}
	s := newWithBackend(backend, testLogger())

	if _, err := s.Summarize(context.Background(), text); err == nil {
		t.Error("expected an error when no chunk summary succeeded")
	}
}
