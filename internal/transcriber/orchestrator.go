package transcriber

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/MrMazzone/meeting-notes/internal/capture"
)

var (
	// ErrAlreadyAttached is returned when Attach is called twice.
	ErrAlreadyAttached = errors.New("orchestrator already attached to a segment stream")
	// ErrNotAttached is returned by Drain before Attach.
	ErrNotAttached = errors.New("orchestrator not attached to a segment stream")
	// ErrAlreadyDrained is returned by a second Drain.
	ErrAlreadyDrained = errors.New("orchestrator already drained")
)

// Attach consumes the segment stream until it closes. Segments are
// buffered to the batch threshold, then the whole batch is dispatched
// as concurrent transcription jobs; buffering amortizes engine startup
// cost against update latency.
func (o *implOrchestrator) Attach(ctx context.Context, segments <-chan capture.Segment) error {
	o.mu.Lock()
	if o.attached {
		o.mu.Unlock()
		return ErrAlreadyAttached
	}
	o.attached = true
	o.done = make(chan struct{})
	o.mu.Unlock()

	go func() {
		defer close(o.done)

		batch := make([]capture.Segment, 0, o.batchSize)
		for seg := range segments {
			batch = append(batch, seg)
			if len(batch) >= o.batchSize {
				o.runBatch(ctx, batch)
				batch = batch[:0]
			}
		}
		// Stream closed: flush the partial batch below threshold.
		if len(batch) > 0 {
			o.runBatch(ctx, batch)
		}
	}()

	return nil
}

// runBatch transcribes every segment of the batch concurrently,
// records results keyed by sequence index and recomputes the live
// transcript once the whole batch has completed.
func (o *implOrchestrator) runBatch(ctx context.Context, batch []capture.Segment) {
	var wg sync.WaitGroup
	for _, seg := range batch {
		wg.Add(1)
		go func(seg capture.Segment) {
			defer wg.Done()
			res := o.transcribe(ctx, seg)
			o.mu.Lock()
			o.results[res.Seq] = res
			o.mu.Unlock()
		}(seg)
	}
	wg.Wait()

	o.mu.Lock()
	o.live = assemble(o.results)
	o.mu.Unlock()
}

// transcribe runs the engine for one segment. A failing job resolves
// to an empty-text result rather than aborting the batch.
func (o *implOrchestrator) transcribe(ctx context.Context, seg capture.Segment) Result {
	out, err := o.exec.Execute(ctx, o.cfg.Whisper.PythonBinary,
		o.cfg.Whisper.ScriptPath, seg.Path, o.cfg.Whisper.ModelSize, o.cfg.Whisper.Language)
	if err != nil {
		o.logger.Warn(ctx, "Segment %d: transcription failed: %v", seg.Seq, err)
		return Result{Seq: seg.Seq, Status: StatusFailed}
	}

	status := StatusOK
	if seg.Outcome == capture.OutcomeShort {
		status = StatusDegraded
	}
	return Result{Seq: seg.Seq, Text: strings.TrimSpace(out), Status: status}
}

// Live returns the transcript snapshot recomputed after the most
// recently completed batch.
func (o *implOrchestrator) Live() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.live
}

// Drain waits for the segment stream to finish and returns the final
// ordered transcript.
func (o *implOrchestrator) Drain(ctx context.Context) (string, error) {
	o.mu.Lock()
	if !o.attached {
		o.mu.Unlock()
		return "", ErrNotAttached
	}
	if o.drained {
		o.mu.Unlock()
		return "", ErrAlreadyDrained
	}
	o.drained = true
	done := o.done
	o.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.live = assemble(o.results)
	return o.live, nil
}

// Results returns recorded per-segment results in sequence order.
func (o *implOrchestrator) Results() []Result {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]Result, 0, len(o.results))
	for _, r := range o.results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// assemble orders results strictly by sequence index, regardless of
// job completion order, and joins non-empty text with single spaces.
func assemble(results map[int]Result) string {
	seqs := make([]int, 0, len(results))
	for seq := range results {
		seqs = append(seqs, seq)
	}
	sort.Ints(seqs)

	parts := make([]string, 0, len(seqs))
	for _, seq := range seqs {
		if text := results[seq].Text; text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
