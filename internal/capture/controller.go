package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/MrMazzone/meeting-notes/pkg/executor"
)

// ErrAlreadyActive is returned by Start when a session is recording.
var ErrAlreadyActive = errors.New("capture already active")

// Start launches the segment-1 capture job immediately and arms the
// periodic tick. Each tick, while still recording, launches the next
// segment job with the next sequence index.
func (c *implController) Start(ctx context.Context, device string) (<-chan Segment, error) {
	c.mu.Lock()
	if c.state != stateIdle {
		c.mu.Unlock()
		return nil, ErrAlreadyActive
	}

	if err := os.MkdirAll(c.cfg.Paths.Segments, 0755); err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("create segments dir: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.state = stateRecording
	c.cancel = cancel
	c.runDone = make(chan struct{})
	c.segments = make(chan Segment, 64)
	segments := c.segments
	c.mu.Unlock()

	c.logger.Info(ctx, "Capture started on %q (%ds segments, %dHz, %dch)",
		device, c.cfg.Audio.SegmentSeconds, c.cfg.Audio.SampleRate, c.cfg.Audio.Channels)

	go c.run(runCtx, device, segments, c.runDone)

	return segments, nil
}

// Stop disarms the tick, force-terminates any in-flight segment job and
// returns once the segment stream is closed.
func (c *implController) Stop() {
	c.mu.Lock()
	if c.state != stateRecording {
		c.mu.Unlock()
		return
	}
	c.state = stateStopping
	cancel := c.cancel
	done := c.runDone
	c.mu.Unlock()

	cancel()
	<-done

	c.mu.Lock()
	c.state = stateIdle
	c.mu.Unlock()
}

func (c *implController) run(ctx context.Context, device string, segments chan Segment, done chan struct{}) {
	segmentDur := time.Duration(c.cfg.Audio.SegmentSeconds) * time.Second
	ticker := c.clock.NewTicker(segmentDur)
	defer ticker.Stop()

	jobs := make(chan struct{})
	inflight := 0

	launch := func(seq int) {
		inflight++
		go func() {
			c.captureSegment(ctx, device, seq, segmentDur, segments)
			jobs <- struct{}{}
		}()
	}

	seq := 1
	launch(seq)

	for {
		select {
		case <-ctx.Done():
			// Drain in-flight jobs before closing the stream; their
			// processes are being terminated under the same context.
			for inflight > 0 {
				<-jobs
				inflight--
			}
			close(segments)
			close(done)
			return
		case <-jobs:
			inflight--
		case <-ticker.C():
			if !c.recording() {
				continue
			}
			seq++
			launch(seq)
		}
	}
}

func (c *implController) recording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateRecording
}

// captureSegment runs one capture job: spawn the capture tool bound to
// the endpoint, terminate it after the segment duration (the tool does
// not self-terminate), wait for the artifact to flush, then publish it
// if non-empty. Failures never abort the controller; the next tick
// records the next segment.
func (c *implController) captureSegment(ctx context.Context, device string, seq int, dur time.Duration, segments chan<- Segment) {
	path := filepath.Join(c.cfg.Paths.Segments, fmt.Sprintf("segment_%04d.wav", seq))

	args := []string{
		"--device=" + device,
		"--file-format=wav",
		"--rate=" + strconv.Itoa(c.cfg.Audio.SampleRate),
		"--channels=" + strconv.Itoa(c.cfg.Audio.Channels),
		path,
	}

	// Detached from ctx: termination is the controller's job, not the
	// context's, so the recorder can flush on its graceful signal.
	handle, err := c.exec.Start(context.Background(), c.cfg.Audio.CaptureBinary, args...)
	if err != nil {
		c.logger.Error(ctx, "Segment %d: spawn capture: %v", seq, err)
		return
	}

	exited := false
	select {
	case err := <-handle.Done():
		// The tool is not expected to exit on its own.
		exited = true
		if err != nil {
			c.logger.Warn(ctx, "Segment %d: capture exited early: %v", seq, err)
		}
	case <-c.clock.After(dur):
	case <-ctx.Done():
	}

	if !exited {
		c.terminate(ctx, handle, seq)
	}

	c.clock.Sleep(context.Background(), c.settle)

	seg, ok := c.validate(path, seq, dur)
	if !ok {
		return
	}
	segments <- seg
}

// terminate signals the capture process and kills it after the grace
// window if it ignores the signal.
func (c *implController) terminate(ctx context.Context, handle executor.Handle, seq int) {
	if err := handle.Signal(os.Interrupt); err != nil {
		c.logger.Warn(ctx, "Segment %d: signal capture: %v", seq, err)
	}

	select {
	case <-handle.Done():
		return
	default:
	}

	select {
	case <-handle.Done():
	case <-c.clock.After(c.grace):
		c.logger.Warn(ctx, "Segment %d: capture ignored signal, killing", seq)
		if err := handle.Kill(); err != nil {
			c.logger.Warn(ctx, "Segment %d: kill capture: %v", seq, err)
		}
		<-handle.Done()
	}
}

// validate drops missing or zero-byte artifacts silently. This
// tolerates the race where a stop lands before the very first tick has
// written anything.
func (c *implController) validate(path string, seq int, dur time.Duration) (Segment, bool) {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		c.logger.Debug(context.Background(), "Segment %d: empty artifact dropped", seq)
		return Segment{}, false
	}

	// PCM byte estimate for a full segment; well under half of it
	// means the segment was cut short.
	expected := int64(c.cfg.Audio.SampleRate) * int64(c.cfg.Audio.Channels) * 2 * int64(dur/time.Second)
	outcome := OutcomeOK
	if expected > 0 && info.Size() < expected/2 {
		outcome = OutcomeShort
	}

	return Segment{Seq: seq, Path: path, Duration: dur, Outcome: outcome}, true
}
