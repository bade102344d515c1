package session

import (
	"context"
	"fmt"
	"os"
	osexec "os/exec"
	"strings"
	"time"

	"github.com/MrMazzone/meeting-notes/internal/capture"
	"github.com/MrMazzone/meeting-notes/internal/config"
	"github.com/MrMazzone/meeting-notes/internal/store"
	"github.com/MrMazzone/meeting-notes/internal/summarizer"
)

var (
	ErrAlreadyStarted = fmt.Errorf("session already started")
	ErrNotStarted     = fmt.Errorf("session not started")
	ErrAlreadyStopped = fmt.Errorf("session already stopped")
	ErrMissingTool    = fmt.Errorf("required tool missing")
)

// Preflight verifies the external tools the pipeline shells out to
// before any audio state is touched.
func Preflight(cfg *config.Config) error {
	if _, err := osexec.LookPath(cfg.Audio.CaptureBinary); err != nil {
		return fmt.Errorf("%w: capture binary %q not found", ErrMissingTool, cfg.Audio.CaptureBinary)
	}
	if cfg.Audio.Device == "" {
		if _, err := osexec.LookPath(cfg.Audio.ControlBinary); err != nil {
			return fmt.Errorf("%w: audio control binary %q not found", ErrMissingTool, cfg.Audio.ControlBinary)
		}
	}
	if _, err := osexec.LookPath(cfg.Whisper.PythonBinary); err != nil {
		return fmt.Errorf("%w: python binary %q not found", ErrMissingTool, cfg.Whisper.PythonBinary)
	}
	if _, err := os.Stat(cfg.Whisper.ScriptPath); err != nil {
		return fmt.Errorf("%w: transcription script %q not found", ErrMissingTool, cfg.Whisper.ScriptPath)
	}
	return nil
}

func (s *implSession) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	device := s.cfg.Audio.Device
	if device == "" {
		res, err := s.resolver.ResolveCombined(ctx)
		if err != nil {
			return fmt.Errorf("resolve capture endpoint: %w", err)
		}
		device = res.Endpoint.Name
		s.mu.Lock()
		s.degraded = res.Degraded
		s.mu.Unlock()
		if res.Degraded {
			s.logger.Warn(ctx, "System audio unavailable, recording microphone only (%s)", device)
		} else {
			s.logger.Info(ctx, "Recording combined mic+system endpoint: %s", device)
		}
	} else {
		s.logger.Info(ctx, "Recording pinned endpoint: %s", device)
	}

	stream, err := s.controller.Start(ctx, device)
	if err != nil {
		s.resolver.Release(ctx)
		return fmt.Errorf("start capture: %w", err)
	}

	// Tee the segment stream so artifact paths are known for cleanup
	// once the pipeline has drained.
	forward := make(chan capture.Segment)
	go func() {
		defer close(forward)
		for seg := range stream {
			s.mu.Lock()
			s.artifacts = append(s.artifacts, seg.Path)
			s.mu.Unlock()
			forward <- seg
		}
	}()

	if err := s.orchestrator.Attach(ctx, forward); err != nil {
		s.controller.Stop()
		for range forward {
		}
		s.resolver.Release(ctx)
		return fmt.Errorf("attach transcriber: %w", err)
	}

	s.mu.Lock()
	s.startedAt = time.Now()
	s.mu.Unlock()
	return nil
}

func (s *implSession) Live() string {
	return s.orchestrator.Live()
}

func (s *implSession) Stop(ctx context.Context, title string) (Result, error) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return Result{}, ErrNotStarted
	}
	if s.stopped {
		s.mu.Unlock()
		return Result{}, ErrAlreadyStopped
	}
	s.stopped = true
	startedAt := s.startedAt
	degraded := s.degraded
	s.mu.Unlock()

	s.controller.Stop()

	transcript, err := s.orchestrator.Drain(ctx)
	if err != nil {
		s.teardown(ctx)
		return Result{}, fmt.Errorf("drain transcriber: %w", err)
	}

	s.teardown(ctx)

	result := Result{
		Title:      title,
		Transcript: transcript,
		Degraded:   degraded,
		StartedAt:  startedAt,
		EndedAt:    time.Now(),
	}

	if strings.TrimSpace(transcript) == "" {
		s.logger.Warn(ctx, "Transcript is empty, skipping summary and export")
		return result, nil
	}

	if s.summarizer != nil {
		summary, err := s.summarizer.Summarize(ctx, transcript)
		if err != nil {
			// Keep the transcript durable before surfacing the failure.
			s.persist(ctx, &result)
			return result, fmt.Errorf("summarize transcript: %w", err)
		}
		result.Summary = summary
	}

	notes, err := summarizer.ExportNotes(title, result.Summary, transcript, s.cfg.Paths.Notes)
	if err != nil {
		s.logger.Error(ctx, "Failed to export notes: %v", err)
	} else {
		result.Notes = notes
	}

	s.persist(ctx, &result)
	return result, nil
}

func (s *implSession) persist(ctx context.Context, result *Result) {
	if s.store == nil {
		return
	}

	model := ""
	if result.Summary != "" {
		model = s.modelName()
	}

	id, err := s.store.Save(ctx, store.Meeting{
		Title:      result.Title,
		StartedAt:  result.StartedAt,
		EndedAt:    result.EndedAt,
		Transcript: result.Transcript,
		Summary:    result.Summary,
		Model:      model,
	})
	if err != nil {
		s.logger.Error(ctx, "Failed to persist meeting: %v", err)
		return
	}
	result.MeetingID = id
}

func (s *implSession) modelName() string {
	if s.cfg.Summarizer.Provider == "gemini" {
		return s.cfg.Summarizer.GeminiModel
	}
	if len(s.cfg.Summarizer.Models) > 0 {
		return s.cfg.Summarizer.Models[0]
	}
	return ""
}

// teardown releases the synthetic endpoint and removes segment
// artifacts. Both are best effort.
func (s *implSession) teardown(ctx context.Context) {
	if err := s.resolver.Release(ctx); err != nil {
		s.logger.Warn(ctx, "Failed to release audio endpoint: %v", err)
	}

	s.mu.Lock()
	artifacts := s.artifacts
	s.artifacts = nil
	s.mu.Unlock()

	for _, path := range artifacts {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn(ctx, "Failed to remove segment artifact %s: %v", path, err)
		}
	}
	if len(artifacts) > 0 {
		s.logger.Debug(ctx, "Removed %d segment artifacts", len(artifacts))
	}
}
