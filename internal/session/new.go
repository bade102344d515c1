package session

import (
	"sync"
	"time"

	"github.com/MrMazzone/meeting-notes/internal/audio"
	"github.com/MrMazzone/meeting-notes/internal/capture"
	"github.com/MrMazzone/meeting-notes/internal/config"
	"github.com/MrMazzone/meeting-notes/internal/logger"
	"github.com/MrMazzone/meeting-notes/internal/store"
	"github.com/MrMazzone/meeting-notes/internal/summarizer"
	"github.com/MrMazzone/meeting-notes/internal/transcriber"
	"github.com/MrMazzone/meeting-notes/pkg/executor"
)

type implSession struct {
	cfg    *config.Config
	logger logger.Logger

	resolver     audio.Resolver
	controller   capture.Controller
	orchestrator transcriber.Orchestrator
	summarizer   summarizer.Summarizer
	store        *store.Store

	mu        sync.Mutex
	started   bool
	stopped   bool
	startedAt time.Time
	degraded  bool
	artifacts []string
}

// New creates a Session over the configured audio and transcription
// stack. The summarizer and store come from the caller; either may be
// nil to skip summarization or persistence.
func New(cfg *config.Config, exec executor.Executor, summ summarizer.Summarizer, st *store.Store, log logger.Logger) Session {
	return newWith(
		cfg,
		audio.New(cfg.Audio.ControlBinary, exec, log),
		capture.New(cfg, exec, log, capture.RealClock()),
		transcriber.New(cfg, exec, log),
		summ,
		st,
		log,
	)
}

// newWith wires explicit components; tests use this.
func newWith(cfg *config.Config, resolver audio.Resolver, controller capture.Controller, orchestrator transcriber.Orchestrator, summ summarizer.Summarizer, st *store.Store, log logger.Logger) Session {
	return &implSession{
		cfg:          cfg,
		logger:       log,
		resolver:     resolver,
		controller:   controller,
		orchestrator: orchestrator,
		summarizer:   summ,
		store:        st,
	}
}
