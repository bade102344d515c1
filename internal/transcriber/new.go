package transcriber

import (
	"sync"

	"github.com/MrMazzone/meeting-notes/internal/config"
	"github.com/MrMazzone/meeting-notes/internal/logger"
	"github.com/MrMazzone/meeting-notes/pkg/executor"
)

type implOrchestrator struct {
	cfg       *config.Config
	exec      executor.Executor
	logger    logger.Logger
	batchSize int

	mu       sync.Mutex
	results  map[int]Result
	live     string
	attached bool
	drained  bool
	done     chan struct{}
}

// New creates a transcription Orchestrator.
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) Orchestrator {
	batch := cfg.Performance.BatchSize
	if batch <= 0 {
		batch = 2
	}
	return &implOrchestrator{
		cfg:       cfg,
		exec:      exec,
		logger:    log,
		batchSize: batch,
		results:   make(map[int]Result),
	}
}
