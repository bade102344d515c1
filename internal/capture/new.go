package capture

import (
	"sync"
	"time"

	"github.com/MrMazzone/meeting-notes/internal/config"
	"github.com/MrMazzone/meeting-notes/internal/logger"
	"github.com/MrMazzone/meeting-notes/pkg/executor"
)

type controllerState int

const (
	stateIdle controllerState = iota
	stateRecording
	stateStopping
)

type implController struct {
	cfg    *config.Config
	exec   executor.Executor
	logger logger.Logger
	clock  Clock

	// settle gives the capture tool time to flush the artifact to
	// storage after termination; grace bounds how long a signaled
	// process may linger before it is killed.
	settle time.Duration
	grace  time.Duration

	mu       sync.Mutex
	state    controllerState
	cancel   func()
	runDone  chan struct{}
	segments chan Segment
}

// New creates a capture Controller.
func New(cfg *config.Config, exec executor.Executor, log logger.Logger, clock Clock) Controller {
	return &implController{
		cfg:    cfg,
		exec:   exec,
		logger: log,
		clock:  clock,
		settle: 500 * time.Millisecond,
		grace:  2 * time.Second,
	}
}
