package audio

import (
	"time"

	"github.com/MrMazzone/meeting-notes/internal/logger"
	"github.com/MrMazzone/meeting-notes/pkg/executor"
)

type implResolver struct {
	ctl    *control
	logger logger.Logger
	// settle gives the audio server time to activate modules loaded a
	// moment ago before they are used or probed.
	settle time.Duration
	handle *combinedHandle
}

// New creates a Resolver driving the given audio-control binary.
func New(controlBinary string, exec executor.Executor, log logger.Logger) Resolver {
	return &implResolver{
		ctl:    &control{binary: controlBinary, exec: exec},
		logger: log,
		settle: 500 * time.Millisecond,
	}
}
