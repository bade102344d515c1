package executor

import (
	"context"
	"os"
)

// Executor defines the interface for executing external commands.
type Executor interface {
	// Execute runs a command to completion and returns its stdout.
	Execute(ctx context.Context, name string, args ...string) (string, error)
	// Start launches a command without waiting for it. Used for tools
	// that record until terminated.
	Start(ctx context.Context, name string, args ...string) (Handle, error)
}

// Handle controls a started process.
type Handle interface {
	// Signal delivers a signal to the process.
	Signal(sig os.Signal) error
	// Kill force-terminates the process.
	Kill() error
	// Done is closed-equivalent: it yields the process exit result once.
	Done() <-chan error
}
