package audio

import "context"

// Role classifies a capture endpoint.
type Role string

const (
	RoleMicrophone Role = "microphone"
	RoleMonitor    Role = "system-monitor"
	RoleCombined   Role = "synthetic-combined"
)

// Endpoint identifies a capture source known to the OS audio subsystem.
type Endpoint struct {
	Name string
	Role Role
}

// Resolution is the outcome of resolving the combined capture source.
// Degraded means the system-output monitor could not be captured and
// the endpoint is microphone-only.
type Resolution struct {
	Endpoint Endpoint
	Degraded bool
}

// Resolver maps physical audio endpoints to the logical capture source.
type Resolver interface {
	// ResolveMicrophone returns the default microphone endpoint.
	ResolveMicrophone(ctx context.Context) (Endpoint, error)
	// ResolveCombined builds a synthetic endpoint mixing microphone and
	// system output. It never fails hard: when the combined source
	// cannot be built it returns the microphone endpoint marked
	// degraded.
	ResolveCombined(ctx context.Context) (Resolution, error)
	// Release tears down any combined endpoint this resolver created.
	// Safe to call repeatedly and when nothing was created.
	Release(ctx context.Context) error
}
