package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	combinedSinkName = "meeting_notes_mix"
	combinedMonitor  = combinedSinkName + ".monitor"
)

// ErrNoMicrophone means no non-monitor capture endpoint exists.
var ErrNoMicrophone = errors.New("no microphone endpoint found")

// combinedHandle records the modules backing the synthetic mixing
// endpoint. The ids are owned exclusively by the handle and must be
// released together.
type combinedHandle struct {
	sink    string
	modules []uint32
}

// ResolveMicrophone returns the default capture source, skipping
// monitor endpoints. Falls back to the first non-monitor source when
// the default is unusable.
func (r *implResolver) ResolveMicrophone(ctx context.Context) (Endpoint, error) {
	name, err := r.ctl.defaultSource(ctx)
	if err == nil && name != "" && !isMonitor(name) {
		return Endpoint{Name: name, Role: RoleMicrophone}, nil
	}

	sources, err := r.ctl.listSources(ctx)
	if err != nil {
		return Endpoint{}, fmt.Errorf("resolve microphone: %w", err)
	}

	for _, s := range sources {
		if !isMonitor(s.Name) {
			return Endpoint{Name: s.Name, Role: RoleMicrophone}, nil
		}
	}

	return Endpoint{}, ErrNoMicrophone
}

// ResolveCombined builds the mic+system mixing endpoint: a null sink
// plus loopback routes from the microphone and the default output's
// monitor. Any failure along the way degrades to microphone-only
// rather than failing the session.
func (r *implResolver) ResolveCombined(ctx context.Context) (Resolution, error) {
	mic, err := r.ResolveMicrophone(ctx)
	if err != nil {
		return Resolution{}, err
	}

	monitor := r.findMonitor(ctx)
	if monitor == "" {
		r.logger.Warn(ctx, "No system-output monitor endpoint found, capturing microphone only")
		return Resolution{Endpoint: mic, Degraded: true}, nil
	}

	// The combined endpoint is process-wide and singular: tear down any
	// prior instance before creating a new one.
	if err := r.Release(ctx); err != nil {
		r.logger.Warn(ctx, "Releasing previous combined endpoint: %v", err)
	}

	handle := &combinedHandle{sink: combinedSinkName}
	sinkID, err := r.ctl.loadModule(ctx, "module-null-sink",
		"sink_name="+combinedSinkName,
		"sink_properties=device.description=MeetingNotesMix")
	if err != nil {
		r.logger.Warn(ctx, "Failed to create mixing sink, capturing microphone only: %v", err)
		return Resolution{Endpoint: mic, Degraded: true}, nil
	}
	handle.modules = append(handle.modules, sinkID)
	r.handle = handle
	r.wait(ctx)

	micLoop, micErr := r.ctl.loadModule(ctx, "module-loopback",
		"source="+mic.Name, "sink="+combinedSinkName)
	if micErr != nil {
		r.logger.Warn(ctx, "Failed to route microphone into mix: %v", micErr)
	} else {
		handle.modules = append(handle.modules, micLoop)
		r.wait(ctx)
	}

	monLoop, monErr := r.ctl.loadModule(ctx, "module-loopback",
		"source="+monitor, "sink="+combinedSinkName)
	if monErr != nil {
		r.logger.Warn(ctx, "Failed to route system output into mix: %v", monErr)
	} else {
		handle.modules = append(handle.modules, monLoop)
		r.wait(ctx)
	}

	// A sink with no routes records silence. Roll back instead of
	// claiming a combined endpoint.
	if micErr != nil && monErr != nil {
		r.rollback(ctx, mic)
		return Resolution{Endpoint: mic, Degraded: true}, nil
	}

	// Confirm the monitor-of-sink endpoint actually came up.
	sources, err := r.ctl.listSources(ctx)
	if err != nil || !containsSource(sources, combinedMonitor) {
		r.rollback(ctx, mic)
		return Resolution{Endpoint: mic, Degraded: true}, nil
	}

	return Resolution{Endpoint: Endpoint{Name: combinedMonitor, Role: RoleCombined}}, nil
}

// Release unloads every module recorded for the combined endpoint,
// tolerating modules the server already dropped. Idempotent.
func (r *implResolver) Release(ctx context.Context) error {
	handle := r.handle
	if handle == nil {
		return nil
	}
	r.handle = nil

	for i := len(handle.modules) - 1; i >= 0; i-- {
		if err := r.ctl.unloadModule(ctx, handle.modules[i]); err != nil {
			r.logger.Debug(ctx, "Module %d already unloaded: %v", handle.modules[i], err)
		}
	}
	return nil
}

func (r *implResolver) rollback(ctx context.Context, mic Endpoint) {
	r.logger.Warn(ctx, "Combined endpoint unavailable, falling back to microphone %q", mic.Name)
	if err := r.Release(ctx); err != nil {
		r.logger.Warn(ctx, "Rollback release: %v", err)
	}
}

// findMonitor derives the monitor endpoint name for the default output
// sink. Resolution order: exact <sink>.monitor match, then a monitor
// whose name contains the sink name, then any monitor endpoint at all.
// Activity state does not matter: idle monitors become active once
// audio plays.
func (r *implResolver) findMonitor(ctx context.Context) string {
	sources, err := r.ctl.listSources(ctx)
	if err != nil {
		r.logger.Warn(ctx, "Listing sources: %v", err)
		return ""
	}

	sink, err := r.ctl.defaultSink(ctx)
	if err != nil {
		r.logger.Warn(ctx, "Querying default sink: %v", err)
		sink = ""
	}

	if sink != "" {
		if containsSource(sources, sink+".monitor") {
			return sink + ".monitor"
		}
		for _, s := range sources {
			if isMonitor(s.Name) && strings.Contains(s.Name, sink) {
				return s.Name
			}
		}
	}

	for _, s := range sources {
		if isMonitor(s.Name) {
			return s.Name
		}
	}

	return ""
}

// wait applies the settle delay after a module load so the server can
// finish asynchronous activation.
func (r *implResolver) wait(ctx context.Context) {
	if r.settle <= 0 {
		return
	}
	select {
	case <-time.After(r.settle):
	case <-ctx.Done():
	}
}

func containsSource(sources []Source, name string) bool {
	for _, s := range sources {
		if s.Name == name {
			return true
		}
	}
	return false
}
