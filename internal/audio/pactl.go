package audio

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/MrMazzone/meeting-notes/pkg/executor"
)

// Source is one typed record from `pactl list sources short`.
type Source struct {
	Index      uint32
	Name       string
	Driver     string
	SampleSpec string
	State      string
}

// control wraps the audio-control tool (pactl) behind typed calls.
type control struct {
	binary string
	exec   executor.Executor
}

func (c *control) listSources(ctx context.Context) ([]Source, error) {
	out, err := c.exec.Execute(ctx, c.binary, "list", "sources", "short")
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return parseSources(out), nil
}

func (c *control) defaultSink(ctx context.Context) (string, error) {
	out, err := c.exec.Execute(ctx, c.binary, "get-default-sink")
	if err != nil {
		return "", fmt.Errorf("get default sink: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (c *control) defaultSource(ctx context.Context) (string, error) {
	out, err := c.exec.Execute(ctx, c.binary, "get-default-source")
	if err != nil {
		return "", fmt.Errorf("get default source: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// loadModule loads a PulseAudio module and returns the id assigned by
// the server, used later for teardown.
func (c *control) loadModule(ctx context.Context, module string, args ...string) (uint32, error) {
	cmdArgs := append([]string{"load-module", module}, args...)
	out, err := c.exec.Execute(ctx, c.binary, cmdArgs...)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", module, err)
	}

	id, err := strconv.ParseUint(strings.TrimSpace(out), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse module id from %q: %w", strings.TrimSpace(out), err)
	}
	return uint32(id), nil
}

func (c *control) unloadModule(ctx context.Context, id uint32) error {
	if _, err := c.exec.Execute(ctx, c.binary, "unload-module", strconv.FormatUint(uint64(id), 10)); err != nil {
		return fmt.Errorf("unload module %d: %w", id, err)
	}
	return nil
}

// parseSources parses the tab-separated output of
// `pactl list sources short`:
//
//	55	alsa_input.pci-0000_00_1f.3.analog-stereo	PipeWire	s16le 2ch 44100Hz	RUNNING
//
// Malformed lines are skipped rather than failing the whole listing.
func parseSources(out string) []Source {
	var sources []Source
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			// Some pactl builds pad with spaces instead of tabs.
			fields = strings.Fields(line)
			if len(fields) < 2 {
				continue
			}
		}

		idx, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 32)
		if err != nil {
			continue
		}

		s := Source{Index: uint32(idx), Name: strings.TrimSpace(fields[1])}
		if len(fields) > 2 {
			s.Driver = strings.TrimSpace(fields[2])
		}
		if len(fields) > 3 {
			s.SampleSpec = strings.TrimSpace(fields[3])
		}
		if len(fields) > 4 {
			s.State = strings.TrimSpace(fields[len(fields)-1])
		}
		sources = append(sources, s)
	}
	return sources
}

func isMonitor(name string) bool {
	return strings.HasSuffix(name, ".monitor")
}
