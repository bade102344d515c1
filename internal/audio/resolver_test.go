package audio

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/MrMazzone/meeting-notes/internal/logger"
	"github.com/MrMazzone/meeting-notes/pkg/executor"
)

// fakeExec maps a full command line to a canned response and records
// every invocation.
type fakeExec struct {
	responses map[string]string
	failures  map[string]bool
	calls     []string
	moduleID  int
}

func newFakeExec() *fakeExec {
	return &fakeExec{
		responses: make(map[string]string),
		failures:  make(map[string]bool),
		moduleID:  100,
	}
}

func (f *fakeExec) Execute(ctx context.Context, name string, args ...string) (string, error) {
	cmdline := name + " " + strings.Join(args, " ")
	f.calls = append(f.calls, cmdline)

	if f.failures[cmdline] {
		return "", fmt.Errorf("command '%s' failed", name)
	}
	if out, ok := f.responses[cmdline]; ok {
		return out, nil
	}
	if strings.Contains(cmdline, "load-module") {
		f.moduleID++
		return fmt.Sprintf("%d\n", f.moduleID), nil
	}
	if strings.Contains(cmdline, "unload-module") {
		return "", nil
	}
	return "", fmt.Errorf("unexpected command: %s", cmdline)
}

func (f *fakeExec) Start(ctx context.Context, name string, args ...string) (executor.Handle, error) {
	return nil, fmt.Errorf("not supported")
}

func (f *fakeExec) callCount(substr string) int {
	n := 0
	for _, c := range f.calls {
		if strings.Contains(c, substr) {
			n++
		}
	}
	return n
}

func newTestResolver(exec *fakeExec) *implResolver {
	r := New("pactl", exec, logger.NewWithWriter("error", os.Stderr)).(*implResolver)
	r.settle = 0
	return r
}

func sourcesOutput(names ...string) string {
	var b strings.Builder
	for i, n := range names {
		fmt.Fprintf(&b, "%d\t%s\tPipeWire\ts16le 2ch 44100Hz\tIDLE\n", i+1, n)
	}
	return b.String()
}

func TestParseSources(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want int
	}{
		{"empty output", "", 0},
		{"single record", "55\talsa_input.usb-mic\tPipeWire\ts16le 2ch 44100Hz\tRUNNING\n", 1},
		{"malformed line skipped", "garbage\n55\tmic\tPipeWire\ts16le 1ch 16000Hz\tIDLE\n", 1},
		{"non-numeric index skipped", "abc\tmic\tdriver\n", 0},
		{"space padded fallback", "7  mic.analog  PipeWire\n", 1},
		{"blank lines ignored", "\n\n1\tmic\tdrv\tspec\tSUSPENDED\n\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseSources(tt.out)
			if len(got) != tt.want {
				t.Errorf("parseSources() = %d records, want %d", len(got), tt.want)
			}
		})
	}
}

func TestParseSourcesFields(t *testing.T) {
	got := parseSources("55\talsa_output.pci.analog-stereo.monitor\tPipeWire\ts16le 2ch 44100Hz\tRUNNING\n")
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	s := got[0]
	if s.Index != 55 {
		t.Errorf("Index = %d, want 55", s.Index)
	}
	if s.Name != "alsa_output.pci.analog-stereo.monitor" {
		t.Errorf("Name = %q", s.Name)
	}
	if s.State != "RUNNING" {
		t.Errorf("State = %q, want RUNNING", s.State)
	}
	if !isMonitor(s.Name) {
		t.Error("expected monitor endpoint")
	}
}

func TestResolveMicrophone(t *testing.T) {
	exec := newFakeExec()
	exec.responses["pactl get-default-source"] = "alsa_input.usb-mic\n"

	r := newTestResolver(exec)
	ep, err := r.ResolveMicrophone(context.Background())
	if err != nil {
		t.Fatalf("ResolveMicrophone() error = %v", err)
	}
	if ep.Name != "alsa_input.usb-mic" || ep.Role != RoleMicrophone {
		t.Errorf("endpoint = %+v", ep)
	}
}

func TestResolveMicrophoneSkipsMonitorDefault(t *testing.T) {
	exec := newFakeExec()
	exec.responses["pactl get-default-source"] = "alsa_output.pci.monitor\n"
	exec.responses["pactl list sources short"] = sourcesOutput("alsa_output.pci.monitor", "alsa_input.usb-mic")

	r := newTestResolver(exec)
	ep, err := r.ResolveMicrophone(context.Background())
	if err != nil {
		t.Fatalf("ResolveMicrophone() error = %v", err)
	}
	if ep.Name != "alsa_input.usb-mic" {
		t.Errorf("endpoint = %q, want the non-monitor source", ep.Name)
	}
}

func TestResolveMicrophoneNotFound(t *testing.T) {
	exec := newFakeExec()
	exec.responses["pactl get-default-source"] = ""
	exec.responses["pactl list sources short"] = sourcesOutput("alsa_output.pci.monitor")

	r := newTestResolver(exec)
	if _, err := r.ResolveMicrophone(context.Background()); err != ErrNoMicrophone {
		t.Errorf("error = %v, want ErrNoMicrophone", err)
	}
}

func TestResolveCombinedNoMonitorDegrades(t *testing.T) {
	exec := newFakeExec()
	exec.responses["pactl get-default-source"] = "alsa_input.usb-mic\n"
	exec.responses["pactl get-default-sink"] = "alsa_output.pci\n"
	exec.responses["pactl list sources short"] = sourcesOutput("alsa_input.usb-mic")

	r := newTestResolver(exec)
	res, err := r.ResolveCombined(context.Background())
	if err != nil {
		t.Fatalf("ResolveCombined() error = %v", err)
	}
	if !res.Degraded {
		t.Error("expected degraded resolution")
	}
	if res.Endpoint.Name != "alsa_input.usb-mic" {
		t.Errorf("endpoint = %q, want microphone", res.Endpoint.Name)
	}
	if exec.callCount("load-module") != 0 {
		t.Error("no modules should be loaded in degraded mode")
	}
}

func TestResolveCombined(t *testing.T) {
	exec := newFakeExec()
	exec.responses["pactl get-default-source"] = "alsa_input.usb-mic\n"
	exec.responses["pactl get-default-sink"] = "alsa_output.pci\n"
	exec.responses["pactl list sources short"] = sourcesOutput(
		"alsa_input.usb-mic", "alsa_output.pci.monitor", combinedMonitor)

	r := newTestResolver(exec)
	res, err := r.ResolveCombined(context.Background())
	if err != nil {
		t.Fatalf("ResolveCombined() error = %v", err)
	}
	if res.Degraded {
		t.Error("resolution should not be degraded")
	}
	if res.Endpoint.Name != combinedMonitor || res.Endpoint.Role != RoleCombined {
		t.Errorf("endpoint = %+v", res.Endpoint)
	}
	if got := exec.callCount("load-module module-loopback"); got != 2 {
		t.Errorf("loopback loads = %d, want 2", got)
	}
	if got := exec.callCount("load-module module-null-sink"); got != 1 {
		t.Errorf("null-sink loads = %d, want 1", got)
	}
}

func TestResolveCombinedBothLoopbacksFail(t *testing.T) {
	exec := newFakeExec()
	exec.responses["pactl get-default-source"] = "alsa_input.usb-mic\n"
	exec.responses["pactl get-default-sink"] = "alsa_output.pci\n"
	exec.responses["pactl list sources short"] = sourcesOutput(
		"alsa_input.usb-mic", "alsa_output.pci.monitor")
	exec.failures["pactl load-module module-loopback source=alsa_input.usb-mic sink="+combinedSinkName] = true
	exec.failures["pactl load-module module-loopback source=alsa_output.pci.monitor sink="+combinedSinkName] = true

	r := newTestResolver(exec)
	res, err := r.ResolveCombined(context.Background())
	if err != nil {
		t.Fatalf("ResolveCombined() error = %v", err)
	}
	if !res.Degraded {
		t.Error("expected degraded resolution when no loopback could be routed")
	}
	if exec.callCount("unload-module") == 0 {
		t.Error("the null sink should be rolled back")
	}
	if r.handle != nil {
		t.Error("no handle should remain after rollback")
	}
}

func TestResolveCombinedProbeFailureRollsBack(t *testing.T) {
	exec := newFakeExec()
	exec.responses["pactl get-default-source"] = "alsa_input.usb-mic\n"
	exec.responses["pactl get-default-sink"] = "alsa_output.pci\n"
	// Combined monitor never shows up in the source list.
	exec.responses["pactl list sources short"] = sourcesOutput(
		"alsa_input.usb-mic", "alsa_output.pci.monitor")

	r := newTestResolver(exec)
	res, err := r.ResolveCombined(context.Background())
	if err != nil {
		t.Fatalf("ResolveCombined() error = %v", err)
	}
	if !res.Degraded {
		t.Error("expected degraded resolution when the combined monitor is missing")
	}
	if got := exec.callCount("unload-module"); got != 3 {
		t.Errorf("unloads = %d, want all 3 modules released", got)
	}
}

func TestReleaseIdempotent(t *testing.T) {
	exec := newFakeExec()
	exec.responses["pactl get-default-source"] = "alsa_input.usb-mic\n"
	exec.responses["pactl get-default-sink"] = "alsa_output.pci\n"
	exec.responses["pactl list sources short"] = sourcesOutput(
		"alsa_input.usb-mic", "alsa_output.pci.monitor", combinedMonitor)

	r := newTestResolver(exec)

	// Release with nothing created is a no-op.
	if err := r.Release(context.Background()); err != nil {
		t.Fatalf("Release() on empty resolver: %v", err)
	}
	if exec.callCount("unload-module") != 0 {
		t.Error("nothing should be unloaded before anything was created")
	}

	if _, err := r.ResolveCombined(context.Background()); err != nil {
		t.Fatalf("ResolveCombined() error = %v", err)
	}

	if err := r.Release(context.Background()); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	unloads := exec.callCount("unload-module")
	if unloads != 3 {
		t.Errorf("unloads = %d, want 3", unloads)
	}

	// Second release does nothing.
	if err := r.Release(context.Background()); err != nil {
		t.Fatalf("second Release() error = %v", err)
	}
	if got := exec.callCount("unload-module"); got != unloads {
		t.Errorf("second release ran %d extra unloads", got-unloads)
	}
}

func TestResolveCombinedTearsDownPriorInstance(t *testing.T) {
	exec := newFakeExec()
	exec.responses["pactl get-default-source"] = "alsa_input.usb-mic\n"
	exec.responses["pactl get-default-sink"] = "alsa_output.pci\n"
	exec.responses["pactl list sources short"] = sourcesOutput(
		"alsa_input.usb-mic", "alsa_output.pci.monitor", combinedMonitor)

	r := newTestResolver(exec)
	if _, err := r.ResolveCombined(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := r.ResolveCombined(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := exec.callCount("unload-module"); got != 3 {
		t.Errorf("re-resolve should unload the 3 prior modules, got %d unloads", got)
	}
}
