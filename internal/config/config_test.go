package config

import (
	"os"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				Whisper: WhisperConfig{
					ScriptPath: "scripts/transcribe.py",
				},
			},
			wantErr: false,
		},
		{
			name:    "missing script path",
			config:  Config{},
			wantErr: true,
		},
		{
			name: "unknown provider",
			config: Config{
				Whisper: WhisperConfig{
					ScriptPath: "scripts/transcribe.py",
				},
				Summarizer: SummarizerConfig{
					Provider: "openai",
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Config{
		Whisper: WhisperConfig{ScriptPath: "scripts/transcribe.py"},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Audio.SegmentSeconds != 30 {
		t.Errorf("SegmentSeconds = %d, want 30", cfg.Audio.SegmentSeconds)
	}
	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", cfg.Audio.SampleRate)
	}
	if cfg.Audio.CaptureBinary != "parecord" {
		t.Errorf("CaptureBinary = %q, want parecord", cfg.Audio.CaptureBinary)
	}
	if cfg.Performance.BatchSize != 2 {
		t.Errorf("BatchSize = %d, want 2", cfg.Performance.BatchSize)
	}
	if cfg.Summarizer.Provider != "anthropic" {
		t.Errorf("Provider = %q, want anthropic", cfg.Summarizer.Provider)
	}
	if len(cfg.Summarizer.Models) == 0 {
		t.Error("Models should have a default preference order")
	}
}

func TestLoad(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	content := `
audio:
  segment_seconds: 15
  sample_rate: 44100

whisper:
  script_path: "scripts/transcribe.py"
  model_size: "small"
  language: "en"

summarizer:
  provider: "anthropic"

logging:
  level: "info"
`

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Audio.SegmentSeconds != 15 {
		t.Errorf("SegmentSeconds = %d, want 15", cfg.Audio.SegmentSeconds)
	}
	if cfg.Whisper.ModelSize != "small" {
		t.Errorf("ModelSize = %q, want small", cfg.Whisper.ModelSize)
	}
	if cfg.Audio.Channels != 1 {
		t.Errorf("Channels default = %d, want 1", cfg.Audio.Channels)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}
