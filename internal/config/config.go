package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Audio       AudioConfig       `yaml:"audio"`
	Whisper     WhisperConfig     `yaml:"whisper"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
}

type AudioConfig struct {
	// Device pins capture to an explicit endpoint name. Empty means
	// resolve the combined mic+system source at session start.
	Device         string `yaml:"device"`
	SegmentSeconds int    `yaml:"segment_seconds"`
	SampleRate     int    `yaml:"sample_rate"`
	Channels       int    `yaml:"channels"`
	CaptureBinary  string `yaml:"capture_binary"`
	ControlBinary  string `yaml:"control_binary"`
}

type WhisperConfig struct {
	PythonBinary string `yaml:"python_binary"`
	ScriptPath   string `yaml:"script_path"`
	ModelSize    string `yaml:"model_size"`
	Language     string `yaml:"language"`
}

type SummarizerConfig struct {
	Provider    string   `yaml:"provider"`
	Models      []string `yaml:"models"`
	APIKeyEnv   string   `yaml:"api_key_env"`
	Endpoint    string   `yaml:"endpoint"`
	GeminiModel string   `yaml:"gemini_model"`
}

type PathsConfig struct {
	Segments string `yaml:"segments"`
	Notes    string `yaml:"notes"`
	Inbox    string `yaml:"inbox"`
	Database string `yaml:"database"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	BatchSize     int `yaml:"batch_size"`
	MaxConcurrent int `yaml:"max_concurrent"`
}

// Load reads the yaml config from path and applies validation defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Whisper.ScriptPath == "" {
		return fmt.Errorf("whisper.script_path is required")
	}

	if c.Whisper.PythonBinary == "" {
		c.Whisper.PythonBinary = "python3"
	}
	if c.Whisper.ModelSize == "" {
		c.Whisper.ModelSize = "base"
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "en"
	}
	if c.Audio.SegmentSeconds == 0 {
		c.Audio.SegmentSeconds = 30
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.Channels == 0 {
		c.Audio.Channels = 1
	}
	if c.Audio.CaptureBinary == "" {
		c.Audio.CaptureBinary = "parecord"
	}
	if c.Audio.ControlBinary == "" {
		c.Audio.ControlBinary = "pactl"
	}
	if c.Summarizer.Provider == "" {
		c.Summarizer.Provider = "anthropic"
	}
	if len(c.Summarizer.Models) == 0 {
		c.Summarizer.Models = []string{
			"claude-3-5-sonnet-latest",
			"claude-3-5-haiku-latest",
			"claude-3-haiku-20240307",
		}
	}
	if c.Summarizer.APIKeyEnv == "" {
		c.Summarizer.APIKeyEnv = "ANTHROPIC_API_KEY"
	}
	if c.Summarizer.Endpoint == "" {
		c.Summarizer.Endpoint = "https://api.anthropic.com/v1/messages"
	}
	if c.Summarizer.GeminiModel == "" {
		c.Summarizer.GeminiModel = "gemini-2.5-flash"
	}
	if c.Paths.Segments == "" {
		c.Paths.Segments = "data/segments"
	}
	if c.Paths.Notes == "" {
		c.Paths.Notes = "data/notes"
	}
	if c.Paths.Inbox == "" {
		c.Paths.Inbox = "data/inbox"
	}
	if c.Paths.Database == "" {
		c.Paths.Database = "data/meetings.sqlite"
	}
	if c.Performance.BatchSize == 0 {
		c.Performance.BatchSize = 2
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}

	switch c.Summarizer.Provider {
	case "anthropic", "gemini":
	default:
		return fmt.Errorf("summarizer.provider must be anthropic or gemini, got %q", c.Summarizer.Provider)
	}

	return nil
}
