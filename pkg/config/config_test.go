package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.Listen != DefaultListen {
		t.Errorf("Default listen should be %s, got %s", DefaultListen, cfg.Listen)
	}

	if cfg.PollInterval != 100*time.Millisecond {
		t.Errorf("Default poll interval should be 100ms, got %s", cfg.PollInterval)
	}

	if cfg.MinSyncInterval != 50*time.Millisecond {
		t.Errorf("Default min sync interval should be 50ms, got %s", cfg.MinSyncInterval)
	}

	if cfg.ConflictWindow != time.Second {
		t.Errorf("Default conflict window should be 1s, got %s", cfg.ConflictWindow)
	}

	if cfg.HistorySize != 10 {
		t.Errorf("Default history size should be 10, got %d", cfg.HistorySize)
	}

	if cfg.Headless {
		t.Error("Default headless should be false")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "defaults are valid",
			modify: func(*Config) {},
		},
		{
			name:    "missing listen address",
			modify:  func(c *Config) { c.Listen = "" },
			wantErr: true,
			errMsg:  "listen address",
		},
		{
			name:    "poll interval below floor",
			modify:  func(c *Config) { c.PollInterval = 10 * time.Millisecond },
			wantErr: true,
			errMsg:  "poll interval",
		},
		{
			name:    "zero min sync interval",
			modify:  func(c *Config) { c.MinSyncInterval = 0 },
			wantErr: true,
			errMsg:  "min sync interval",
		},
		{
			name: "conflict window shorter than sync interval",
			modify: func(c *Config) {
				c.MinSyncInterval = 200 * time.Millisecond
				c.ConflictWindow = 100 * time.Millisecond
			},
			wantErr: true,
			errMsg:  "conflict window",
		},
		{
			name:    "zero history size",
			modify:  func(c *Config) { c.HistorySize = 0 },
			wantErr: true,
			errMsg:  "history size",
		},
		{
			name:    "zero max content length",
			modify:  func(c *Config) { c.MaxContentLength = 0 },
			wantErr: true,
			errMsg:  "max content length",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected validation error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Error %q should contain %q", err.Error(), tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cliphub.yaml")
	content := `
listen: "127.0.0.1:9000"
poll_interval: 250ms
conflict_window: 2s
history_size: 25
filter_patterns:
  - "internal-[a-z]+"
headless: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := NewConfig()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Listen != "127.0.0.1:9000" {
		t.Errorf("Listen should come from file, got %s", cfg.Listen)
	}
	if cfg.PollInterval != 250*time.Millisecond {
		t.Errorf("PollInterval should come from file, got %s", cfg.PollInterval)
	}
	if cfg.ConflictWindow != 2*time.Second {
		t.Errorf("ConflictWindow should come from file, got %s", cfg.ConflictWindow)
	}
	if cfg.HistorySize != 25 {
		t.Errorf("HistorySize should come from file, got %d", cfg.HistorySize)
	}
	if len(cfg.FilterPatterns) != 1 || cfg.FilterPatterns[0] != "internal-[a-z]+" {
		t.Errorf("FilterPatterns should come from file, got %v", cfg.FilterPatterns)
	}
	if !cfg.Headless {
		t.Error("Headless should come from file")
	}

	// Fields absent from the file keep their defaults.
	if cfg.MinSyncInterval != DefaultMinSyncInterval {
		t.Errorf("MinSyncInterval should keep its default, got %s", cfg.MinSyncInterval)
	}
	if cfg.MaxContentLength != DefaultMaxContentLength {
		t.Errorf("MaxContentLength should keep its default, got %d", cfg.MaxContentLength)
	}
}

func TestLoadFileErrors(t *testing.T) {
	cfg := NewConfig()

	if err := cfg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Loading a missing file should fail")
	}

	badYAML := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(badYAML, []byte("listen: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := cfg.LoadFile(badYAML); err == nil {
		t.Error("Loading malformed YAML should fail")
	}

	badDuration := filepath.Join(t.TempDir(), "duration.yaml")
	if err := os.WriteFile(badDuration, []byte("poll_interval: fast"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := cfg.LoadFile(badDuration); err == nil {
		t.Error("Loading an unparseable duration should fail")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CLIPHUB_LISTEN", "0.0.0.0:7000")
	t.Setenv("CLIPHUB_POLL_INTERVAL", "200ms")
	t.Setenv("CLIPHUB_HISTORY_SIZE", "50")
	t.Setenv("CLIPHUB_FILTER_PATTERNS", "foo.* , bar.*")
	t.Setenv("CLIPHUB_DISABLE_AUTOSYNC", "true")
	t.Setenv("CLIPHUB_VERBOSE", "1")

	cfg := NewConfig()
	cfg.LoadFromEnv()

	if cfg.Listen != "0.0.0.0:7000" {
		t.Errorf("Listen should come from env, got %s", cfg.Listen)
	}
	if cfg.PollInterval != 200*time.Millisecond {
		t.Errorf("PollInterval should come from env, got %s", cfg.PollInterval)
	}
	if cfg.HistorySize != 50 {
		t.Errorf("HistorySize should come from env, got %d", cfg.HistorySize)
	}
	if len(cfg.FilterPatterns) != 2 || cfg.FilterPatterns[0] != "foo.*" || cfg.FilterPatterns[1] != "bar.*" {
		t.Errorf("FilterPatterns should be split and trimmed, got %v", cfg.FilterPatterns)
	}
	if !cfg.DisableAutoSync {
		t.Error("DisableAutoSync should come from env")
	}
	if !cfg.Verbose {
		t.Error("Verbose should come from env")
	}
}

func TestLoadFromEnvIgnoresInvalid(t *testing.T) {
	t.Setenv("CLIPHUB_POLL_INTERVAL", "not-a-duration")
	t.Setenv("CLIPHUB_HISTORY_SIZE", "ten")
	t.Setenv("CLIPHUB_VERBOSE", "maybe")

	cfg := NewConfig()
	cfg.LoadFromEnv()

	if cfg.PollInterval != DefaultPollInterval {
		t.Errorf("Invalid duration should be ignored, got %s", cfg.PollInterval)
	}
	if cfg.HistorySize != DefaultHistorySize {
		t.Errorf("Invalid integer should be ignored, got %d", cfg.HistorySize)
	}
	if cfg.Verbose {
		t.Error("Invalid boolean should be ignored")
	}
}

func TestConfigString(t *testing.T) {
	cfg := NewConfig()
	s := cfg.String()

	if !strings.Contains(s, DefaultListen) {
		t.Errorf("String should include the listen address, got %s", s)
	}
	if !strings.Contains(s, "100ms") {
		t.Errorf("String should include the poll interval, got %s", s)
	}
}
