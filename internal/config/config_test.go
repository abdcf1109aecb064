package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := Default()
	cfg.DefaultProfile = "exams"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DefaultProfile != "exams" {
		t.Errorf("DefaultProfile = %q, want %q", loaded.DefaultProfile, "exams")
	}
	if loaded.Match.MatchDelay != 3*time.Second {
		t.Errorf("MatchDelay = %v, want 3s", loaded.Match.MatchDelay)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[match]\ntyping_delay = \"500ms\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Match.TypingDelay != 500*time.Millisecond {
		t.Errorf("TypingDelay = %v, want 500ms", cfg.Match.TypingDelay)
	}
	if cfg.Match.MatchDelay != 3*time.Second {
		t.Errorf("MatchDelay = %v, want default 3s", cfg.Match.MatchDelay)
	}
}

func TestResolveMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Resolve(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Match.OpeningDelay != time.Second {
		t.Errorf("OpeningDelay = %v, want 1s", cfg.Match.OpeningDelay)
	}
}

func TestResolveEnvOverrides(t *testing.T) {
	t.Setenv("STUDYBUDDY_PROFILE", "night")
	t.Setenv("STUDYBUDDY_MATCH_DELAY", "10ms")

	cfg, err := Resolve(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.DefaultProfile != "night" {
		t.Errorf("DefaultProfile = %q, want night", cfg.DefaultProfile)
	}
	if cfg.Match.MatchDelay != 10*time.Millisecond {
		t.Errorf("MatchDelay = %v, want 10ms", cfg.Match.MatchDelay)
	}
	if cfg.Match.TypingDelay != 2*time.Second {
		t.Errorf("TypingDelay = %v, want untouched default 2s", cfg.Match.TypingDelay)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero delays", func(c *Config) { c.Match = MatchConfig{} }, true},
		{"zero match delay", func(c *Config) { c.Match.MatchDelay = 0 }, true},
		{"negative delay", func(c *Config) { c.Match.TypingDelay = -time.Second }, true},
		{"debug level", func(c *Config) { c.LogLevel = "debug" }, false},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSavePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}
