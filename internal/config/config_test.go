package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nush.yaml")
	src := "prompt: \"nu> \"\nmax_history: 5\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Prompt != "nu> " {
		t.Errorf("prompt %q, want %q", cfg.Prompt, "nu> ")
	}
	if cfg.MaxHistory != 5 {
		t.Errorf("max_history %d, want 5", cfg.MaxHistory)
	}
	if cfg.HistoryFile != Default().HistoryFile {
		t.Errorf("history_file %q should fall back to the default", cfg.HistoryFile)
	}
}

func TestLoadRejectsBadYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nush.yaml")
	if err := os.WriteFile(path, []byte("prompt: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got := ExpandHome("~/history.db")
	if !strings.HasPrefix(got, home) {
		t.Errorf("got %q, want a path under %q", got, home)
	}
	if got := ExpandHome("/absolute/path"); got != "/absolute/path" {
		t.Errorf("absolute path changed to %q", got)
	}
}
