package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.SessData != "${BILI_SESSDATA}" {
		t.Errorf("SessData = %q", cfg.SessData)
	}
	if cfg.SaveFormat != "pdf" {
		t.Errorf("SaveFormat = %q, want pdf", cfg.SaveFormat)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.SaveDir == "" {
		t.Error("SaveDir is empty")
	}
}

func TestLoad(t *testing.T) {
	t.Run("explicit file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		content := `sessdata: abc123
save_dir: /tmp/manga
save_format: zip
workers: 8
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.SessData != "abc123" {
			t.Errorf("SessData = %q", cfg.SessData)
		}
		if cfg.SaveDir != "/tmp/manga" {
			t.Errorf("SaveDir = %q", cfg.SaveDir)
		}
		if cfg.SaveFormat != "zip" {
			t.Errorf("SaveFormat = %q", cfg.SaveFormat)
		}
		if cfg.Workers != 8 {
			t.Errorf("Workers = %d", cfg.Workers)
		}
	})

	t.Run("missing explicit file errors", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Fatal("expected error for missing explicit config file")
		}
	})

	t.Run("env overrides file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		if err := os.WriteFile(path, []byte("save_format: pdf\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		t.Setenv("BMD_SAVE_FORMAT", "folder")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.SaveFormat != "folder" {
			t.Errorf("SaveFormat = %q, want env override folder", cfg.SaveFormat)
		}
	})

	t.Run("sessdata env reference resolved", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		if err := os.WriteFile(path, []byte("sessdata: ${MY_SESSION}\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		t.Setenv("MY_SESSION", "cookie-value")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.SessData != "cookie-value" {
			t.Errorf("SessData = %q, want resolved env value", cfg.SessData)
		}
	})
}

func TestResolveEnvVars(t *testing.T) {
	t.Setenv("BMD_TEST_VAR", "resolved")

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"plain", "plain"},
		{"${BMD_TEST_VAR}", "resolved"},
		{"pre-${BMD_TEST_VAR}-post", "pre-resolved-post"},
		{"${BMD_TEST_UNSET_VAR}", ""},
	}
	for _, tt := range tests {
		if got := ResolveEnvVars(tt.in); got != tt.want {
			t.Errorf("ResolveEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# BiliBili-Manga-Downloader configuration") {
		t.Error("missing comment header")
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load of written default: %v", err)
	}
	if cfg.SaveFormat != "pdf" || cfg.Workers != 4 {
		t.Errorf("written defaults did not round-trip: %+v", cfg)
	}
}
