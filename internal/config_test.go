package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/modelexplorer/pkg/config"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	cfg := HTTPConfig{Port: 70000}
	if err := cfg.Validate(); err == nil {
		t.Fatal("port above 65535 should fail")
	}
	if got := (&HTTPConfig{Port: 8000}).Address(); got != ":8000" {
		t.Errorf("Address = %q", got)
	}
}

func TestModelConfig_PathRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Model.Path = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("empty model path should fail")
	}
	if !strings.HasPrefix(err.Error(), "model:") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTemplatesConfig_NegativeDebounce(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Templates.Debounce = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative debounce should fail")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `app:
  log_level: debug
  http:
    port: 9000
model:
  path: ${TEST_MODEL_PATH}
templates:
  path: ./reports
  watch: false
  debounce: 50ms
cache:
  path: ""
ui:
  show_uuids: true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TEST_MODEL_PATH", "/srv/model.yaml")

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug || cfg.App.HTTP.Port != 9000 {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Model.Path != "/srv/model.yaml" {
		t.Errorf("model path = %q, want env expansion", cfg.Model.Path)
	}
	if cfg.Templates.Watch || cfg.Templates.Debounce != 50*time.Millisecond {
		t.Errorf("templates = %+v", cfg.Templates)
	}
	if cfg.Cache.Path != "" || !cfg.UI.ShowUUIDs {
		t.Errorf("cache = %+v, ui = %+v", cfg.Cache, cfg.UI)
	}
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("app:\n  http:\n    port: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := NewDefaultConfig()
	err := pkgconfig.Load(path, cfg)
	if err == nil || !strings.Contains(err.Error(), "config validation failed") {
		t.Fatalf("err = %v", err)
	}
}
