package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Session.Parent != os.TempDir() {
		t.Errorf("expected Parent=%s, got %s", os.TempDir(), cfg.Session.Parent)
	}
	if cfg.Session.Template != "" {
		t.Errorf("expected empty Template, got %s", cfg.Session.Template)
	}
	if cfg.Session.Keep {
		t.Error("expected Keep=false")
	}
	if cfg.Session.Log {
		t.Error("expected Log=false")
	}
	if cfg.Run.EnvVar != DefaultEnvVar {
		t.Errorf("expected EnvVar=%s, got %s", DefaultEnvVar, cfg.Run.EnvVar)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Run.EnvVar != DefaultEnvVar {
			t.Errorf("expected default EnvVar, got %s", cfg.Run.EnvVar)
		}
	})

	t.Run("values override defaults", func(t *testing.T) {
		path := writeConfig(t, `
[session]
parent = "/var/scratch"
template = "build"
keep = true
log = true

[run]
env_var = "SCRATCH"
`)
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Session.Parent != "/var/scratch" {
			t.Errorf("expected parent /var/scratch, got %s", cfg.Session.Parent)
		}
		if cfg.Session.Template != "build" {
			t.Errorf("expected template build, got %s", cfg.Session.Template)
		}
		if !cfg.Session.Keep || !cfg.Session.Log {
			t.Errorf("expected keep and log enabled: %+v", cfg.Session)
		}
		if cfg.Run.EnvVar != "SCRATCH" {
			t.Errorf("expected EnvVar SCRATCH, got %s", cfg.Run.EnvVar)
		}
	})

	t.Run("empty env_var falls back to default", func(t *testing.T) {
		path := writeConfig(t, `
[session]
parent = "/var/scratch"
`)
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Run.EnvVar != DefaultEnvVar {
			t.Errorf("expected default EnvVar, got %s", cfg.Run.EnvVar)
		}
	})

	t.Run("tilde expansion in parent", func(t *testing.T) {
		path := writeConfig(t, `
[session]
parent = "~/scratch"
`)
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skipf("no home directory: %v", err)
		}
		if cfg.Session.Parent != filepath.Join(home, "scratch") {
			t.Errorf("expected expanded path, got %s", cfg.Session.Parent)
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		path := writeConfig(t, "[session\nnope")
		if _, err := Load(path); err == nil {
			t.Error("expected error for malformed config")
		} else if !strings.Contains(err.Error(), "parsing config") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	want := DefaultConfig()
	want.Session.Template = "ci"
	want.Session.Keep = true

	if err := want.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Session.Template != "ci" || !got.Session.Keep {
		t.Errorf("round trip mismatch: %+v", got.Session)
	}
	if got.Run.EnvVar != DefaultEnvVar {
		t.Errorf("expected EnvVar preserved, got %s", got.Run.EnvVar)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
