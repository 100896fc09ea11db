package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_OverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := "data_dir: /srv/abr-data\nretry:\n  max_attempts: 3\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if C.DataDir != "/srv/abr-data" {
		t.Fatalf("DataDir = %q, want override from YAML", C.DataDir)
	}
	if C.Retry.MaxAttempts != 3 {
		t.Fatalf("Retry.MaxAttempts = %d, want 3", C.Retry.MaxAttempts)
	}
	if C.Cache.TTL.Hours() != 24 {
		t.Fatalf("Cache.TTL = %v, want the 24h default since YAML left it unset", C.Cache.TTL)
	}
}

func TestLoad_EnvOverridesDataDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("data_dir: /from-yaml\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	os.Setenv("JAGEOCODER_DATA_DIR", "/from-env")
	defer os.Unsetenv("JAGEOCODER_DATA_DIR")

	if err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if C.DataDir != "/from-env" {
		t.Fatalf("DataDir = %q, want env override to win", C.DataDir)
	}
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
		t.Fatalf("Load: %v, want a missing config file to fall back to Defaults()", err)
	}
	if C.DataDir != Defaults().DataDir {
		t.Fatalf("DataDir = %q, want the default %q", C.DataDir, Defaults().DataDir)
	}
}
