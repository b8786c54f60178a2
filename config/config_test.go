package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
device:
  name: Shield Remote
  appearance: 961
security:
  passkey: 90210
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %s", err)
	}
	if cfg.Device.Name != "Shield Remote" || cfg.Device.Appearance != 961 {
		t.Fatalf("overrides not applied: %+v", cfg.Device)
	}
	if cfg.Security.Passkey != 90210 {
		t.Fatalf("passkey not applied: %d", cfg.Security.Passkey)
	}
	// Untouched fields keep their defaults.
	if cfg.Device.Manufacturer != "DIY" || cfg.Storage.MaxBlobSize != 512 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if !cfg.Bond() || !cfg.LESecure() {
		t.Fatal("security defaults lost")
	}
}

func TestLoad_DisableBonding(t *testing.T) {
	path := writeConfig(t, `
security:
  bond: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Bond() {
		t.Fatal("bonding must be disabled")
	}
	if !cfg.LESecure() {
		t.Fatal("le secure must stay enabled")
	}
}

func TestValidate_PasskeyRange(t *testing.T) {
	cfg := Default()
	cfg.Security.Passkey = 1000000
	if err := Validate(cfg); err == nil {
		t.Fatal("expected seven-digit passkey to be rejected")
	}
	cfg.Security.Passkey = 999999
	if err := Validate(cfg); err != nil {
		t.Fatalf("six digits must pass: %s", err)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Device.Name = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("expected empty name to be rejected")
	}

	cfg = Default()
	cfg.Storage.MaxBlobSize = 0
	if err := Validate(cfg); err == nil {
		t.Fatal("expected zero blob size to be rejected")
	}

	cfg = Default()
	cfg.Advertising.IntervalMs = 0
	if err := Validate(cfg); err == nil {
		t.Fatal("expected zero interval to be rejected")
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, "device: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
