package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	o := Default()
	o.WorkDir = t.TempDir()
	if err := o.Validate(); err != nil {
		t.Fatalf("Default() should validate once WorkDir is set: %v", err)
	}
}

func TestValidateRejectsBadEnums(t *testing.T) {
	base := Default()
	base.WorkDir = t.TempDir()

	bad := base
	bad.DepMode = "bogus"
	if err := bad.Validate(); err == nil {
		t.Error("expected an error for an invalid depMode")
	}

	bad = base
	bad.SliceMode = "bogus"
	if err := bad.Validate(); err == nil {
		t.Error("expected an error for an invalid sliceMode")
	}

	bad = base
	bad.AmbiguityPolicy = "bogus"
	if err := bad.Validate(); err == nil {
		t.Error("expected an error for an invalid ambiguityPolicy")
	}
}

func TestValidateRejectsNonPositiveBudgets(t *testing.T) {
	base := Default()
	base.WorkDir = t.TempDir()

	bad := base
	bad.TimeoutSec = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected an error for a zero timeout")
	}

	bad = base
	bad.IterationBudget = -1
	if err := bad.Validate(); err == nil {
		t.Error("expected an error for a negative iteration budget")
	}
}

func TestValidateRequiresAbsoluteWorkDir(t *testing.T) {
	o := Default()
	o.WorkDir = "relative/path"
	if err := o.Validate(); err == nil {
		t.Error("expected an error for a relative workDir")
	}
	o.WorkDir = ""
	if err := o.Validate(); err == nil {
		t.Error("expected an error for a missing workDir")
	}
}

func TestDiscoverFindsConfigFile(t *testing.T) {
	dir := t.TempDir()
	if got := Discover(dir); got != "" {
		t.Errorf("expected no config file found, got %q", got)
	}

	configPath := filepath.Join(dir, "javastub.config.json")
	if err := os.WriteFile(configPath, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Discover(dir); got != configPath {
		t.Errorf("got %q, want %q", got, configPath)
	}
}

func TestLoadOverridesDefaultsAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "javastub.config.json")
	body := `{"ambiguityPolicy": "strict", "iterationBudget": 10, "workDir": "` + dir + `"}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if opts.AmbiguityPolicy != AmbiguityStrict {
		t.Errorf("expected overridden ambiguityPolicy, got %q", opts.AmbiguityPolicy)
	}
	if opts.IterationBudget != 10 {
		t.Errorf("expected overridden iterationBudget, got %d", opts.IterationBudget)
	}
	if opts.DepMode != DepModeNone {
		t.Errorf("expected depMode to keep its default, got %q", opts.DepMode)
	}
}

func TestLoadRejectsInvalidOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "javastub.config.json")
	body := `{"depMode": "bogus", "workDir": "` + dir + `"}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected Load to reject an invalid depMode override")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected an error reading a missing config file")
	}
}
