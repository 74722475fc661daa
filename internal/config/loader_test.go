package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestGetConfigDir(t *testing.T) {
	if runtime.GOOS == "linux" {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	}

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "stepwise") {
		t.Errorf("GetConfigDir() = %v, should contain 'stepwise'", configDir)
	}

	if runtime.GOOS == "linux" && configDir != filepath.Join("/tmp/xdg", "stepwise") {
		t.Errorf("GetConfigDir() = %v, want XDG_CONFIG_HOME based path", configDir)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "wizard.yaml" {
		t.Errorf("GetConfigPath() should end with 'wizard.yaml', got: %v", configPath)
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.yaml", FormatYAML, false},
		{"a.YML", FormatYAML, false},
		{"a.toml", FormatTOML, false},
		{"a.json", "", true},
	}

	for _, tt := range tests {
		got, err := FormatFor(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("FormatFor(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("FormatFor(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

const yamlDefinition = `version: 1
name: Sign up
base_path: /signup/
initial_step: 1
completed_path: /welcome/
steps:
  - title: Account details
    body: Choose a **username**.
  - title: Profile
  - id: done
    title: Confirm
`

const tomlDefinition = `name = "Sign up"
base_path = "/signup/"
initial_step = 1

[[steps]]
title = "Account details"

[[steps]]
title = "Profile"

[[steps]]
id = "done"
title = "Confirm"
`

func TestParseYAML(t *testing.T) {
	def, err := Parse([]byte(yamlDefinition), FormatYAML)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if def.BasePath != "/signup/" {
		t.Errorf("BasePath = %v, want /signup/", def.BasePath)
	}
	if def.CancelledPath != "/" {
		t.Errorf("CancelledPath = %v, want default /", def.CancelledPath)
	}
	if def.CompletedPath != "/welcome/" {
		t.Errorf("CompletedPath = %v, want /welcome/", def.CompletedPath)
	}
	if def.Steps[0].ID != "account-details" {
		t.Errorf("Steps[0].ID = %v, want slug account-details", def.Steps[0].ID)
	}
	if def.Steps[2].ID != "done" {
		t.Errorf("Steps[2].ID = %v, want explicit id done", def.Steps[2].ID)
	}

	cfg := def.WizardConfig()
	if cfg.InitialStepIndex != 1 || cfg.BasePath != "/signup/" {
		t.Errorf("WizardConfig() = %+v", cfg)
	}
}

func TestParseTOML(t *testing.T) {
	def, err := Parse([]byte(tomlDefinition), FormatTOML)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if def.Version != CurrentVersion {
		t.Errorf("Version = %v, want %v", def.Version, CurrentVersion)
	}
	if len(def.Steps) != 3 {
		t.Fatalf("len(Steps) = %v, want 3", len(def.Steps))
	}
	if i, ok := def.StepByID("profile"); !ok || i != 1 {
		t.Errorf("StepByID(profile) = %v, %v, want 1, true", i, ok)
	}
}

func TestParseSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no steps", "name: empty\nsteps: []\n"},
		{"unknown key", "colour: red\nsteps:\n  - title: A\n"},
		{"relative path", "base_path: signup/\nsteps:\n  - title: A\n"},
		{"missing title", "steps:\n  - body: text\n"},
		{"negative initial step", "initial_step: -1\nsteps:\n  - title: A\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), FormatYAML)
			if err == nil {
				t.Fatal("Parse() should fail")
			}
			if !IsValidationError(err) {
				t.Errorf("IsValidationError(%v) = false, want true", err)
			}
			if len(Violations(err)) == 0 {
				t.Error("expected at least one violation")
			}
		})
	}
}

func TestParseSemanticViolations(t *testing.T) {
	doc := `initial_step: 3
completed_path: /1/
steps:
  - title: Same
  - title: Same
`
	_, err := Parse([]byte(doc), FormatYAML)
	if err == nil {
		t.Fatal("Parse() should fail")
	}

	violations := strings.Join(Violations(err), "\n")
	for _, want := range []string{"initial_step", "already used", "terminal location"} {
		if !strings.Contains(violations, want) {
			t.Errorf("violations missing %q:\n%s", want, violations)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("steps: [\n"), FormatYAML)
	if err == nil {
		t.Fatal("Parse() should fail on malformed YAML")
	}
	if IsValidationError(err) {
		t.Error("malformed documents are parse errors, not validation errors")
	}
}

func TestLoadMissingDefaultReturnsBuiltin(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LOCALAPPDATA", t.TempDir())

	def, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(def.Steps) != 3 {
		t.Errorf("built-in definition has %d steps, want 3", len(def.Steps))
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() should fail for a missing explicit file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load() error = %v, want not-exist", err)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"wizard.yaml", "wizard.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			want := NewDefinition()
			want.BasePath = "/tour/"

			if err := Save(want, path); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got.BasePath != "/tour/" {
				t.Errorf("BasePath = %v, want /tour/", got.BasePath)
			}
			if len(got.Steps) != len(want.Steps) || got.Steps[1].ID != want.Steps[1].ID {
				t.Errorf("Steps = %+v, want %+v", got.Steps, want.Steps)
			}

			if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
				t.Error("temporary file should not remain after Save()")
			}
		})
	}
}

func TestLocations(t *testing.T) {
	def := NewDefinition()
	def.BasePath = "/tour/"

	got := def.Locations()
	want := []string{"/tour/0/", "/tour/1/", "/tour/2/", "/", "/completed/"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Locations() = %v, want %v", got, want)
	}
}
