package config

import (
	"fmt"

	"github.com/gosimple/slug"

	"github.com/muurk/stepwise/internal/location"
	"github.com/muurk/stepwise/internal/wizard"
)

// CurrentVersion is the definition file format version.
const CurrentVersion = 1

// Definition describes one wizard: its locations and its ordered steps.
type Definition struct {
	Version       int    `yaml:"version" toml:"version" json:"version"`
	Name          string `yaml:"name,omitempty" toml:"name,omitempty" json:"name,omitempty"`
	BasePath      string `yaml:"base_path,omitempty" toml:"base_path,omitempty" json:"base_path,omitempty"`
	InitialStep   int    `yaml:"initial_step" toml:"initial_step" json:"initial_step"`
	CancelledPath string `yaml:"cancelled_path,omitempty" toml:"cancelled_path,omitempty" json:"cancelled_path,omitempty"`
	CompletedPath string `yaml:"completed_path,omitempty" toml:"completed_path,omitempty" json:"completed_path,omitempty"`
	Steps         []Step `yaml:"steps" toml:"steps" json:"steps"`
}

// Step is one unit of wizard content. Body is markdown.
type Step struct {
	ID    string `yaml:"id,omitempty" toml:"id,omitempty" json:"id,omitempty"`
	Title string `yaml:"title" toml:"title" json:"title"`
	Body  string `yaml:"body,omitempty" toml:"body,omitempty" json:"body,omitempty"`
}

// NewDefinition returns the built-in three step demo wizard.
func NewDefinition() *Definition {
	d := &Definition{
		Version:     CurrentVersion,
		Name:        "Getting started",
		InitialStep: 0,
		Steps: []Step{
			{
				Title: "Step 1",
				Body:  "Welcome. Use **next** to continue, or jump straight to the last step.",
			},
			{
				Title: "Step 2",
				Body:  "The location now ends in `/1/`. Try going **back** with your history.",
			},
			{
				Title: "Step 3",
				Body:  "Restart returns to the initial step. Complete leaves the wizard.",
			},
		},
	}
	d.ApplyDefaults()
	return d
}

// ApplyDefaults fills unset paths and step IDs.
func (d *Definition) ApplyDefaults() {
	if d.Version == 0 {
		d.Version = CurrentVersion
	}
	if d.BasePath == "" {
		d.BasePath = location.DefaultBasePath
	}
	if d.CancelledPath == "" {
		d.CancelledPath = location.DefaultCancelledPath
	}
	if d.CompletedPath == "" {
		d.CompletedPath = location.DefaultCompletedPath
	}

	for i := range d.Steps {
		if d.Steps[i].ID != "" {
			continue
		}
		if id := slug.Make(d.Steps[i].Title); id != "" {
			d.Steps[i].ID = id
		} else {
			d.Steps[i].ID = fmt.Sprintf("step-%d", i+1)
		}
	}
}

// WizardConfig converts the definition to a navigation core config.
// Callbacks are left for the host to set.
func (d *Definition) WizardConfig() wizard.Config {
	return wizard.Config{
		BasePath:         d.BasePath,
		InitialStepIndex: d.InitialStep,
		CancelledPath:    d.CancelledPath,
		CompletedPath:    d.CompletedPath,
	}.WithDefaults()
}

// StepByID returns the index of the step with the given ID.
func (d *Definition) StepByID(id string) (int, bool) {
	for i, s := range d.Steps {
		if s.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Locations lists every location a definition addresses, steps first.
func (d *Definition) Locations() []string {
	out := make([]string, 0, len(d.Steps)+2)
	for i := range d.Steps {
		out = append(out, location.StepPath(d.BasePath, i))
	}
	return append(out, d.CancelledPath, d.CompletedPath)
}
