package config

import (
	"fmt"
	"strings"

	"github.com/muurk/stepwise/internal/location"
)

// Validate checks the semantic rules the schema cannot express. It expects
// defaults to have been applied.
func Validate(d *Definition) error {
	var violations []string

	if d.Version != CurrentVersion {
		violations = append(violations, fmt.Sprintf("version: unsupported version %d (expected %d)", d.Version, CurrentVersion))
	}

	if len(d.Steps) == 0 {
		violations = append(violations, "steps: at least one step is required")
	} else if d.InitialStep < 0 || d.InitialStep >= len(d.Steps) {
		violations = append(violations, fmt.Sprintf("initial_step: %d is outside [0, %d]", d.InitialStep, len(d.Steps)-1))
	}

	paths := []struct {
		field string
		value string
	}{
		{"base_path", d.BasePath},
		{"cancelled_path", d.CancelledPath},
		{"completed_path", d.CompletedPath},
	}
	for _, p := range paths {
		if !strings.HasPrefix(p.value, "/") || !strings.HasSuffix(p.value, "/") {
			violations = append(violations, fmt.Sprintf("%s: %q must start and end with /", p.field, p.value))
		}
	}

	seen := make(map[string]int, len(d.Steps))
	for i, s := range d.Steps {
		if strings.TrimSpace(s.Title) == "" {
			violations = append(violations, fmt.Sprintf("steps[%d].title: must not be empty", i))
		}
		if prev, ok := seen[s.ID]; ok {
			violations = append(violations, fmt.Sprintf("steps[%d].id: %q already used by steps[%d]", i, s.ID, prev))
			continue
		}
		seen[s.ID] = i
	}

	// A step location must never collide with a terminal location.
	for i := range d.Steps {
		p := location.StepPath(d.BasePath, i)
		if p == d.CancelledPath || p == d.CompletedPath {
			violations = append(violations, fmt.Sprintf("steps[%d]: location %s is also a terminal location", i, p))
		}
	}

	if len(violations) == 0 {
		return nil
	}
	return &DefinitionError{Type: ErrTypeValidation, Violations: violations}
}
