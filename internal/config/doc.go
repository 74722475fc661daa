// Package config loads wizard definitions.
//
// A definition names a wizard's locations and lists its steps. Definitions
// are YAML or TOML files, selected by extension:
//
//	version: 1
//	name: Sign up
//	base_path: /signup/
//	initial_step: 0
//	cancelled_path: /
//	completed_path: /welcome/
//	steps:
//	  - title: Account
//	    body: Choose a **username**.
//	  - title: Profile
//	  - title: Confirm
//
// # Configuration File Location
//
// Without an explicit path the default file is used:
//   - Linux: $XDG_CONFIG_HOME/stepwise/wizard.yaml or $HOME/.config/stepwise/wizard.yaml
//   - macOS: $HOME/.config/stepwise/wizard.yaml
//   - Windows: %LOCALAPPDATA%\stepwise\wizard.yaml
//
// When that file does not exist the built-in demo wizard is returned.
//
// # Validation
//
// Documents are checked against an embedded JSON Schema, then defaults are
// applied (paths, slug step IDs) and semantic rules are checked: the initial
// step is in range, paths start and end with "/", step IDs are unique and no
// step location collides with a terminal location. Failures are returned as
// *DefinitionError carrying every violation.
package config
