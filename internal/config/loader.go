package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/muurk/stepwise/internal/logging"
)

const (
	appName     = "stepwise"
	defaultFile = "wizard.yaml"
)

// Format is a definition file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Mutex for atomic file writes
var fileMutex sync.Mutex

// GetConfigDir returns the OS-appropriate configuration directory for the application.
// This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/stepwise or $HOME/.config/stepwise
//   - macOS: $HOME/.config/stepwise (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\stepwise
func GetConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData != "" {
			return filepath.Join(localAppData, appName), nil
		}
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
		}
		return filepath.Join(userProfile, "AppData", "Local", appName), nil

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil

	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil
	}
}

// GetConfigPath returns the full path to the default definition file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, defaultFile), nil
}

// FormatFor returns the encoding implied by a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", &DefinitionError{
			Type: ErrTypeFormat,
			File: path,
			Err:  fmt.Errorf("unsupported extension %q (use .yaml, .yml or .toml)", filepath.Ext(path)),
		}
	}
}

// Load reads, validates and returns a definition.
// An empty path means the default definition file; if that file does not
// exist the built-in demo definition is returned.
func Load(path string) (*Definition, error) {
	explicit := path != ""
	if !explicit {
		var err error
		path, err = GetConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			logging.Debug("No definition file, using built-in wizard", zap.String("path", path))
			return NewDefinition(), nil
		}
		return nil, &DefinitionError{Type: ErrTypeRead, File: path, Err: err}
	}

	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	def, err := Parse(data, format)
	if err != nil {
		var defErr *DefinitionError
		if errors.As(err, &defErr) {
			defErr.File = path
		}
		return nil, err
	}

	logging.Info("Loaded wizard definition",
		zap.String("path", path),
		zap.String("name", def.Name),
		zap.Int("steps", len(def.Steps)),
	)
	return def, nil
}

// Parse decodes and validates a definition document.
func Parse(data []byte, format Format) (*Definition, error) {
	doc, def, err := decode(data, format)
	if err != nil {
		return nil, &DefinitionError{Type: ErrTypeParse, Err: err}
	}

	violations, err := ValidateDocument(doc)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		return nil, &DefinitionError{Type: ErrTypeSchema, Violations: violations}
	}

	def.ApplyDefaults()
	if err := Validate(def); err != nil {
		return nil, err
	}
	return def, nil
}

func decode(data []byte, format Format) (map[string]any, *Definition, error) {
	doc := make(map[string]any)
	def := &Definition{}

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, nil, err
		}
		if err := yaml.Unmarshal(data, def); err != nil {
			return nil, nil, err
		}

	case FormatTOML:
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, nil, err
		}
		meta, err := toml.Decode(string(data), def)
		if err != nil {
			return nil, nil, err
		}
		if !meta.IsDefined("version") {
			def.Version = CurrentVersion
		}

	default:
		return nil, nil, fmt.Errorf("unknown format %q", format)
	}

	return doc, def, nil
}

// Encode serializes a definition.
func Encode(d *Definition, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(d)
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(d); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// Save writes the definition to path atomically.
// An empty path means the default definition file.
func Save(d *Definition, path string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if path == "" {
		var err error
		path, err = GetConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}

	format, err := FormatFor(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := Encode(d, format)
	if err != nil {
		return fmt.Errorf("failed to marshal definition: %w", err)
	}

	header := []byte(`# stepwise wizard definition
#
# Each step is addressed at base_path + index + "/".
# Location: ` + path + `

`)
	data = append(header, data...)

	// Write to temporary file first (atomic write)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary definition file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save definition file: %w", err)
	}

	return nil
}

// CreateDefaultDefinition writes the built-in demo wizard to the default
// definition file.
func CreateDefaultDefinition() (string, error) {
	path, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	return path, Save(NewDefinition(), path)
}
