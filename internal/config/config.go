package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/maxkimambo/envup/internal/errors"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultNodeVersion is the Node.js major version fnm installs
	DefaultNodeVersion = "22"

	appName  = "envup"
	fileName = "config.yaml"
)

// Config is the contents of the envup config file
type Config struct {
	NodeVersion string       `yaml:"node_version,omitempty"`
	MaxParallel int          `yaml:"max_parallel,omitempty"`
	Disable     []string     `yaml:"disable,omitempty"`
	Tasks       []TaskConfig `yaml:"tasks,omitempty"`

	// Path is the file the config was read from; empty for defaults
	Path string `yaml:"-"`
}

// TaskConfig declares a user-defined maintenance task
type TaskConfig struct {
	ID          string   `yaml:"id"`
	Description string   `yaml:"description,omitempty"`
	Command     []string `yaml:"command"`
	// Requires names a binary that must be on PATH; defaults to Command[0]
	Requires  string   `yaml:"requires,omitempty"`
	DependsOn []string `yaml:"depends_on,omitempty"`
	Sudo      bool     `yaml:"sudo,omitempty"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		NodeVersion: DefaultNodeVersion,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/envup/config.yaml or the platform equivalent
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, appName, fileName), nil
}

// Load reads the config at path. An empty path loads the default location,
// where a missing file yields defaults. An explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, apperrors.NewConfigReadError(path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		if apperrors.IsCategory(err, apperrors.ErrorCategoryConfiguration) {
			return nil, err.(*apperrors.TaskError).WithContext("path", path)
		}
		return nil, apperrors.NewConfigParseError(path, err)
	}
	cfg.Path = filepath.Clean(path)
	return cfg, nil
}

// Parse decodes and validates a config payload. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.NodeVersion = strings.TrimPrefix(strings.TrimSpace(c.NodeVersion), "v")
	if c.NodeVersion == "" {
		c.NodeVersion = DefaultNodeVersion
	}
	for i := range c.Disable {
		c.Disable[i] = strings.TrimSpace(c.Disable[i])
	}
	for i := range c.Tasks {
		t := &c.Tasks[i]
		t.ID = strings.TrimSpace(t.ID)
		t.Requires = strings.TrimSpace(t.Requires)
		if t.Requires == "" && len(t.Command) > 0 {
			t.Requires = t.Command[0]
		}
	}
}

// Validate checks field values
func (c *Config) Validate() error {
	if c.MaxParallel < 0 {
		return apperrors.NewConfigInvalidError("max_parallel", "must be 0 (unbounded) or positive")
	}

	seen := make(map[string]bool, len(c.Tasks))
	for i, t := range c.Tasks {
		field := fmt.Sprintf("tasks[%d]", i)
		if t.ID == "" {
			return apperrors.NewConfigInvalidError(field+".id", "is required")
		}
		if seen[t.ID] {
			return apperrors.NewConfigInvalidError(field+".id", fmt.Sprintf("duplicate task id %q", t.ID))
		}
		seen[t.ID] = true
		if len(t.Command) == 0 || strings.TrimSpace(t.Command[0]) == "" {
			return apperrors.NewConfigInvalidError(field+".command", "is required")
		}
		for _, dep := range t.DependsOn {
			if dep == t.ID {
				return apperrors.NewConfigInvalidError(field+".depends_on", "a task cannot depend on itself")
			}
		}
	}
	return nil
}

// Disabled reports whether id is listed under disable
func (c *Config) Disabled(id string) bool {
	for _, d := range c.Disable {
		if d == id {
			return true
		}
	}
	return false
}
