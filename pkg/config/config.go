// Package config loads the optional patchwork.yaml file that tunes a
// session.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/patchwork/pkg/errors"
)

// FileName is the name of the configuration file looked up in a project
// directory.
const FileName = "patchwork.yaml"

// SupportedMajor is the client protocol major version this engine speaks.
const SupportedMajor = "v1"

// Defaults applied by Resolve.
const (
	DefaultProtocol       = "v1.0.0"
	DefaultMaxFlushPasses = 64
)

// Config represents the optional patchwork.yaml configuration.
type Config struct {
	Name    string        `yaml:"name,omitempty"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
}

// SessionConfig contains session settings.
type SessionConfig struct {
	Protocol       string `yaml:"protocol,omitempty"`
	StrictHooks    bool   `yaml:"strict_hooks,omitempty"`
	MaxFlushPasses int    `yaml:"max_flush_passes,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Verbose bool `yaml:"verbose,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root           string
	ModulePath     string
	Name           string
	Protocol       string
	StrictHooks    bool
	MaxFlushPasses int
	Verbose        bool
}

// LoadOptional reads patchwork.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, configError("config.LoadOptional", fmt.Errorf("read %s: %w", FileName, err))
	}
	return Parse(data)
}

// Parse decodes a patchwork.yaml document. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// An empty document decodes to io.EOF.
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, configError("config.Parse", fmt.Errorf("parse %s: %w", FileName, err))
	}
	return &cfg, nil
}

// Resolve loads patchwork.yaml (if present) and resolves defaults. The
// go.mod in dir, when there is one, names the project.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	modPath, err := modulePath(dir)
	if err != nil {
		return nil, err
	}
	return cfg.Resolve(dir, modPath)
}

// Resolve applies defaults to cfg and validates it.
func (cfg *Config) Resolve(dir, modPath string) (*Resolved, error) {
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = defaultName(modPath, dir)
	}

	protocol := strings.TrimSpace(cfg.Session.Protocol)
	if protocol == "" {
		protocol = DefaultProtocol
	}
	if err := validateProtocol(protocol); err != nil {
		return nil, err
	}

	passes := cfg.Session.MaxFlushPasses
	switch {
	case passes == 0:
		passes = DefaultMaxFlushPasses
	case passes < 0:
		return nil, configError("config.Resolve", fmt.Errorf("session.max_flush_passes must be positive (got %d)", passes))
	}

	return &Resolved{
		Root:           dir,
		ModulePath:     modPath,
		Name:           name,
		Protocol:       semver.Canonical(protocol),
		StrictHooks:    cfg.Session.StrictHooks,
		MaxFlushPasses: passes,
		Verbose:        cfg.Log.Verbose,
	}, nil
}

// Default returns the configuration used when no file is present.
func Default() *Resolved {
	return &Resolved{
		Name:           "patchwork",
		Protocol:       DefaultProtocol,
		MaxFlushPasses: DefaultMaxFlushPasses,
	}
}

func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", configError("config.Resolve", fmt.Errorf("read go.mod: %w", err))
	}
	return modfile.ModulePath(data), nil
}

func defaultName(modPath, dir string) string {
	base := filepath.Base(dir)
	if modPath != "" {
		if prefix, _, ok := module.SplitPathVersion(modPath); ok {
			if i := strings.LastIndexByte(prefix, '/'); i >= 0 {
				prefix = prefix[i+1:]
			}
			base = prefix
		}
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "patchwork"
	}
	return base
}

func validateProtocol(v string) error {
	if !semver.IsValid(v) {
		return configError("config.Resolve", fmt.Errorf("session.protocol %q is not a semantic version", v))
	}
	if major := semver.Major(v); major != SupportedMajor {
		return configError("config.Resolve", fmt.Errorf("session.protocol %s: major version %s is not supported (want %s)", v, major, SupportedMajor))
	}
	return nil
}

func configError(op string, err error) error {
	return &errors.Error{Op: op, Kind: errors.KindConfig, Err: err}
}

// FindProjectRoot walks up from dir to the nearest directory holding
// patchwork.yaml or go.mod.
func FindProjectRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range []string{FileName, "go.mod"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", configError("config.FindProjectRoot", fmt.Errorf("no %s or go.mod found", FileName))
		}
		dir = parent
	}
}
