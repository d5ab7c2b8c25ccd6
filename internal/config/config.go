// Package config holds the setup configuration record.
//
// The settings file lives at $XDG_CONFIG_HOME/pysetup/setup.toml (defaults to
// ~/.config/pysetup/setup.toml). Paths ending in .yaml or .yml are read and
// written as YAML; everything else is TOML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid configuration")

// SupportedVersions are offered by the version picker, newest first.
var SupportedVersions = []string{"3.12.6", "3.12.5", "3.11.9", "3.10.14", "3.9.19"}

const (
	DefaultBootstrapCommand = `/bin/bash -c 'curl -fsSL https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh | /bin/bash'`
	DefaultProbeCommand     = "brew --version"
	DefaultInstallCommand   = "brew install python@{series}"
)

type Python struct {
	Version          string `toml:"version" yaml:"version"`
	InstallPath      string `toml:"install_path" yaml:"install_path"`
	AlreadyInstalled bool   `toml:"already_installed" yaml:"already_installed"`
}

type Git struct {
	RepositoryURL string `toml:"repository_url" yaml:"repository_url"`
	ClonePath     string `toml:"clone_path" yaml:"clone_path"`
	Branch        string `toml:"branch" yaml:"branch"`
	SkipClone     bool   `toml:"skip_clone" yaml:"skip_clone"`
}

type Project struct {
	Path     string   `toml:"path" yaml:"path"`
	EnvName  string   `toml:"env_name" yaml:"env_name"`
	Packages []string `toml:"packages" yaml:"packages"`
}

type Launcher struct {
	MainScript    string `toml:"main_script" yaml:"main_script"`
	AppBundleName string `toml:"app_bundle_name" yaml:"app_bundle_name"`
	CreateBundle  bool   `toml:"create_bundle" yaml:"create_bundle"`
	BundleDir     string `toml:"bundle_dir" yaml:"bundle_dir"`
}

// PackageManager commands are split into argv with shell word rules after
// {version} and {series} are substituted.
type PackageManager struct {
	ProbeCommand     string `toml:"probe_command" yaml:"probe_command"`
	BootstrapCommand string `toml:"bootstrap_command" yaml:"bootstrap_command"`
	InstallCommand   string `toml:"install_command" yaml:"install_command"`
}

// Remote selects an SSH target. An empty Target means the local machine.
type Remote struct {
	Target                string `toml:"target" yaml:"target"`
	KeyPath               string `toml:"key_path" yaml:"key_path"`
	KnownHosts            string `toml:"known_hosts" yaml:"known_hosts"`
	InsecureIgnoreHostKey bool   `toml:"insecure_ignore_host_key" yaml:"insecure_ignore_host_key"`
}

type Config struct {
	Python         Python         `toml:"python" yaml:"python"`
	Git            Git            `toml:"git" yaml:"git"`
	Project        Project        `toml:"project" yaml:"project"`
	Launcher       Launcher       `toml:"launcher" yaml:"launcher"`
	PackageManager PackageManager `toml:"package_manager" yaml:"package_manager"`
	Remote         Remote         `toml:"remote" yaml:"remote"`
}

func Default() Config {
	return Config{
		Python: Python{
			Version:     SupportedVersions[0],
			InstallPath: "/usr/local/python3",
		},
		Git: Git{
			ClonePath: "~/Projects",
			Branch:    "main",
		},
		Project: Project{
			Path:    "~/Projects",
			EnvName: ".venv",
		},
		Launcher: Launcher{
			MainScript: "main.py",
		},
		PackageManager: PackageManager{
			ProbeCommand:     DefaultProbeCommand,
			BootstrapCommand: DefaultBootstrapCommand,
			InstallCommand:   DefaultInstallCommand,
		},
	}
}

// Path returns the settings file location. It respects XDG_CONFIG_HOME,
// falling back to ~/.config/pysetup/setup.toml.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".config", "pysetup", "setup.toml")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "pysetup", "setup.toml")
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if isYAML(path) {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		return cfg, nil
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := Marshal(path, cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Marshal encodes cfg in the format implied by path.
func Marshal(path string, cfg Config) ([]byte, error) {
	if isYAML(path) {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshal config: %w", err)
		}
		return data, nil
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf.Bytes(), nil
}
