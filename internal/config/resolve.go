package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-shellwords"
)

// ExpandHome replaces a leading ~ with home.
func ExpandHome(p, home string) string {
	p = strings.TrimSpace(p)
	if home == "" {
		return p
	}
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(home, p[2:])
	}
	return p
}

// Resolved returns a copy with surrounding whitespace trimmed and, for local
// runs, ~ expanded in host paths. Remote host paths keep ~ for the remote
// shell to expand. Key and known_hosts paths are always local.
func (c Config) Resolved() Config {
	home, _ := os.UserHomeDir()
	return c.resolvedWithHome(home)
}

func (c Config) resolvedWithHome(home string) Config {
	out := c
	out.Project.Packages = append([]string(nil), c.Project.Packages...)

	hostHome := home
	if strings.TrimSpace(c.Remote.Target) != "" {
		hostHome = ""
	}
	out.Python.Version = strings.TrimSpace(c.Python.Version)
	out.Python.InstallPath = ExpandHome(c.Python.InstallPath, hostHome)
	out.Git.RepositoryURL = strings.TrimSpace(c.Git.RepositoryURL)
	out.Git.ClonePath = ExpandHome(c.Git.ClonePath, hostHome)
	out.Git.Branch = strings.TrimSpace(c.Git.Branch)
	out.Project.Path = ExpandHome(c.Project.Path, hostHome)
	out.Project.EnvName = strings.TrimSpace(c.Project.EnvName)
	out.Launcher.MainScript = strings.TrimSpace(c.Launcher.MainScript)
	out.Launcher.AppBundleName = strings.TrimSpace(c.Launcher.AppBundleName)
	out.Launcher.BundleDir = ExpandHome(c.Launcher.BundleDir, hostHome)
	out.Remote.Target = strings.TrimSpace(c.Remote.Target)
	out.Remote.KeyPath = ExpandHome(c.Remote.KeyPath, home)
	out.Remote.KnownHosts = ExpandHome(c.Remote.KnownHosts, home)
	return out
}

// Validate reports structural problems. Missing values a particular step
// needs are reported by that step when it runs.
func (c Config) Validate() error {
	var errs []error
	if name := strings.TrimSpace(c.Project.EnvName); name != "" {
		if strings.ContainsRune(name, '/') || name == "." || name == ".." {
			errs = append(errs, fmt.Errorf("project.env_name %q must be a plain directory name", name))
		}
	}
	if v := strings.TrimSpace(c.Python.Version); v != "" && !strings.Contains(v, ".") {
		errs = append(errs, fmt.Errorf("python.version %q must look like 3.12.6", v))
	}
	if t := strings.TrimSpace(c.Remote.Target); t != "" {
		if i := strings.Index(t, "@"); i <= 0 || i == len(t)-1 {
			errs = append(errs, fmt.Errorf("remote.target %q must be user@host[:port]", t))
		}
	}
	for name, cmd := range map[string]string{
		"package_manager.probe_command":     c.PackageManager.ProbeCommand,
		"package_manager.bootstrap_command": c.PackageManager.BootstrapCommand,
		"package_manager.install_command":   c.PackageManager.InstallCommand,
	} {
		if _, err := c.SplitCommand(cmd); err != nil {
			errs = append(errs, fmt.Errorf("%s: %v", name, err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// Series is the major.minor part of the configured version.
func (c Config) Series() string {
	parts := strings.SplitN(strings.TrimSpace(c.Python.Version), ".", 3)
	if len(parts) < 2 {
		return strings.TrimSpace(c.Python.Version)
	}
	return parts[0] + "." + parts[1]
}

// SplitCommand substitutes placeholders and splits s into argv. An empty
// command yields nil.
func (c Config) SplitCommand(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	s = strings.NewReplacer("{version}", strings.TrimSpace(c.Python.Version), "{series}", c.Series()).Replace(s)
	args, err := shellwords.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("parse command %q: %w", s, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("parse command %q: no words", s)
	}
	return args, nil
}

// PackagesFromString splits a space or comma separated list.
func PackagesFromString(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' || r == '\n' })
	if len(fields) == 0 {
		return nil
	}
	return fields
}
