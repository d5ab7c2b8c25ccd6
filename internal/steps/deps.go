package steps

import (
	"context"
	"path"
	"strings"

	"pysetup/internal/hostfs"
	"pysetup/internal/runner"
	"pysetup/internal/workflow"
)

// DefaultPackages is installed when the project has no requirements.txt and
// no package list is configured.
var DefaultPackages = []string{"astropy", "peewee", "numpy", "matplotlib", "pytz", "PySide6"}

const manifestName = "requirements.txt"

var pipProgressMarkers = []string{
	"Collecting",
	"Downloading",
	"Installing",
	"Successfully installed",
	"Requirement already satisfied",
}

// InstallDependencies installs from requirements.txt when present. Without a
// manifest each package is installed on its own and failures only warn.
type InstallDependencies struct {
	Host
	ProjectDir string
	EnvName    string
	Packages   []string
}

func (InstallDependencies) Def() workflow.StepDef { return definition(workflow.StepInstallDeps) }

func (s InstallDependencies) packages() []string {
	var out []string
	for _, p := range s.Packages {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return DefaultPackages
	}
	return out
}

func (s InstallDependencies) Run(ctx context.Context, r workflow.Reporter) workflow.Outcome {
	r.Progress(0)
	if strings.TrimSpace(s.ProjectDir) == "" || strings.TrimSpace(s.EnvName) == "" {
		return precondition(r, "project directory and environment name are required")
	}
	python := path.Join(s.ProjectDir, s.EnvName, "bin", "python")
	if !hostfs.Exists(ctx, s.FS, python) {
		return precondition(r, "virtual environment not found at %s; create it first", path.Join(s.ProjectDir, s.EnvName))
	}

	r.Log("Installing Python packages...")
	r.Progress(0.1)
	r.Log("Upgrading pip...")
	upgrade := runner.Command(python, "-m", "pip", "install", "--upgrade", "pip")
	if res := s.Runner.Run(ctx, upgrade); !res.OK() {
		r.Log("WARNING: Failed to upgrade pip, continuing...")
	}

	manifest := path.Join(s.ProjectDir, manifestName)
	if hostfs.Exists(ctx, s.FS, manifest) {
		r.Logf("Installing packages from %s...", manifestName)
		r.Progress(0.3)
		spec := runner.Command(python, "-m", "pip", "install", "-r", manifest)
		if res := s.Runner.Stream(ctx, spec, pipLines(r)); !res.OK() {
			return commandFailure(r, "Failed to install packages from "+manifestName, spec, res)
		}
		r.Log("Package installation completed.")
		r.Progress(1)
		return workflow.Success()
	}

	pkgs := s.packages()
	r.Logf("No %s found. Installing: %s", manifestName, strings.Join(pkgs, " "))
	var failed []string
	for i, pkg := range pkgs {
		if ctx.Err() != nil {
			r.Log("ERROR: package installation cancelled")
			return workflow.Failf(ctx.Err(), "package installation cancelled")
		}
		r.Logf("Installing %s...", pkg)
		r.Progress(0.3 + 0.5*float64(i+1)/float64(len(pkgs)))
		spec := runner.Command(python, "-m", "pip", "install", pkg)
		if res := s.Runner.Stream(ctx, spec, pipLines(r)); !res.OK() {
			r.Logf("WARNING: Failed to install %s, continuing...", pkg)
			failed = append(failed, pkg)
		}
	}
	if len(failed) > 0 {
		r.Logf("Package installation completed with %d warning(s): %s", len(failed), strings.Join(failed, ", "))
	} else {
		r.Log("Package installation completed.")
	}
	r.Progress(1)
	return workflow.Success()
}

// pipLines relays pip's progress lines and every stderr line as a warning.
func pipLines(r workflow.Reporter) runner.LineHandler {
	return func(stream runner.Stream, line string) {
		line = strings.TrimSpace(line)
		if line == "" {
			return
		}
		if stream == runner.Stderr {
			r.Log("  WARNING: " + strings.TrimPrefix(line, "WARNING: "))
			return
		}
		for _, marker := range pipProgressMarkers {
			if strings.Contains(line, marker) {
				r.Log("  " + line)
				return
			}
		}
	}
}

