package steps

import (
	"context"
	"html"
	"os"
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"pysetup/internal/runner"
	"pysetup/internal/workflow"
)

// GenerateLaunchers writes run_<program>.sh into the project and optionally
// a <Name>.app bundle. Output depends only on the configured fields, so a
// rerun overwrites files with identical bytes.
type GenerateLaunchers struct {
	Host
	ProjectDir   string
	EnvName      string
	MainScript   string
	CreateBundle bool
	BundleName   string
	// BundleDir defaults to ProjectDir.
	BundleDir string
}

func (GenerateLaunchers) Def() workflow.StepDef { return definition(workflow.StepGenerateLaunchers) }

type launcherData struct {
	ProgramQuoted    string
	ProgramXML       string
	MainScript       string
	EnvActivate      string
	ProjectDirQuoted string
	AppName          string
	BundleID         string
}

var bundleIDUnsafe = regexp.MustCompile(`[^a-z0-9.-]+`)

func (s GenerateLaunchers) mainScript() string {
	if m := strings.TrimSpace(s.MainScript); m != "" {
		return m
	}
	return "main.py"
}

// Program is the main script's base name without extension.
func (s GenerateLaunchers) Program() string {
	base := path.Base(s.mainScript())
	return strings.TrimSuffix(base, path.Ext(base))
}

func (s GenerateLaunchers) AppName() string {
	if n := strings.TrimSpace(s.BundleName); n != "" {
		return n
	}
	p := s.Program()
	r, size := utf8.DecodeRuneInString(p)
	if r == utf8.RuneError {
		return p
	}
	return string(unicode.ToUpper(r)) + p[size:]
}

func (s GenerateLaunchers) ScriptPath() string {
	return path.Join(s.ProjectDir, "run_"+s.Program()+".sh")
}

func (s GenerateLaunchers) BundlePath() string {
	dir := strings.TrimSpace(s.BundleDir)
	if dir == "" {
		dir = s.ProjectDir
	}
	return path.Join(dir, s.AppName()+".app")
}

func (s GenerateLaunchers) data(absoluteEnv bool) launcherData {
	activate := path.Join(s.EnvName, "bin", "activate")
	if absoluteEnv {
		activate = path.Join(s.ProjectDir, activate)
	}
	id := bundleIDUnsafe.ReplaceAllString(strings.ToLower(s.Program()), "-")
	return launcherData{
		ProgramQuoted:    runner.ShellQuote(s.Program()),
		ProgramXML:       html.EscapeString(s.Program()),
		MainScript:       runner.ShellQuote(s.mainScript()),
		EnvActivate:      runner.ShellQuote(activate),
		ProjectDirQuoted: runner.ShellQuote(s.ProjectDir),
		AppName:          html.EscapeString(s.AppName()),
		BundleID:         "com.user." + id,
	}
}

func (s GenerateLaunchers) Run(ctx context.Context, r workflow.Reporter) workflow.Outcome {
	r.Progress(0)
	if strings.TrimSpace(s.ProjectDir) == "" || strings.TrimSpace(s.EnvName) == "" {
		return precondition(r, "project directory and environment name are required")
	}
	project, err := s.FS.Probe(ctx, s.ProjectDir)
	if err != nil || !project.IsDir {
		return precondition(r, "project directory does not exist: %s", s.ProjectDir)
	}

	r.Log("Creating run scripts...")
	script, err := renderTemplateFile("templates/run.sh.tmpl", s.data(false))
	if err != nil {
		r.Logf("ERROR: %v", err)
		return workflow.Fail(err)
	}
	if err := s.FS.WriteFile(ctx, s.ScriptPath(), []byte(script), 0o755); err != nil {
		r.Logf("ERROR: cannot write %s: %v", s.ScriptPath(), err)
		return workflow.Failf(err, "cannot write run script")
	}
	r.Logf("Run script created: %s", path.Base(s.ScriptPath()))
	r.Log("The script checks for updates with 'git pull' on startup")

	if !s.CreateBundle {
		r.Progress(1)
		return workflow.Success()
	}
	r.Progress(0.5)
	if out, ok := s.writeBundle(ctx, r); !ok {
		return out
	}
	r.Progress(1)
	return workflow.Success()
}

func (s GenerateLaunchers) writeBundle(ctx context.Context, r workflow.Reporter) (workflow.Outcome, bool) {
	bundle := s.BundlePath()
	contents := path.Join(bundle, "Contents")
	r.Logf("Creating application bundle %s...", bundle)

	for _, dir := range []string{path.Join(contents, "MacOS"), path.Join(contents, "Resources")} {
		if err := s.FS.MkdirAll(ctx, dir); err != nil {
			r.Logf("ERROR: cannot create %s: %v", dir, err)
			return workflow.Failf(err, "cannot create application bundle"), false
		}
	}

	data := s.data(true)
	files := []struct {
		tmpl string
		dest string
		perm os.FileMode
	}{
		{tmpl: "templates/bundle_launcher.sh.tmpl", dest: path.Join(contents, "MacOS", s.Program()), perm: 0o755},
		{tmpl: "templates/Info.plist.tmpl", dest: path.Join(contents, "Info.plist"), perm: 0o644},
	}
	for _, f := range files {
		body, err := renderTemplateFile(f.tmpl, data)
		if err != nil {
			r.Logf("ERROR: %v", err)
			return workflow.Fail(err), false
		}
		if err := s.FS.WriteFile(ctx, f.dest, []byte(body), f.perm); err != nil {
			r.Logf("ERROR: cannot write %s: %v", f.dest, err)
			return workflow.Failf(err, "cannot write application bundle"), false
		}
	}
	r.Logf("Application bundle created: %s", bundle)
	return workflow.Outcome{}, true
}
