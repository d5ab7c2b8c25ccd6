package steps

import (
	"context"
	"path"
	"strings"

	"github.com/rs/zerolog/log"

	"pysetup/internal/hostfs"
	"pysetup/internal/runner"
)

var frameworkSeries = []string{"3.12", "3.11", "3.10", "3.9"}

// DefaultCandidates lists interpreter locations in lookup order. The final
// bare name is resolved through the executable search path.
func DefaultCandidates(installPath string) []string {
	var out []string
	if p := strings.TrimSpace(installPath); p != "" {
		out = append(out, path.Join(p, "bin", "python3"), path.Join(p, "python3"))
	}
	out = append(out,
		"/usr/local/bin/python3",
		"/opt/homebrew/bin/python3",
		"/usr/bin/python3",
	)
	for _, s := range frameworkSeries {
		out = append(out, "/Library/Frameworks/Python.framework/Versions/"+s+"/bin/python3")
	}
	return append(out, "python3")
}

type Runtime struct {
	Path    string
	Version string
}

func (rt Runtime) String() string {
	if rt.Version == "" {
		return rt.Path
	}
	return rt.Path + " (" + rt.Version + ")"
}

// Locator finds a working Python interpreter.
type Locator struct {
	Host
	// Candidates overrides DefaultCandidates when non-nil.
	Candidates []string
}

func (l Locator) candidates(installPath string) []string {
	if l.Candidates != nil {
		return l.Candidates
	}
	return DefaultCandidates(installPath)
}

// Find returns the first candidate that answers a version query.
func (l Locator) Find(ctx context.Context, installPath string) (Runtime, bool) {
	for _, cand := range l.candidates(installPath) {
		if ctx.Err() != nil {
			return Runtime{}, false
		}
		if path.IsAbs(cand) && l.FS != nil && !hostfs.Exists(ctx, l.FS, cand) {
			continue
		}
		res := l.Runner.Run(ctx, runner.Command(cand, "--version"))
		if !res.OK() {
			continue
		}
		version := strings.TrimSpace(res.Stdout)
		if version == "" {
			// Older interpreters print the version on stderr.
			version = strings.TrimSpace(res.Stderr)
		}
		if version == "" {
			continue
		}
		log.Debug().Str("python", cand).Str("version", version).Msg("found interpreter")
		return Runtime{Path: cand, Version: version}, true
	}
	return Runtime{}, false
}
