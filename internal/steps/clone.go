package steps

import (
	"context"
	"fmt"
	"path"
	"strings"

	"pysetup/internal/runner"
	"pysetup/internal/workflow"
)

// RepoName derives a directory name from the last segment of a repository
// URL, without its extension. scp-style URLs such as git@host:demo.git work.
func RepoName(url string) string {
	u := strings.TrimRight(strings.TrimSpace(url), "/")
	if i := strings.LastIndexAny(u, "/:"); i >= 0 {
		u = u[i+1:]
	}
	return strings.TrimSuffix(u, path.Ext(u))
}

// CloneRepository never writes into an existing non-empty destination. An
// existing empty directory is an available target.
type CloneRepository struct {
	Host
	URL       string
	ClonePath string
	Branch    string
}

func (CloneRepository) Def() workflow.StepDef { return definition(workflow.StepCloneRepository) }

// Destination is the directory the repository is cloned into.
func (s CloneRepository) Destination() string {
	name := RepoName(s.URL)
	if name == "" || s.ClonePath == "" {
		return ""
	}
	return path.Join(s.ClonePath, name)
}

func (s CloneRepository) Run(ctx context.Context, r workflow.Reporter) workflow.Outcome {
	r.Progress(0)
	if strings.TrimSpace(s.URL) == "" || strings.TrimSpace(s.ClonePath) == "" {
		return precondition(r, "repository URL and clone path are required")
	}
	dest := s.Destination()
	if dest == "" {
		return precondition(r, "cannot derive a directory name from %q", s.URL)
	}

	if err := s.FS.MkdirAll(ctx, s.ClonePath); err != nil {
		r.Logf("ERROR: cannot create clone directory %s: %v", s.ClonePath, err)
		return workflow.Failf(err, "cannot create clone directory %s", s.ClonePath)
	}

	entry, err := s.FS.Probe(ctx, dest)
	if err != nil {
		r.Logf("ERROR: cannot inspect %s: %v", dest, err)
		return workflow.Failf(err, "cannot inspect %s", dest)
	}
	if entry.Exists && !(entry.IsDir && entry.Empty) {
		r.Logf("ERROR: destination already exists and is not empty: %s", dest)
		return workflow.Outcome{
			Reason: "destination already exists: " + dest,
			Err:    fmt.Errorf("%w: %s", ErrDestinationExists, dest),
		}
	}
	if entry.Exists {
		r.Logf("Destination %s exists and is empty; cloning into it", dest)
	}

	r.Progress(0.25)
	r.Logf("Cloning %s to %s...", s.URL, dest)
	args := []string{"clone"}
	if b := strings.TrimSpace(s.Branch); b != "" {
		args = append(args, "--branch", b)
	}
	args = append(args, s.URL, dest)
	spec := runner.Command("git", args...)

	res := s.Runner.Stream(ctx, spec, relay(r))
	if !res.OK() {
		return commandFailure(r, "Failed to clone repository", spec, res)
	}
	r.Logf("Repository cloned to: %s", dest)
	r.Progress(1)
	return workflow.Success()
}
