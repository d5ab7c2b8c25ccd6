package hostfs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"pysetup/internal/runner"
)

// Remote implements FS with shell commands, one command per operation.
type Remote struct {
	Runner runner.InputRunner
}

const probeScript = `p=$1
if [ -d "$p" ]; then
  if [ -z "$(ls -A "$p")" ]; then echo dir-empty; else echo dir; fi
elif [ -e "$p" ]; then
  echo file
else
  echo missing
fi`

func (r Remote) Probe(ctx context.Context, p string) (Entry, error) {
	res := r.Runner.Run(ctx, runner.Command("sh", "-c", probeScript, "probe", p))
	if !res.OK() {
		return Entry{}, fmt.Errorf("probe %s: exit %d: %s", p, res.ExitCode, res.Diagnostic())
	}
	switch strings.TrimSpace(res.Stdout) {
	case "missing":
		return Entry{}, nil
	case "file":
		return Entry{Exists: true}, nil
	case "dir":
		return Entry{Exists: true, IsDir: true}, nil
	case "dir-empty":
		return Entry{Exists: true, IsDir: true, Empty: true}, nil
	default:
		return Entry{}, fmt.Errorf("probe %s: unexpected output %q", p, res.Stdout)
	}
}

func (r Remote) MkdirAll(ctx context.Context, p string) error {
	return r.run(ctx, "mkdir", runner.Command("mkdir", "-p", p))
}

func (r Remote) RemoveAll(ctx context.Context, p string) error {
	return r.run(ctx, "remove", runner.Command("rm", "-rf", p))
}

func (r Remote) WriteFile(ctx context.Context, p string, data []byte, perm os.FileMode) error {
	tmp := p + ".tmp.pysetup"
	script := fmt.Sprintf(
		"set -e\nmkdir -p %s\ncat > %s\nchmod %o %s\nmv -f %s %s\n",
		runner.ShellQuote(path.Dir(p)),
		runner.ShellQuote(tmp),
		perm.Perm(), runner.ShellQuote(tmp),
		runner.ShellQuote(tmp), runner.ShellQuote(p),
	)
	res := r.Runner.RunWithInput(ctx, runner.Command("sh", "-c", script), bytes.NewReader(data))
	if !res.OK() {
		return fmt.Errorf("write %s: exit %d: %s", p, res.ExitCode, res.Diagnostic())
	}
	return nil
}

func (r Remote) run(ctx context.Context, op string, spec runner.CommandSpec) error {
	res := r.Runner.Run(ctx, spec)
	if !res.OK() {
		return fmt.Errorf("%s %s: exit %d: %s", op, strings.Join(spec.Args, " "), res.ExitCode, res.Diagnostic())
	}
	return nil
}
