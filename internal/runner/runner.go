package runner

import (
	"context"
	"io"
	"strings"
)

// LaunchFailed is the exit code reported when a process could not be started.
const LaunchFailed = -1

// CommandSpec names one external command. Values are treated as immutable;
// the With* helpers return copies.
type CommandSpec struct {
	Name string
	Args []string
	Dir  string
}

func Command(name string, args ...string) CommandSpec {
	return CommandSpec{Name: name, Args: append([]string(nil), args...)}
}

func (c CommandSpec) WithDir(dir string) CommandSpec {
	out := c
	out.Args = append([]string(nil), c.Args...)
	out.Dir = dir
	return out
}

// String renders the command as a single shell-safe line.
func (c CommandSpec) String() string {
	var b strings.Builder
	b.WriteString(ShellQuote(c.Name))
	for _, arg := range c.Args {
		b.WriteByte(' ')
		b.WriteString(ShellQuote(arg))
	}
	return b.String()
}

// Result is produced once per execution.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

func (r Result) OK() bool { return r.ExitCode == 0 }

// Diagnostic returns the most useful failure text: stderr, falling back to stdout.
func (r Result) Diagnostic() string {
	if msg := strings.TrimSpace(r.Stderr); msg != "" {
		return msg
	}
	return strings.TrimSpace(r.Stdout)
}

func launchFailure(msg string) Result {
	return Result{ExitCode: LaunchFailed, Stderr: msg}
}

type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// LineHandler receives output lines while a streaming command runs. It is
// called from one goroutine per stream, so implementations must be safe for
// concurrent use.
type LineHandler func(stream Stream, line string)

// Runner executes external commands. Neither method returns an error: a
// command that could not be launched yields ExitCode LaunchFailed with the
// reason in Stderr.
type Runner interface {
	Run(ctx context.Context, cmd CommandSpec) Result
	Stream(ctx context.Context, cmd CommandSpec, onLine LineHandler) Result
}

// InputRunner is implemented by runners that can feed stdin to a command.
type InputRunner interface {
	Runner
	RunWithInput(ctx context.Context, cmd CommandSpec, input io.Reader) Result
}

// ShellQuote quotes value for a POSIX shell. A leading "~" or "~/" becomes
// "$HOME" so home-relative paths resolve on the host running the shell.
func ShellQuote(value string) string {
	if value == "~" {
		return `"$HOME"`
	}
	if rest, ok := strings.CutPrefix(value, "~/"); ok {
		if rest == "" {
			return `"$HOME"/`
		}
		return `"$HOME"/` + quoteWord(rest)
	}
	return quoteWord(value)
}

func quoteWord(value string) string {
	if value == "" {
		return "''"
	}
	if isShellSafe(value) {
		return value
	}
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}

func isShellSafe(value string) bool {
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("-_./:=@+,%", r):
		default:
			return false
		}
	}
	return true
}
