package steps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pysetup/internal/runner"
)

func TestRepoName(t *testing.T) {
	testCases := []struct {
		url  string
		want string
	}{
		{url: "https://example.com/demo.git", want: "demo"},
		{url: "https://example.com/org/demo", want: "demo"},
		{url: "https://example.com/org/demo/", want: "demo"},
		{url: "git@github.com:org/tool.git", want: "tool"},
		{url: "git@host:solo.git", want: "solo"},
		{url: "", want: ""},
	}
	for _, tc := range testCases {
		if got := RepoName(tc.url); got != tc.want {
			t.Fatalf("RepoName(%q) = %q want %q", tc.url, got, tc.want)
		}
	}
}

func TestCloneDestination(t *testing.T) {
	step := CloneRepository{URL: "https://example.com/demo.git", ClonePath: "/tmp/work"}
	if got := step.Destination(); got != "/tmp/work/demo" {
		t.Fatalf("destination: got %q", got)
	}
}

func TestClone_NonEmptyDestinationFailsWithoutCloning(t *testing.T) {
	work := t.TempDir()
	if err := os.MkdirAll(filepath.Join(work, "demo", "src"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	sr := &scriptedRunner{}
	step := CloneRepository{Host: localHost(sr), URL: "https://example.com/demo.git", ClonePath: work, Branch: "main"}
	rep := &testReporter{}

	out := step.Run(context.Background(), rep)
	if out.OK || !errors.Is(out.Err, ErrDestinationExists) {
		t.Fatalf("expected destination exists, got %+v", out)
	}
	if len(sr.calls) != 0 {
		t.Fatalf("git must not run: %v", sr.commandLines())
	}
	if !rep.contains("already exists") {
		t.Fatalf("expected a failure log line: %v", rep.lines)
	}
}

func TestClone_FileAtDestinationFails(t *testing.T) {
	work := t.TempDir()
	if err := os.WriteFile(filepath.Join(work, "demo"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	step := CloneRepository{Host: localHost(&scriptedRunner{}), URL: "https://example.com/demo.git", ClonePath: work}
	if out := step.Run(context.Background(), &testReporter{}); !errors.Is(out.Err, ErrDestinationExists) {
		t.Fatalf("expected destination exists, got %+v", out)
	}
}

func TestClone_EmptyDestinationIsAvailable(t *testing.T) {
	work := t.TempDir()
	dest := filepath.Join(work, "demo")
	if err := os.Mkdir(dest, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	sr := &scriptedRunner{respond: func(runner.CommandSpec) runner.Result {
		return runner.Result{Stderr: "Cloning into '" + dest + "'...\n"}
	}}
	step := CloneRepository{Host: localHost(sr), URL: "https://example.com/demo.git", ClonePath: work, Branch: "dev"}
	rep := &testReporter{}
	if out := step.Run(context.Background(), rep); !out.OK {
		t.Fatalf("expected success, got %+v", out)
	}
	want := runner.Command("git", "clone", "--branch", "dev", "https://example.com/demo.git", dest).String()
	if lines := sr.commandLines(); len(lines) != 1 || lines[0] != want {
		t.Fatalf("git command: got %v want %q", lines, want)
	}
	if !rep.contains("Cloning into") {
		t.Fatalf("git output should be relayed: %v", rep.lines)
	}
}

func TestClone_CreatesClonePath(t *testing.T) {
	work := filepath.Join(t.TempDir(), "nested", "work")
	sr := &scriptedRunner{}
	step := CloneRepository{Host: localHost(sr), URL: "https://example.com/demo.git", ClonePath: work}
	if out := step.Run(context.Background(), &testReporter{}); !out.OK {
		t.Fatalf("expected success, got %+v", out)
	}
	if info, err := os.Stat(work); err != nil || !info.IsDir() {
		t.Fatalf("clone path not created: %v", err)
	}
}

func TestClone_UncreatableClonePathFails(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	sr := &scriptedRunner{}
	step := CloneRepository{Host: localHost(sr), URL: "https://example.com/demo.git", ClonePath: filepath.Join(blocker, "work")}
	rep := &testReporter{}
	if out := step.Run(context.Background(), rep); out.OK {
		t.Fatalf("expected failure")
	}
	if len(sr.calls) != 0 || !rep.contains("cannot create clone directory") {
		t.Fatalf("unexpected behaviour: calls=%v lines=%v", sr.commandLines(), rep.lines)
	}
}

func TestClone_Preconditions(t *testing.T) {
	testCases := []CloneRepository{
		{URL: "", ClonePath: "/tmp/work"},
		{URL: "https://example.com/demo.git", ClonePath: ""},
		{URL: "/", ClonePath: "/tmp/work"},
	}
	for _, step := range testCases {
		step.Host = localHost(&scriptedRunner{})
		rep := &testReporter{}
		out := step.Run(context.Background(), rep)
		if !errors.Is(out.Err, ErrPrecondition) {
			t.Fatalf("%+v: expected precondition failure, got %+v", step, out)
		}
		if len(rep.lines) == 0 {
			t.Fatalf("failure must be logged")
		}
	}
}

func TestClone_GitFailure(t *testing.T) {
	sr := &scriptedRunner{respond: func(runner.CommandSpec) runner.Result {
		return runner.Result{ExitCode: 128, Stderr: "fatal: repository not found\n"}
	}}
	step := CloneRepository{Host: localHost(sr), URL: "https://example.com/demo.git", ClonePath: t.TempDir()}
	rep := &testReporter{}
	out := step.Run(context.Background(), rep)
	if out.OK || out.Reason != "Failed to clone repository" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if !rep.contains("repository not found") {
		t.Fatalf("stderr should reach the log: %v", rep.lines)
	}
}
