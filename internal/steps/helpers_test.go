package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"pysetup/internal/hostfs"
	"pysetup/internal/runner"
)

type testReporter struct {
	mu       sync.Mutex
	lines    []string
	progress []float64
	asked    []string
	answer   bool
}

func (r *testReporter) Log(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, msg)
}

func (r *testReporter) Logf(format string, args ...any) {
	r.Log(fmt.Sprintf(format, args...))
}

func (r *testReporter) Progress(f float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, f)
}

func (r *testReporter) Confirm(_ context.Context, question string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.asked = append(r.asked, question)
	return r.answer
}

func (r *testReporter) contains(sub string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lines {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}

func (r *testReporter) count(sub string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, l := range r.lines {
		if strings.Contains(l, sub) {
			n++
		}
	}
	return n
}

// scriptedRunner answers commands with respond and records every call.
type scriptedRunner struct {
	mu      sync.Mutex
	calls   []runner.CommandSpec
	respond func(spec runner.CommandSpec) runner.Result
}

func (s *scriptedRunner) Run(_ context.Context, spec runner.CommandSpec) runner.Result {
	s.mu.Lock()
	s.calls = append(s.calls, spec)
	s.mu.Unlock()
	if s.respond == nil {
		return runner.Result{}
	}
	return s.respond(spec)
}

func (s *scriptedRunner) Stream(ctx context.Context, spec runner.CommandSpec, onLine runner.LineHandler) runner.Result {
	res := s.Run(ctx, spec)
	if onLine != nil {
		for _, l := range splitLines(res.Stdout) {
			onLine(runner.Stdout, l)
		}
		for _, l := range splitLines(res.Stderr) {
			onLine(runner.Stderr, l)
		}
	}
	return res
}

func (s *scriptedRunner) commandLines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.calls))
	for _, c := range s.calls {
		out = append(out, c.String())
	}
	return out
}

func (s *scriptedRunner) ran(sub string) bool {
	for _, l := range s.commandLines() {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}

// recordingRunner wraps a real runner and records the commands it saw.
type recordingRunner struct {
	scriptedRunner
	inner runner.Runner
}

func (r *recordingRunner) Run(ctx context.Context, spec runner.CommandSpec) runner.Result {
	r.mu.Lock()
	r.calls = append(r.calls, spec)
	r.mu.Unlock()
	return r.inner.Run(ctx, spec)
}

func (r *recordingRunner) Stream(ctx context.Context, spec runner.CommandSpec, onLine runner.LineHandler) runner.Result {
	r.mu.Lock()
	r.calls = append(r.calls, spec)
	r.mu.Unlock()
	return r.inner.Stream(ctx, spec, onLine)
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func writeStub(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return p
}

func localHost(r runner.Runner) Host {
	return Host{Runner: r, FS: hostfs.Local{}}
}
