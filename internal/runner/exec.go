package runner

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

const maxLineBytes = 1 << 20

// Exec runs commands on the local host. Env entries are appended to the
// parent environment.
type Exec struct {
	Env []string
}

func (e Exec) Run(ctx context.Context, spec CommandSpec) Result {
	cmd, err := e.command(ctx, spec)
	if err != nil {
		return launchFailure(err.Error())
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug().Str("cmd", spec.String()).Str("dir", spec.Dir).Msg("runner exec")
	err = cmd.Run()
	return finish(ctx, spec, err, stdout.String(), stderr.String())
}

func (e Exec) Stream(ctx context.Context, spec CommandSpec, onLine LineHandler) Result {
	cmd, err := e.command(ctx, spec)
	if err != nil {
		return launchFailure(err.Error())
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return launchFailure(fmt.Sprintf("stdout pipe: %v", err))
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return launchFailure(fmt.Sprintf("stderr pipe: %v", err))
	}

	log.Debug().Str("cmd", spec.String()).Str("dir", spec.Dir).Msg("runner stream")
	if err := cmd.Start(); err != nil {
		return finish(ctx, spec, err, "", "")
	}

	stdout, stderr := pumpBoth(stdoutPipe, stderrPipe, onLine)
	err = cmd.Wait()
	return finish(ctx, spec, err, stdout, stderr)
}

func (e Exec) RunWithInput(ctx context.Context, spec CommandSpec, input io.Reader) Result {
	cmd, err := e.command(ctx, spec)
	if err != nil {
		return launchFailure(err.Error())
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdin = input
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err = cmd.Run()
	return finish(ctx, spec, err, stdout.String(), stderr.String())
}

func (e Exec) command(ctx context.Context, spec CommandSpec) (*exec.Cmd, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return nil, errors.New("empty command name")
	}
	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	cmd.Dir = spec.Dir
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	return cmd, nil
}

func finish(ctx context.Context, spec CommandSpec, err error, stdout, stderr string) Result {
	if err == nil {
		return Result{ExitCode: 0, Stdout: stdout, Stderr: stderr}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// ExitCode is -1 when the process was killed by a signal.
		code := exitErr.ExitCode()
		if ctx.Err() != nil {
			stderr = appendLine(stderr, fmt.Sprintf("%s: %v", spec.Name, ctx.Err()))
		}
		return Result{ExitCode: code, Stdout: stdout, Stderr: stderr}
	}

	log.Debug().Err(err).Str("cmd", spec.Name).Msg("runner launch failed")
	return Result{ExitCode: LaunchFailed, Stdout: stdout, Stderr: appendLine(stderr, err.Error())}
}

func appendLine(text, line string) string {
	if text == "" {
		return line
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text + line
}

// pumpBoth drains both readers concurrently so that a child filling one pipe
// never blocks on the other. It returns once both readers hit EOF.
func pumpBoth(stdout, stderr io.Reader, onLine LineHandler) (string, string) {
	var (
		wg      sync.WaitGroup
		outText strings.Builder
		errText strings.Builder
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		pumpLines(stdout, Stdout, onLine, &outText)
	}()
	go func() {
		defer wg.Done()
		pumpLines(stderr, Stderr, onLine, &errText)
	}()
	wg.Wait()
	return outText.String(), errText.String()
}

func pumpLines(r io.Reader, stream Stream, onLine LineHandler, into *strings.Builder) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		into.WriteString(line)
		into.WriteByte('\n')
		if onLine != nil {
			onLine(stream, line)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Debug().Err(err).Stringer("stream", stream).Msg("runner line scan aborted, draining")
		_, _ = io.Copy(io.Discard, r)
	}
}
