package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SSHTarget describes how to reach a remote workstation.
type SSHTarget struct {
	User                  string
	Addr                  string
	KeyPath               string
	KnownHostsPath        string
	InsecureIgnoreHostKey bool
	Timeout               time.Duration
}

// ParseSSHTarget splits "user@host[:port]" and fills in port 22.
func ParseSSHTarget(target string) (SSHTarget, error) {
	parts := strings.SplitN(strings.TrimSpace(target), "@", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return SSHTarget{}, fmt.Errorf("invalid target %q, expected user@host", target)
	}
	addr, err := normalizeSSHAddr(strings.TrimSpace(parts[1]))
	if err != nil {
		return SSHTarget{}, fmt.Errorf("invalid host %q: %w", parts[1], err)
	}
	return SSHTarget{User: strings.TrimSpace(parts[0]), Addr: addr}, nil
}

func normalizeSSHAddr(host string) (string, error) {
	if host == "" {
		return "", fmt.Errorf("host is empty")
	}
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host, nil
	}
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		return net.JoinHostPort(strings.Trim(host, "[]"), "22"), nil
	}
	return net.JoinHostPort(host, "22"), nil
}

// SSH runs commands on a remote host through one shared client connection.
// Each command gets its own session.
type SSH struct {
	client *ssh.Client
}

func DialSSH(t SSHTarget) (*SSH, error) {
	cfg, err := t.clientConfig()
	if err != nil {
		return nil, err
	}
	client, err := ssh.Dial("tcp", t.Addr, cfg)
	if err != nil {
		return nil, fmt.Errorf("ssh dial %s@%s: %w", t.User, t.Addr, err)
	}
	return &SSH{client: client}, nil
}

func (s *SSH) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *SSH) Run(ctx context.Context, spec CommandSpec) Result {
	session, err := s.client.NewSession()
	if err != nil {
		return launchFailure(fmt.Sprintf("ssh session: %v", err))
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	log.Debug().Str("cmd", spec.String()).Str("dir", spec.Dir).Msg("runner ssh exec")
	err = runSession(ctx, session, func() error { return session.Run(remoteLine(spec)) })
	return finishSSH(err, stdout.String(), stderr.String())
}

func (s *SSH) Stream(ctx context.Context, spec CommandSpec, onLine LineHandler) Result {
	session, err := s.client.NewSession()
	if err != nil {
		return launchFailure(fmt.Sprintf("ssh session: %v", err))
	}
	defer session.Close()

	stdoutPipe, err := session.StdoutPipe()
	if err != nil {
		return launchFailure(fmt.Sprintf("stdout pipe: %v", err))
	}
	stderrPipe, err := session.StderrPipe()
	if err != nil {
		return launchFailure(fmt.Sprintf("stderr pipe: %v", err))
	}

	log.Debug().Str("cmd", spec.String()).Str("dir", spec.Dir).Msg("runner ssh stream")
	if err := session.Start(remoteLine(spec)); err != nil {
		return launchFailure(fmt.Sprintf("ssh start: %v", err))
	}
	var stdout, stderr string
	err = runSession(ctx, session, func() error {
		stdout, stderr = pumpBoth(stdoutPipe, stderrPipe, onLine)
		return session.Wait()
	})
	return finishSSH(err, stdout, stderr)
}

// RunWithInput runs spec with input connected to the remote stdin.
func (s *SSH) RunWithInput(ctx context.Context, spec CommandSpec, input io.Reader) Result {
	session, err := s.client.NewSession()
	if err != nil {
		return launchFailure(fmt.Sprintf("ssh session: %v", err))
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdin = input
	session.Stdout = &stdout
	session.Stderr = &stderr
	err = runSession(ctx, session, func() error { return session.Run(remoteLine(spec)) })
	return finishSSH(err, stdout.String(), stderr.String())
}

// runSession closes the session when ctx is done so a blocked Run/Wait returns.
func runSession(ctx context.Context, session *ssh.Session, fn func() error) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = session.Signal(ssh.SIGTERM)
			_ = session.Close()
		case <-done:
		}
	}()
	err := fn()
	if ctx.Err() != nil && err != nil {
		return fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	return err
}

func finishSSH(err error, stdout, stderr string) Result {
	if err == nil {
		return Result{ExitCode: 0, Stdout: stdout, Stderr: stderr}
	}
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		return remoteExit(exitErr.ExitStatus(), stdout, stderr)
	}
	return Result{ExitCode: LaunchFailed, Stdout: stdout, Stderr: appendLine(stderr, err.Error())}
}

// Exit statuses the remote shell uses when it cannot start the program.
const (
	shellNotExecutable = 126
	shellNotFound      = 127
)

// remoteExit maps the shell's own launch failures to LaunchFailed so remote
// and local runs report a missing program the same way.
func remoteExit(code int, stdout, stderr string) Result {
	switch code {
	case shellNotFound:
		return Result{ExitCode: LaunchFailed, Stdout: stdout, Stderr: appendLine(stderr, "executable not found on remote host")}
	case shellNotExecutable:
		return Result{ExitCode: LaunchFailed, Stdout: stdout, Stderr: appendLine(stderr, "remote file is not executable")}
	}
	return Result{ExitCode: code, Stdout: stdout, Stderr: stderr}
}

func remoteLine(spec CommandSpec) string {
	if spec.Dir == "" {
		return spec.String()
	}
	return "cd " + ShellQuote(spec.Dir) + " && " + spec.String()
}

func (t SSHTarget) clientConfig() (*ssh.ClientConfig, error) {
	if t.User == "" {
		return nil, fmt.Errorf("ssh user is required")
	}
	signer, err := t.signer()
	if err != nil {
		return nil, err
	}

	var hostKeyCallback ssh.HostKeyCallback
	if t.InsecureIgnoreHostKey {
		hostKeyCallback = ssh.InsecureIgnoreHostKey()
	} else {
		callback, err := t.knownHostsCallback()
		if err != nil {
			return nil, err
		}
		hostKeyCallback = callback
	}

	timeout := t.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ssh.ClientConfig{
		User:            t.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}, nil
}

func (t SSHTarget) signer() (ssh.Signer, error) {
	path := strings.TrimSpace(t.KeyPath)
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("ssh key path not set and home dir unavailable")
		}
		path = filepath.Join(home, ".ssh", "id_ed25519")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ssh key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(b)
	if err != nil {
		return nil, fmt.Errorf("parse ssh key %s: %w", path, err)
	}
	return signer, nil
}

func (t SSHTarget) knownHostsCallback() (ssh.HostKeyCallback, error) {
	path := strings.TrimSpace(t.KnownHostsPath)
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("known hosts path not set and home dir unavailable")
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}
	return knownhosts.New(path)
}
