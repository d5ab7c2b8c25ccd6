package engine

import (
	"fmt"
	"time"

	"pysetup/internal/config"
	"pysetup/internal/hostfs"
	"pysetup/internal/runner"
)

// Target is the machine the setup steps act on.
type Target struct {
	Name   string
	Runner runner.Runner
	FS     hostfs.FS

	close func() error
}

// Local targets this machine.
func Local() *Target {
	return &Target{Name: "local", Runner: runner.Exec{}, FS: hostfs.Local{}}
}

// Connect returns the local target, or dials the configured SSH target.
func Connect(r config.Remote) (*Target, error) {
	if r.Target == "" {
		return Local(), nil
	}
	t, err := runner.ParseSSHTarget(r.Target)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}
	t.KeyPath = r.KeyPath
	t.KnownHostsPath = r.KnownHosts
	t.InsecureIgnoreHostKey = r.InsecureIgnoreHostKey
	t.Timeout = 10 * time.Second

	client, err := runner.DialSSH(t)
	if err != nil {
		return nil, err
	}
	return &Target{
		Name:   r.Target,
		Runner: client,
		FS:     hostfs.Remote{Runner: client},
		close:  client.Close,
	}, nil
}

func (t *Target) Close() error {
	if t == nil || t.close == nil {
		return nil
	}
	return t.close()
}
