package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"pysetup/internal/logsink"
)

func TestEnvTruthyValues(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "one", value: "1", want: true},
		{name: "true", value: "true", want: true},
		{name: "yes", value: "YES", want: true},
		{name: "on", value: "on", want: true},
		{name: "zero", value: "0", want: false},
		{name: "false", value: "false", want: false},
		{name: "empty", value: "", want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("PYSETUP_TEST_TRUTHY", tc.value)
			if got := envTruthy("PYSETUP_TEST_TRUTHY"); got != tc.want {
				t.Fatalf("envTruthy() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNoInteractionInCI(t *testing.T) {
	t.Setenv(envCI, "true")
	ConfigureInteraction(false)
	if IsInteractive() {
		t.Fatalf("CI must not be interactive")
	}
	err := RequireInteraction("use --yes to skip")
	var noInt *ErrNoInteraction
	if !errors.As(err, &noInt) || noInt.Hint != "use --yes to skip" {
		t.Fatalf("RequireInteraction: %v", err)
	}
	if _, err := Confirm("Install?", "use --yes"); !errors.As(err, &noInt) {
		t.Fatalf("Confirm without a terminal: %v", err)
	}
}

func TestLogLineKeepsText(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	testCases := []string{
		"[10:00:00] Python found: python3",
		"[10:00:01] ERROR: Failed to clone repository",
		"[10:00:02]   WARNING: pip is old",
		"no stamp",
	}
	for _, line := range testCases {
		if got := LogLine(line); strings.TrimSpace(got) != strings.TrimSpace(line) {
			t.Fatalf("LogLine(%q) = %q", line, got)
		}
	}
}

func TestFollowPrintsNewEntriesOnly(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	sink := logsink.New()
	sink.Append("before")

	var buf bytes.Buffer
	stop := Follow(sink, &buf)
	sink.Append("one")
	sink.Append("two")
	time.Sleep(10 * time.Millisecond)
	stop()
	stop()

	out := buf.String()
	if strings.Contains(out, "before") {
		t.Fatalf("entries before Follow must be skipped:\n%s", out)
	}
	if !strings.Contains(out, "] one\n") || !strings.Contains(out, "] two\n") {
		t.Fatalf("missing entries:\n%s", out)
	}
	if strings.Count(out, "one") != 1 {
		t.Fatalf("entry printed twice:\n%s", out)
	}
}
