package cmd

import (
	"regexp"
	"strings"
	"testing"
)

func TestFilterLines(t *testing.T) {
	content := strings.Join([]string{
		"2026-01-02 10:00:00.000 | first | a.go:F:L1",
		"2026-01-02 10:00:01.000 | ERROR: boom | b.go:G:L2",
		"",
		"2026-01-02 10:00:02.000 | EVENT: Startup | c.go:H:L3",
	}, "\n") + "\n"

	t.Run("no filter returns all non-empty lines", func(t *testing.T) {
		lines := filterLines(content, nil, 0)
		if len(lines) != 3 {
			t.Fatalf("expected 3 lines, got %d", len(lines))
		}
	})

	t.Run("grep keeps matching lines only", func(t *testing.T) {
		lines := filterLines(content, regexp.MustCompile(`ERROR|EVENT`), 0)
		if len(lines) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(lines))
		}
		if !strings.Contains(lines[0], "ERROR") {
			t.Errorf("first match should be the ERROR line, got %q", lines[0])
		}
	})

	t.Run("tail keeps the newest lines", func(t *testing.T) {
		lines := filterLines(content, nil, 1)
		if len(lines) != 1 {
			t.Fatalf("expected 1 line, got %d", len(lines))
		}
		if !strings.Contains(lines[0], "EVENT") {
			t.Errorf("tail should keep the last line, got %q", lines[0])
		}
	})

	t.Run("empty content yields no lines", func(t *testing.T) {
		if lines := filterLines("", nil, 10); len(lines) != 0 {
			t.Errorf("expected no lines, got %v", lines)
		}
	})
}

func TestColorizeNoColor(t *testing.T) {
	prev := logsNoColor
	logsNoColor = true
	defer func() { logsNoColor = prev }()

	line := "2026-01-02 10:00:01.000 | ERROR: boom | b.go:G:L2"
	if got := colorize(line); got != line {
		t.Errorf("--no-color must leave the line untouched, got %q", got)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"report", "logs", "clear", "env", "config", "selftest"}
	have := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("command %q not registered", name)
		}
	}
}
