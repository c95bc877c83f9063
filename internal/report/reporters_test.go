package report

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/triagehq/blackbox/internal/logstore"
)

func TestLogReporter(t *testing.T) {
	store := logstore.New()
	if err := store.Initialize(filepath.Join(t.TempDir(), "diagnostics.log")); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer store.Close()

	if err := store.Append("captured line"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	ch, err := NewLogReporter(store).ProduceChapter()
	if err != nil {
		t.Fatalf("ProduceChapter failed: %v", err)
	}
	if ch.Title != "Logs" {
		t.Errorf("Title = %q", ch.Title)
	}
	// The chapter read is ordered after the append through the store queue.
	if !strings.Contains(ch.Body, "captured line") {
		t.Errorf("chapter missing appended line:\n%s", ch.Body)
	}
}

func TestEnvReporter(t *testing.T) {
	ch, err := NewEnvReporter().ProduceChapter()
	if err != nil {
		t.Fatalf("ProduceChapter failed: %v", err)
	}
	if ch.Title != "Environment" {
		t.Errorf("Title = %q", ch.Title)
	}
	for _, want := range []string{"OS: ", "Go runtime: go", "PID: ", "Timezone: "} {
		if !strings.Contains(ch.Body, want) {
			t.Errorf("environment chapter missing %q:\n%s", want, ch.Body)
		}
	}
}

func TestPrefsReporter(t *testing.T) {
	t.Run("flattens nested settings into sorted lines", func(t *testing.T) {
		prefs := viper.New()
		prefs.Set("theme", "dark")
		prefs.Set("log.max_size_kb", 2048)

		ch, err := NewPrefsReporter(prefs).ProduceChapter()
		if err != nil {
			t.Fatalf("ProduceChapter failed: %v", err)
		}
		if ch.Title != "Preferences" {
			t.Errorf("Title = %q", ch.Title)
		}
		lines := strings.Split(ch.Body, "\n")
		if len(lines) != 2 {
			t.Fatalf("expected 2 lines, got %q", lines)
		}
		if lines[0] != "log.max_size_kb: 2048" || lines[1] != "theme: dark" {
			t.Errorf("unexpected lines: %q", lines)
		}
	})

	t.Run("reports empty settings", func(t *testing.T) {
		ch, err := NewPrefsReporter(viper.New()).ProduceChapter()
		if err != nil {
			t.Fatalf("ProduceChapter failed: %v", err)
		}
		if ch.Body != "(no preferences set)" {
			t.Errorf("Body = %q", ch.Body)
		}
	})
}
