package report

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/sys/unix"

	"github.com/triagehq/blackbox/internal/logstore"
)

// LogReporter contributes the rolling log's full content as a chapter.
type LogReporter struct {
	store *logstore.Store
}

// NewLogReporter creates a reporter over an initialized store.
func NewLogReporter(store *logstore.Store) *LogReporter {
	return &LogReporter{store: store}
}

// ProduceChapter reads the whole log synchronously. The read goes through
// the store's serialized queue, so every previously logged line is present.
func (r *LogReporter) ProduceChapter() (Chapter, error) {
	content, err := r.store.ReadAll()
	if err != nil {
		return Chapter{}, err
	}
	body := string(content)
	if body == "" {
		body = "(log is empty)"
	}
	return Chapter{Title: "Logs", Body: body}, nil
}

// FileLogReporter contributes a log file's content as a chapter. It serves
// consumers outside the owning process (such as the CLI) that inspect an
// existing log; hosts with a live store use LogReporter instead.
type FileLogReporter struct {
	path string
}

// NewFileLogReporter creates a reporter over the log file at path.
func NewFileLogReporter(path string) *FileLogReporter {
	return &FileLogReporter{path: path}
}

// ProduceChapter reads the file. A missing file renders as an empty log.
func (r *FileLogReporter) ProduceChapter() (Chapter, error) {
	content, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Chapter{Title: "Logs", Body: "(log is empty)"}, nil
		}
		return Chapter{}, err
	}
	body := string(content)
	if body == "" {
		body = "(log is empty)"
	}
	return Chapter{Title: "Logs", Body: body}, nil
}

// EnvReporter contributes host and process environment metadata.
type EnvReporter struct{}

// NewEnvReporter creates the environment metadata reporter.
func NewEnvReporter() *EnvReporter {
	return &EnvReporter{}
}

// ProduceChapter collects environment facts. Individual lookups that fail
// are skipped rather than failing the chapter.
func (r *EnvReporter) ProduceChapter() (Chapter, error) {
	now := time.Now()
	zone, offset := now.Zone()

	var b strings.Builder
	fmt.Fprintf(&b, "OS: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if rel := kernelRelease(); rel != "" {
		fmt.Fprintf(&b, "Kernel: %s\n", rel)
	}
	fmt.Fprintf(&b, "Go runtime: %s\n", runtime.Version())
	if host, err := os.Hostname(); err == nil {
		fmt.Fprintf(&b, "Hostname: %s\n", host)
	}
	if exe, err := os.Executable(); err == nil {
		fmt.Fprintf(&b, "Executable: %s\n", exe)
	}
	fmt.Fprintf(&b, "PID: %d\n", os.Getpid())
	fmt.Fprintf(&b, "Locale: %s\n", localeFromEnv())
	fmt.Fprintf(&b, "Timezone: %s (UTC%+.1f)\n", zone, float64(offset)/3600)
	fmt.Fprintf(&b, "Time: %s\n", now.Format(time.RFC3339))

	return Chapter{Title: "Environment", Body: b.String()}, nil
}

// PrefsReporter contributes a snapshot of the user-preference state held by
// a viper instance.
type PrefsReporter struct {
	prefs *viper.Viper
}

// NewPrefsReporter creates a reporter over the given settings source. Pass
// viper.GetViper() for the process-wide settings.
func NewPrefsReporter(prefs *viper.Viper) *PrefsReporter {
	return &PrefsReporter{prefs: prefs}
}

// ProduceChapter flattens all settings into sorted "key: value" lines.
func (r *PrefsReporter) ProduceChapter() (Chapter, error) {
	settings := r.prefs.AllSettings()
	lines := flattenSettings("", settings)
	sort.Strings(lines)

	body := strings.Join(lines, "\n")
	if body == "" {
		body = "(no preferences set)"
	}
	return Chapter{Title: "Preferences", Body: body}, nil
}

// flattenSettings turns viper's nested maps into dotted-key lines.
func flattenSettings(prefix string, m map[string]any) []string {
	var lines []string
	for key, value := range m {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			lines = append(lines, flattenSettings(full, nested)...)
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %v", full, value))
	}
	return lines
}

func localeFromEnv() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "unknown"
}

func kernelRelease() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return ""
	}
	return unix.ByteSliceToString(u.Release[:])
}
