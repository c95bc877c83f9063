package logstore

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// sessionSeparator visually divides one run's entries from the previous
// run's when the log file already has content.
const sessionSeparator = "----------------------------------------"

// sessionBlock builds the delimited block recorded at Initialize: date, OS
// version, locale, timezone, and app version. When the file already holds
// content from an earlier run, the block is prefixed with a separator line.
func sessionBlock(appVersion string, hasPriorContent bool) string {
	now := time.Now()
	zone, offset := now.Zone()

	var b strings.Builder
	if hasPriorContent {
		b.WriteString("\n")
		b.WriteString(sessionSeparator)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Session start: %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(&b, "OS: %s/%s %s\n", runtime.GOOS, runtime.GOARCH, kernelVersion())
	fmt.Fprintf(&b, "Locale: %s\n", locale())
	fmt.Fprintf(&b, "Timezone: %s (UTC%+.1f)\n", zone, float64(offset)/3600)
	if appVersion != "" {
		fmt.Fprintf(&b, "App version: %s\n", appVersion)
	}
	b.WriteString(sessionSeparator)
	return b.String()
}

// locale derives the user locale from the conventional environment chain.
func locale() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "unknown"
}

// kernelVersion reports the running kernel release, or "" when uname is
// unavailable.
func kernelVersion() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return ""
	}
	return unix.ByteSliceToString(u.Release[:])
}
