package console

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/triagehq/blackbox/internal/errors"
)

// collector is a LineSink that records lines under a mutex.
type collector struct {
	mu    sync.Mutex
	lines []string
}

func (c *collector) sink(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, line)
}

func (c *collector) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

func TestStartDisabledInTestBinary(t *testing.T) {
	// Descriptor interception must refuse to attach under go test: the
	// harness owns stdout and stderr.
	tap := New(func(string) {})
	if err := tap.Start(); !errors.Is(err, errors.ErrTapDisabled) {
		t.Fatalf("Start = %v, want ErrTapDisabled", err)
	}
	if err := tap.Close(); err != nil {
		t.Fatalf("Close after disabled Start: %v", err)
	}
}

func TestStartDisabledByEnv(t *testing.T) {
	t.Setenv(DisableEnv, "1")

	tap := New(func(string) {})
	if err := tap.Start(); !errors.Is(err, errors.ErrTapDisabled) {
		t.Fatalf("Start = %v, want ErrTapDisabled", err)
	}
}

// newTestStream wires a stream to a scratch file standing in for the
// original console descriptor, bypassing the Start-time environment checks
// so the capture path itself can be exercised under go test.
func newTestStream(t *testing.T) (*stream, *os.File, string) {
	t.Helper()

	mirrorPath := filepath.Join(t.TempDir(), "mirror.out")
	mirror, err := os.Create(mirrorPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { mirror.Close() })

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	return &stream{fd: -1, orig: int(mirror.Fd()), r: r, w: w}, w, mirrorPath
}

func TestCaptureSplitsLines(t *testing.T) {
	c := &collector{}
	tap := &fdTap{sink: c.sink}
	s, w, mirrorPath := newTestStream(t)

	tap.wg.Add(1)
	go tap.read(s)

	// Write in fragments that do not align with line boundaries.
	for _, chunk := range []string{"first li", "ne\nsecond line\npart", "ial"} {
		if _, err := w.WriteString(chunk); err != nil {
			t.Fatal(err)
		}
	}
	w.Close()
	tap.wg.Wait()

	got := c.snapshot()
	want := []string{"first line", "second line", "partial"}
	if len(got) != len(want) {
		t.Fatalf("lines = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}

	// The original destination must receive the raw bytes untouched.
	mirrored, err := os.ReadFile(mirrorPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(mirrored) != "first line\nsecond line\npartial" {
		t.Errorf("mirror content = %q", mirrored)
	}
}

func TestCaptureStripsCarriageReturns(t *testing.T) {
	c := &collector{}
	tap := &fdTap{sink: c.sink}
	s, w, _ := newTestStream(t)

	tap.wg.Add(1)
	go tap.read(s)

	if _, err := w.WriteString("windows style\r\n"); err != nil {
		t.Fatal(err)
	}
	w.Close()
	tap.wg.Wait()

	got := c.snapshot()
	if len(got) != 1 || got[0] != "windows style" {
		t.Errorf("lines = %q", got)
	}
}

func TestCaptureInvalidUTF8(t *testing.T) {
	c := &collector{}
	tap := &fdTap{sink: c.sink}
	s, w, _ := newTestStream(t)

	tap.wg.Add(1)
	go tap.read(s)

	if _, err := w.Write([]byte{'b', 'a', 'd', 0xff, 0xfe, '\n'}); err != nil {
		t.Fatal(err)
	}
	w.Close()
	tap.wg.Wait()

	got := c.snapshot()
	if len(got) != 2 {
		t.Fatalf("expected inconsistency notice plus sanitized line, got %q", got)
	}
	if !strings.Contains(got[0], "not valid UTF-8") {
		t.Errorf("first line should report the inconsistency, got %q", got[0])
	}
	if !strings.HasPrefix(got[1], "bad") {
		t.Errorf("sanitized line lost its valid prefix: %q", got[1])
	}
}

func TestCloseWithoutStart(t *testing.T) {
	tap := New(func(string) {})
	if err := tap.Close(); err != nil {
		t.Fatalf("Close on never-started tap: %v", err)
	}
}
