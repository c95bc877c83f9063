package logstore

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/triagehq/blackbox/internal/errors"
)

func newTestStore(t *testing.T, opts ...Option) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "diagnostics.log")
	store := New(opts...)
	if err := store.Initialize(path); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, path
}

// line returns a fixed-width test line: n bytes on disk including the
// trailing newline the store adds.
func line(i, n int) string {
	prefix := fmt.Sprintf("line-%04d-", i)
	return prefix + strings.Repeat("x", n-1-len(prefix))
}

func TestInitialize(t *testing.T) {
	t.Run("creates the log file and writes a session block", func(t *testing.T) {
		store, path := newTestStore(t, WithAppVersion("v1.2.3"))

		content, err := store.ReadAll()
		if err != nil {
			t.Fatalf("ReadAll failed: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("log file missing: %v", err)
		}
		text := string(content)
		for _, want := range []string{"Session start:", "OS:", "Locale:", "Timezone:", "App version: v1.2.3"} {
			if !strings.Contains(text, want) {
				t.Errorf("session block missing %q in:\n%s", want, text)
			}
		}
		if strings.HasPrefix(text, "\n") {
			t.Error("bare session block should not start with a separator")
		}
	})

	t.Run("fails with AlreadyInitialized on second call", func(t *testing.T) {
		store, path := newTestStore(t)
		err := store.Initialize(path)
		if err == nil {
			t.Fatal("expected error from double Initialize")
		}
		if !strings.Contains(err.Error(), "already initialized") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("prefixes a separator when the file has prior content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "diagnostics.log")
		if err := os.WriteFile(path, []byte("old session line\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		store := New()
		if err := store.Initialize(path); err != nil {
			t.Fatalf("Initialize failed: %v", err)
		}
		defer store.Close()

		content, err := store.ReadAll()
		if err != nil {
			t.Fatalf("ReadAll failed: %v", err)
		}
		text := string(content)
		if !strings.HasPrefix(text, "old session line\n\n"+sessionSeparator) {
			t.Errorf("expected separator between sessions, got:\n%s", text)
		}
	})
}

func TestUseBeforeInitialize(t *testing.T) {
	store := New()

	if err := store.Append("too early"); err == nil {
		t.Error("expected Append before Initialize to fail")
	}
	if _, err := store.ReadAll(); err == nil {
		t.Error("expected ReadAll before Initialize to fail")
	}
	if err := store.Clear(); err == nil {
		t.Error("expected Clear before Initialize to fail")
	}
	if store.Ready() {
		t.Error("expected Ready to be false before Initialize")
	}
}

func TestAppendAndReadAll(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.Append("first entry"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Append("second entry\n"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	content, err := store.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "first entry\nsecond entry\n") {
		t.Errorf("entries missing or reordered:\n%s", text)
	}
	if strings.Contains(text, "second entry\n\n") {
		t.Error("existing trailing newline should not be doubled")
	}
}

func TestAppendOrdering(t *testing.T) {
	store, _ := newTestStore(t)

	const writers = 4
	const perWriter = 50

	var wg sync.WaitGroup
	for g := 0; g < writers; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if err := store.Append(fmt.Sprintf("w%d seq=%04d", g, i)); err != nil {
					t.Errorf("Append failed: %v", err)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	content, err := store.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	// Each writer's entries must appear in issue order, whatever the
	// interleaving between writers.
	for g := 0; g < writers; g++ {
		last := -1
		prefix := fmt.Sprintf("w%d seq=", g)
		count := 0
		for _, l := range strings.Split(string(content), "\n") {
			if !strings.HasPrefix(l, prefix) {
				continue
			}
			var seq int
			if _, err := fmt.Sscanf(l[len(prefix):], "%d", &seq); err != nil {
				t.Fatalf("malformed line %q: %v", l, err)
			}
			if seq <= last {
				t.Fatalf("writer %d reordered: %d after %d", g, seq, last)
			}
			last = seq
			count++
		}
		if count != perWriter {
			t.Errorf("writer %d: expected %d entries, found %d", g, perWriter, count)
		}
	}
}

func TestCurrentSizeMatchesDisk(t *testing.T) {
	store, path := newTestStore(t)

	for i := 0; i < 20; i++ {
		if err := store.Append(line(i, 100)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	// ReadAll round-trips through the worker, quiescing the queue.
	if _, err := store.ReadAll(); err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if got := store.CurrentSize(); got != info.Size() {
		t.Errorf("CurrentSize = %d, on-disk size = %d", got, info.Size())
	}
}

func TestTrim(t *testing.T) {
	const (
		capBytes = 2048
		batch    = 512
		width    = 100
	)

	store, path := newTestStore(t, WithMaxSize(capBytes), WithTrimBatch(batch))

	var appended []string
	for total := 0; total < 2600; total += width {
		l := line(total/width, width)
		appended = append(appended, l+"\n")
		if err := store.Append(l); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	content, err := store.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}

	t.Run("file size stays at or below the cap", func(t *testing.T) {
		if info.Size() > capBytes {
			t.Errorf("file size %d exceeds cap %d", info.Size(), capBytes)
		}
		if store.CurrentSize() != info.Size() {
			t.Errorf("CurrentSize %d != disk %d", store.CurrentSize(), info.Size())
		}
	})

	t.Run("no partial line remains at the head", func(t *testing.T) {
		// Every surviving byte must be a suffix of the appended stream:
		// trimming may only remove whole leading lines.
		full := strings.Join(appended, "")
		if !strings.HasSuffix(full, string(content)) {
			head := string(content)
			if len(head) > 120 {
				head = head[:120]
			}
			t.Errorf("post-trim content is not a suffix of appended data; head: %q", head)
		}
	})

	t.Run("trim keeps the hysteresis band", func(t *testing.T) {
		// Force one more trim and check the immediate post-trim size.
		for total := 0; total < 700; total += width {
			if err := store.Append(line(1000+total/width, width)); err != nil {
				t.Fatalf("Append failed: %v", err)
			}
		}
		if _, err := store.ReadAll(); err != nil {
			t.Fatalf("ReadAll failed: %v", err)
		}
		got := store.CurrentSize()
		if got > capBytes {
			t.Errorf("size %d exceeds cap after repeated trims", got)
		}
		// A trim must not cut deeper than the hysteresis band plus the one
		// line that straddles the target boundary.
		if floor := int64(capBytes - batch - width); got < floor {
			t.Errorf("size %d below trim floor %d: trim cut too deep", got, floor)
		}
	})
}

func TestDiskFloorDropsAppends(t *testing.T) {
	// A floor no volume can satisfy forces every append down the drop path.
	store, path := newTestStore(t, WithDiskFloor(math.MaxInt64))

	if err := store.Append("should be dropped"); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	content, err := store.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(content) != 0 {
		t.Errorf("expected empty file, got %d bytes", len(content))
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("file content changed despite floor: %d bytes", info.Size())
	}
	if store.Dropped() == 0 {
		t.Error("expected dropped counter to advance")
	}
}

func TestRecreateAfterFileLoss(t *testing.T) {
	store, path := newTestStore(t)

	if err := store.Append("before loss"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if _, err := store.ReadAll(); err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("removing log file: %v", err)
	}

	if err := store.Append("after loss"); err != nil {
		t.Fatalf("Append after file loss returned error: %v", err)
	}
	content, err := store.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(content) != "after loss\n" {
		t.Errorf("unexpected content after recreate: %q", content)
	}
	if store.CurrentSize() != int64(len("after loss\n")) {
		t.Errorf("CurrentSize %d after recreate", store.CurrentSize())
	}
}

func TestClear(t *testing.T) {
	store, path := newTestStore(t)

	if err := store.Append("entry"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected log file to be removed")
	}
	// Idempotent: clearing an absent file succeeds.
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear failed: %v", err)
	}
	if store.CurrentSize() != 0 {
		t.Errorf("CurrentSize = %d after Clear", store.CurrentSize())
	}
}

func TestCloseDuringConcurrentAppends(t *testing.T) {
	// A small cap keeps the worker busy trimming, so the queue backs up and
	// appenders block on the send while Close runs. Append must degrade to
	// ErrStoreClosed, never panic.
	store, _ := newTestStore(t, WithMaxSize(8192), WithTrimBatch(2048))

	entry := strings.Repeat("x", 512)
	var wg sync.WaitGroup
	for g := 0; g < 32; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if err := store.Append(entry); err != nil {
					if !errors.Is(err, errors.ErrStoreClosed) {
						t.Errorf("Append after Close: unexpected error %v", err)
					}
					return
				}
			}
		}()
	}

	time.Sleep(30 * time.Millisecond)
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	wg.Wait()
}

func TestClose(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := store.Append("late"); err == nil {
		t.Error("expected Append after Close to fail")
	}
	if _, err := store.ReadAll(); err == nil {
		t.Error("expected ReadAll after Close to fail")
	}
	// Closing twice is a no-op.
	if err := store.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}
