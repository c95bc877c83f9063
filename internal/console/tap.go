package console

import (
	"bytes"
	"flag"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/sys/unix"

	"github.com/triagehq/blackbox/internal/errors"
)

// LineSink receives one captured console line at a time, without the
// trailing newline. Implementations must be safe for concurrent calls:
// stdout and stderr are read by separate goroutines.
type LineSink func(line string)

// Tap is the console-tap capability: attach to the process's standard
// streams, forward captured output to the original destination and to a
// line sink, detach on Close. The concrete implementation is
// platform-specific; New returns the one for this platform.
type Tap interface {
	// Start attaches the tap. It returns ErrTapDisabled when the
	// environment rules interception out, and ErrTapActive when the tap
	// is already attached. Expected to be called once per process.
	Start() error
	// Close restores the original descriptors and drains captured output.
	Close() error
}

// DisableEnv switches the tap off when set to any non-empty value.
const DisableEnv = "BLACKBOX_NO_TAP"

// New returns a Tap that feeds captured lines to sink.
func New(sink LineSink) Tap {
	return &fdTap{sink: sink}
}

// fdTap implements Tap with file-descriptor duplication (unix).
type fdTap struct {
	mu      sync.Mutex
	active  bool
	sink    LineSink
	streams []*stream
	wg      sync.WaitGroup
}

// stream is one tapped descriptor: fd is the standard descriptor number,
// orig the duplicated original destination, r/w the capture pipe.
type stream struct {
	fd   int
	orig int
	r, w *os.File
}

func (t *fdTap) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active {
		return errors.ErrTapActive
	}
	if disabled() {
		return errors.ErrTapDisabled
	}

	for _, fd := range []int{int(os.Stdout.Fd()), int(os.Stderr.Fd())} {
		s, err := attach(fd)
		if err != nil {
			t.detachLocked()
			return errors.Wrapf(err, "attaching console tap to fd %d", fd)
		}
		t.streams = append(t.streams, s)
		t.wg.Add(1)
		go t.read(s)
	}
	t.active = true
	return nil
}

// attach duplicates fd so the original destination survives, then points fd
// at a fresh pipe.
func attach(fd int) (*stream, error) {
	orig, err := unix.Dup(fd)
	if err != nil {
		return nil, err
	}
	r, w, err := os.Pipe()
	if err != nil {
		unix.Close(orig)
		return nil, err
	}
	if err := unix.Dup2(int(w.Fd()), fd); err != nil {
		unix.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}
	return &stream{fd: fd, orig: orig, r: r, w: w}, nil
}

// read loops on one capture pipe until Close. Each chunk is re-emitted to
// the original descriptor before line splitting, so console output is never
// lost even if the sink stalls.
func (t *fdTap) read(s *stream) {
	defer t.wg.Done()
	defer s.r.Close()

	var pending []byte
	buf := make([]byte, 4096)
	for {
		n, err := s.r.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			writeAll(s.orig, chunk)
			pending = append(pending, chunk...)
			for {
				nl := bytes.IndexByte(pending, '\n')
				if nl < 0 {
					break
				}
				t.emit(pending[:nl])
				pending = pending[nl+1:]
			}
		}
		if err != nil {
			if len(pending) > 0 {
				t.emit(pending)
			}
			return
		}
	}
}

// emit forwards one captured line to the sink, sanitizing invalid UTF-8.
// Undecodable bytes are an internal inconsistency, not a fatal error.
func (t *fdTap) emit(line []byte) {
	text := string(bytes.TrimRight(line, "\r"))
	if !utf8.ValidString(text) {
		t.sink("console tap: captured output is not valid UTF-8")
		text = strings.ToValidUTF8(text, string(utf8.RuneError))
	}
	if text == "" {
		return
	}
	t.sink(text)
}

// writeAll pushes the whole chunk to fd, tolerating short writes.
func writeAll(fd int, p []byte) {
	for len(p) > 0 {
		n, err := unix.Write(fd, p)
		if err != nil || n <= 0 {
			return
		}
		p = p[n:]
	}
}

func (t *fdTap) Close() error {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return nil
	}
	t.active = false
	t.detachLocked()
	t.mu.Unlock()

	t.wg.Wait()
	return nil
}

// detachLocked restores the original descriptors and closes the pipe write
// ends so the readers see EOF and drain.
func (t *fdTap) detachLocked() {
	for _, s := range t.streams {
		_ = unix.Dup2(s.orig, s.fd)
		unix.Close(s.orig)
		s.w.Close()
	}
	t.streams = nil
}

// disabled reports whether interception must be skipped: inside a test
// binary, or when explicitly opted out via environment.
func disabled() bool {
	if os.Getenv(DisableEnv) != "" {
		return true
	}
	// go test registers test.* flags before user code runs; their presence
	// identifies a test binary.
	return flag.Lookup("test.v") != nil
}
