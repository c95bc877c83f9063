package logstore

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/triagehq/blackbox/internal/errors"
)

type opKind int

const (
	opAppend opKind = iota
	opRead
	opClear
)

type operation struct {
	kind opKind
	text string
	read chan readResult
	errc chan error
}

type readResult struct {
	data []byte
	err  error
}

// worker owns the log file. It is the only goroutine that touches the file
// or the authoritative size after Initialize.
type worker struct {
	store *Store
	size  int64
}

func (w *worker) run() {
	defer close(w.store.done)
	for op := range w.store.ops {
		switch op.kind {
		case opAppend:
			w.append(op.text)
		case opRead:
			op.read <- w.readAll()
		case opClear:
			op.errc <- w.clear()
		}
	}
}

// append persists one entry and evaluates the trim condition. All failure
// modes degrade without surfacing: low disk space drops the entry, a missing
// file is recreated within the retry budget and the write retried once.
func (w *worker) append(text string) {
	s := w.store

	free, err := freeSpace(filepath.Dir(s.path))
	if err == nil && free < s.diskFloor {
		// Below the floor the write is dropped outright. Provoking a
		// disk-full failure elsewhere in the host is the worse outcome.
		s.dropped.Add(1)
		return
	}

	data := []byte(text)
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	if !w.write(data, false) {
		return
	}

	w.size += int64(len(data))
	s.size.Store(w.size)
	w.trimIfOverCap()
}

// write appends data to the log file, recreating it once if it disappeared
// at runtime. Returns true when the bytes reached the file.
func (w *worker) write(data []byte, retried bool) bool {
	f, err := os.OpenFile(w.store.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		if os.IsNotExist(err) && !retried {
			if cerr := recreate(w.store.path); cerr != nil {
				fmt.Fprintf(os.Stderr, "Warning: diagnostics log recreate failed: %v\n", cerr)
				return false
			}
			w.size = 0
			w.store.size.Store(0)
			return w.write(data, true)
		}
		fmt.Fprintf(os.Stderr, "Warning: diagnostics log open failed: %v\n", err)
		return false
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: diagnostics log write failed: %v\n", err)
		return false
	}
	return true
}

// trimIfOverCap removes whole lines from the head of the file until the
// remaining tail fits below maxSize - trimBatch. The file is rewritten via
// temp-file-then-rename so a partial file is never observable. Any failure
// aborts the trim for this cycle; growth continues and the trim is retried
// on the next append.
func (w *worker) trimIfOverCap() {
	s := w.store
	if w.size <= s.maxSize {
		return
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}

	target := s.maxSize - s.trimBatch
	cut := 0
	for cut < len(data) && int64(len(data)-cut) > target {
		nl := bytes.IndexByte(data[cut:], '\n')
		if nl < 0 {
			cut = len(data)
			break
		}
		cut += nl + 1
	}
	if cut == 0 {
		return
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".diagnostics-trim-*")
	if err != nil {
		return
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data[cut:]); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return
	}

	w.size = int64(len(data) - cut)
	s.size.Store(w.size)
}

func (w *worker) readAll() readResult {
	data, err := os.ReadFile(w.store.path)
	if err != nil {
		if os.IsNotExist(err) {
			return readResult{}
		}
		return readResult{err: errors.Wrap(err, "reading diagnostics log")}
	}
	return readResult{data: data}
}

func (w *worker) clear() error {
	if err := os.Remove(w.store.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing diagnostics log")
	}
	w.size = 0
	w.store.size.Store(0)
	return nil
}

// openInitial opens or creates the log file within the retry budget and
// returns its size via one seek to end-of-file. Called once from Initialize.
func openInitial(path string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, errors.Wrapf(err, "creating log directory for %s", path)
	}

	var lastErr error
	for attempt := 0; attempt < createRetryLimit; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			lastErr = err
			continue
		}
		size, err := f.Seek(0, io.SeekEnd)
		f.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return size, nil
	}
	return 0, errors.Wrapf(errors.Join(errors.ErrCreateRetries, lastErr), "opening %s", path)
}

// recreate re-creates a log file that disappeared at runtime, bounded by the
// same retry budget as Initialize.
func recreate(path string) error {
	var lastErr error
	for attempt := 0; attempt < createRetryLimit; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			lastErr = err
			continue
		}
		f.Close()
		return nil
	}
	return errors.Join(errors.ErrCreateRetries, lastErr)
}

// freeSpace reports the free bytes available to unprivileged writes on the
// volume holding dir.
func freeSpace(dir string) (int64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return 0, err
	}
	return int64(st.Bavail) * int64(st.Bsize), nil
}
