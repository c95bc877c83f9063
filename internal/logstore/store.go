package logstore

import (
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/triagehq/blackbox/internal/errors"
)

// Default sizing for the rolling log. The cap keeps a report attachment
// small enough to share; the trim batch is the hysteresis band that keeps
// trims amortized instead of firing on every append once the cap is hit.
const (
	DefaultMaxSize   = 2 * 1024 * 1024 // 2 MiB
	DefaultTrimBatch = 100 * 1024      // 100 KiB
	DefaultDiskFloor = 500 * 1024 * 1024
)

// createRetryLimit bounds attempts to create the log file, both at
// Initialize and when recreating a file that disappeared at runtime.
const createRetryLimit = 3

// queueDepth is the append queue buffer. Callers only block when the worker
// falls this many writes behind.
const queueDepth = 1024

// Store is a durable, size-capped append log backed by a single file.
// It is safe for concurrent use; all mutation is serialized through one
// worker goroutine. Create a Store with New, wire it up with Initialize,
// and tear it down with Close.
type Store struct {
	maxSize    int64
	trimBatch  int64
	diskFloor  int64
	appVersion string

	// mu guards lifecycle transitions. Enqueuing operations holds the read
	// side so Close cannot close the ops channel while a send is in flight.
	mu          sync.RWMutex
	initialized bool
	closed      bool
	path        string

	ops  chan operation
	done chan struct{}

	// size mirrors the worker-owned running size for CurrentSize callers.
	size atomic.Int64

	// dropped counts appends discarded by the disk-space floor.
	dropped atomic.Int64
}

// Option configures a Store created by New.
type Option func(*Store)

// WithMaxSize sets the hard cap on the log file size in bytes.
func WithMaxSize(n int64) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxSize = n
		}
	}
}

// WithTrimBatch sets how far below the cap a trim cuts, in bytes. Larger
// values trim less often but discard more history per trim.
func WithTrimBatch(n int64) Option {
	return func(s *Store) {
		if n > 0 {
			s.trimBatch = n
		}
	}
}

// WithDiskFloor sets the free-space floor in bytes. Appends are silently
// dropped while the volume holding the log has less free space than this.
func WithDiskFloor(n int64) Option {
	return func(s *Store) {
		if n >= 0 {
			s.diskFloor = n
		}
	}
}

// WithAppVersion sets the application version recorded in the session-start
// block.
func WithAppVersion(v string) Option {
	return func(s *Store) { s.appVersion = v }
}

// New creates an unstarted Store. Initialize must be called before any other
// operation.
func New(opts ...Option) *Store {
	s := &Store{
		maxSize:   DefaultMaxSize,
		trimBatch: DefaultTrimBatch,
		diskFloor: DefaultDiskFloor,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.trimBatch >= s.maxSize {
		s.trimBatch = s.maxSize / 2
	}
	return s
}

// Initialize opens or creates the log file at path, determines the current
// size with a single seek to end-of-file, starts the worker, and queues the
// session-start block. It fails with ErrAlreadyInitialized when called twice
// and with ErrCreateRetries when the file cannot be created within the
// bounded retry budget.
func (s *Store) Initialize(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.NewUsageError("Initialize on closed store").WithCause(errors.ErrStoreClosed)
	}
	if s.initialized {
		return errors.NewUsageError("Initialize called twice").WithCause(errors.ErrAlreadyInitialized)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "resolving log path %s", path)
	}

	size, err := openInitial(abs)
	if err != nil {
		return err
	}

	s.path = abs
	s.size.Store(size)
	s.ops = make(chan operation, queueDepth)
	s.done = make(chan struct{})
	s.initialized = true

	w := &worker{store: s, size: size}
	go w.run()

	// The session marker goes through the queue like any other append, so it
	// lands before anything logged after Initialize returns.
	s.ops <- operation{kind: opAppend, text: sessionBlock(s.appVersion, size > 0)}
	return nil
}

// Ready reports whether Initialize has completed and the store accepts
// operations.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized && !s.closed
}

// Path returns the absolute log file location, or "" before Initialize.
func (s *Store) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// CurrentSize returns the running byte size of the durable content. It lags
// the file by at most the in-flight portion of the queue.
func (s *Store) CurrentSize() int64 {
	return s.size.Load()
}

// Dropped returns the number of appends discarded by the disk-space floor.
func (s *Store) Dropped() int64 {
	return s.dropped.Load()
}

// Append enqueues one entry for the worker to persist. A trailing newline is
// added when text does not already end with one. The call returns once the
// entry is queued; disk I/O happens on the worker. The only errors returned
// are lifecycle misuse; I/O failures are absorbed by the worker's recovery
// policy and never surface here.
func (s *Store) Append(text string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return errors.NewUsageError("Append on closed store").WithCause(errors.ErrStoreClosed)
	}
	if !s.initialized {
		return errors.NewUsageError("Append before Initialize").WithCause(errors.ErrNotReady)
	}

	// The send happens under the read lock: Close cannot close the channel
	// until every in-flight enqueue has completed.
	s.ops <- operation{kind: opAppend, text: text}
	return nil
}

// ReadAll returns the full log file content. It executes inside the worker's
// serialized context, so it is ordered after every append enqueued before it.
// A missing file reads as empty.
func (s *Store) ReadAll() ([]byte, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, errors.NewUsageError("ReadAll on closed store").WithCause(errors.ErrStoreClosed)
	}
	if !s.initialized {
		s.mu.RUnlock()
		return nil, errors.NewUsageError("ReadAll before Initialize").WithCause(errors.ErrNotReady)
	}

	reply := make(chan readResult, 1)
	s.ops <- operation{kind: opRead, read: reply}
	s.mu.RUnlock()

	// The reply arrives even if Close runs now: the worker drains every
	// queued operation before exiting.
	res := <-reply
	return res.data, res.err
}

// Clear removes the log file if present and resets the tracked size. It is
// idempotent: clearing an already-absent file succeeds.
func (s *Store) Clear() error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return errors.NewUsageError("Clear on closed store").WithCause(errors.ErrStoreClosed)
	}
	if !s.initialized {
		s.mu.RUnlock()
		return errors.NewUsageError("Clear before Initialize").WithCause(errors.ErrNotReady)
	}

	reply := make(chan error, 1)
	s.ops <- operation{kind: opClear, errc: reply}
	s.mu.RUnlock()

	return <-reply
}

// Close drains the queue, stops the worker, and marks the store unusable.
// Closing an uninitialized or already-closed store is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed || !s.initialized {
		s.closed = true
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	// Taking the write lock excludes every sender, so closing the channel
	// here can never race an in-flight enqueue. Senders blocked on a full
	// queue hold the read lock and drain first; the worker never locks, so
	// it keeps consuming while Close waits.
	close(s.ops)
	done := s.done
	s.mu.Unlock()

	<-done
	return nil
}
