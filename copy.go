package vaultfs

import (
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// Bulk one-shot ingestion from an external byte source into a path inside
// the store. Tasks run concurrently on their own goroutines; the registry
// only guards the destination-path keying.

// Executor runs a completion callback on a caller-chosen execution context.
type Executor func(func())

// defaultExecutor delivers completions on a fresh goroutine.
func defaultExecutor(fn func()) {
	go fn()
}

// CopyResult is delivered to the completion callback exactly once when a
// copy task reaches a terminal state.
type CopyResult struct {
	// TaskID identifies the task that produced this result.
	TaskID uuid.UUID

	// Path is the destination path inside the store.
	Path string

	// Written is the total count of bytes written before the terminal
	// transition.
	Written int64

	// Checksum is the BLAKE3-256 digest of the bytes written.
	Checksum []byte

	// Err is nil when the source was fully ingested, otherwise the first
	// write or source failure.
	Err error
}

// CopyCompletion receives a task's terminal result on the task's Executor.
type CopyCompletion func(CopyResult)

// Task states: Created -> Running -> {Completed, Failed}, both terminal.
const (
	taskCreated = iota
	taskRunning
	taskCompleted
	taskFailed
)

// CopyTask is one in-flight bulk copy. It owns the running offset into the
// destination and the content digest; once started it runs to a terminal
// state — there is no cancellation primitive. Closing the store fails the
// task's next write instead.
type CopyTask struct {
	id         uuid.UUID
	store      *Store
	source     io.Reader
	dest       string
	chunkSize  int
	completion CopyCompletion
	executor   Executor

	state  int
	offset int64
	hash   *blake3.Hasher
}

// ID returns the task's identifier, echoed in its CopyResult.
func (t *CopyTask) ID() uuid.UUID {
	return t.id
}

// Destination returns the task's destination path.
func (t *CopyTask) Destination() string {
	return t.dest
}

// copyRegistry maps destination paths to their active tasks. The mutex
// guards only registration and deregistration, never the read/write loop
// and never the completion callback: a completion may itself start another
// copy, and holding the lock across it would deadlock.
type copyRegistry struct {
	mu    sync.Mutex
	tasks map[string]*CopyTask
}

func newCopyRegistry() *copyRegistry {
	return &copyRegistry{tasks: make(map[string]*CopyTask)}
}

// register claims dest for task. A destination with an active task is
// rejected: overlapping writers interleave unpredictably, so a second copy
// must wait for the first task's completion.
func (r *copyRegistry) register(dest string, task *CopyTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.tasks[dest]; busy {
		return ErrCopyInProgress
	}
	r.tasks[dest] = task
	return nil
}

// remove frees dest for a future copy.
func (r *copyRegistry) remove(dest string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, dest)
}

// active returns the task currently registered for dest, if any.
func (r *copyRegistry) active(dest string) *CopyTask {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tasks[dest]
}

// ActiveCopy returns the in-flight copy task for dest, or nil.
func (s *Store) ActiveCopy(dest string) *CopyTask {
	dest, err := NormalizePath(dest)
	if err != nil {
		return nil
	}
	return s.copies.active(dest)
}

// StartCopy begins ingesting source into dest and returns immediately. The
// task reads source in fixed-size chunks and writes each at a strictly
// increasing offset starting at zero; it stops on the first write failure
// or on source exhaustion. completion, if non-nil, is invoked exactly once
// with the terminal result, on executor (defaulting to a fresh goroutine),
// after the registry entry for dest has been released.
//
// A second StartCopy to a destination with an active task fails with
// ErrCopyInProgress.
func (s *Store) StartCopy(source io.Reader, dest string, completion CopyCompletion, executor Executor) error {
	dest, err := NormalizePath(dest)
	if err != nil {
		return err
	}
	if source == nil {
		return ErrNilSource
	}
	if _, err := s.acquire(); err != nil {
		return err
	}
	if executor == nil {
		executor = defaultExecutor
	}

	task := &CopyTask{
		id:         uuid.New(),
		store:      s,
		source:     source,
		dest:       dest,
		chunkSize:  s.vault.copyChunkSize,
		completion: completion,
		executor:   executor,
		state:      taskCreated,
		hash:       blake3.New(),
	}

	if err := s.copies.register(dest, task); err != nil {
		return err
	}

	task.state = taskRunning
	go task.run()
	return nil
}

// run is the task's ingestion loop. It executes outside every shared lock;
// the engine call inside Store.Write blocks this goroutine until the engine
// returns.
func (t *CopyTask) run() {
	buf := make([]byte, t.chunkSize)
	var failure error

	for {
		n, readErr := t.source.Read(buf)
		if n > 0 {
			if err := t.writeChunk(buf[:n]); err != nil {
				failure = err
				break
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			failure = readErr
			break
		}
	}

	if failure != nil {
		t.state = taskFailed
	} else {
		t.state = taskCompleted
	}
	t.finish(failure)
}

// writeChunk writes one chunk at the running offset, looping on short
// writes so the offset stays strictly increasing and gapless.
func (t *CopyTask) writeChunk(chunk []byte) error {
	for len(chunk) > 0 {
		n, err := t.store.Write(t.dest, chunk, t.offset)
		if err != nil {
			return err
		}
		if n == 0 {
			return newEngineError("write", t.dest, StatusIO)
		}
		t.hash.Write(chunk[:n])
		t.offset += int64(n)
		chunk = chunk[n:]
	}
	return nil
}

// finish releases the registry entry and delivers the completion on the
// task's executor. The registry lock is never held while the callback
// runs.
func (t *CopyTask) finish(failure error) {
	t.store.copies.remove(t.dest)

	result := CopyResult{
		TaskID:   t.id,
		Path:     t.dest,
		Written:  t.offset,
		Checksum: t.hash.Sum(nil),
		Err:      failure,
	}

	if failure != nil {
		t.store.logger.Warn("copy task failed",
			"task", t.id, "dest", t.dest, "written", t.offset, "err", failure)
	} else {
		t.store.logger.Debug("copy task completed",
			"task", t.id, "dest", t.dest, "written", t.offset)
	}

	if t.completion == nil {
		return
	}
	t.executor(func() {
		t.completion(result)
	})
}
