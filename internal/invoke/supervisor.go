package invoke

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"sync"
	"time"
)

// State is the lifecycle position of one supervised process.
type State int

const (
	StateSpawning State = iota
	StateRunning
	StateSucceeded
	StateFailed
	StateTimedOut
	StateIdleKilled
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateSpawning:
		return "spawning"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateTimedOut:
		return "timed_out"
	case StateIdleKilled:
		return "idle_killed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is a final state.
func (s State) Terminal() bool {
	return s >= StateSucceeded
}

// defaultGrace bounds how long output is drained after a kill.
const defaultGrace = 2 * time.Second

// outcome is the supervisor's terminal report.
type outcome struct {
	State    State
	ExitCode int
	Stdout   string
	Stderr   string

	// Err is the spawn error for a failed start, or the cancellation cause.
	Err error
	// SpawnFailed marks a process that could not be started.
	SpawnFailed bool
	// PreSpawn marks a cancellation observed before any process existed.
	PreSpawn bool
	// Limit is the timeout or idle limit that fired.
	Limit   time.Duration
	Elapsed time.Duration
}

// supervisor owns one child process, its timers and its output buffers.
type supervisor struct {
	path string
	argv []string
	dir  string
	env  []string

	timeout time.Duration
	idle    time.Duration
	grace   time.Duration

	// onStdout receives each stdout chunk, including those drained after a kill.
	onStdout func([]byte)
	// onState observes transitions.
	onState func(State)
}

// lockedBuffer is a bytes.Buffer safe for one writer and one reader.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (s *supervisor) transition(st State) {
	if s.onState != nil {
		s.onState(st)
	}
}

// run spawns the child and blocks until exactly one terminal state is
// reached. It never returns an error; failures are encoded in the outcome.
func (s *supervisor) run(ctx context.Context) outcome {
	start := time.Now()
	s.transition(StateSpawning)

	if ctx.Err() != nil {
		s.transition(StateCancelled)
		return outcome{State: StateCancelled, Err: context.Cause(ctx), PreSpawn: true}
	}

	done := make(chan struct{})
	defer close(done)

	chunks := make(chan []byte)
	var stderr lockedBuffer

	cmd := exec.Command(s.path, s.argv...)
	cmd.Dir = s.dir
	cmd.Env = s.env
	cmd.Stdin = nil
	cmd.Stdout = &chunkWriter{chunks: chunks, done: done}
	cmd.Stderr = &stderr
	// Wait closes the pipes this long after exit even if a descendant
	// still holds them, so the copy goroutines always finish.
	cmd.WaitDelay = s.graceOrDefault()
	isolate(cmd)

	if err := cmd.Start(); err != nil {
		s.transition(StateFailed)
		return outcome{State: StateFailed, ExitCode: -1, Err: err, SpawnFailed: true, Elapsed: time.Since(start)}
	}
	s.transition(StateRunning)

	// Wait returns only after every stdout chunk has been received.
	exited := make(chan error, 1)
	go func() {
		exited <- cmd.Wait()
	}()

	hard := time.NewTimer(s.timeout)
	defer hard.Stop()

	var idle *time.Timer
	var idleC <-chan time.Time
	if s.idle > 0 {
		idle = time.NewTimer(s.idle)
		defer idle.Stop()
		idleC = idle.C
	}

	var out bytes.Buffer
	o := outcome{}
	exitSeen := false

loop:
	for {
		select {
		case chunk := <-chunks:
			out.Write(chunk)
			if s.onStdout != nil {
				s.onStdout(chunk)
			}
			if idle != nil {
				idle.Reset(s.idle)
			}
		case waitErr := <-exited:
			exitSeen = true
			o.State, o.ExitCode = exitState(waitErr)
			break loop
		case <-hard.C:
			o.State, o.Limit = StateTimedOut, s.timeout
			break loop
		case <-idleC:
			o.State, o.Limit = StateIdleKilled, s.idle
			break loop
		case <-ctx.Done():
			o.State, o.Err = StateCancelled, context.Cause(ctx)
			break loop
		}
	}
	s.transition(o.State)

	if !exitSeen {
		_ = kill(cmd)
		o.ExitCode = s.reap(chunks, exited, &out)
	}

	o.Stdout = out.String()
	o.Stderr = stderr.String()
	o.Elapsed = time.Since(start)
	return o
}

func (s *supervisor) graceOrDefault() time.Duration {
	if s.grace <= 0 {
		return defaultGrace
	}
	return s.grace
}

// chunkWriter hands each stdout write to the supervisor loop. Once the
// loop has returned, writes fail so exec stops copying.
type chunkWriter struct {
	chunks chan<- []byte
	done   <-chan struct{}
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	chunk := make([]byte, len(p))
	copy(chunk, p)
	select {
	case w.chunks <- chunk:
		return len(p), nil
	case <-w.done:
		return 0, io.ErrClosedPipe
	}
}

// reap drains remaining output after a kill and collects the exit status,
// giving up after the grace period. The state is already fixed.
func (s *supervisor) reap(chunks <-chan []byte, exited <-chan error, out *bytes.Buffer) int {
	timer := time.NewTimer(s.graceOrDefault())
	defer timer.Stop()
	for {
		select {
		case chunk := <-chunks:
			out.Write(chunk)
			if s.onStdout != nil {
				s.onStdout(chunk)
			}
		case waitErr := <-exited:
			_, code := exitState(waitErr)
			return code
		case <-timer.C:
			return -1
		}
	}
}

// exitState maps the result of cmd.Wait to a terminal state and exit code.
func exitState(waitErr error) (State, int) {
	if waitErr == nil || errors.Is(waitErr, exec.ErrWaitDelay) {
		// ErrWaitDelay is only reported for a successful exit.
		return StateSucceeded, 0
	}
	var ee *exec.ExitError
	if errors.As(waitErr, &ee) {
		code := ee.ExitCode()
		if code == 0 {
			return StateSucceeded, 0
		}
		return StateFailed, code
	}
	return StateFailed, -1
}
