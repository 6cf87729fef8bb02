// Package executor runs a built artifact (or interpreted source) under a
// wall-clock deadline and optional sandbox wrapping, and classifies the
// outcome.
package executor

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/runx-dev/runx/internal/sandbox"
)

// DefaultGrace is how long a SIGTERM'd process group gets before SIGKILL.
const DefaultGrace = 2 * time.Second

// Status classifies how a run ended.
type Status int

const (
	// Success is a zero exit.
	Success Status = iota

	// NonZeroExit is the program's own nonzero exit code.
	NonZeroExit

	// TimedOut means the deadline elapsed and the process group was killed.
	TimedOut

	// Signaled means a signal outside the timeout path killed the process.
	Signaled
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case NonZeroExit:
		return "exit"
	case TimedOut:
		return "timeout"
	case Signaled:
		return "signaled"
	}

	return "unknown"
}

// Request describes one execution.
type Request struct {
	// Name and Args form the argv, already fully resolved
	Name string
	Args []string

	// Dir is the working directory for the child ("" = inherit)
	Dir string

	// Timeout bounds wall-clock runtime (0 = unbounded)
	Timeout time.Duration

	// MemoryLimitBytes is passed through to the sandbox tool (0 = unbounded).
	// Without a sandbox no memory ceiling is enforced.
	MemoryLimitBytes int64

	// Sandbox requests best-effort isolation
	Sandbox bool
}

// Result is the outcome of one run.
type Result struct {
	Status   Status
	ExitCode int
	Signal   syscall.Signal
	Stdout   string
	Stderr   string
	Duration time.Duration

	// Tool is the sandbox technology that wrapped the run (None if
	// unsandboxed, including degraded runs)
	Tool sandbox.Tool
}

// Executor spawns target processes.
type Executor struct {
	// Grace is the SIGTERM→SIGKILL window (DefaultGrace when zero)
	Grace time.Duration

	// Stdin is wired to the child (nil = os.Stdin)
	Stdin io.Reader

	// Stdout and Stderr additionally receive the child's output as it is
	// produced; capture into the Result happens regardless. Nil means
	// capture only.
	Stdout io.Writer
	Stderr io.Writer

	// detect is swappable for tests
	detect func() sandbox.Tool
}

// New creates an Executor that streams child output to the parent's
// stdout/stderr while capturing it.
func New() *Executor {
	return &Executor{
		Grace:  DefaultGrace,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		detect: sandbox.Detect,
	}
}

// Run executes the request. The child runs in its own process group; on
// deadline the whole group gets SIGTERM, then SIGKILL after the grace
// window. Output captured before a kill is preserved in the Result.
func (e *Executor) Run(req Request) (Result, error) {
	name, args := req.Name, req.Args

	detect := e.detect
	if detect == nil {
		detect = sandbox.Detect
	}

	var tool sandbox.Tool
	if req.Sandbox {
		if tool = detect(); tool == sandbox.None {
			log.Warn("no sandbox tool available, running unsandboxed")
		} else {
			name, args = sandbox.Wrap(tool, req.MemoryLimitBytes, name, args)
		}
	}

	cmd := exec.Command(name, args...)
	cmd.Dir = req.Dir
	cmd.Stdin = e.Stdin
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = tee(&stdout, e.Stdout)
	cmd.Stderr = tee(&stderr, e.Stderr)

	start := time.Now()

	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("failed to start %s: %w", name, err)
	}

	waitErr, timedOut := e.wait(cmd, req.Timeout)

	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
		Tool:     tool,
	}

	return classify(result, waitErr, timedOut)
}

// wait blocks until the child exits, enforcing the deadline by signaling
// the process group.
func (e *Executor) wait(cmd *exec.Cmd, timeout time.Duration) (error, bool) {
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	if timeout <= 0 {
		return <-done, false
	}

	select {
	case err := <-done:
		return err, false
	case <-time.After(timeout):
	}

	grace := e.Grace
	if grace <= 0 {
		grace = DefaultGrace
	}

	pgid := -cmd.Process.Pid
	_ = syscall.Kill(pgid, syscall.SIGTERM)

	select {
	case err := <-done:
		return err, true
	case <-time.After(grace):
		_ = syscall.Kill(pgid, syscall.SIGKILL)
		return <-done, true
	}
}

// classify maps the wait outcome onto the result statuses.
func classify(result Result, waitErr error, timedOut bool) (Result, error) {
	if timedOut {
		result.Status = TimedOut
		return result, nil
	}

	if waitErr == nil {
		result.Status = Success
		return result, nil
	}

	exitErr, ok := waitErr.(*exec.ExitError)
	if !ok {
		return result, fmt.Errorf("execution failed: %w", waitErr)
	}

	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		result.Status = Signaled
		result.Signal = ws.Signal()
		return result, nil
	}

	result.Status = NonZeroExit
	result.ExitCode = exitErr.ExitCode()
	return result, nil
}

func tee(capture *bytes.Buffer, stream io.Writer) io.Writer {
	if stream == nil {
		return capture
	}

	return io.MultiWriter(capture, stream)
}
