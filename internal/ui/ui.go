// Package ui renders status output for the human on the other end.
//
// It consumes only what the orchestrator hands over: a status, captured
// output, and exit codes. Nothing here influences control flow.
package ui

import (
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	stepColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen, color.Bold)
	failColor    = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow)
)

// Reporter writes status lines to stderr, keeping the program's own
// stdout untouched.
type Reporter struct {
	out  io.Writer
	spin *spinner.Spinner
	tty  bool
}

// New creates a Reporter. Verbose mode also raises the global log level
// so debug diagnostics become visible.
func New(verbose bool) *Reporter {
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	return &Reporter{
		out: os.Stderr,
		tty: isatty.IsTerminal(os.Stderr.Fd()),
	}
}

// Compiling starts the compile-phase spinner (plain line off-TTY).
func (r *Reporter) Compiling(lang string) {
	if !r.tty {
		stepColor.Fprintf(r.out, "Compiling %s...\n", lang)
		return
	}

	r.spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(r.out))
	r.spin.Suffix = fmt.Sprintf(" Compiling %s...", lang)
	r.spin.Start()
}

// Compiled stops the compile-phase spinner.
func (r *Reporter) Compiled() {
	if r.spin != nil {
		r.spin.Stop()
		r.spin = nil
	}
}

// CacheHit reports a reused build artifact.
func (r *Reporter) CacheHit() {
	stepColor.Fprintln(r.out, "Using cached build")
}

// Executing reports the start of the target program.
func (r *Reporter) Executing(name string) {
	stepColor.Fprintf(r.out, "Running %s\n", name)
}

// Success reports a zero exit.
func (r *Reporter) Success(d time.Duration) {
	successColor.Fprintf(r.out, "Finished in %s\n", d.Round(time.Millisecond))
}

// Failed reports the target's own nonzero exit.
func (r *Reporter) Failed(code int) {
	failColor.Fprintf(r.out, "Program exited with code %d\n", code)
}

// TimedOut reports a deadline kill.
func (r *Reporter) TimedOut(limit time.Duration) {
	failColor.Fprintf(r.out, "Timed out after %s\n", limit)
}

// Signaled reports a kill by signal outside the timeout path.
func (r *Reporter) Signaled(sig syscall.Signal) {
	failColor.Fprintf(r.out, "Killed by signal %s\n", sig)
}

// CompileFailed echoes the compiler's output verbatim.
func (r *Reporter) CompileFailed(output string) {
	failColor.Fprintln(r.out, "Compilation failed:")
	fmt.Fprint(r.out, output)

	if output != "" && output[len(output)-1] != '\n' {
		fmt.Fprintln(r.out)
	}
}

// Warn prints a warning line.
func (r *Reporter) Warn(msg string) {
	warnColor.Fprintf(r.out, "Warning: %s\n", msg)
}
