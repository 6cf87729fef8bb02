// Package codes defines the process exit codes runx surfaces to the OS.
package codes

import "syscall"

const (
	// OK is a successful run; the target program exited zero.
	OK = 0

	// Failure covers compile errors, unsupported languages, and validation
	// errors. A target program's own nonzero exit code is propagated
	// verbatim instead.
	Failure = 1

	// Timeout matches the timeout(1) utility convention.
	Timeout = 124

	// signalBase follows the shell convention of 128+signal.
	signalBase = 128
)

// descriptions maps runx's own exit codes to short explanations.
var descriptions = map[int]string{
	OK:      "success",
	Failure: "failure",
	Timeout: "timed out",
}

// ForSignal converts a terminating signal to an exit code.
func ForSignal(sig syscall.Signal) int {
	return signalBase + int(sig)
}

// Describe returns a short description for an exit code, or "exit status"
// for codes runx merely propagates.
func Describe(code int) string {
	if msg, ok := descriptions[code]; ok {
		return msg
	}

	if code > signalBase {
		return "killed by signal"
	}

	return "exit status"
}
