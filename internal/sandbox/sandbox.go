// Package sandbox detects host isolation tools and wraps commands in them.
//
// Sandboxing is best-effort: the adapters shell out to whatever tool is
// installed, and when none is found execution degrades to unsandboxed with
// a warning. Memory limits are only enforced here, by passing the limit
// through to the active tool's own flags.
package sandbox

import (
	"fmt"
	"os/exec"
)

// Tool identifies a sandbox technology.
type Tool int

const (
	// None means no sandbox tool is available.
	None Tool = iota

	// NsJail is the nsjail namespace jail.
	NsJail

	// Firejail is the firejail SUID sandbox.
	Firejail

	// Bubblewrap is the bwrap unprivileged sandbox.
	Bubblewrap

	// SystemdRun is a transient systemd scope with resource properties.
	SystemdRun
)

func (t Tool) String() string {
	switch t {
	case NsJail:
		return "nsjail"
	case Firejail:
		return "firejail"
	case Bubblewrap:
		return "bwrap"
	case SystemdRun:
		return "systemd-run"
	}

	return "none"
}

// preference orders tools most-restrictive-capable first.
var preference = []Tool{NsJail, Firejail, Bubblewrap, SystemdRun}

// lookPath is swappable for tests
var lookPath = exec.LookPath

// Detect returns the first available tool in preference order, or None.
func Detect() Tool {
	for _, tool := range preference {
		if _, err := lookPath(tool.String()); err == nil {
			return tool
		}
	}

	return None
}

// Wrap prefixes a command with the given tool's invocation, passing the
// memory limit through to the tool where it supports one. The returned
// argv is executed directly, never through a shell.
func Wrap(tool Tool, memoryLimitBytes int64, name string, args []string) (string, []string) {
	switch tool {
	case NsJail:
		wrapped := []string{"-Mo", "--quiet", "--disable_clone_newnet"}
		if memoryLimitBytes > 0 {
			wrapped = append(wrapped, "--rlimit_as", fmt.Sprintf("%d", memoryLimitBytes/(1024*1024)))
		}

		wrapped = append(wrapped, "--")
		wrapped = append(wrapped, name)
		wrapped = append(wrapped, args...)
		return "nsjail", wrapped

	case Firejail:
		wrapped := []string{"--quiet", "--private-tmp"}
		if memoryLimitBytes > 0 {
			wrapped = append(wrapped, fmt.Sprintf("--rlimit-as=%d", memoryLimitBytes))
		}

		wrapped = append(wrapped, "--")
		wrapped = append(wrapped, name)
		wrapped = append(wrapped, args...)
		return "firejail", wrapped

	case Bubblewrap:
		// bwrap has no memory limit of its own; the limit is simply not
		// enforced under this tool
		wrapped := []string{
			"--ro-bind", "/", "/",
			"--dev", "/dev",
			"--tmpfs", "/tmp",
			"--die-with-parent",
		}

		wrapped = append(wrapped, name)
		wrapped = append(wrapped, args...)
		return "bwrap", wrapped

	case SystemdRun:
		wrapped := []string{"--user", "--scope", "--quiet", "--same-dir"}
		if memoryLimitBytes > 0 {
			wrapped = append(wrapped, "-p", fmt.Sprintf("MemoryMax=%d", memoryLimitBytes))
		}

		wrapped = append(wrapped, "--")
		wrapped = append(wrapped, name)
		wrapped = append(wrapped, args...)
		return "systemd-run", wrapped
	}

	return name, args
}
