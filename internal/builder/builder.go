// Package builder turns a source file into a runnable artifact according
// to its language strategy.
package builder

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/runx-dev/runx/internal/language"
)

// ArtifactKind describes what Build produced.
type ArtifactKind int

const (
	// ArtifactSource means no build happened; the source file itself runs.
	ArtifactSource ArtifactKind = iota

	// ArtifactExecutable is a single native binary.
	ArtifactExecutable

	// ArtifactBytecodeDir is a directory of intermediate files run by a runtime.
	ArtifactBytecodeDir
)

// Artifact is the result of a successful build.
type Artifact struct {
	Kind ArtifactKind

	// Path is the source file (ArtifactSource), the binary
	// (ArtifactExecutable), or the intermediate directory (ArtifactBytecodeDir)
	Path string

	// Files lists generated files relative to Path (ArtifactBytecodeDir only)
	Files []string

	// Unit is the main unit name for the runtime, derived from the source
	// basename (ArtifactBytecodeDir only, e.g. the Java main class)
	Unit string
}

// CompileError reports a failed compilation. Output holds the compiler's
// combined stdout+stderr verbatim.
type CompileError struct {
	ExitCode int
	Output   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compilation failed (exit code %d)", e.ExitCode)
}

// ResolveFlags returns the compiler flag list for a spec: the environment
// override named by FlagsEnv when set, otherwise DefaultFlags. The string
// is split on whitespace into discrete arguments; nothing is ever passed
// through a shell.
func ResolveFlags(spec language.Spec) []string {
	if spec.FlagsEnv != "" {
		if v, ok := os.LookupEnv(spec.FlagsEnv); ok {
			return strings.Fields(v)
		}
	}

	return strings.Fields(spec.DefaultFlags)
}

// ResolveCompiler resolves the spec's compiler to an absolute path. The
// resolved path feeds the cache key, so two installed compiler versions at
// different paths never share entries.
func ResolveCompiler(spec language.Spec) (string, error) {
	path, err := exec.LookPath(spec.Compiler)
	if err != nil {
		return "", fmt.Errorf("compiler %q not found: %w", spec.Compiler, err)
	}

	return filepath.Abs(path)
}

// Builder invokes compilers.
type Builder struct {
	// execCommand is swappable for tests
	execCommand func(name string, args ...string) *exec.Cmd
}

// New creates a Builder.
func New() *Builder {
	return &Builder{execCommand: exec.Command}
}

// Build produces an artifact for the source file in workDir, a fresh
// directory private to this invocation. Direct strategies are a no-op.
// A nonzero compiler exit, or a bytecode build that generates no files,
// returns *CompileError.
func (b *Builder) Build(spec language.Spec, compilerPath, sourcePath string, flags []string, workDir string) (*Artifact, error) {
	switch spec.Strategy {
	case language.Direct:
		return &Artifact{Kind: ArtifactSource, Path: sourcePath}, nil
	case language.Compile:
		return b.buildExecutable(compilerPath, sourcePath, flags, workDir)
	case language.CompileBytecode:
		return b.buildBytecode(compilerPath, sourcePath, flags, workDir)
	}

	return nil, fmt.Errorf("unknown strategy %v", spec.Strategy)
}

// buildExecutable compiles to a single binary named after the source.
func (b *Builder) buildExecutable(compilerPath, sourcePath string, flags []string, workDir string) (*Artifact, error) {
	out := filepath.Join(workDir, UnitName(sourcePath))

	args := append(append([]string{}, flags...), "-o", out, sourcePath)

	if _, err := b.runCompiler(compilerPath, args, workDir); err != nil {
		return nil, err
	}

	if _, err := os.Stat(out); err != nil {
		return nil, &CompileError{
			ExitCode: 0,
			Output:   fmt.Sprintf("compiler exited successfully but produced no binary at %s", out),
		}
	}

	return &Artifact{Kind: ArtifactExecutable, Path: out}, nil
}

// buildBytecode compiles into workDir and requires at least one generated
// file. Zero generated files with a zero exit code means the toolchain is
// in an inconsistent state and is treated as a compile failure.
func (b *Builder) buildBytecode(compilerPath, sourcePath string, flags []string, workDir string) (*Artifact, error) {
	args := append(append([]string{}, flags...), "-d", workDir, sourcePath)

	if _, err := b.runCompiler(compilerPath, args, workDir); err != nil {
		return nil, err
	}

	files, err := collectGenerated(workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate build outputs: %w", err)
	}

	if len(files) == 0 {
		return nil, &CompileError{
			ExitCode: 0,
			Output:   "compiler exited successfully but generated no files",
		}
	}

	return &Artifact{
		Kind:  ArtifactBytecodeDir,
		Path:  workDir,
		Files: files,
		Unit:  UnitName(sourcePath),
	}, nil
}

// runCompiler invokes the compiler with discrete argv entries, capturing
// combined stdout+stderr. Compilation is not subject to the user timeout.
func (b *Builder) runCompiler(compilerPath string, args []string, workDir string) ([]byte, error) {
	cmd := b.execCommand(compilerPath, args...)
	cmd.Dir = workDir

	output, err := cmd.CombinedOutput()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, &CompileError{
				ExitCode: exitErr.ExitCode(),
				Output:   string(output),
			}
		}

		return nil, fmt.Errorf("failed to invoke compiler: %w", err)
	}

	return output, nil
}

// collectGenerated lists regular files under dir, relative paths.
func collectGenerated(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// UnitName strips directory and extension from a source path.
func UnitName(sourcePath string) string {
	base := filepath.Base(sourcePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
