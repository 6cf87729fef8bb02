package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runx-dev/runx/internal/language"
)

// writeScript drops an executable shell script into dir and returns its path.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))

	return path
}

func TestResolveFlags(t *testing.T) {
	spec := language.Spec{
		FlagsEnv:     "RUNX_TEST_FLAGS",
		DefaultFlags: "-O2 -Wall",
	}

	assert.Equal(t, []string{"-O2", "-Wall"}, ResolveFlags(spec), "defaults tokenize on whitespace")

	t.Setenv("RUNX_TEST_FLAGS", "-O0   -g -DDEBUG")
	assert.Equal(t, []string{"-O0", "-g", "-DDEBUG"}, ResolveFlags(spec), "env override beats defaults")

	t.Setenv("RUNX_TEST_FLAGS", "")
	assert.Empty(t, ResolveFlags(spec), "set-but-empty env means no flags")
}

func TestBuild_DirectIsNoOp(t *testing.T) {
	spec := language.Spec{Extension: "py", Strategy: language.Direct, Runner: "python3"}

	artifact, err := New().Build(spec, "", "/tmp/script.py", nil, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, ArtifactSource, artifact.Kind)
	assert.Equal(t, "/tmp/script.py", artifact.Path)
}

func TestBuild_Executable(t *testing.T) {
	toolDir := t.TempDir()

	// Fake compiler: writes a runnable script to the -o target
	compiler := writeScript(t, toolDir, "fakecc", `
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; shift 2; continue; fi
  shift
done
printf '#!/bin/sh\necho built\n' > "$out"
chmod +x "$out"
`)

	srcDir := t.TempDir()
	source := filepath.Join(srcDir, "main.c")
	require.NoError(t, os.WriteFile(source, []byte("int main(){}"), 0o644))

	spec := language.Spec{Extension: "c", Strategy: language.Compile, Compiler: compiler}
	workDir := t.TempDir()

	artifact, err := New().Build(spec, compiler, source, []string{"-O2"}, workDir)
	require.NoError(t, err)
	assert.Equal(t, ArtifactExecutable, artifact.Kind)
	assert.Equal(t, filepath.Join(workDir, "main"), artifact.Path)

	info, err := os.Stat(artifact.Path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o111)
}

func TestBuild_CompileError(t *testing.T) {
	toolDir := t.TempDir()
	compiler := writeScript(t, toolDir, "failcc", `
echo "main.c:1: error: expected ';'" >&2
exit 1
`)

	source := filepath.Join(t.TempDir(), "main.c")
	require.NoError(t, os.WriteFile(source, []byte("int main({"), 0o644))

	spec := language.Spec{Extension: "c", Strategy: language.Compile, Compiler: compiler}

	artifact, err := New().Build(spec, compiler, source, nil, t.TempDir())
	assert.Nil(t, artifact, "failed compile must not yield an artifact")

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 1, ce.ExitCode)
	assert.Contains(t, ce.Output, "expected ';'", "compiler output is carried verbatim")
}

func TestBuild_ExecutableMissingBinary(t *testing.T) {
	toolDir := t.TempDir()
	// Exits zero but never writes the output binary
	compiler := writeScript(t, toolDir, "nopcc", "exit 0\n")

	source := filepath.Join(t.TempDir(), "main.c")
	require.NoError(t, os.WriteFile(source, []byte("x"), 0o644))

	spec := language.Spec{Extension: "c", Strategy: language.Compile, Compiler: compiler}

	_, err := New().Build(spec, compiler, source, nil, t.TempDir())

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
}

func TestBuild_Bytecode(t *testing.T) {
	toolDir := t.TempDir()

	// Fake javac: writes class files into the -d directory
	compiler := writeScript(t, toolDir, "fakejavac", `
dest=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-d" ]; then dest="$2"; shift 2; continue; fi
  shift
done
echo bytecode1 > "$dest/Main.class"
echo bytecode2 > "$dest/Main\$1.class"
`)

	source := filepath.Join(t.TempDir(), "Main.java")
	require.NoError(t, os.WriteFile(source, []byte("class Main {}"), 0o644))

	spec := language.Spec{Extension: "java", Strategy: language.CompileBytecode, Compiler: compiler, Runner: "java"}
	workDir := t.TempDir()

	artifact, err := New().Build(spec, compiler, source, nil, workDir)
	require.NoError(t, err)
	assert.Equal(t, ArtifactBytecodeDir, artifact.Kind)
	assert.Equal(t, workDir, artifact.Path)
	assert.Equal(t, "Main", artifact.Unit)
	assert.Len(t, artifact.Files, 2)
}

func TestBuild_BytecodeNoOutputs(t *testing.T) {
	toolDir := t.TempDir()
	// Zero exit, zero generated files: inconsistent toolchain state
	compiler := writeScript(t, toolDir, "nopjavac", "exit 0\n")

	source := filepath.Join(t.TempDir(), "Main.java")
	require.NoError(t, os.WriteFile(source, []byte("class Main {}"), 0o644))

	spec := language.Spec{Extension: "java", Strategy: language.CompileBytecode, Compiler: compiler, Runner: "java"}

	_, err := New().Build(spec, compiler, source, nil, t.TempDir())

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Output, "generated no files")
}

func TestResolveCompiler_NotFound(t *testing.T) {
	spec := language.Spec{Compiler: "definitely-not-a-real-compiler-9000"}

	_, err := ResolveCompiler(spec)
	assert.Error(t, err)
}

func TestUnitName(t *testing.T) {
	assert.Equal(t, "main", UnitName("/src/main.c"))
	assert.Equal(t, "Main", UnitName("Main.java"))
	assert.Equal(t, "noext", UnitName("/a/b/noext"))
}
