package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Resolve(t *testing.T) {
	reg := Default()

	spec, err := reg.Resolve("c")
	require.NoError(t, err)
	assert.Equal(t, Compile, spec.Strategy)
	assert.Equal(t, "gcc", spec.Compiler)

	// Leading dot and case are tolerated
	spec, err = reg.Resolve(".PY")
	require.NoError(t, err)
	assert.Equal(t, Direct, spec.Strategy)
	assert.Equal(t, "python3", spec.Runner)
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	reg := Default()

	_, err := reg.Resolve("xyz")
	require.Error(t, err)

	var unsupported *ErrUnsupported
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "xyz", unsupported.Extension)
	assert.Contains(t, unsupported.Supported, "c")
	assert.Contains(t, unsupported.Supported, "py")
	assert.Contains(t, err.Error(), "unsupported language")
}

// Every builtin must satisfy the strategy invariants: Direct requires a
// runner, compiled strategies require a compiler.
func TestBuiltins_Invariants(t *testing.T) {
	for _, spec := range Default().Specs() {
		switch spec.Strategy {
		case Direct:
			assert.NotEmpty(t, spec.Runner, "%s: direct strategy requires a runner", spec.Extension)
		case Compile, CompileBytecode:
			assert.NotEmpty(t, spec.Compiler, "%s: compiled strategy requires a compiler", spec.Extension)
		}

		if spec.Strategy == CompileBytecode {
			assert.NotEmpty(t, spec.Runner, "%s: bytecode strategy requires a runtime", spec.Extension)
		}
	}
}

func TestRegistry_Supported(t *testing.T) {
	reg := NewRegistry([]Spec{
		{Extension: "b", Strategy: Direct, Runner: "b-run"},
		{Extension: "a", Strategy: Direct, Runner: "a-run"},
	})

	assert.Equal(t, []string{"a", "b"}, reg.Supported())
}
