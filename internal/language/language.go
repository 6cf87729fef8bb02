// Package language maps source file extensions to execution strategies.
//
// The registry is pure data: adding a language means adding a table row,
// no other component changes. Three strategies exist:
//
//  1. Direct: an interpreter runs the source file as-is (python, node, ...)
//  2. Compile: a compiler produces a single native executable (gcc, rustc, ...)
//  3. CompileBytecode: a compiler produces intermediate files that a separate
//     runtime executes (javac/java style)
package language

import (
	"fmt"
	"sort"
	"strings"
)

// Strategy describes how a language's sources become a running process.
type Strategy int

const (
	// Direct runs the source file through an interpreter, no build step.
	Direct Strategy = iota

	// Compile builds the source into a single native executable.
	Compile

	// CompileBytecode builds the source into intermediate files executed
	// by a separate runtime.
	CompileBytecode
)

func (s Strategy) String() string {
	switch s {
	case Direct:
		return "direct"
	case Compile:
		return "compile"
	case CompileBytecode:
		return "bytecode"
	}

	return "unknown"
}

// Spec describes one supported language. Immutable after registry load.
type Spec struct {
	// Extension is the file suffix without the dot (e.g. "c", "py")
	Extension string

	// Strategy selects the build/run pipeline
	Strategy Strategy

	// Compiler is the compiler executable name (Compile and CompileBytecode)
	Compiler string

	// Runner is the interpreter (Direct) or runtime (CompileBytecode) executable
	Runner string

	// FlagsEnv names an environment variable whose value overrides DefaultFlags
	FlagsEnv string

	// DefaultFlags is a whitespace-separated flag string passed to the compiler
	DefaultFlags string

	// Name is the human-readable language name
	Name string
}

// ErrUnsupported is returned by Resolve for an extension the registry
// does not know. It carries the supported extension list so the caller
// can print it.
type ErrUnsupported struct {
	Extension string
	Supported []string
}

func (e *ErrUnsupported) Error() string {
	return fmt.Sprintf("unsupported language %q (supported: %s)",
		e.Extension, strings.Join(e.Supported, ", "))
}

// Registry resolves file extensions to language specs.
type Registry struct {
	specs map[string]Spec
}

// NewRegistry creates a registry from the given specs.
// Later specs with a duplicate extension override earlier ones.
func NewRegistry(specs []Spec) *Registry {
	m := make(map[string]Spec, len(specs))
	for _, s := range specs {
		m[s.Extension] = s
	}

	return &Registry{specs: m}
}

// Default returns the registry loaded with the built-in language table.
func Default() *Registry {
	return NewRegistry(builtins)
}

// Resolve looks up the spec for an extension. The extension may carry a
// leading dot. Unknown extensions return *ErrUnsupported.
func (r *Registry) Resolve(extension string) (Spec, error) {
	ext := strings.TrimPrefix(strings.ToLower(extension), ".")

	spec, ok := r.specs[ext]
	if !ok {
		return Spec{}, &ErrUnsupported{
			Extension: ext,
			Supported: r.Supported(),
		}
	}

	return spec, nil
}

// Supported returns the sorted list of known extensions.
func (r *Registry) Supported() []string {
	exts := make([]string, 0, len(r.specs))
	for ext := range r.specs {
		exts = append(exts, ext)
	}

	sort.Strings(exts)
	return exts
}

// Specs returns all specs sorted by extension.
func (r *Registry) Specs() []Spec {
	specs := make([]Spec, 0, len(r.specs))
	for _, ext := range r.Supported() {
		specs = append(specs, r.specs[ext])
	}

	return specs
}
