package language

// builtins is the static language table. Every Direct entry has a Runner,
// every Compile/CompileBytecode entry has a Compiler.
var builtins = []Spec{
	// Compiled to native executables
	{
		Extension:    "c",
		Name:         "C",
		Strategy:     Compile,
		Compiler:     "gcc",
		FlagsEnv:     "RUNX_C_FLAGS",
		DefaultFlags: "-O2 -Wall",
	},
	{
		Extension:    "cpp",
		Name:         "C++",
		Strategy:     Compile,
		Compiler:     "g++",
		FlagsEnv:     "RUNX_CPP_FLAGS",
		DefaultFlags: "-O2 -Wall -std=c++17",
	},
	{
		Extension:    "rs",
		Name:         "Rust",
		Strategy:     Compile,
		Compiler:     "rustc",
		FlagsEnv:     "RUNX_RUST_FLAGS",
		DefaultFlags: "-O",
	},
	{
		Extension:    "go",
		Name:         "Go",
		Strategy:     Compile,
		Compiler:     "go",
		FlagsEnv:     "RUNX_GO_FLAGS",
		DefaultFlags: "build",
	},

	// Compiled to runtime bytecode
	{
		Extension:    "java",
		Name:         "Java",
		Strategy:     CompileBytecode,
		Compiler:     "javac",
		Runner:       "java",
		FlagsEnv:     "RUNX_JAVA_FLAGS",
		DefaultFlags: "",
	},

	// Interpreted directly
	{
		Extension: "py",
		Name:      "Python",
		Strategy:  Direct,
		Runner:    "python3",
	},
	{
		Extension: "js",
		Name:      "JavaScript",
		Strategy:  Direct,
		Runner:    "node",
	},
	{
		Extension: "rb",
		Name:      "Ruby",
		Strategy:  Direct,
		Runner:    "ruby",
	},
	{
		Extension: "sh",
		Name:      "Shell",
		Strategy:  Direct,
		Runner:    "bash",
	},
	{
		Extension: "pl",
		Name:      "Perl",
		Strategy:  Direct,
		Runner:    "perl",
	},
	{
		Extension: "php",
		Name:      "PHP",
		Strategy:  Direct,
		Runner:    "php",
	},
	{
		Extension: "lua",
		Name:      "Lua",
		Strategy:  Direct,
		Runner:    "lua",
	},
}
