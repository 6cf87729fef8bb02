// Package discover resolves which file to run and what language it is.
//
// Resolution happens before the core pipeline sees anything: the core only
// ever receives an already-resolved (path, extension) pair.
package discover

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/runx-dev/runx/internal/language"
)

// interpreters maps shebang interpreter basenames to extensions.
// Trailing version suffixes are stripped before lookup (python3.12 → python).
var interpreters = map[string]string{
	"python": "py",
	"node":   "js",
	"bash":   "sh",
	"sh":     "sh",
	"zsh":    "sh",
	"ruby":   "rb",
	"perl":   "pl",
	"php":    "php",
	"lua":    "lua",
}

// Newest returns the most recently modified file in dir whose extension
// the registry knows. Used when the user gave no file argument.
func Newest(dir string, reg *language.Registry) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory: %w", err)
	}

	var (
		newest     string
		newestTime int64 = -1
	)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.TrimPrefix(filepath.Ext(entry.Name()), ".")
		if _, err := reg.Resolve(ext); err != nil {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if mod := info.ModTime().UnixNano(); mod > newestTime {
			newestTime = mod
			newest = filepath.Join(dir, entry.Name())
		}
	}

	if newest == "" {
		return "", fmt.Errorf("no runnable source file found in %s", dir)
	}

	return newest, nil
}

// Extension resolves a file's language extension. The filename suffix is
// the default; a shebang line that maps to a known interpreter wins over it.
func Extension(path string) string {
	suffix := strings.TrimPrefix(filepath.Ext(path), ".")

	if ext := sniffShebang(path); ext != "" {
		return ext
	}

	return suffix
}

// sniffShebang reads the first line and maps "#!" interpreters to an
// extension. Returns "" when there is no recognizable shebang.
func sniffShebang(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return ""
	}

	line := scanner.Text()
	if !strings.HasPrefix(line, "#!") {
		return ""
	}

	fields := strings.Fields(strings.TrimPrefix(line, "#!"))
	if len(fields) == 0 {
		return ""
	}

	interp := filepath.Base(fields[0])
	if interp == "env" && len(fields) > 1 {
		interp = filepath.Base(fields[1])
	}

	// python3.12 → python, node22 → node
	interp = strings.TrimRight(interp, "0123456789.")

	return interpreters[interp]
}
