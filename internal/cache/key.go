package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// keyHexLen is the number of hex digits of the SHA-256 digest kept for
// entry names. 40 digits keep 160 bits, plenty for any realistic cache
// size while staying filesystem-friendly.
const keyHexLen = 40

// ComputeKey fingerprints one build: the full source bytes, the resolved
// compiler path, and the exact ordered flag list. Identical inputs always
// produce the same key; changing any one of them changes it.
//
// The three inputs are separated by bytes that cannot appear inside them
// (NUL between sections, unit separator between flags) so boundary shifts
// cannot collide.
func ComputeKey(source []byte, compilerPath string, flags []string) string {
	h := sha256.New()

	h.Write(source)
	h.Write([]byte{0})
	h.Write([]byte(compilerPath))
	h.Write([]byte{0})

	for i, flag := range flags {
		if i > 0 {
			h.Write([]byte{0x1f})
		}

		h.Write([]byte(flag))
	}

	return hex.EncodeToString(h.Sum(nil))[:keyHexLen]
}

// ComputeKeyFile is ComputeKey over a source file's content.
func ComputeKeyFile(sourcePath, compilerPath string, flags []string) (string, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to read source file: %w", err)
	}

	return ComputeKey(data, compilerPath, flags), nil
}
