package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguagesCommand(t *testing.T) {
	var buf bytes.Buffer
	languagesCmd.SetOut(&buf)

	err := languagesCmd.RunE(languagesCmd, nil)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, ".c")
	assert.Contains(t, out, "gcc")
	assert.Contains(t, out, ".py")
	assert.Contains(t, out, "python3")
	assert.Contains(t, out, "bytecode")
}
