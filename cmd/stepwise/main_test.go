package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, globals []string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(append([]string{}, globals...), args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	globals := []string{
		"--config", filepath.Join(dir, "config.yaml"),
		"--backend", "file",
		"--data", filepath.Join(dir, "data"),
	}

	out, err := execute(t, globals, "group", "add", "Demo")
	require.NoError(t, err)
	assert.Contains(t, out, "Demo")

	_, err = execute(t, globals, "step", "add", "--title", "Shout", "--code", "return input.toUpperCase()")
	require.NoError(t, err)

	out, err = execute(t, globals, "step", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Shout")

	out, err = execute(t, globals, "run", "--input", "hello")
	require.NoError(t, err)
	assert.Equal(t, "HELLO\n", out)

	_, err = execute(t, globals, "library", "save", "1")
	require.NoError(t, err)

	out, err = execute(t, globals, "search", "shout")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "Shout"), "step and library template match")

	packDir := filepath.Join(dir, "pack")
	out, err = execute(t, globals, "library", "export", packDir)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 1 template")

	out, err = execute(t, globals, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# Demo")
	assert.Contains(t, out, "HELLO")

	out, err = execute(t, globals, "group", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Demo (1 steps) **(selected)**")
}

func TestCommands_UnknownGroup(t *testing.T) {
	dir := t.TempDir()
	globals := []string{"--config", filepath.Join(dir, "config.yaml"), "--backend", "memory"}

	_, err := execute(t, globals, "group", "select", "7")
	assert.ErrorContains(t, err, "group not found")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, nil, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "stepwise version "))
}
