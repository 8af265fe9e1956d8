package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--backend", "openxml"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	t.Setenv("EXCEL_HELPER_BACKEND", "")
	t.Setenv("EXCEL_HELPER_LOG_LEVEL", "error")
	dir := t.TempDir()
	first := filepath.Join(dir, "first.xlsx")
	second := filepath.Join(dir, "second.xlsx")

	_, err := run(t, "create", first, "--sheet", "Summary")
	require.NoError(t, err)
	_, err = run(t, "create", first)
	assert.ErrorContains(t, err, "file already exists")

	_, err = run(t, "set", first, "Summary", "C3", "total")
	require.NoError(t, err)
	_, err = run(t, "set", second, "Data", "A1", "x", "--create")
	require.NoError(t, err)

	out, err := run(t, "get", first, "summary", "C3")
	require.NoError(t, err)
	assert.Equal(t, "total\n", out)

	_, err = run(t, "get", first, "Nope", "C3")
	assert.ErrorContains(t, err, "sheet not found")

	out, err = run(t, "describe", second, first)
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "second.xlsx"), strings.Index(out, "first.xlsx"))
	assert.Contains(t, out, "name: Summary")
	assert.Contains(t, out, "usedRange: C3")

	out, err = run(t, "ls", dir)
	require.NoError(t, err)
	assert.Equal(t, first+"\n"+second+"\n", out)
}

func TestInvalidConfiguration(t *testing.T) {
	t.Setenv("EXCEL_HELPER_BACKEND", "")
	_, err := run(t, "--backend", "lotus", "ls")
	assert.ErrorContains(t, err, "invalid configuration")
}
