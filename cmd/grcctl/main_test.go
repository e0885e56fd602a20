package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = "../../configs/catalog.yaml"

func execute(args ...string) error {
	pterm.DisableOutput()
	defer pterm.EnableOutput()

	root := newRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func TestDetectWritesCSV(t *testing.T) {
	dir := t.TempDir()

	err := execute("detect", "--catalog", testCatalog, "--now", "2026-10-16", "--csv", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "risk_violations_2026-10-16.csv"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[0], `"ID","User","User ID"`))
}

func TestDetectRejectsBadDate(t *testing.T) {
	assert.Error(t, execute("detect", "--catalog", testCatalog, "--now", "16.10.2026"))
}

func TestAssess(t *testing.T) {
	assert.NoError(t, execute("assess", "--catalog", testCatalog, "--framework", "sox"))
	assert.NoError(t, execute("assess", "--catalog", testCatalog, "--framework", "sox", "--objectives", "sox-ac-01,missing"))
	assert.Error(t, execute("assess", "--catalog", testCatalog, "--framework", "pci"))
}

func TestAuthorize(t *testing.T) {
	assert.NoError(t, execute("authorize", "--role", "viewer", "violations:read"))
	assert.NoError(t, execute("authorize", "--role", "viewer", "--mode", "any", "violations:read", "audit:read"))
	assert.ErrorIs(t, execute("authorize", "--role", "viewer", "violations:read", "audit:read"), errDenied)
	assert.NoError(t, execute("authorize", "--role", "ghost"))
}

func TestClassify(t *testing.T) {
	assert.NoError(t, execute("classify", "0", "24.9", "25", "75", "130"))
	assert.Error(t, execute("classify", "high"))
}
