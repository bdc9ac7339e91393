package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateFieldRewritesOnlyTargetedKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	original := "debug: false\n\nmain:\n  name: onsetgo\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0o644))

	require.NoError(t, UpdateField(path, "main.name", "renamed"))

	updated, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(updated), "name: renamed")
	assert.Contains(t, string(updated), "debug: false")
}

func TestUpdateFieldUnknownKeyErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("debug: false\n"), 0o644))

	err := UpdateField(path, "does.not.exist", "x")
	assert.Error(t, err)
}
