package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerOnlyBuildsEnabledTargets(t *testing.T) {
	m := NewManager(Config{})
	assert.Empty(t, m.targets)

	m = NewManager(Config{FTP: FTPConfig{Enabled: true}, SFTP: SFTPConfig{Enabled: true}})
	assert.Len(t, m.targets, 2)
}

func TestExportRejectsMissingSourceFile(t *testing.T) {
	m := NewManager(Config{})
	err := m.Export(context.Background(), "/no/such/file", "out.db")
	require.Error(t, err)
}

func TestExportWithNoTargetsSucceeds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.db")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o600))

	m := NewManager(Config{})
	require.NoError(t, m.Export(context.Background(), path, "session.db"))
}
