package command

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"yamdb/internal/importer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"files"})
	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, importer.Files(), strings.Fields(out.String()))
}

func TestDryRun(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "genre.csv"), []byte("id,name,slug\n1,Drama,drama\n2,Bad,b a d\n"), 0o600))
	t.Setenv("JWT_SECRET", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--dry-run", "--dir", dir})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "genre.csv")
	assert.Contains(t, out.String(), "inserted=1 skipped=1")
	assert.Contains(t, out.String(), "users.csv")
}
