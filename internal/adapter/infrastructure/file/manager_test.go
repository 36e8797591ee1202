//go:build unit

package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerAdapter_WriteAndReadFile(t *testing.T) {
	adapter := NewManagerAdapter()

	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "test.csv")
	testContent := []byte("test content")

	t.Run("WriteFile", func(t *testing.T) {
		err := adapter.WriteFile(testFile, testContent, 0644)
		assert.NoError(t, err)

		info, err := os.Stat(testFile)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
	})

	t.Run("ReadFile", func(t *testing.T) {
		content, err := adapter.ReadFile(testFile)
		assert.NoError(t, err)
		assert.Equal(t, testContent, content)
	})

	t.Run("FileExists", func(t *testing.T) {
		assert.True(t, adapter.FileExists(testFile))
		assert.False(t, adapter.FileExists(filepath.Join(tempDir, "nonexistent.csv")))
	})

	t.Run("Rename", func(t *testing.T) {
		target := filepath.Join(tempDir, "renamed.csv")
		err := adapter.Rename(testFile, target)
		assert.NoError(t, err)
		assert.False(t, adapter.FileExists(testFile))
		assert.True(t, adapter.FileExists(target))
	})
}

func TestManagerAdapter_ReadFile_NonExistent(t *testing.T) {
	adapter := NewManagerAdapter()

	_, err := adapter.ReadFile("/nonexistent/file.csv")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestManagerAdapter_Rename_NonExistent(t *testing.T) {
	adapter := NewManagerAdapter()

	err := adapter.Rename("/nonexistent/a.csv", "/nonexistent/b.csv")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to rename")
}
