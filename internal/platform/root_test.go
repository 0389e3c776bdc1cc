package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRoot(t *testing.T) {
	// base/
	//   project/ (.noteease)
	//     subdir/
	//       nested/
	//   empty/
	baseDir := t.TempDir()
	projectDir := filepath.Join(baseDir, "project")
	subDir := filepath.Join(projectDir, "subdir")
	nestedDir := filepath.Join(subDir, "nested")
	emptyDir := filepath.Join(baseDir, "empty")
	dataDir := filepath.Join(projectDir, DataDirName)

	require.NoError(t, os.MkdirAll(nestedDir, 0755))
	require.NoError(t, os.MkdirAll(emptyDir, 0755))
	require.NoError(t, os.Mkdir(dataDir, 0755))

	tests := []struct {
		name      string
		startPath string
		want      string
		wantErr   bool
	}{
		{"Start at Root", projectDir, dataDir, false},
		{"Start in Subdir", subDir, dataDir, false},
		{"Start Nested Deeply", nestedDir, dataDir, false},
		{"No Root Found", emptyDir, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.startPath)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrRootNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Clean(tt.want), filepath.Clean(got))
		})
	}
}

func TestFindRoot_IgnoresMarkerFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DataDirName), []byte("not a dir"), 0644))

	_, err := FindRoot(dir)
	assert.Error(t, err)
}

func TestDefaultDataPath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, DataDirName), DefaultDataPath(dir))

	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, DataDirName), 0755))
	assert.Equal(t, filepath.Join(dir, DataDirName), DefaultDataPath(nested))
}
