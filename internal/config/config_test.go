package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/noteease/internal/platform"
)

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeEnv(t, ""))
	require.NoError(t, err)

	assert.Equal(t, platform.AdapterFS, cfg.Adapter)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr)
	assert.True(t, cfg.DevSafety)
	assert.False(t, cfg.ReadOnly)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
}

func TestLoad_EnvFile(t *testing.T) {
	path := writeEnv(t, `
NOTEEASE_ADAPTER=sqlite
NOTEEASE_PATH=/srv/notes.db
NOTEEASE_FORMAT=yaml
NOTEEASE_REDIS_DB=3
NOTEEASE_S3_PATH_STYLE=true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, platform.AdapterSQLite, cfg.Adapter)
	assert.Equal(t, "/srv/notes.db", cfg.Path)
	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.True(t, cfg.S3.UsePathStyle)
}

func TestLoad_EnvironmentWins(t *testing.T) {
	t.Setenv("NOTEEASE_ADAPTER", "memory")
	cfg, err := Load(writeEnv(t, "NOTEEASE_ADAPTER=sqlite\n"))
	require.NoError(t, err)
	assert.Equal(t, platform.AdapterMemory, cfg.Adapter)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want string
	}{
		{"adapter", "NOTEEASE_ADAPTER=floppy", "unknown adapter"},
		{"format", "NOTEEASE_FORMAT=xml", "unknown format"},
		{"redis db", "NOTEEASE_REDIS_DB=zero", "REDIS_DB"},
		{"bool", "NOTEEASE_READ_ONLY=maybe", "READ_ONLY"},
		{"s3 bucket", "NOTEEASE_ADAPTER=s3", "S3_BUCKET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeEnv(t, tt.env+"\n"))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.Error(t, err)
}

func TestConfig_URI(t *testing.T) {
	dir := t.TempDir()

	cfg := &Config{Adapter: platform.AdapterFS}
	assert.Equal(t, filepath.Join(dir, platform.DataDirName), cfg.URI(dir))

	cfg.Adapter = platform.AdapterSQLite
	assert.Equal(t, filepath.Join(dir, platform.DataDirName, "notes.db"), cfg.URI(dir))

	cfg.Adapter = platform.AdapterMemory
	assert.Empty(t, cfg.URI(dir))

	cfg.Path = "/explicit"
	assert.Equal(t, "/explicit", cfg.URI(dir))
}
