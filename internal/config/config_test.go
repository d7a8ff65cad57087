package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.Host)
	assert.NotEmpty(t, cfg.CORSOrigins)
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
database_url: postgres://file/db
s3:
  bucket: from-file
`), 0o644))

	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("S3_BUCKET", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "postgres://env/db", cfg.DatabaseURL, "env must win over file")
	assert.Equal(t, "from-file", cfg.S3.Bucket)
}

func TestLoad_CORSOriginsFromEnv(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
