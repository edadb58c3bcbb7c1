package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "nomenclature.db", cfg.Database.SQLitePath)
	assert.Equal(t, "0.0.0.0:5000", cfg.HTTPAddr())
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
	assert.Equal(t, "nomenclatures.xlsx", cfg.Export.Filename)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.RabbitMQ.Enabled)
}

func TestLoadFile_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[app]
port = 9090
log_level = "debug"

[database]
driver = "mysql"

[database.mysql]
host = "db.internal"
user = "naming"
password = "secret"
db = "naming"
params = "parseTime=true"

[redis]
enabled = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("APP_PORT", "7070")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("UPLOAD_KEEP_FILES", "not-a-bool")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.App.Port)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "naming:secret@tcp(db.internal:3306)/naming?parseTime=true", cfg.Database.MySQLDSN())
	assert.False(t, cfg.Redis.Enabled)
	assert.True(t, cfg.Upload.KeepFiles)
}

func TestLoadFile_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[app\nport = "), 0o600))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode config file failed")
}
