package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "najdeno.sqlite3", c.DBPath)
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, "", c.LogPath)
	assert.Equal(t, 5, c.LoginBurst)
	assert.Equal(t, 10*time.Second, c.ShutdownTimeout)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("NAJDENO_DB", "/var/lib/najdeno/db.sqlite3")
	t.Setenv("NAJDENO_ADDR", "127.0.0.1:9000")
	t.Setenv("NAJDENO_LOGIN_RATE", "1.5")
	t.Setenv("NAJDENO_LOGIN_BURST", "10")
	t.Setenv("NAJDENO_SHUTDOWN_TIMEOUT", "30s")

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/najdeno/db.sqlite3", c.DBPath)
	assert.Equal(t, "127.0.0.1:9000", c.Addr)
	assert.Equal(t, 1.5, c.LoginRate)
	assert.Equal(t, 10, c.LoginBurst)
	assert.Equal(t, 30*time.Second, c.ShutdownTimeout)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NAJDENO_ADMIN_EMAIL=desk@uni.example\nNAJDENO_ADDR=:7000\n"), 0o600))

	// Variables already in the environment win over the file.
	t.Setenv("NAJDENO_ADDR", ":9999")
	// Registers cleanup of the value the file sets.
	t.Setenv("NAJDENO_ADMIN_EMAIL", "")
	os.Unsetenv("NAJDENO_ADMIN_EMAIL")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "desk@uni.example", c.AdminEmail)
	assert.Equal(t, ":9999", c.Addr)
}

func TestLoadMissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"NAJDENO_LOGIN_BURST", "many"},
		{"NAJDENO_LOGIN_RATE", "fast"},
		{"NAJDENO_SHUTDOWN_TIMEOUT", "10"},
		{"NAJDENO_LOGIN_BURST", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
