package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, DriverJSON, cfg.StoreDriver)
	assert.Equal(t, 16*1024*1024, cfg.MaxUploadBytes)
	assert.Equal(t, 5, cfg.LowStockThreshold)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.UseGoogleCloud)

	m := cfg.Media()
	assert.Equal(t, "uploads", m.UploadRoot)
	assert.Equal(t, 15*time.Second, m.AITimeout)
	assert.Equal(t, "us-central1", m.Location)
}

func TestLoad_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("APP_PORT", "9000")
	v.Set("STORE_DRIVER", "SQLite")
	v.Set("USE_GOOGLE_CLOUD", "true")
	v.Set("AI_TIMEOUT", "2s")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.AppPort)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.True(t, cfg.Media().UseCloud)
	assert.Equal(t, 2*time.Second, cfg.Media().AITimeout)
}

func TestLoad_Invalid(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "mongo")
	_, err := Load(v)
	assert.ErrorContains(t, err, "unsupported STORE_DRIVER")

	v = viper.New()
	v.Set("MAX_UPLOAD_BYTES", 0)
	_, err = Load(v)
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("ARTISANHUB_TEST_KEY=from-dotenv\n"), 0o600))
	t.Setenv("ARTISANHUB_TEST_KEY", "")
	os.Unsetenv("ARTISANHUB_TEST_KEY")

	require.NoError(t, LoadDotEnv(file))
	assert.Equal(t, "from-dotenv", os.Getenv("ARTISANHUB_TEST_KEY"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}
