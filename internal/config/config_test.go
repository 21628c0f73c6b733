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
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("summoner:\n  name: Hide on bush\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Hide on bush", cfg.Summoner.Name)
	assert.Equal(t, "jp1", cfg.Summoner.Region)
	assert.Equal(t, "data/riftstats.db", cfg.Database.Path)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, time.Hour, cfg.Server.RefreshInterval)
	assert.Equal(t, "docs", cfg.Report.OutputDir)
	assert.Equal(t, 20, cfg.Report.RecentCount)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenDuration)
}

func TestLoadEnvOverridesAPIKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("riot:\n  api_key: from-file\n"), 0600))

	t.Setenv("RIOT_API_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Riot.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	cfg := &Config{}
	cfg.Summoner.Name = "Faker"
	cfg.Summoner.Region = "kr"
	cfg.Server.HTTPPort = 9090

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Faker", loaded.Summoner.Name)
	assert.Equal(t, "kr", loaded.Summoner.Region)
	assert.Equal(t, 9090, loaded.Server.HTTPPort)
}
