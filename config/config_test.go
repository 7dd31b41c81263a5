package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gene2phenotype/g2ptools/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	filename := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o644))
	return filename
}

func TestLoadFillsDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
g2p_database:
  host: localhost
  name: g2p
  user: admin
gemini:
  api_key: secret
`))
	require.NoError(t, err)

	assert.Equal(t, 3306, cfg.G2PDatabase.Port)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, 10, cfg.Gemini.RPM)
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
g2p_database:
  host: localhost
  port: 3307
  name: g2p
gemini:
  api_key: secret
  model: gemini-2.5-pro
  rpm: 5
`))
	require.NoError(t, err)

	assert.Equal(t, 3307, cfg.G2PDatabase.Port)
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
	assert.Equal(t, 5, cfg.Gemini.RPM)
}

func TestRequireSections(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
g2p_database:
  host: localhost
  name: g2p
`))
	require.NoError(t, err)

	_, err = cfg.RequireG2PDatabase()
	assert.NoError(t, err)
	_, err = cfg.RequireEnsemblDatabase()
	assert.Error(t, err)
	_, err = cfg.RequireGemini()
	assert.Error(t, err)
	_, err = cfg.RequireAPI()
	assert.Error(t, err)
}
