package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
gcca:
  n_components: 2
  reg_param: 0.001
logging:
  level: info
  format: console
data:
  queries:
    - SELECT f1, f2 FROM view_a ORDER BY sample_id
    - SELECT f1, f2, f3 FROM view_b ORDER BY sample_id
output:
  model_path: save/gcca.gob
  plot_path: save/gcca.png
db_creds:
  host: localhost
  port: "5432"
  username: user
  password: secret
  database: gcca
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.GCCA.NComponents)
	assert.Equal(t, 0.001, cfg.GCCA.RegParam)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "save/gcca.gob", cfg.Output.ModelPath)
	require.Len(t, cfg.Data.Queries, 2)
	assert.Equal(t, "SELECT f1, f2 FROM view_a ORDER BY sample_id", cfg.Data.Queries[0])
	assert.Equal(t, "localhost", cfg.DBCreds.Host)
	assert.Equal(t, "5432", cfg.DBCreds.Port)
}

func TestLoadConfigRejectsNegativeRegParam(t *testing.T) {
	path := writeConfig(t, `
gcca:
  reg_param: -0.5
`)

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
