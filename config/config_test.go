package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "daterange.db", cfg.Database.Path)
	assert.Equal(t, "@daily", cfg.Autogeneration.Schedule)
	assert.True(t, cfg.Autogeneration.Enabled)
	assert.Equal(t, []string{"*"}, cfg.Server.CORS.AllowOrigins)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
db:
  path: ":memory:"
autogeneration:
  schedule: "0 2 * * *"
entries:
  assign_type_code: FY
`), 0o600))

	// GIVEN: the environment overrides the file
	t.Setenv("DATERANGE_SERVER_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, "0 2 * * *", cfg.Autogeneration.Schedule)
	assert.Equal(t, "FY", cfg.Entries.AssignTypeCode)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Server:         ServerConfig{Port: 8080},
		Database:       DatabaseConfig{Path: "x.db"},
		Autogeneration: AutogenerationConfig{Enabled: true, Schedule: "@daily"},
	}
	require.NoError(t, valid.Validate())

	badPort := valid
	badPort.Server.Port = 70000
	assert.Error(t, badPort.Validate())

	noDB := valid
	noDB.Database.Path = ""
	assert.Error(t, noDB.Validate())

	badCron := valid
	badCron.Autogeneration.Schedule = "every day"
	assert.Error(t, badCron.Validate())

	// a disabled sweep doesn't need a schedule
	disabled := badCron
	disabled.Autogeneration.Enabled = false
	assert.NoError(t, disabled.Validate())
}
