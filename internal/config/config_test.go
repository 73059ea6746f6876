package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Rules.Path)
	assert.Equal(t, "", cfg.Input.Charset)
	assert.Equal(t, 4, cfg.Input.Workers)
	assert.Equal(t, "exact", cfg.Validation.DatePolicy)
	assert.Equal(t, 5, cfg.Crosscheck.TimeToleranceMinutes)
	assert.Equal(t, "human", cfg.Report.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
rules:
  path: contest.ini
input:
  charset: windows-1250
  workers: 2
validation:
  date_policy: inclusive
report:
  format: json
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "contest.ini", cfg.Rules.Path)
	assert.Equal(t, "windows-1250", cfg.Input.Charset)
	assert.Equal(t, 2, cfg.Input.Workers)
	assert.Equal(t, "inclusive", cfg.Validation.DatePolicy)
	assert.Equal(t, "json", cfg.Report.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply for unset values
	assert.Equal(t, 5, cfg.Crosscheck.TimeToleranceMinutes)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
report:
  format: xml
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("LOGXCHECK_REPORT_FORMAT", "yaml")
	t.Setenv("LOGXCHECK_CROSSCHECK_TIME_TOLERANCE_MINUTES", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "yaml", cfg.Report.Format)
	assert.Equal(t, 2, cfg.Crosscheck.TimeToleranceMinutes)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Input:      InputConfig{Workers: 1},
			Validation: ValidationConfig{DatePolicy: "exact"},
			Crosscheck: CrosscheckConfig{TimeToleranceMinutes: 5},
			Report:     ReportConfig{Format: "human"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"xlsx upper case", func(c *Config) { c.Report.Format = "XLSX" }, ""},
		{"bad date policy", func(c *Config) { c.Validation.DatePolicy = "loose" }, "date_policy"},
		{"bad format", func(c *Config) { c.Report.Format = "html" }, "report.format"},
		{"zero workers", func(c *Config) { c.Input.Workers = 0 }, "input.workers"},
		{"negative tolerance", func(c *Config) { c.Crosscheck.TimeToleranceMinutes = -1 }, "time_tolerance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
