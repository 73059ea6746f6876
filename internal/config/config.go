package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Rules      RulesConfig      `yaml:"rules" mapstructure:"rules"`
	Input      InputConfig      `yaml:"input" mapstructure:"input"`
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`
	Crosscheck CrosscheckConfig `yaml:"crosscheck" mapstructure:"crosscheck"`
	Report     ReportConfig     `yaml:"report" mapstructure:"report"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// RulesConfig points at the contest rules file.
type RulesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// InputConfig configures how log files are read.
type InputConfig struct {
	// Charset is an IANA/HTML charset name (e.g. "windows-1250"). Empty reads raw bytes.
	Charset string `yaml:"charset" mapstructure:"charset"`
	Workers int    `yaml:"workers" mapstructure:"workers"`
}

// ValidationConfig configures header validation policy.
type ValidationConfig struct {
	// DatePolicy is "exact" or "inclusive" for the TDate vs contest bounds check.
	DatePolicy string `yaml:"date_policy" mapstructure:"date_policy"`
}

// CrosscheckConfig configures the reconciliation pass.
type CrosscheckConfig struct {
	TimeToleranceMinutes int `yaml:"time_tolerance_minutes" mapstructure:"time_tolerance_minutes"`
}

// ReportConfig configures report rendering.
type ReportConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
	Output string `yaml:"output" mapstructure:"output"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Report formats understood by the report package.
var reportFormats = map[string]bool{
	"human": true,
	"json":  true,
	"xml":   true,
	"yaml":  true,
	"xlsx":  true,
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LOGXCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("rules.path", "")
	v.SetDefault("input.charset", "")
	v.SetDefault("input.workers", 4)
	v.SetDefault("validation.date_policy", "exact")
	v.SetDefault("crosscheck.time_tolerance_minutes", 5)
	v.SetDefault("report.format", "human")
	v.SetDefault("report.output", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks enum-like settings and numeric bounds.
func (c *Config) Validate() error {
	switch c.Validation.DatePolicy {
	case "exact", "inclusive":
	default:
		return eris.Errorf("config: validation.date_policy must be exact or inclusive (got %q)", c.Validation.DatePolicy)
	}
	if !reportFormats[strings.ToLower(c.Report.Format)] {
		return eris.Errorf("config: report.format %q is not supported", c.Report.Format)
	}
	if c.Input.Workers < 1 {
		return eris.Errorf("config: input.workers must be >= 1 (got %d)", c.Input.Workers)
	}
	if c.Crosscheck.TimeToleranceMinutes < 0 {
		return eris.Errorf("config: crosscheck.time_tolerance_minutes must be >= 0 (got %d)", c.Crosscheck.TimeToleranceMinutes)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
