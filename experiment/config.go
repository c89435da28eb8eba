package experiment

import (
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cropml/yieldbench/pkg/errors"
)

// Config collects every knob of a sweep. Defaults reproduce the
// reference study: a 3x3 scaling/encoding grid, an 80/20 split at seed
// 42, 5-fold cross-validation and a 0.1 correlation threshold.
type Config struct {
	DataPath             string   `mapstructure:"data_path" yaml:"data_path"`
	TargetColumn         string   `mapstructure:"target_column" yaml:"target_column"`
	TestSize             float64  `mapstructure:"test_size" yaml:"test_size"`
	Seed                 int      `mapstructure:"seed" yaml:"seed"`
	Folds                int      `mapstructure:"folds" yaml:"folds"`
	CorrelationThreshold float64  `mapstructure:"correlation_threshold" yaml:"correlation_threshold"`
	Scalings             []string `mapstructure:"scalings" yaml:"scalings"`
	Encodings            []string `mapstructure:"encodings" yaml:"encodings"`
	Models               []string `mapstructure:"models" yaml:"models"`
	Tuning               bool     `mapstructure:"tuning" yaml:"tuning"`
	LogLevel             string   `mapstructure:"log_level" yaml:"log_level"`
	Plot                 bool     `mapstructure:"plot" yaml:"plot"`
	PlotPath             string   `mapstructure:"plot_path" yaml:"plot_path"`
	Export               bool     `mapstructure:"export" yaml:"export"`
	ExportDir            string   `mapstructure:"export_dir" yaml:"export_dir"`
}

// DefaultConfig returns the study defaults with no data path set.
func DefaultConfig() *Config {
	return &Config{
		TargetColumn:         "Yield_tons_per_hectare",
		TestSize:             0.2,
		Seed:                 42,
		Folds:                5,
		CorrelationThreshold: 0.1,
		Scalings:             []string{ScaleNone, ScaleStandard, ScaleMinMax},
		Encodings:            []string{EncodeNone, EncodeLabel, EncodeOneHot},
		Models:               FamilyNames(),
		Tuning:               true,
		LogLevel:             "info",
		PlotPath:             "predicted_vs_actual.png",
		ExportDir:            "results",
	}
}

// LoadConfig reads configuration from file, environment and defaults.
// Precedence: env > config file > defaults. An empty cfgFile searches
// for yieldbench.yaml in the working directory; a missing file is not
// an error.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("YIELDBENCH")
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault("data_path", def.DataPath)
	v.SetDefault("target_column", def.TargetColumn)
	v.SetDefault("test_size", def.TestSize)
	v.SetDefault("seed", def.Seed)
	v.SetDefault("folds", def.Folds)
	v.SetDefault("correlation_threshold", def.CorrelationThreshold)
	v.SetDefault("scalings", def.Scalings)
	v.SetDefault("encodings", def.Encodings)
	v.SetDefault("models", def.Models)
	v.SetDefault("tuning", def.Tuning)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("plot", def.Plot)
	v.SetDefault("plot_path", def.PlotPath)
	v.SetDefault("export", def.Export)
	v.SetDefault("export_dir", def.ExportDir)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", cfgFile)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("yieldbench")
		v.SetConfigType("yaml")
		_ = v.ReadInConfig()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &cfg, nil
}

// SaveConfig writes the configuration as YAML.
func SaveConfig(cfg *Config, path string) error {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrapf(err, "write config %s", path)
	}
	return nil
}

// Validate checks the configuration before a run.
func (c *Config) Validate() error {
	if c.DataPath == "" {
		return errors.NewValidationError("data_path", "must point to a dataset file", c.DataPath)
	}
	if c.TargetColumn == "" {
		return errors.NewValidationError("target_column", "must not be empty", c.TargetColumn)
	}
	if c.TestSize <= 0 || c.TestSize >= 1 {
		return errors.NewValidationError("test_size", "must be between 0 and 1 exclusive", c.TestSize)
	}
	if c.Folds < 2 {
		return errors.NewValidationError("folds", "must be at least 2", c.Folds)
	}
	if c.CorrelationThreshold < 0 || c.CorrelationThreshold >= 1 {
		return errors.NewValidationError("correlation_threshold", "must be in [0, 1)", c.CorrelationThreshold)
	}

	if len(c.Scalings) == 0 {
		return errors.NewValidationError("scalings", "must list at least one method", c.Scalings)
	}
	for _, s := range c.Scalings {
		switch s {
		case ScaleNone, ScaleStandard, ScaleMinMax:
		default:
			return errors.NewValidationError("scalings", "unknown scaling method", s)
		}
	}

	if len(c.Encodings) == 0 {
		return errors.NewValidationError("encodings", "must list at least one method", c.Encodings)
	}
	for _, e := range c.Encodings {
		switch e {
		case EncodeNone, EncodeLabel, EncodeOneHot:
		default:
			return errors.NewValidationError("encodings", "unknown encoding method", e)
		}
	}

	if len(c.Models) == 0 {
		return errors.NewValidationError("models", "must list at least one model family", c.Models)
	}
	if _, err := ResolveFamilies(c.Models); err != nil {
		return err
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.NewValidationError("log_level", "must be debug, info, warn or error", c.LogLevel)
	}
	return nil
}
