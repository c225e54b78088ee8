package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// ModelName is the force field shown in axis labels, e.g. "Predicted (GAFF)".
	ModelName       string `mapstructure:"model_name" yaml:"model_name"`
	ExperimentLabel string `mapstructure:"experiment_label" yaml:"experiment_label"`
	// IDColumn is the substance identifier column shared by both CSVs.
	IDColumn string `mapstructure:"id_column" yaml:"id_column"`

	// Figure output
	FigureSizeIn  float64 `mapstructure:"figure_size_in" yaml:"figure_size_in"`
	DPI           int     `mapstructure:"dpi" yaml:"dpi"`
	DensityLegend bool    `mapstructure:"density_legend" yaml:"density_legend"`

	// Logging: "console" or "json"
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tbvplot"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tbvplot/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults; CLI flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TBVPLOT")
	v.AutomaticEnv()

	v.SetDefault("model_name", "GAFF")
	v.SetDefault("experiment_label", "ThermoML")
	v.SetDefault("id_column", "cas")
	v.SetDefault("figure_size_in", 6.5)
	v.SetDefault("dpi", 300)
	v.SetDefault("density_legend", false)
	v.SetDefault("log_format", "console")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.FigureSizeIn <= 0 {
		return nil, fmt.Errorf("figure_size_in must be positive, got %v", c.FigureSizeIn)
	}
	if c.DPI <= 0 {
		return nil, fmt.Errorf("dpi must be positive, got %d", c.DPI)
	}
	return &c, nil
}
