package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/tbvplot/internal/config"
	"github.com/KaramelBytes/tbvplot/internal/logging"
	"github.com/KaramelBytes/tbvplot/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags (override config if set)
	cfgFile       string
	debug         bool
	flagModelName string
	flagIDColumn  string
	flagLogFormat string

	// Loaded configuration and run logger
	cfg    *cfgpkg.Global
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "tbvplot",
	Short: "tbvplot: parity charts of predicted vs. experimental density and dielectric constant",
	Long: `tbvplot joins a predicted property table with experimental reference data on
(substance, temperature), applies a polarizability correction to the predicted
dielectric constant, and renders density and inverse dielectric parity charts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tbvplot/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagModelName, "model-name", "", "force field name shown in axis labels (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagIDColumn, "id-column", "", "substance identifier column in both CSVs (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log encoding: console|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = defaultConfig()
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("model-name") && flagModelName != "" {
		cfg.ModelName = flagModelName
	}
	if f.Changed("id-column") && flagIDColumn != "" {
		cfg.IDColumn = flagIDColumn
	}
	if f.Changed("log-format") && flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}

	l, err := logging.New(logging.Options{Debug: debug, Format: cfg.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: logging disabled: %v\n", err)
		l = zap.NewNop()
	}
	logger = l
}

func defaultConfig() *cfgpkg.Global {
	d := report.DefaultOptions()
	return &cfgpkg.Global{
		ModelName:       d.ModelName,
		ExperimentLabel: d.ExperimentLabel,
		IDColumn:        d.IDColumn,
		FigureSizeIn:    d.FigureSizeIn,
		DPI:             d.DPI,
		DensityLegend:   d.DensityLegend,
		LogFormat:       "console",
	}
}

// reportOptions maps the effective configuration onto the generator.
func reportOptions() report.Options {
	c := cfg
	if c == nil {
		c = defaultConfig()
	}
	return report.Options{
		ModelName:       c.ModelName,
		ExperimentLabel: c.ExperimentLabel,
		IDColumn:        c.IDColumn,
		FigureSizeIn:    c.FigureSizeIn,
		DPI:             c.DPI,
		DensityLegend:   c.DensityLegend,
	}
}
