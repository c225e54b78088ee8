package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/tbvplot/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set tbvplot configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "model_name: %s\n", cfg.ModelName)
		fmt.Fprintf(out, "experiment_label: %s\n", cfg.ExperimentLabel)
		fmt.Fprintf(out, "id_column: %s\n", cfg.IDColumn)
		fmt.Fprintf(out, "figure_size_in: %.3g\n", cfg.FigureSizeIn)
		fmt.Fprintf(out, "dpi: %d\n", cfg.DPI)
		fmt.Fprintf(out, "density_legend: %t\n", cfg.DensityLegend)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "model_name":
			cfg.ModelName = val
		case "experiment_label":
			cfg.ExperimentLabel = val
		case "id_column":
			if val == "" {
				return fmt.Errorf("id_column must not be empty")
			}
			cfg.IDColumn = val
		case "figure_size_in":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid positive float for figure_size_in: %v", val)
			}
			cfg.FigureSizeIn = f
		case "dpi":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid positive int for dpi: %v", val)
			}
			cfg.DPI = i
		case "density_legend":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for density_legend: %w", err)
			}
			cfg.DensityLegend = b
		case "log_format":
			switch val {
			case "console", "json":
				cfg.LogFormat = val
			default:
				return fmt.Errorf("invalid log_format: %s (use console or json)", val)
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
