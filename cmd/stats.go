package cmd

import (
	"fmt"

	"github.com/KaramelBytes/tbvplot/internal/report"
	"github.com/KaramelBytes/tbvplot/internal/utils"
	"github.com/spf13/cobra"
)

var (
	stExptCSV      string
	stPredCSV      string
	stOutputPath   string
	stNoCorrection bool
)

var statsCmd = &cobra.Command{
	Use:   "stats [expt_csv pred_csv]",
	Short: "Summarize per-formula density and inverse dielectric residuals as Markdown",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := fillPositional(cmd, args, []string{"expt-csv", "pred-csv"}); err != nil {
			return err
		}
		rows, err := loadMerged(stExptCSV, stPredCSV, stNoCorrection)
		if err != nil {
			return err
		}
		md := report.Summarize(reportOptions().ModelName, rows).Markdown()
		if stOutputPath == "" {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}
		if err := utils.SafeWriteFile(stOutputPath, []byte(md)); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", stOutputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&stExptCSV, "expt-csv", "", "experimental CSV (ThermoML export)")
	statsCmd.Flags().StringVar(&stPredCSV, "pred-csv", "", "predicted CSV")
	statsCmd.Flags().StringVarP(&stOutputPath, "output", "o", "", "optional path to write the summary (Markdown)")
	statsCmd.Flags().BoolVar(&stNoCorrection, "no-correction", false, "skip the polarizability correction")
}
