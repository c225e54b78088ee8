package cmd

import (
	"bytes"
	"fmt"

	"github.com/KaramelBytes/tbvplot/internal/chem"
	"github.com/KaramelBytes/tbvplot/internal/dataset"
	"github.com/KaramelBytes/tbvplot/internal/report"
	"github.com/KaramelBytes/tbvplot/internal/utils"
	"github.com/spf13/cobra"
)

var (
	mgExptCSV      string
	mgPredCSV      string
	mgOutputPath   string
	mgNoCorrection bool
)

var mergeCmd = &cobra.Command{
	Use:   "merge [expt_csv pred_csv]",
	Short: "Write the merged working table (predicted rows plus experimental reference columns)",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := fillPositional(cmd, args, []string{"expt-csv", "pred-csv"}); err != nil {
			return err
		}
		rows, err := loadMerged(mgExptCSV, mgPredCSV, mgNoCorrection)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := dataset.WriteMergedCSV(&buf, rows, reportOptions().IDColumn); err != nil {
			return err
		}
		if mgOutputPath == "" {
			_, err := cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}
		if err := utils.SafeWriteFile(mgOutputPath, buf.Bytes()); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote merged table to %s\n", mgOutputPath)
		return nil
	},
}

// loadMerged runs the load, correct and join steps shared by merge and stats.
func loadMerged(exptCSV, predCSV string, noCorrection bool) ([]dataset.Predicted, error) {
	if exptCSV == "" || predCSV == "" {
		return nil, fmt.Errorf("--expt-csv and --pred-csv are required")
	}
	var corrector chem.Corrector
	if noCorrection {
		corrector = chem.Constant(0)
	}
	return report.New(reportOptions(), corrector, logger).Load(exptCSV, predCSV)
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().StringVar(&mgExptCSV, "expt-csv", "", "experimental CSV (ThermoML export)")
	mergeCmd.Flags().StringVar(&mgPredCSV, "pred-csv", "", "predicted CSV")
	mergeCmd.Flags().StringVarP(&mgOutputPath, "output", "o", "", "optional path to write the merged CSV (default stdout)")
	mergeCmd.Flags().BoolVar(&mgNoCorrection, "no-correction", false, "skip the polarizability correction")
}
