package cmd

import (
	"fmt"

	"github.com/KaramelBytes/tbvplot/internal/chem"
	"github.com/KaramelBytes/tbvplot/internal/report"
	"github.com/spf13/cobra"
)

var (
	plExptCSV      string
	plPredCSV      string
	plDensOut      string
	plDiffOut      string
	plDielOut      string
	plNoCorrOut    string
	plNoCorrection bool
)

// plotArgOrder is the positional order of the plot command's inputs.
var plotArgOrder = []string{"expt-csv", "pred-csv", "dens-pdf", "diff-pdf", "diel-pdf", "nocorr-pdf"}

var plotCmd = &cobra.Command{
	Use:   "plot [expt_csv pred_csv dens_pdf diff_pdf diel_pdf nocorr_pdf]",
	Short: "Render the density and inverse dielectric parity charts",
	Long: `Render four charts: density parity, density difference, uncorrected inverse
dielectric and corrected inverse dielectric. Inputs may be given by flag or
positionally; positionals fill the flags that were not set, in order.
The output format follows each file's extension (pdf, svg, eps, png, jpg, tiff).`,
	Args: cobra.MaximumNArgs(len(plotArgOrder)),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := fillPositional(cmd, args, plotArgOrder); err != nil {
			return err
		}
		in := report.Inputs{
			ExptCSV:       plExptCSV,
			PredCSV:       plPredCSV,
			DensityOut:    plDensOut,
			DiffOut:       plDiffOut,
			DielectricOut: plDielOut,
			NoCorrOut:     plNoCorrOut,
		}
		var corrector chem.Corrector
		if plNoCorrection {
			corrector = chem.Constant(0)
		}
		return report.New(reportOptions(), corrector, logger).Run(in)
	},
}

// fillPositional assigns args, in order, to the named flags that were not
// set explicitly.
func fillPositional(cmd *cobra.Command, args []string, names []string) error {
	i := 0
	for _, name := range names {
		if i >= len(args) {
			break
		}
		if cmd.Flags().Changed(name) {
			continue
		}
		if err := cmd.Flags().Set(name, args[i]); err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
		i++
	}
	if i < len(args) {
		return fmt.Errorf("too many positional arguments: %v", args[i:])
	}
	return nil
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.Flags().StringVar(&plExptCSV, "expt-csv", "", "experimental CSV (ThermoML export)")
	plotCmd.Flags().StringVar(&plPredCSV, "pred-csv", "", "predicted CSV")
	plotCmd.Flags().StringVar(&plDensOut, "dens-pdf", "", "output path for the density parity chart")
	plotCmd.Flags().StringVar(&plDiffOut, "diff-pdf", "", "output path for the density difference chart")
	plotCmd.Flags().StringVar(&plDielOut, "diel-pdf", "", "output path for the corrected inverse dielectric chart")
	plotCmd.Flags().StringVar(&plNoCorrOut, "nocorr-pdf", "", "output path for the uncorrected inverse dielectric chart")
	plotCmd.Flags().BoolVar(&plNoCorrection, "no-correction", false, "skip the polarizability correction (corrected == raw)")
}
