// Package report turns an experimental and a predicted property table into
// parity charts and residual summaries.
package report

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"github.com/KaramelBytes/tbvplot/internal/chart"
	"github.com/KaramelBytes/tbvplot/internal/chem"
	"github.com/KaramelBytes/tbvplot/internal/dataset"
)

// Fixed axis layouts of the four charts.
var (
	densityRange          = chart.Range{Min: 0.6, Max: 1.4}
	densityDiffRange      = chart.Range{Min: -0.1, Max: 0.1}
	inverseRange          = chart.Range{Min: 0, Max: 1}
	inverseCorrectedRange = chart.Range{Min: 0, Max: 1.02}
)

const (
	densityTitle    = "Density [g/cm³]"
	dielectricTitle = "Inverse Static Dielectric Constant"
	correctedLabel  = "Corrected"
)

// Options controls labels and figure output.
type Options struct {
	ModelName       string
	ExperimentLabel string
	IDColumn        string
	// FigureSizeIn is the edge of the square canvas in inches.
	FigureSizeIn  float64
	DPI           int
	DensityLegend bool
}

// DefaultOptions mirrors the config defaults.
func DefaultOptions() Options {
	return Options{
		ModelName:       "GAFF",
		ExperimentLabel: "ThermoML",
		IDColumn:        dataset.DefaultIDColumn,
		FigureSizeIn:    6.5,
		DPI:             300,
	}
}

// Inputs names the two source tables and the four chart files.
type Inputs struct {
	ExptCSV       string
	PredCSV       string
	DensityOut    string
	DiffOut       string
	DielectricOut string
	NoCorrOut     string
}

// Validate checks that every path is set and every output has a known format.
func (in Inputs) Validate() error {
	fields := []struct{ name, val string }{
		{"expt_csv", in.ExptCSV},
		{"pred_csv", in.PredCSV},
		{"dens_pdf", in.DensityOut},
		{"diff_pdf", in.DiffOut},
		{"diel_pdf", in.DielectricOut},
		{"nocorr_pdf", in.NoCorrOut},
	}
	var errs []error
	for i, f := range fields {
		if f.val == "" {
			errs = append(errs, fmt.Errorf("%s is required", f.name))
			continue
		}
		if i >= 2 {
			if _, err := chart.Format(f.val); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", f.name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Generator runs the load, correct, join and render pipeline.
type Generator struct {
	opt       Options
	corrector chem.Corrector
	log       *zap.Logger
}

// New returns a Generator. A nil corrector selects the Lorentz-Lorenz model;
// a nil logger discards output.
func New(opt Options, corrector chem.Corrector, log *zap.Logger) *Generator {
	if corrector == nil {
		corrector = chem.NewLorentzLorenz()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opt.FigureSizeIn <= 0 {
		opt.FigureSizeIn = DefaultOptions().FigureSizeIn
	}
	return &Generator{opt: opt, corrector: corrector, log: log}
}

// Load reads both tables, applies the dielectric correction, indexes both by
// (substance, temperature) and merges the experimental reference columns
// onto the predicted rows.
func (g *Generator) Load(exptCSV, predCSV string) ([]dataset.Predicted, error) {
	expt, err := dataset.LoadExperimentalFile(exptCSV, g.opt.IDColumn)
	if err != nil {
		return nil, err
	}
	pred, err := dataset.LoadPredictedFile(predCSV, g.opt.IDColumn)
	if err != nil {
		return nil, err
	}
	g.log.Debug("loaded tables", zap.Int("experimental_rows", len(expt)), zap.Int("predicted_rows", len(pred)))

	if err := dataset.ApplyCorrections(pred, g.corrector); err != nil {
		return nil, err
	}
	idx, err := dataset.NewIndex(expt)
	if err != nil {
		return nil, err
	}
	if err := dataset.CheckUnique(pred); err != nil {
		return nil, err
	}
	st := dataset.Merge(pred, idx)
	if len(st.Unmatched) > 0 {
		g.log.Warn("predicted rows without experimental match",
			zap.Int("unmatched", len(st.Unmatched)),
			zap.Stringer("first", st.Unmatched[0]))
	}
	g.log.Info("merged tables", zap.Int("matched", st.Matched), zap.Int("rows", len(pred)))
	return pred, nil
}

// Run writes the density parity, density difference, uncorrected and
// corrected inverse dielectric charts.
func (g *Generator) Run(in Inputs) error {
	if err := in.Validate(); err != nil {
		return err
	}
	rows, err := g.Load(in.ExptCSV, in.PredCSV)
	if err != nil {
		return err
	}
	groups := groupByFormula(rows)

	dens, err := g.densityParity(groups)
	if err != nil {
		return err
	}
	if err := g.save(dens, in.DensityOut); err != nil {
		return err
	}

	diff, err := g.densityDifference(groups)
	if err != nil {
		return err
	}
	if err := g.save(diff, in.DiffOut); err != nil {
		return err
	}

	// The corrected series is drawn onto the uncorrected figure.
	diel, err := g.inverseDielectric(rows)
	if err != nil {
		return err
	}
	if err := g.save(diel, in.NoCorrOut); err != nil {
		return err
	}
	if err := g.addCorrected(diel, rows); err != nil {
		return err
	}
	return g.save(diel, in.DielectricOut)
}

// figure builds a square canvas. Parity charts, whose axes share one
// interval, also get an equal data aspect.
func (g *Generator) figure(title string, x, y chart.Range, xlabel string, legend bool) *chart.Figure {
	size := vg.Length(g.opt.FigureSizeIn) * vg.Inch
	return chart.New(chart.Options{
		Title:       title,
		XLabel:      xlabel,
		YLabel:      fmt.Sprintf("Experiment (%s)", g.opt.ExperimentLabel),
		X:           x,
		Y:           y,
		Legend:      legend,
		EqualAspect: x == y,
		Width:       size,
		Height:      size,
		DPI:         g.opt.DPI,
	})
}

func (g *Generator) predictedLabel() string {
	return fmt.Sprintf("Predicted (%s)", g.opt.ModelName)
}

func (g *Generator) densityParity(groups []formulaGroup) (*chart.Figure, error) {
	f := g.figure(densityTitle, densityRange, densityRange, g.predictedLabel(), g.opt.DensityLegend)
	for _, grp := range groups {
		if err := f.AddErrorSeries(grp.Formula, densityPoints(grp.Rows)); err != nil {
			return nil, err
		}
	}
	if err := f.AddGuide(densityRange.Min, densityRange.Max); err != nil {
		return nil, err
	}
	return f, nil
}

func (g *Generator) densityDifference(groups []formulaGroup) (*chart.Figure, error) {
	f := g.figure(densityTitle, densityDiffRange, densityRange, "Predicted - Experiment", g.opt.DensityLegend)
	for _, grp := range groups {
		if err := f.AddErrorSeries(grp.Formula, densityDifferencePoints(grp.Rows)); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (g *Generator) inverseDielectric(rows []dataset.Predicted) (*chart.Figure, error) {
	f := g.figure(dielectricTitle, inverseRange, inverseRange, g.predictedLabel(), true)
	if err := f.AddGuide(inverseRange.Min, inverseRange.Max); err != nil {
		return nil, err
	}
	if err := f.AddErrorSeries(g.opt.ModelName, inversePoints(rows, false)); err != nil {
		return nil, err
	}
	return f, nil
}

func (g *Generator) addCorrected(f *chart.Figure, rows []dataset.Predicted) error {
	if err := f.AddErrorSeries(correctedLabel, inversePoints(rows, true)); err != nil {
		return err
	}
	f.SetRange(inverseCorrectedRange, inverseCorrectedRange)
	return nil
}

func (g *Generator) save(f *chart.Figure, path string) error {
	if err := f.Save(path); err != nil {
		return err
	}
	g.log.Info("wrote chart",
		zap.String("path", path),
		zap.Int("series", f.Series()),
		zap.Int("dropped_points", f.Dropped()))
	return nil
}
