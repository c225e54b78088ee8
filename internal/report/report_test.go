package report

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tbvplot/internal/chart"
	"github.com/KaramelBytes/tbvplot/internal/chem"
	"github.com/KaramelBytes/tbvplot/internal/dataset"
)

const exptCSV = `cas,"Temperature, K","Mass density, kg/m3","Mass density, kg/m3_uncertainty_bestguess","Relative permittivity at zero frequency","Relative permittivity at zero frequency_uncertainty_bestguess"
64-17-5,298.15,785.1,0.5,24.3,0.2
67-56-1,298.15,786.6,,32.6,
`

const predCSV = `cas,formula,temperature,density,density_sigma,dielectric,dielectric_sigma
64-17-5,C2H6O,298.15,780.0,1.0,20.0,1.5
67-56-1,CH4O,298.15,790.0,0.8,30.0,2.0
`

func writeInputs(t *testing.T, expt, pred string) Inputs {
	t.Helper()
	dir := t.TempDir()
	in := Inputs{
		ExptCSV:       filepath.Join(dir, "expt.csv"),
		PredCSV:       filepath.Join(dir, "pred.csv"),
		DensityOut:    filepath.Join(dir, "out", "density.pdf"),
		DiffOut:       filepath.Join(dir, "out", "density_diff.pdf"),
		DielectricOut: filepath.Join(dir, "out", "dielectric.pdf"),
		NoCorrOut:     filepath.Join(dir, "out", "dielectric_nocorr.pdf"),
	}
	require.NoError(t, os.WriteFile(in.ExptCSV, []byte(expt), 0o644))
	require.NoError(t, os.WriteFile(in.PredCSV, []byte(pred), 0o644))
	return in
}

func TestInverse(t *testing.T) {
	inv, sigma := Inverse(2, 0.2)
	assert.Equal(t, 0.5, inv)
	assert.InDelta(t, 0.05, sigma, 1e-15)

	inv, _ = Inverse(0, 1)
	assert.True(t, math.IsInf(inv, 1))
}

func TestDensityPointsScale(t *testing.T) {
	pred, predSigma, expt, exptStd := 780.0, 1.2, 785.1, 0.5
	rows := []dataset.Predicted{{Density: pred, DensitySigma: predSigma, ExptDensity: expt, ExptDensityStd: exptStd}}
	p := densityPoints(rows)
	assert.Equal(t, pred/1000, p.X[0])
	assert.Equal(t, expt/1000, p.Y[0])
	assert.Equal(t, predSigma/1000, p.XErr[0])
	assert.Equal(t, exptStd/1000, p.YErr[0])

	d := densityDifferencePoints(rows)
	assert.Equal(t, pred/1000-expt/1000, d.X[0])
	assert.Equal(t, expt/1000, d.Y[0])
}

func TestInversePointsDefaultsMissingSigma(t *testing.T) {
	rows := []dataset.Predicted{{
		Dielectric: 2, DielectricSigma: math.NaN(), CorrectedDielectric: 4,
		ExptDielectric: 2, ExptDielectricStd: 0.2,
	}}
	raw := inversePoints(rows, false)
	assert.Equal(t, 0.5, raw.X[0])
	assert.Equal(t, 0.0, raw.XErr[0])
	assert.InDelta(t, 0.05, raw.YErr[0], 1e-15)

	corr := inversePoints(rows, true)
	assert.Equal(t, 0.25, corr.X[0])
}

func TestGroupByFormulaSorted(t *testing.T) {
	rows := []dataset.Predicted{{Formula: "CH4O"}, {Formula: "C2H6O"}, {Formula: "CH4O"}}
	groups := groupByFormula(rows)
	require.Len(t, groups, 2)
	assert.Equal(t, "C2H6O", groups[0].Formula)
	assert.Equal(t, "CH4O", groups[1].Formula)
	assert.Len(t, groups[1].Rows, 2)
}

func TestRunWritesFourCharts(t *testing.T) {
	in := writeInputs(t, exptCSV, predCSV)
	g := New(DefaultOptions(), nil, nil)
	require.NoError(t, g.Run(in))
	for _, p := range []string{in.DensityOut, in.DiffOut, in.DielectricOut, in.NoCorrOut} {
		info, err := os.Stat(p)
		require.NoError(t, err, p)
		assert.NotZero(t, info.Size(), p)
	}
	entries, err := os.ReadDir(filepath.Dir(in.DensityOut))
	require.NoError(t, err)
	assert.Len(t, entries, 4, "exactly four files are written")
}

func TestRunMixedFormats(t *testing.T) {
	in := writeInputs(t, exptCSV, predCSV)
	in.DensityOut = strings.TrimSuffix(in.DensityOut, ".pdf") + ".svg"
	in.DiffOut = strings.TrimSuffix(in.DiffOut, ".pdf") + ".png"
	opt := DefaultOptions()
	opt.FigureSizeIn = 2
	opt.DPI = 50
	require.NoError(t, New(opt, chem.Constant(0), nil).Run(in))
	b, err := os.ReadFile(in.DiffOut)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "\x89PNG"))
}

func TestLoadMerges(t *testing.T) {
	in := writeInputs(t, exptCSV, predCSV)
	rows, err := New(DefaultOptions(), chem.Constant(0), nil).Load(in.ExptCSV, in.PredCSV)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 785.1, rows[0].ExptDensity)
	assert.Equal(t, 0.0, rows[1].ExptDensityStd)
	assert.Equal(t, rows[0].Dielectric, rows[0].CorrectedDielectric)
}

func TestRunRejectsDuplicateKeys(t *testing.T) {
	dup := exptCSV + "64-17-5,298.15,785.3,0.5,24.1,0.2\n"
	in := writeInputs(t, dup, predCSV)
	err := New(DefaultOptions(), nil, nil).Run(in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dataset.ErrDuplicateKey))
	_, statErr := os.Stat(in.DensityOut)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "no chart is written on failure")
}

func TestRunMissingInput(t *testing.T) {
	in := writeInputs(t, exptCSV, predCSV)
	in.PredCSV = filepath.Join(filepath.Dir(in.PredCSV), "absent.csv")
	err := New(DefaultOptions(), nil, nil).Run(in)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestValidate(t *testing.T) {
	in := writeInputs(t, exptCSV, predCSV)
	require.NoError(t, in.Validate())

	in.DiffOut = ""
	in.NoCorrOut = "chart.html"
	err := in.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diff_pdf is required")
	assert.True(t, errors.Is(err, chart.ErrUnsupportedFormat))
}

func TestZeroDielectricDoesNotFail(t *testing.T) {
	pred := strings.Replace(predCSV, "30.0,2.0", "0,2.0", 1)
	in := writeInputs(t, exptCSV, pred)
	require.NoError(t, New(DefaultOptions(), chem.Constant(0), nil).Run(in))
}

func TestSummarize(t *testing.T) {
	in := writeInputs(t, exptCSV, predCSV+"71-43-2,C6H6,298.15,870.0,0.7,2.2,0.01\n")
	rows, err := New(DefaultOptions(), chem.Constant(0), nil).Load(in.ExptCSV, in.PredCSV)
	require.NoError(t, err)

	s := Summarize("GAFF", rows)
	assert.Equal(t, 3, s.Rows)
	assert.Equal(t, 2, s.Matched)
	require.Len(t, s.Groups, 3)
	assert.Equal(t, 2, s.Overall.Density.N)

	d1 := 0.780 - 0.7851
	d2 := 0.790 - 0.7866
	assert.InDelta(t, (d1+d2)/2, s.Overall.Density.MeanSigned, 1e-12)
	assert.InDelta(t, math.Sqrt((d1*d1+d2*d2)/2), s.Overall.Density.RMSE, 1e-12)
	assert.Equal(t, s.Overall.InvDielectric, s.Overall.InvCorrectedDielectric, "zero correction leaves residuals unchanged")

	md := s.Markdown()
	assert.Contains(t, md, "[PARITY SUMMARY]")
	assert.Contains(t, md, "Rows: 3 (matched 2)")
	assert.Contains(t, md, "- C6H6 (n=0): no data")
}

func TestCorrectedSeriesOverlaysUncorrected(t *testing.T) {
	rows := []dataset.Predicted{{
		Formula: "C2H6O", Dielectric: 20, DielectricSigma: 1.5, CorrectedDielectric: 20.8,
		ExptDielectric: 24.3, ExptDielectricStd: 0.2,
	}}
	g := New(DefaultOptions(), chem.Constant(0), nil)
	f, err := g.inverseDielectric(rows)
	require.NoError(t, err)
	require.NoError(t, f.WriteTo(&bytes.Buffer{}, "svg"))
	assert.Equal(t, 1, f.Series())
	x, y := f.Axes()
	assert.Equal(t, inverseRange, x)
	assert.Equal(t, inverseRange, y)

	require.NoError(t, g.addCorrected(f, rows))
	require.NoError(t, f.WriteTo(&bytes.Buffer{}, "svg"))
	assert.Equal(t, 2, f.Series(), "corrected series is drawn on the uncorrected figure")
	x, y = f.Axes()
	assert.Equal(t, chart.Range{Min: 0, Max: 1.02}, x)
	assert.Equal(t, chart.Range{Min: 0, Max: 1.02}, y)
}
