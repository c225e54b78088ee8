package dataset

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

	"github.com/KaramelBytes/tbvplot/internal/chem"
)

const exptHeader = `cas,"Temperature, K","Mass density, kg/m3","Mass density, kg/m3_uncertainty_bestguess","Relative permittivity at zero frequency","Relative permittivity at zero frequency_uncertainty_bestguess"`

var exptRows = []string{
	exptHeader,
	"64-17-5,298.15,785.1,0.5,24.3,0.2",
	"64-17-5,318.15,768.0,,23.0,",
	"67-56-1,298.15,786.6,0.4,32.6,0.3",
}

var predRows = []string{
	"cas,formula,temperature,density,density_sigma,dielectric,dielectric_sigma",
	"64-17-5,C2H6O,298.15,780.0,1.0,20.0,1.5",
	"64-17-5,C2H6O,318.15,760.0,1.2,19.0,1.2",
	"67-56-1,CH4O,298.15,790.0,0.8,30.0,2.0",
	"71-43-2,C6H6,298.15,870.0,0.7,2.2,0.01",
}

func csvReader(rows []string) *strings.Reader {
	return strings.NewReader(strings.Join(rows, "\n") + "\n")
}

func loadBoth(t *testing.T) ([]Experimental, []Predicted) {
	t.Helper()
	expt, err := LoadExperimental(csvReader(exptRows), "")
	require.NoError(t, err)
	pred, err := LoadPredicted(csvReader(predRows), "")
	require.NoError(t, err)
	return expt, pred
}

func TestLoadExperimental(t *testing.T) {
	expt, _ := loadBoth(t)
	require.Len(t, expt, 3)
	assert.Equal(t, Key{CAS: "64-17-5", Temperature: 298.15}, expt[0].Key)
	assert.Equal(t, 785.1, expt[0].Density)
	assert.Equal(t, 0.2, expt[0].DielectricStd)
	assert.True(t, math.IsNaN(expt[1].DensityStd), "empty cell should load as NaN")
	assert.True(t, math.IsNaN(expt[1].DielectricStd))
}

func TestLoadPredicted(t *testing.T) {
	_, pred := loadBoth(t)
	require.Len(t, pred, 4)
	assert.Equal(t, "CH4O", pred[2].Formula)
	assert.Equal(t, 0.8, pred[2].DensitySigma)
	assert.True(t, math.IsNaN(pred[0].ExptDensity), "merged columns start unset")
}

func TestLoadMissingColumn(t *testing.T) {
	rows := []string{"cas,formula,temperature,density", "64-17-5,C2H6O,298.15,780.0"}
	_, err := LoadPredicted(csvReader(rows), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
	var mc *MissingColumnError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, []string{ColDensitySigma, ColDielectric, ColDielectricSigma}, mc.Columns)
}

func TestLoadCustomIDColumn(t *testing.T) {
	rows := append([]string{strings.Replace(exptHeader, "cas", "substance", 1)}, exptRows[1:]...)
	expt, err := LoadExperimental(csvReader(rows), "substance")
	require.NoError(t, err)
	assert.Equal(t, "67-56-1", expt[2].CAS)

	_, err = LoadExperimental(csvReader(rows), "")
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "expt.csv")
	require.NoError(t, os.WriteFile(p, []byte(strings.Join(exptRows, "\n")), 0o644))
	expt, err := LoadExperimentalFile(p, "")
	require.NoError(t, err)
	assert.Len(t, expt, 3)

	_, err = LoadPredictedFile(filepath.Join(dir, "missing.csv"), "")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestMergeCopiesReferenceColumns(t *testing.T) {
	expt, pred := loadBoth(t)
	idx, err := NewIndex(expt)
	require.NoError(t, err)

	st := Merge(pred, idx)
	assert.Equal(t, 3, st.Matched)
	assert.Equal(t, []Key{{CAS: "71-43-2", Temperature: 298.15}}, st.Unmatched)

	assert.Equal(t, 785.1, pred[0].ExptDensity)
	assert.Equal(t, 768.0, pred[1].ExptDensity)
	assert.NotEqual(t, pred[0].ExptDensity, pred[1].ExptDensity, "temperatures of one substance must not collapse")
	assert.Equal(t, 24.3, pred[0].ExptDielectric)
	assert.Equal(t, 0.5, pred[0].ExptDensityStd)

	// Missing uncertainties default to zero, not NaN.
	assert.Equal(t, 0.0, pred[1].ExptDensityStd)
	assert.Equal(t, 0.0, pred[1].ExptDielectricStd)

	// Unmatched rows keep NaN references and zero uncertainties.
	assert.True(t, math.IsNaN(pred[3].ExptDensity))
	assert.True(t, math.IsNaN(pred[3].ExptDielectric))
	assert.Equal(t, 0.0, pred[3].ExptDensityStd)
}

func TestNewIndexRejectsDuplicates(t *testing.T) {
	rows := append(append([]string{}, exptRows...), "64-17-5,298.15,786.0,0.5,24.5,0.2", "64-17-5,298.15,786.2,0.5,24.5,0.2")
	expt, err := LoadExperimental(csvReader(rows), "")
	require.NoError(t, err)

	_, err = NewIndex(expt)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateKey))
	var de *DuplicateKeyError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "experimental", de.Table)
	assert.Equal(t, []Key{{CAS: "64-17-5", Temperature: 298.15}}, de.Keys)
	assert.Contains(t, err.Error(), "(64-17-5, 298.15 K)")
}

func TestCheckUnique(t *testing.T) {
	_, pred := loadBoth(t)
	require.NoError(t, CheckUnique(pred))
	pred = append(pred, pred[0])
	err := CheckUnique(pred)
	assert.True(t, errors.Is(err, ErrDuplicateKey))
}

func TestApplyCorrections(t *testing.T) {
	_, pred := loadBoth(t)
	require.NoError(t, ApplyCorrections(pred, chem.Constant(0)))
	for _, r := range pred {
		assert.Equal(t, r.Dielectric, r.CorrectedDielectric)
	}

	require.NoError(t, ApplyCorrections(pred, chem.Constant(0.5)))
	for _, r := range pred {
		assert.Equal(t, r.Dielectric+0.5, r.CorrectedDielectric)
		assert.Equal(t, 0.5, r.Correction)
	}

	require.NoError(t, ApplyCorrections(pred, chem.NewLorentzLorenz()))
	for _, r := range pred {
		assert.Greater(t, r.Correction, 0.0)
		assert.Equal(t, r.Dielectric+r.Correction, r.CorrectedDielectric)
	}
}

type recordingCorrector struct{ densities []float64 }

func (c *recordingCorrector) Correction(_ string, d float64) (float64, error) {
	c.densities = append(c.densities, d)
	return 0, nil
}

func TestApplyCorrectionsUsesGramsPerML(t *testing.T) {
	_, pred := loadBoth(t)
	rc := &recordingCorrector{}
	require.NoError(t, ApplyCorrections(pred, rc))
	assert.Equal(t, []float64{780.0 / 1000, 760.0 / 1000, 790.0 / 1000, 870.0 / 1000}, rc.densities)
}

func TestApplyCorrectionsError(t *testing.T) {
	_, pred := loadBoth(t)
	pred[1].Formula = "C2Qq"
	err := ApplyCorrections(pred, chem.NewLorentzLorenz())
	require.Error(t, err)
	assert.True(t, errors.Is(err, chem.ErrUnknownElement))
	assert.Contains(t, err.Error(), "318.15")
}

func TestKgPerM3ToGPerML(t *testing.T) {
	for _, v := range []float64{785.1, 1000, 0.3, 1397.25} {
		assert.Equal(t, v/1000, KgPerM3ToGPerML(v))
	}
}

func TestWriteMergedCSV(t *testing.T) {
	expt, pred := loadBoth(t)
	idx, err := NewIndex(expt)
	require.NoError(t, err)
	require.NoError(t, ApplyCorrections(pred, chem.Constant(0)))
	Merge(pred, idx)

	var buf bytes.Buffer
	require.NoError(t, WriteMergedCSV(&buf, pred, ""))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	header := lines[0]
	for _, c := range []string{"cas", ColFormula, ColCorrectedDielectric, ColMergedDensity, ColMergedDielectricStd} {
		assert.Contains(t, header, c)
	}
	assert.True(t, strings.HasPrefix(lines[1], "64-17-5,C2H6O,"))
}

func TestLoadRejectsBlankTemperature(t *testing.T) {
	rows := []string{
		exptHeader,
		"64-17-5,,785.1,0.5,24.3,0.2",
		"64-17-5,,700.0,0.5,24.3,0.2",
	}
	_, err := LoadExperimental(csvReader(rows), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidKey))
	var ke *InvalidKeyError
	require.True(t, errors.As(err, &ke))
	assert.Equal(t, "experimental", ke.Table)
	assert.Equal(t, 2, ke.Line)
	assert.Contains(t, err.Error(), "64-17-5")
}

func TestLoadRejectsInvalidPredictedKeys(t *testing.T) {
	rows := append(append([]string{}, predRows...), "71-43-2,C6H6,hot,870.0,0.7,2.2,0.01")
	_, err := LoadPredicted(csvReader(rows), "")
	var ke *InvalidKeyError
	require.True(t, errors.As(err, &ke), "got %v", err)
	assert.Equal(t, "predicted", ke.Table)
	assert.Equal(t, 6, ke.Line)

	rows = append(append([]string{}, predRows...), ",C6H6,298.15,870.0,0.7,2.2,0.01")
	_, err = LoadPredicted(csvReader(rows), "")
	assert.True(t, errors.Is(err, ErrInvalidKey))
	assert.Contains(t, err.Error(), "empty identifier")
}

func TestLoadStripsBOM(t *testing.T) {
	rows := append([]string{"\ufeff" + exptHeader}, exptRows[1:]...)
	expt, err := LoadExperimental(csvReader(rows), "")
	require.NoError(t, err)
	require.Len(t, expt, 3)
	assert.Equal(t, "64-17-5", expt[0].CAS)
}
