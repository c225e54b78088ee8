package dataset

import (
	"fmt"
	"io"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/KaramelBytes/tbvplot/internal/chem"
)

// KgPerM3ToGPerML converts a density from kg/m^3 to g/mL.
func KgPerM3ToGPerML(v float64) float64 { return v / 1000 }

// MergeStats counts how many predicted rows found an experimental match.
type MergeStats struct {
	Matched   int
	Unmatched []Key
}

func (p *Predicted) resetMerged() {
	p.ExptDensity = math.NaN()
	p.ExptDielectric = math.NaN()
	p.ExptDensityStd = 0
	p.ExptDielectricStd = 0
}

// ApplyCorrections sets Correction and CorrectedDielectric on every row. The
// corrector receives the density converted to g/mL.
func ApplyCorrections(rows []Predicted, c chem.Corrector) error {
	for i := range rows {
		r := &rows[i]
		corr, err := c.Correction(r.Formula, KgPerM3ToGPerML(r.Density))
		if err != nil {
			return fmt.Errorf("dielectric correction for %s %s: %w", r.Formula, r.Key, err)
		}
		r.Correction = corr
		r.CorrectedDielectric = r.Dielectric + corr
	}
	return nil
}

// Merge copies the experimental reference columns onto the predicted rows.
// Missing uncertainty values become 0.
func Merge(rows []Predicted, idx Index) MergeStats {
	var st MergeStats
	for i := range rows {
		r := &rows[i]
		r.resetMerged()
		e, ok := idx.Lookup(r.Key)
		if !ok {
			st.Unmatched = append(st.Unmatched, r.Key)
			continue
		}
		st.Matched++
		r.ExptDensity = e.Density
		r.ExptDielectric = e.Dielectric
		r.ExptDensityStd = zeroIfNaN(e.DensityStd)
		r.ExptDielectricStd = zeroIfNaN(e.DielectricStd)
	}
	return st
}

func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// WriteMergedCSV writes the merged working table using the source column
// names plus the derived ones.
func WriteMergedCSV(w io.Writer, rows []Predicted, idColumn string) error {
	if idColumn == "" {
		idColumn = DefaultIDColumn
	}
	n := len(rows)
	ids := make([]string, n)
	formulas := make([]string, n)
	cols := map[string][]float64{}
	floatNames := []string{
		ColTemperature, ColDensity, ColDensitySigma, ColDielectric, ColDielectricSigma,
		ColCorrection, ColCorrectedDielectric,
		ColMergedDensity, ColMergedDielectric, ColMergedDensityStd, ColMergedDielectricStd,
	}
	for _, name := range floatNames {
		cols[name] = make([]float64, n)
	}
	for i, r := range rows {
		ids[i] = r.CAS
		formulas[i] = r.Formula
		cols[ColTemperature][i] = r.Temperature
		cols[ColDensity][i] = r.Density
		cols[ColDensitySigma][i] = r.DensitySigma
		cols[ColDielectric][i] = r.Dielectric
		cols[ColDielectricSigma][i] = r.DielectricSigma
		cols[ColCorrection][i] = r.Correction
		cols[ColCorrectedDielectric][i] = r.CorrectedDielectric
		cols[ColMergedDensity][i] = r.ExptDensity
		cols[ColMergedDielectric][i] = r.ExptDielectric
		cols[ColMergedDensityStd][i] = r.ExptDensityStd
		cols[ColMergedDielectricStd][i] = r.ExptDielectricStd
	}
	ss := []series.Series{
		series.New(ids, series.String, idColumn),
		series.New(formulas, series.String, ColFormula),
	}
	for _, name := range floatNames {
		ss = append(ss, series.New(cols[name], series.Float, name))
	}
	df := dataframe.New(ss...)
	if df.Err != nil {
		return fmt.Errorf("build merged table: %w", df.Err)
	}
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("write merged csv: %w", err)
	}
	return nil
}
