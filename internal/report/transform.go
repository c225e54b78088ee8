package report

import (
	"math"
	"sort"

	"github.com/KaramelBytes/tbvplot/internal/chart"
	"github.com/KaramelBytes/tbvplot/internal/dataset"
)

// Inverse returns 1/x and the propagated uncertainty sigma/x^2.
func Inverse(x, sigma float64) (inv, invSigma float64) {
	return 1 / x, sigma / (x * x)
}

type formulaGroup struct {
	Formula string
	Rows    []dataset.Predicted
}

// groupByFormula returns rows grouped by formula in ascending formula order.
func groupByFormula(rows []dataset.Predicted) []formulaGroup {
	byFormula := map[string][]dataset.Predicted{}
	for _, r := range rows {
		byFormula[r.Formula] = append(byFormula[r.Formula], r)
	}
	out := make([]formulaGroup, 0, len(byFormula))
	for f, rs := range byFormula {
		out = append(out, formulaGroup{Formula: f, Rows: rs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Formula < out[j].Formula })
	return out
}

// densityPoints converts a group to g/mL: x predicted, y experimental.
func densityPoints(rows []dataset.Predicted) chart.Points {
	var p chart.Points
	for _, r := range rows {
		p.Append(
			dataset.KgPerM3ToGPerML(r.Density),
			dataset.KgPerM3ToGPerML(r.ExptDensity),
			dataset.KgPerM3ToGPerML(r.DensitySigma),
			dataset.KgPerM3ToGPerML(r.ExptDensityStd),
		)
	}
	return p
}

// densityDifferencePoints uses predicted minus experimental as x.
func densityDifferencePoints(rows []dataset.Predicted) chart.Points {
	p := densityPoints(rows)
	for i := range p.X {
		p.X[i] -= p.Y[i]
	}
	return p
}

// inversePoints maps dielectric constants to 1/eps with propagated errors.
// Missing sigmas count as zero.
func inversePoints(rows []dataset.Predicted, corrected bool) chart.Points {
	var p chart.Points
	for _, r := range rows {
		pred := r.Dielectric
		if corrected {
			pred = r.CorrectedDielectric
		}
		x, xerr := Inverse(pred, zeroIfNaN(r.DielectricSigma))
		y, yerr := Inverse(r.ExptDielectric, zeroIfNaN(r.ExptDielectricStd))
		p.Append(x, y, xerr, yerr)
	}
	return p
}

func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
