package report

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/tbvplot/internal/dataset"
)

// Residuals summarizes predicted minus experimental differences.
type Residuals struct {
	N          int
	MeanSigned float64
	RMSE       float64
}

func residuals(diffs []float64) Residuals {
	if len(diffs) == 0 {
		return Residuals{}
	}
	return Residuals{
		N:          len(diffs),
		MeanSigned: stat.Mean(diffs, nil),
		RMSE:       math.Sqrt(floats.Dot(diffs, diffs) / float64(len(diffs))),
	}
}

// GroupSummary holds the residuals of one formula (or of all rows).
type GroupSummary struct {
	Formula string
	Rows    int
	// Density residuals in g/mL.
	Density Residuals
	// Inverse dielectric residuals, raw and corrected.
	InvDielectric          Residuals
	InvCorrectedDielectric Residuals
}

// Summary is a descriptive parity report over merged rows.
type Summary struct {
	Model   string
	Rows    int
	Matched int
	Overall GroupSummary
	Groups  []GroupSummary
}

func summarizeGroup(name string, rows []dataset.Predicted) GroupSummary {
	var dens, inv, invCorr []float64
	for _, r := range rows {
		d := dataset.KgPerM3ToGPerML(r.Density) - dataset.KgPerM3ToGPerML(r.ExptDensity)
		if finite(d) {
			dens = append(dens, d)
		}
		if v := 1/r.Dielectric - 1/r.ExptDielectric; finite(v) {
			inv = append(inv, v)
		}
		if v := 1/r.CorrectedDielectric - 1/r.ExptDielectric; finite(v) {
			invCorr = append(invCorr, v)
		}
	}
	return GroupSummary{
		Formula:                name,
		Rows:                   len(rows),
		Density:                residuals(dens),
		InvDielectric:          residuals(inv),
		InvCorrectedDielectric: residuals(invCorr),
	}
}

// Summarize computes per-formula and overall residuals. Rows without a
// finite experimental counterpart are excluded from each statistic.
func Summarize(model string, rows []dataset.Predicted) *Summary {
	s := &Summary{Model: model, Rows: len(rows)}
	for _, r := range rows {
		if !math.IsNaN(r.ExptDensity) || !math.IsNaN(r.ExptDielectric) {
			s.Matched++
		}
	}
	s.Overall = summarizeGroup("all", rows)
	for _, g := range groupByFormula(rows) {
		s.Groups = append(s.Groups, summarizeGroup(g.Formula, g.Rows))
	}
	return s
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Markdown renders a compact report suitable for notes or standalone docs.
func (s *Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("[PARITY SUMMARY]\n")
	if s.Model != "" {
		b.WriteString(fmt.Sprintf("Model: %s\n", s.Model))
	}
	b.WriteString(fmt.Sprintf("Rows: %d (matched %d)\n", s.Rows, s.Matched))
	b.WriteString(fmt.Sprintf("Formulas: %d\n", len(s.Groups)))

	all := append([]GroupSummary{s.Overall}, s.Groups...)

	b.WriteString("\n[DENSITY g/mL]\n")
	for _, g := range all {
		b.WriteString(fmt.Sprintf("- %s (n=%d): %s\n", g.Formula, g.Density.N, fmtResiduals(g.Density)))
	}

	b.WriteString("\n[INVERSE DIELECTRIC]\n")
	for _, g := range all {
		b.WriteString(fmt.Sprintf("- %s (n=%d): raw %s; corrected %s\n",
			g.Formula, g.InvDielectric.N, fmtResiduals(g.InvDielectric), fmtResiduals(g.InvCorrectedDielectric)))
	}
	return b.String()
}

func fmtResiduals(r Residuals) string {
	if r.N == 0 {
		return "no data"
	}
	return fmt.Sprintf("mean diff %.4g, rmse %.4g", r.MeanSigned, r.RMSE)
}
