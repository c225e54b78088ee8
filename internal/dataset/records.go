package dataset

import (
	"fmt"
	"strconv"
)

// DefaultIDColumn is the substance identifier column shared by both tables.
const DefaultIDColumn = "cas"

// Experimental table columns (ThermoML export).
const (
	ColExptTemperature   = "Temperature, K"
	ColExptDensity       = "Mass density, kg/m3"
	ColExptDensityStd    = "Mass density, kg/m3_uncertainty_bestguess"
	ColExptDielectric    = "Relative permittivity at zero frequency"
	ColExptDielectricStd = "Relative permittivity at zero frequency_uncertainty_bestguess"
)

// Predicted table columns.
const (
	ColTemperature     = "temperature"
	ColFormula         = "formula"
	ColDensity         = "density"
	ColDensitySigma    = "density_sigma"
	ColDielectric      = "dielectric"
	ColDielectricSigma = "dielectric_sigma"
)

// Derived columns of the merged working table.
const (
	ColCorrection          = "polcorr"
	ColCorrectedDielectric = "corrected_dielectric"
	ColMergedDensity       = "expt_density"
	ColMergedDielectric    = "expt_dielectric"
	ColMergedDensityStd    = "expt_density_std"
	ColMergedDielectricStd = "expt_dielectric_std"
)

// Key is the composite join key.
type Key struct {
	CAS         string
	Temperature float64 // kelvin
}

func (k Key) String() string {
	return fmt.Sprintf("(%s, %s K)", k.CAS, strconv.FormatFloat(k.Temperature, 'f', -1, 64))
}

// Experimental is one measured row. Missing values are NaN.
type Experimental struct {
	Key
	Density       float64 // kg/m^3
	DensityStd    float64
	Dielectric    float64
	DielectricStd float64
}

// Predicted is one simulated row plus the columns derived during a run.
type Predicted struct {
	Key
	Formula         string
	Density         float64 // kg/m^3
	DensitySigma    float64
	Dielectric      float64
	DielectricSigma float64

	// Set by ApplyCorrections.
	Correction          float64
	CorrectedDielectric float64

	// Set by Merge. Std columns are 0 when the source value is missing;
	// ExptDensity and ExptDielectric stay NaN for unmatched rows.
	ExptDensity       float64
	ExptDielectric    float64
	ExptDensityStd    float64
	ExptDielectricStd float64
}
