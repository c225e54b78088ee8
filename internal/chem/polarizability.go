package chem

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// Avogadro is the Avogadro constant in 1/mol.
const Avogadro = 6.02214076e23

// cubicCmPerCubicAngstrom converts a number density from 1/cm^3 to 1/Å^3.
const cubicCmPerCubicAngstrom = 1e-24

// ErrPolarizationCatastrophe is returned when the Lorentz-Lorenz relation has
// no finite solution for the given polarizability and density.
var ErrPolarizationCatastrophe = errors.New("polarization catastrophe")

// MolarMass returns the molar mass in g/mol.
func (c Composition) MolarMass() (float64, error) {
	var m float64
	for s, n := range c {
		el, ok := elements[s]
		if !ok {
			return 0, &UnknownElementError{Symbol: s}
		}
		m += el.Mass * float64(n)
	}
	return m, nil
}

// Polarizability returns the additive molecular polarizability in Å^3.
func (c Composition) Polarizability() (float64, error) {
	var a float64
	for s, n := range c {
		el, ok := elements[s]
		if !ok {
			return 0, &UnknownElementError{Symbol: s}
		}
		if el.Polarizability == 0 {
			return 0, &UnknownElementError{Symbol: s, Reason: "no polarizability parameter"}
		}
		a += el.Polarizability * float64(n)
	}
	return a, nil
}

// DielectricCorrection returns eps_inf - 1 for a liquid of the given formula
// and density (g/mL), where eps_inf follows from the Lorentz-Lorenz relation
// with the additive molecular polarizability.
func DielectricCorrection(formula string, densityGPerML float64) (float64, error) {
	comp, err := ParseFormula(formula)
	if err != nil {
		return 0, err
	}
	return comp.DielectricCorrection(densityGPerML)
}

// DielectricCorrection is the Composition form of DielectricCorrection.
func (c Composition) DielectricCorrection(densityGPerML float64) (float64, error) {
	mass, err := c.MolarMass()
	if err != nil {
		return 0, err
	}
	alpha, err := c.Polarizability()
	if err != nil {
		return 0, err
	}
	if mass <= 0 {
		return 0, fmt.Errorf("formula %s: zero molar mass", c)
	}
	n := densityGPerML / mass * Avogadro * cubicCmPerCubicAngstrom
	x := 4 * math.Pi / 3 * n * alpha
	if x >= 1 {
		return 0, fmt.Errorf("formula %s at %.4g g/mL: %w", c, densityGPerML, ErrPolarizationCatastrophe)
	}
	epsInf := (1 + 2*x) / (1 - x)
	return epsInf - 1, nil
}

// Corrector maps a formula and density (g/mL) to an additive dielectric
// correction.
type Corrector interface {
	Correction(formula string, densityGPerML float64) (float64, error)
}

// LorentzLorenz is the default Corrector. Parsed formulas are cached.
type LorentzLorenz struct {
	mu    sync.Mutex
	cache map[string]Composition
}

// NewLorentzLorenz returns an empty-cache corrector.
func NewLorentzLorenz() *LorentzLorenz {
	return &LorentzLorenz{cache: make(map[string]Composition)}
}

func (l *LorentzLorenz) Correction(formula string, densityGPerML float64) (float64, error) {
	l.mu.Lock()
	comp, ok := l.cache[formula]
	l.mu.Unlock()
	if !ok {
		var err error
		comp, err = ParseFormula(formula)
		if err != nil {
			return 0, err
		}
		l.mu.Lock()
		if l.cache == nil {
			l.cache = make(map[string]Composition)
		}
		l.cache[formula] = comp
		l.mu.Unlock()
	}
	return comp.DielectricCorrection(densityGPerML)
}

// Constant applies the same correction to every row.
type Constant float64

func (c Constant) Correction(string, float64) (float64, error) { return float64(c), nil }
