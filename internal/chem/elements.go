package chem

// element holds per-element constants used by the polarizability model.
// Polarizability is the additive atomic contribution in cubic angstroms
// (Miller's atomic hybrid values for the saturated state); zero means no
// parameter is available and the element cannot be corrected.
type element struct {
	Mass           float64 // g/mol
	Polarizability float64 // Å^3
}

var elements = map[string]element{
	"H":  {Mass: 1.00794, Polarizability: 0.387},
	"He": {Mass: 4.002602},
	"Li": {Mass: 6.941},
	"B":  {Mass: 10.811},
	"C":  {Mass: 12.0107, Polarizability: 1.061},
	"N":  {Mass: 14.0067, Polarizability: 1.090},
	"O":  {Mass: 15.9994, Polarizability: 0.637},
	"F":  {Mass: 18.9984032, Polarizability: 0.296},
	"Na": {Mass: 22.98976928},
	"Mg": {Mass: 24.305},
	"Al": {Mass: 26.9815386},
	"Si": {Mass: 28.0855},
	"P":  {Mass: 30.973762, Polarizability: 1.538},
	"S":  {Mass: 32.065, Polarizability: 3.000},
	"Cl": {Mass: 35.453, Polarizability: 2.315},
	"K":  {Mass: 39.0983},
	"Ca": {Mass: 40.078},
	"Cu": {Mass: 63.546},
	"Br": {Mass: 79.904, Polarizability: 3.013},
	"I":  {Mass: 126.90447, Polarizability: 5.415},
}

// Known reports whether symbol is in the element table.
func Known(symbol string) bool {
	_, ok := elements[symbol]
	return ok
}
