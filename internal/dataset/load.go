package dataset

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// readTable parses a CSV with a header row. Listed float columns are typed
// explicitly; everything else loads as strings. Unparseable or empty numeric
// cells become NaN.
func readTable(r io.Reader, table string, strCols, floatCols []string) (dataframe.DataFrame, error) {
	types := make(map[string]series.Type, len(strCols)+len(floatCols))
	for _, c := range strCols {
		types[c] = series.String
	}
	for _, c := range floatCols {
		types[c] = series.Float
	}
	df := dataframe.ReadCSV(skipBOM(r),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.WithTypes(types),
	)
	if df.Err != nil {
		return df, fmt.Errorf("read %s csv: %w", table, df.Err)
	}
	have := make(map[string]struct{}, df.Ncol())
	for _, n := range df.Names() {
		have[n] = struct{}{}
	}
	var missing []string
	for _, c := range append(append([]string{}, strCols...), floatCols...) {
		if _, ok := have[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return df, &MissingColumnError{Table: table, Columns: missing}
	}
	return df, nil
}

// skipBOM drops a leading UTF-8 byte order mark, which spreadsheet exports
// prepend to the first header cell.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && bytes.Equal(b, []byte("\xef\xbb\xbf")) {
		_, _ = br.Discard(3)
	}
	return br
}

// checkKeys rejects empty identifiers and non-finite temperatures. Both
// would slip past duplicate detection since NaN never equals itself.
func checkKeys(table string, ids []string, temps []float64) error {
	for i := range ids {
		line := i + 2
		if ids[i] == "" {
			return &InvalidKeyError{Table: table, Line: line, Reason: "empty identifier"}
		}
		if math.IsNaN(temps[i]) || math.IsInf(temps[i], 0) {
			return &InvalidKeyError{Table: table, Line: line, Reason: fmt.Sprintf("temperature for %s is not a number", ids[i])}
		}
	}
	return nil
}

func trimmed(s series.Series) []string {
	recs := s.Records()
	for i := range recs {
		recs[i] = strings.TrimSpace(recs[i])
	}
	return recs
}

// LoadExperimental reads the experimental table. The "Temperature, K" column
// becomes Key.Temperature.
func LoadExperimental(r io.Reader, idColumn string) ([]Experimental, error) {
	if idColumn == "" {
		idColumn = DefaultIDColumn
	}
	df, err := readTable(r, "experimental",
		[]string{idColumn},
		[]string{ColExptTemperature, ColExptDensity, ColExptDensityStd, ColExptDielectric, ColExptDielectricStd},
	)
	if err != nil {
		return nil, err
	}
	ids := trimmed(df.Col(idColumn))
	temp := df.Col(ColExptTemperature).Float()
	if err := checkKeys("experimental", ids, temp); err != nil {
		return nil, err
	}
	dens := df.Col(ColExptDensity).Float()
	densStd := df.Col(ColExptDensityStd).Float()
	diel := df.Col(ColExptDielectric).Float()
	dielStd := df.Col(ColExptDielectricStd).Float()

	out := make([]Experimental, df.Nrow())
	for i := range out {
		out[i] = Experimental{
			Key:           Key{CAS: ids[i], Temperature: temp[i]},
			Density:       dens[i],
			DensityStd:    densStd[i],
			Dielectric:    diel[i],
			DielectricStd: dielStd[i],
		}
	}
	return out, nil
}

// LoadPredicted reads the predicted table.
func LoadPredicted(r io.Reader, idColumn string) ([]Predicted, error) {
	if idColumn == "" {
		idColumn = DefaultIDColumn
	}
	df, err := readTable(r, "predicted",
		[]string{idColumn, ColFormula},
		[]string{ColTemperature, ColDensity, ColDensitySigma, ColDielectric, ColDielectricSigma},
	)
	if err != nil {
		return nil, err
	}
	ids := trimmed(df.Col(idColumn))
	formulas := trimmed(df.Col(ColFormula))
	temp := df.Col(ColTemperature).Float()
	if err := checkKeys("predicted", ids, temp); err != nil {
		return nil, err
	}
	dens := df.Col(ColDensity).Float()
	densSigma := df.Col(ColDensitySigma).Float()
	diel := df.Col(ColDielectric).Float()
	dielSigma := df.Col(ColDielectricSigma).Float()

	out := make([]Predicted, df.Nrow())
	for i := range out {
		out[i] = Predicted{
			Key:             Key{CAS: ids[i], Temperature: temp[i]},
			Formula:         formulas[i],
			Density:         dens[i],
			DensitySigma:    densSigma[i],
			Dielectric:      diel[i],
			DielectricSigma: dielSigma[i],
		}
		out[i].resetMerged()
	}
	return out, nil
}

// LoadExperimentalFile opens path and calls LoadExperimental.
func LoadExperimentalFile(path, idColumn string) ([]Experimental, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open experimental csv: %w", err)
	}
	defer f.Close()
	return LoadExperimental(f, idColumn)
}

// LoadPredictedFile opens path and calls LoadPredicted.
func LoadPredictedFile(path, idColumn string) ([]Predicted, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open predicted csv: %w", err)
	}
	defer f.Close()
	return LoadPredicted(f, idColumn)
}
