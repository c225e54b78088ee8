package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateKey indicates a (substance, temperature) key occurring on more than one row.
	ErrDuplicateKey = errors.New("duplicate join key")
	// ErrMissingColumn indicates a required CSV column is absent.
	ErrMissingColumn = errors.New("missing column")
	// ErrInvalidKey indicates a row whose identifier is empty or whose temperature is not a finite number.
	ErrInvalidKey = errors.New("invalid join key")
)

// DuplicateKeyError lists every key that occurs more than once in a table.
type DuplicateKeyError struct {
	Table string
	Keys  []Key
}

func (e *DuplicateKeyError) Error() string {
	parts := make([]string, 0, len(e.Keys))
	for i, k := range e.Keys {
		if i == 5 {
			parts = append(parts, fmt.Sprintf("and %d more", len(e.Keys)-5))
			break
		}
		parts = append(parts, k.String())
	}
	return fmt.Sprintf("%s table: %d duplicate key(s): %s", e.Table, len(e.Keys), strings.Join(parts, ", "))
}

func (e *DuplicateKeyError) Unwrap() error { return ErrDuplicateKey }

// MissingColumnError names the columns a table lacks.
type MissingColumnError struct {
	Table   string
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s table: missing column(s) %q", e.Table, e.Columns)
}

func (e *MissingColumnError) Unwrap() error { return ErrMissingColumn }

// InvalidKeyError names the first row whose join key cannot be used. Line is
// the 1-based CSV line, counting the header.
type InvalidKeyError struct {
	Table  string
	Line   int
	Reason string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("%s table: line %d: %s", e.Table, e.Line, e.Reason)
}

func (e *InvalidKeyError) Unwrap() error { return ErrInvalidKey }
