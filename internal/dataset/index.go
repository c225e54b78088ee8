package dataset

import "sort"

// Index maps join keys to experimental rows.
type Index map[Key]Experimental

// NewIndex indexes rows by (substance, temperature). Any key occurring more
// than once makes the lookup ambiguous, so all such keys are reported in a
// *DuplicateKeyError instead of picking one.
func NewIndex(rows []Experimental) (Index, error) {
	idx := make(Index, len(rows))
	var dups []Key
	seen := map[Key]int{}
	for _, r := range rows {
		k := r.Key
		seen[k]++
		if seen[k] == 2 {
			dups = append(dups, k)
		}
		idx[k] = r
	}
	if len(dups) > 0 {
		sortKeys(dups)
		return nil, &DuplicateKeyError{Table: "experimental", Keys: dups}
	}
	return idx, nil
}

// Lookup returns the experimental row for k.
func (idx Index) Lookup(k Key) (Experimental, bool) {
	r, ok := idx[k]
	return r, ok
}

// CheckUnique reports duplicate keys in the predicted table.
func CheckUnique(rows []Predicted) error {
	seen := make(map[Key]int, len(rows))
	var dups []Key
	for _, r := range rows {
		k := r.Key
		seen[k]++
		if seen[k] == 2 {
			dups = append(dups, k)
		}
	}
	if len(dups) > 0 {
		sortKeys(dups)
		return &DuplicateKeyError{Table: "predicted", Keys: dups}
	}
	return nil
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CAS != keys[j].CAS {
			return keys[i].CAS < keys[j].CAS
		}
		return keys[i].Temperature < keys[j].Temperature
	})
}
