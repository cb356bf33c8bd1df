package dataset

import "sort"

// Combine merges actual and predicted series into one table in canonical
// order: PopSize ascending, then year ascending, with Actual before Predicted
// for equal (PopSize, year) pairs. Every input record is preserved unmodified;
// the result has exactly len(actual)+len(predicted) records.
func Combine(actual, predicted Table) Table {
	out := make(Table, 0, len(actual)+len(predicted))
	out = append(out, actual...)
	out = append(out, predicted...)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.PopSize != b.PopSize {
			return a.PopSize < b.PopSize
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Provenance < b.Provenance
	})
	return out
}
