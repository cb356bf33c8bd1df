package dataset

import "errors"

// WideRow is one row of the source table: a category / population-size label
// pair and one string cell per year column.
type WideRow struct {
	Category string
	PopSize  string
	Cells    map[int]string
}

// WideTable is the normalized input boundary produced by the loader. The core
// never reads files; it receives this structure.
type WideTable struct {
	Rows []WideRow
}

// Reshape converts the wide per-year table into long form: one Actual record
// per retained row per year column, in row-major order. Rows whose
// population-size label is not in the allowed set are dropped silently.
// A cell that fails numeric extraction aborts reshaping with a *ParseError
// locating the offending cell.
func Reshape(wide WideTable, yearColumns []int, allowed CategorySet) (Table, error) {
	if len(yearColumns) == 0 {
		return nil, errors.New("reshape: no year columns")
	}

	var out Table
	for i, row := range wide.Rows {
		if !allowed.Contains(row.PopSize) {
			continue
		}
		popSize, ok := ParsePopSize(row.PopSize)
		if !ok {
			continue
		}

		for _, year := range yearColumns {
			raw, ok := row.Cells[year]
			if !ok {
				continue
			}
			value, err := Normalize(raw)
			if err != nil {
				return nil, &ParseError{Row: i, Year: year, Raw: raw, Err: err}
			}
			rec := Record{
				Category:   row.Category,
				PopSize:    popSize,
				Year:       year,
				Value:      value,
				Provenance: Actual,
			}
			if !rec.IsValid() {
				return nil, &ParseError{Row: i, Year: year, Raw: raw, Err: errors.New("rate must be finite and non-negative")}
			}
			out = append(out, rec)
		}
	}
	return out, nil
}
