package dataset

import (
	"math"
	"sort"
)

// PopSize identifies the population-density category a series belongs to.
// The numeric order is the canonical sort order for combined output.
type PopSize int

const (
	Overall PopSize = iota
	LargeMetro
	SmallMediumMetro
	Rural
)

// popSizeLabels maps the labels used in the published source table to the
// typed category. Lookup is exact; the source is consistent about casing.
var popSizeLabels = map[string]PopSize{
	"overall":            Overall,
	"Large Metro":        LargeMetro,
	"Small/Medium Metro": SmallMediumMetro,
	"Rural":              Rural,
}

// ParsePopSize maps a source label to its PopSize. The second return value is
// false for labels outside the known set.
func ParsePopSize(label string) (PopSize, bool) {
	p, ok := popSizeLabels[label]
	return p, ok
}

// String returns the source label for the category.
func (p PopSize) String() string {
	switch p {
	case Overall:
		return "overall"
	case LargeMetro:
		return "Large Metro"
	case SmallMediumMetro:
		return "Small/Medium Metro"
	case Rural:
		return "Rural"
	default:
		return "unknown"
	}
}

// Provenance distinguishes observed history from model output. Actual sorts
// before Predicted for equal (PopSize, Year) pairs.
type Provenance int

const (
	Actual Provenance = iota
	Predicted
)

// String returns the export label for the provenance tag.
func (p Provenance) String() string {
	switch p {
	case Actual:
		return "actual"
	case Predicted:
		return "predicted"
	default:
		return "unknown"
	}
}

// Record is one observation of the age-adjusted mortality rate: a single
// (category, year) cell in long form. Records are immutable once created.
type Record struct {
	Category   string
	PopSize    PopSize
	Year       int
	Value      float64
	Provenance Provenance
}

// IsValid reports whether the record carries a usable observation. Predicted
// records from an extrapolating model are exempt from the non-negativity
// check, which applies to source data only.
func (r Record) IsValid() bool {
	if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
		return false
	}
	if r.Provenance == Actual && r.Value < 0 {
		return false
	}
	return r.Year > 0
}

// Table is an ordered sequence of records. Within a (PopSize, Provenance)
// pair, year values are unique.
type Table []Record

// Groups returns the population-size categories present in the table in
// canonical order, plus the records of each group in table order.
func (t Table) Groups() ([]PopSize, map[PopSize]Table) {
	byGroup := make(map[PopSize]Table)
	for _, r := range t {
		byGroup[r.PopSize] = append(byGroup[r.PopSize], r)
	}

	keys := make([]PopSize, 0, len(byGroup))
	for k := range byGroup {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys, byGroup
}

// Years returns the distinct years present in the table, ascending.
func (t Table) Years() []int {
	seen := make(map[int]struct{}, len(t))
	for _, r := range t {
		seen[r.Year] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// CategorySet is the allowed population-size labels for reshaping. Rows with
// labels outside the set are dropped silently; this is a business rule of the
// source data, not an error condition.
type CategorySet map[string]struct{}

// NewCategorySet builds a set from the given labels.
func NewCategorySet(labels ...string) CategorySet {
	s := make(CategorySet, len(labels))
	for _, l := range labels {
		s[l] = struct{}{}
	}
	return s
}

// DefaultCategories is the allowed set used by the published analysis.
func DefaultCategories() CategorySet {
	return NewCategorySet("overall", "Large Metro", "Small/Medium Metro", "Rural")
}

// Contains reports whether the label is a member of the set.
func (s CategorySet) Contains(label string) bool {
	_, ok := s[label]
	return ok
}
