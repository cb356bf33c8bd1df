// Package dataset defines the long-form mortality time series model and the
// transformations that produce it from the wide per-year source table.
//
// The source table carries one row per category / population-size pair and one
// string column per year. Cells may embed a parenthetical annotation (a
// confidence interval in the published data) after the rate itself. This
// package owns:
//
//   - Normalize: numeric extraction from annotated cells
//   - Reshape: wide table to ordered Record sequence, with category filtering
//   - Combine: merging actual and predicted series into canonical order
//
// Records are immutable values. A Table is an ordered slice of Records with
// the invariant that year values are unique within a (PopSize, Provenance)
// pair.
package dataset
