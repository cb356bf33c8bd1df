// Package forecast fits one regression model per population-size group and
// projects the fitted trend over a future horizon.
//
// Two model families are provided:
//
//  1. LinearForecaster: ordinary least squares of rate on year. Closed form,
//     needs 2 distinct years per group.
//  2. SplineForecaster: penalized cubic B-spline (P-spline) regression with
//     the smoothing parameter chosen by generalized cross-validation over a
//     fixed lambda grid. Needs 5 distinct years per group.
//
// Group fits are independent: each reads the shared input table and writes
// only its own predictions. Run executes them in parallel and collects
// per-group failures into a Report without failing sibling groups.
//
// Both families extrapolate beyond the observed year range by design; that is
// the point of a forecast. The spline continues linearly from the boundary
// slope outside the observed range, which can drift quickly — accepted and
// documented rather than clamped.
package forecast
