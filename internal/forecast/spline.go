package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"mortrend/internal/dataset"
)

const (
	// minSplineYears is the smallest number of distinct years the spline
	// smoother accepts. The basis needs more support than OLS: with fewer
	// points the penalized system is ill-determined regardless of lambda.
	minSplineYears = 5

	splineDegree = 3
	maxBasisDim  = 8

	// ridge keeps the penalized normal equations positive definite when
	// lambda is tiny and observations coincide with knots.
	ridge = 1e-9
)

// SplineForecaster fits a penalized cubic B-spline (P-spline) regression of
// rate on year per group: Gaussian errors, identity link, second-order
// difference penalty on the basis coefficients. The smoothing parameter is
// chosen by generalized cross-validation over a fixed logarithmic grid, so
// the degree of nonlinearity comes from the data and the whole fit is
// deterministic: no random starts, no seeding, identical input gives
// identical coefficients.
type SplineForecaster struct{}

// NewSplineForecaster returns the P-spline forecaster.
func NewSplineForecaster() SplineForecaster {
	return SplineForecaster{}
}

// Name implements Forecaster.
func (SplineForecaster) Name() string { return "spline" }

// FitGroup implements Forecaster.
func (SplineForecaster) FitGroup(group dataset.Table) (Model, error) {
	years, values := groupSeries(group)
	n := distinctCount(years)
	if n < minSplineYears {
		return nil, &InsufficientDataError{
			Group:    groupKey(group),
			Distinct: n,
			Required: minSplineYears,
		}
	}

	dim := n - 1
	if dim > maxBasisDim {
		dim = maxBasisDim
	}
	if dim < splineDegree+1 {
		dim = splineDegree + 1
	}

	basis := newBSplineBasis(years[0], years[len(years)-1], dim)

	design := mat.NewDense(len(years), dim, nil)
	for i, x := range years {
		design.SetRow(i, basis.eval(x))
	}
	y := mat.NewVecDense(len(values), values)

	var btb mat.Dense
	btb.Mul(design.T(), design)
	var bty mat.VecDense
	bty.MulVec(design.T(), y)

	penalty := secondDifferencePenalty(dim)

	bestGCV := math.Inf(1)
	var bestCoef []float64
	for _, lambda := range lambdaGrid() {
		coef, edf, ok := solvePenalized(&btb, &bty, penalty, lambda, dim)
		if !ok {
			continue
		}
		rss := residualSS(design, coef, values)
		den := float64(len(values)) - edf
		if den <= 0 {
			continue
		}
		gcv := float64(len(values)) * rss / (den * den)
		if gcv < bestGCV {
			bestGCV = gcv
			bestCoef = coef
		}
	}
	if bestCoef == nil {
		return nil, fmt.Errorf("spline fit for group %q: penalized system unsolvable at every lambda", groupKey(group))
	}

	return &splineModel{basis: basis, coef: bestCoef}, nil
}

// lambdaGrid is the fixed smoothing-parameter grid searched by GCV:
// 25 log-spaced points over [1e-4, 1e4].
func lambdaGrid() []float64 {
	grid := make([]float64, 25)
	for i := range grid {
		grid[i] = math.Pow(10, -4+8*float64(i)/24)
	}
	return grid
}

// solvePenalized solves (BtB + lambda*P + ridge*I) c = Bty by Cholesky and
// returns the coefficients and the effective degrees of freedom
// tr((BtB+lambda*P)^-1 BtB).
func solvePenalized(btb *mat.Dense, bty *mat.VecDense, penalty *mat.Dense, lambda float64, dim int) (coef []float64, edf float64, ok bool) {
	sys := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			v := btb.At(i, j) + lambda*penalty.At(i, j)
			if i == j {
				v += ridge
			}
			sys.SetSym(i, j, v)
		}
	}

	var chol mat.Cholesky
	if !chol.Factorize(sys) {
		return nil, 0, false
	}

	var c mat.VecDense
	if err := chol.SolveVecTo(&c, bty); err != nil {
		return nil, 0, false
	}

	var hat mat.Dense
	if err := chol.SolveTo(&hat, btb); err != nil {
		return nil, 0, false
	}
	for i := 0; i < dim; i++ {
		edf += hat.At(i, i)
	}

	coef = make([]float64, dim)
	for i := range coef {
		coef[i] = c.AtVec(i)
	}
	return coef, edf, true
}

// residualSS computes the residual sum of squares of the fit.
func residualSS(design *mat.Dense, coef, values []float64) float64 {
	var fitted mat.VecDense
	fitted.MulVec(design, mat.NewVecDense(len(coef), coef))

	rss := 0.0
	for i, v := range values {
		r := v - fitted.AtVec(i)
		rss += r * r
	}
	return rss
}

// secondDifferencePenalty builds DtD for the (dim-2) x dim second-order
// difference matrix D with rows [1, -2, 1].
func secondDifferencePenalty(dim int) *mat.Dense {
	d := mat.NewDense(dim-2, dim, nil)
	for i := 0; i < dim-2; i++ {
		d.Set(i, i, 1)
		d.Set(i, i+1, -2)
		d.Set(i, i+2, 1)
	}
	var p mat.Dense
	p.Mul(d.T(), d)
	return &p
}

// bsplineBasis is a clamped cubic B-spline basis over [lo, hi] with uniform
// interior knots.
type bsplineBasis struct {
	degree int
	knots  []float64
	dim    int
	lo, hi float64
}

func newBSplineBasis(lo, hi float64, dim int) *bsplineBasis {
	degree := splineDegree
	nKnots := dim + degree + 1
	interior := dim - degree - 1

	knots := make([]float64, nKnots)
	for i := 0; i <= degree; i++ {
		knots[i] = lo
		knots[nKnots-1-i] = hi
	}
	for i := 1; i <= interior; i++ {
		knots[degree+i] = lo + (hi-lo)*float64(i)/float64(interior+1)
	}

	return &bsplineBasis{degree: degree, knots: knots, dim: dim, lo: lo, hi: hi}
}

// eval returns all basis function values at x. Arguments outside [lo, hi] are
// clamped; extrapolation is handled above the basis by splineModel.
func (b *bsplineBasis) eval(x float64) []float64 {
	if x < b.lo {
		x = b.lo
	}
	if x > b.hi {
		x = b.hi
	}
	out := make([]float64, b.dim)
	for i := range out {
		out[i] = b.coxDeBoor(i, b.degree, x)
	}
	return out
}

// coxDeBoor evaluates basis function i of degree d at x by the Cox-de Boor
// recursion. The final span is treated as closed so x == hi is covered.
func (b *bsplineBasis) coxDeBoor(i, d int, x float64) float64 {
	t := b.knots
	if d == 0 {
		if t[i] <= x && x < t[i+1] {
			return 1
		}
		if x == b.hi && t[i] < t[i+1] && t[i+1] == b.hi {
			return 1
		}
		return 0
	}

	var left, right float64
	if den := t[i+d] - t[i]; den > 0 {
		left = (x - t[i]) / den * b.coxDeBoor(i, d-1, x)
	}
	if den := t[i+d+1] - t[i+1]; den > 0 {
		right = (t[i+d+1] - x) / den * b.coxDeBoor(i+1, d-1, x)
	}
	return left + right
}

// splineModel evaluates the fitted penalized spline. Inside the observed year
// range the basis is evaluated directly; outside it the curve is continued
// linearly from the boundary value and slope. Extrapolated values can drift
// quickly when the end of the curve is steep; that is a documented limitation
// of smoothing a short series, not something the model clamps.
type splineModel struct {
	basis *bsplineBasis
	coef  []float64
}

// Predict implements Model.
func (m *splineModel) Predict(year int) float64 {
	x := float64(year)
	switch {
	case x < m.basis.lo:
		return m.at(m.basis.lo) + m.slopeAt(m.basis.lo)*(x-m.basis.lo)
	case x > m.basis.hi:
		return m.at(m.basis.hi) + m.slopeAt(m.basis.hi)*(x-m.basis.hi)
	default:
		return m.at(x)
	}
}

func (m *splineModel) at(x float64) float64 {
	vals := m.basis.eval(x)
	sum := 0.0
	for i, v := range vals {
		sum += v * m.coef[i]
	}
	return sum
}

// slopeAt estimates the curve's derivative at a boundary with a one-sided
// difference stepping into the observed range.
func (m *splineModel) slopeAt(x float64) float64 {
	h := (m.basis.hi - m.basis.lo) * 1e-6
	if x <= m.basis.lo {
		return (m.at(x+h) - m.at(x)) / h
	}
	return (m.at(x) - m.at(x-h)) / h
}
