package services

import (
	"fmt"
	"math"
)

// This file holds the fitting math behind the PurchaseModel and ValueModel
// interfaces: the BG/NBD purchase-count model and the Gamma-Gamma monetary
// model, both fit by maximum likelihood over log-parameters with a
// Nelder-Mead simplex.

// BetaGeoModel is the BG/NBD purchase-count model with parameters
// (r, alpha, a, b).
type BetaGeoModel struct {
	R     float64
	Alpha float64
	A     float64
	B     float64

	PenalizerCoef float64
	fitted        bool
}

// NewBetaGeoModel creates an unfitted BG/NBD model.
func NewBetaGeoModel() *BetaGeoModel {
	return &BetaGeoModel{}
}

// Fit estimates (r, alpha, a, b) by maximising the BG/NBD log-likelihood.
func (m *BetaGeoModel) Fit(frequency, recency, T []float64) error {
	n := len(frequency)
	if n == 0 || len(recency) != n || len(T) != n {
		return fmt.Errorf("frequency, recency and T must be equal-length and non-empty")
	}

	negLL := func(logParams []float64) float64 {
		r := math.Exp(logParams[0])
		alpha := math.Exp(logParams[1])
		a := math.Exp(logParams[2])
		b := math.Exp(logParams[3])

		var ll float64
		for i := 0; i < n; i++ {
			ll += bgnbdLogLikelihood(r, alpha, a, b, frequency[i], recency[i], T[i])
		}
		penalty := 0.0
		for _, p := range logParams {
			penalty += p * p
		}
		return -ll/float64(n) + m.PenalizerCoef*penalty
	}

	start := []float64{0, 0, 0, 0} // log(1) for every parameter
	best, value := nelderMead(negLL, start, 2000)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("BG/NBD likelihood did not converge")
	}

	m.R = math.Exp(best[0])
	m.Alpha = math.Exp(best[1])
	m.A = math.Exp(best[2])
	m.B = math.Exp(best[3])
	m.fitted = true
	return nil
}

// ConditionalExpectedPurchases returns the expected number of purchases in
// the next `days` days for a customer with the given summary.
func (m *BetaGeoModel) ConditionalExpectedPurchases(days, frequency, recency, T float64) float64 {
	if !m.fitted || days <= 0 {
		return 0
	}
	r, alpha, a, b := m.R, m.Alpha, m.A, m.B
	x := frequency

	hyp := hyp2f1(r+x, b+x, a+b+x-1, days/(alpha+T+days))
	numerator := (a + b + x - 1) / (a - 1) *
		(1 - hyp*math.Pow((alpha+T)/(alpha+T+days), r+x))

	denominator := 1.0
	if x > 0 {
		denominator = 1 + a/(b+x-1)*math.Pow((alpha+T)/(alpha+recency), r+x)
	}
	return numerator / denominator
}

// bgnbdLogLikelihood is the per-customer BG/NBD log-likelihood.
func bgnbdLogLikelihood(r, alpha, a, b, x, tx, T float64) float64 {
	a1 := lgamma(r+x) - lgamma(r) + r*math.Log(alpha)
	a2 := lgamma(a+b) + lgamma(b+x) - lgamma(b) - lgamma(a+b+x)
	a3 := -(r + x) * math.Log(alpha+T)
	if x > 0 {
		a4 := math.Log(a) - math.Log(b+x-1) - (r+x)*math.Log(alpha+tx)
		return a1 + a2 + logSumExp(a3, a4)
	}
	return a1 + a2 + a3
}

// GammaGammaModel is the Gamma-Gamma monetary model with parameters (p, q, v).
type GammaGammaModel struct {
	P float64
	Q float64
	V float64

	PenalizerCoef float64
	fitted        bool
}

// NewGammaGammaModel creates an unfitted Gamma-Gamma model.
func NewGammaGammaModel() *GammaGammaModel {
	return &GammaGammaModel{}
}

// Fit estimates (p, q, v) by maximising the Gamma-Gamma log-likelihood over
// returning customers (frequency > 0, monetary > 0).
func (m *GammaGammaModel) Fit(frequency, monetary []float64) error {
	n := len(frequency)
	if n == 0 || len(monetary) != n {
		return fmt.Errorf("frequency and monetary must be equal-length and non-empty")
	}
	for i := 0; i < n; i++ {
		if frequency[i] <= 0 || monetary[i] <= 0 {
			return fmt.Errorf("row %d: Gamma-Gamma requires positive frequency and monetary value", i)
		}
	}

	negLL := func(logParams []float64) float64 {
		p := math.Exp(logParams[0])
		q := math.Exp(logParams[1])
		v := math.Exp(logParams[2])

		var ll float64
		for i := 0; i < n; i++ {
			x, mv := frequency[i], monetary[i]
			ll += lgamma(p*x+q) - lgamma(p*x) - lgamma(q) +
				q*math.Log(v) + (p*x-1)*math.Log(mv) + p*x*math.Log(x) -
				(p*x+q)*math.Log(v+mv*x)
		}
		penalty := 0.0
		for _, lp := range logParams {
			penalty += lp * lp
		}
		return -ll/float64(n) + m.PenalizerCoef*penalty
	}

	start := []float64{0, math.Log(2), 0} // q starts above 1 so the mean exists
	best, value := nelderMead(negLL, start, 2000)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("Gamma-Gamma likelihood did not converge")
	}

	m.P = math.Exp(best[0])
	m.Q = math.Exp(best[1])
	m.V = math.Exp(best[2])
	m.fitted = true
	return nil
}

// ConditionalExpectedValue shrinks the observed average order value towards
// the population mean, weighted by the customer's purchase count.
func (m *GammaGammaModel) ConditionalExpectedValue(frequency, monetary float64) float64 {
	if !m.fitted {
		return 0
	}
	p, q, v := m.P, m.Q, m.V
	individualWeight := p * frequency / (p*frequency + q - 1)
	populationMean := v * p / (q - 1)
	return (1-individualWeight)*populationMean + individualWeight*monetary
}

// lgamma is the sign-less log gamma.
func lgamma(x float64) float64 {
	l, _ := math.Lgamma(x)
	return l
}

// logSumExp computes log(exp(a) + exp(b)) without overflow.
func logSumExp(a, b float64) float64 {
	max := a
	if b > max {
		max = b
	}
	return max + math.Log(math.Exp(a-max)+math.Exp(b-max))
}

// hyp2f1 evaluates the Gauss hypergeometric function 2F1(a, b; c; z) by its
// power series. The arguments produced by the BG/NBD expectation keep z in
// [0, 1), where the series converges.
func hyp2f1(a, b, c, z float64) float64 {
	const maxTerms = 500
	const eps = 1e-12

	term := 1.0
	sum := 1.0
	for n := 0; n < maxTerms; n++ {
		fn := float64(n)
		term *= (a + fn) * (b + fn) / ((c + fn) * (fn + 1)) * z
		sum += term
		if math.Abs(term) < eps*math.Abs(sum) {
			break
		}
	}
	return sum
}

// nelderMead minimises fn starting from start, returning the best point and
// its value. Standard reflection/expansion/contraction/shrink coefficients.
func nelderMead(fn func([]float64) float64, start []float64, maxIter int) ([]float64, float64) {
	dim := len(start)
	const (
		reflect  = 1.0
		expand   = 2.0
		contract = 0.5
		shrink   = 0.5
		step     = 0.5
		tol      = 1e-10
	)

	// Build the initial simplex.
	points := make([][]float64, dim+1)
	values := make([]float64, dim+1)
	for i := range points {
		points[i] = make([]float64, dim)
		copy(points[i], start)
		if i > 0 {
			points[i][i-1] += step
		}
		values[i] = fn(points[i])
	}

	order := func() {
		for i := 1; i < len(points); i++ {
			for j := i; j > 0 && values[j] < values[j-1]; j-- {
				values[j], values[j-1] = values[j-1], values[j]
				points[j], points[j-1] = points[j-1], points[j]
			}
		}
	}

	centroid := make([]float64, dim)
	trial := make([]float64, dim)
	for iter := 0; iter < maxIter; iter++ {
		order()
		if math.Abs(values[dim]-values[0]) < tol {
			break
		}

		// Centroid of all but the worst point.
		for j := 0; j < dim; j++ {
			centroid[j] = 0
			for i := 0; i < dim; i++ {
				centroid[j] += points[i][j]
			}
			centroid[j] /= float64(dim)
		}

		// Reflection.
		for j := 0; j < dim; j++ {
			trial[j] = centroid[j] + reflect*(centroid[j]-points[dim][j])
		}
		reflected := fn(trial)

		switch {
		case reflected < values[0]:
			// Expansion.
			expanded := make([]float64, dim)
			for j := 0; j < dim; j++ {
				expanded[j] = centroid[j] + expand*(trial[j]-centroid[j])
			}
			if ev := fn(expanded); ev < reflected {
				copy(points[dim], expanded)
				values[dim] = ev
			} else {
				copy(points[dim], trial)
				values[dim] = reflected
			}
		case reflected < values[dim-1]:
			copy(points[dim], trial)
			values[dim] = reflected
		default:
			// Contraction.
			for j := 0; j < dim; j++ {
				trial[j] = centroid[j] + contract*(points[dim][j]-centroid[j])
			}
			if cv := fn(trial); cv < values[dim] {
				copy(points[dim], trial)
				values[dim] = cv
			} else {
				// Shrink towards the best point.
				for i := 1; i <= dim; i++ {
					for j := 0; j < dim; j++ {
						points[i][j] = points[0][j] + shrink*(points[i][j]-points[0][j])
					}
					values[i] = fn(points[i])
				}
			}
		}
	}
	order()
	return points[0], values[0]
}
