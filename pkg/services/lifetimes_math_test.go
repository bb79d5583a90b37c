package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHyp2f1(t *testing.T) {
	assert.Equal(t, 1.0, hyp2f1(1, 2, 3, 0))
	// 2F1(1, 1; 2; z) = -ln(1-z)/z
	z := 0.5
	assert.InDelta(t, -math.Log(1-z)/z, hyp2f1(1, 1, 2, z), 1e-9)
}

func TestLogSumExp(t *testing.T) {
	assert.InDelta(t, math.Log(2), logSumExp(0, 0), 1e-12)
	// Stays finite for operands that would overflow exp directly.
	assert.InDelta(t, 1000+math.Log(2), logSumExp(1000, 1000), 1e-9)
}

func TestNelderMeadQuadratic(t *testing.T) {
	fn := func(x []float64) float64 {
		return (x[0]-3)*(x[0]-3) + (x[1]+1)*(x[1]+1)
	}
	best, value := nelderMead(fn, []float64{0, 0}, 2000)
	assert.InDelta(t, 3.0, best[0], 1e-3)
	assert.InDelta(t, -1.0, best[1], 1e-3)
	assert.InDelta(t, 0.0, value, 1e-6)
}

func TestGammaGammaConditionalExpectedValue(t *testing.T) {
	model := &GammaGammaModel{P: 1, Q: 2, V: 10, fitted: true}

	// weight = 1/(1+1) = 0.5, population mean = 10.
	assert.InDelta(t, 0.5*10+0.5*30, model.ConditionalExpectedValue(1, 30), 1e-9)

	// Heavier buyers shrink less towards the population mean.
	light := model.ConditionalExpectedValue(1, 30)
	heavy := model.ConditionalExpectedValue(20, 30)
	assert.Greater(t, heavy, light)
}

func TestModelFitRejectsBadInput(t *testing.T) {
	bg := NewBetaGeoModel()
	assert.Error(t, bg.Fit(nil, nil, nil))
	assert.Error(t, bg.Fit([]float64{1}, []float64{1, 2}, []float64{1}))

	gg := NewGammaGammaModel()
	assert.Error(t, gg.Fit(nil, nil))
	assert.Error(t, gg.Fit([]float64{0}, []float64{10}), "zero frequency is not a returning customer")
	assert.Error(t, gg.Fit([]float64{1}, []float64{-10}))
}

func TestBetaGeoUnfittedReturnsZero(t *testing.T) {
	bg := NewBetaGeoModel()
	assert.Equal(t, 0.0, bg.ConditionalExpectedPurchases(90, 2, 30, 60))
}
