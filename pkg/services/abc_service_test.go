package services

import (
	"testing"

	"shop-analytics-api/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestClassifyParetoThresholds(t *testing.T) {
	service := NewABCService()

	revenues := []float64{100, 50, 30, 10, 5, 5}
	entities := make([]models.ABCEntity, len(revenues))
	for i, r := range revenues {
		entities[i] = models.ABCEntity{ID: string(rune('a' + i)), Metric: r}
	}

	segments, err := service.Classify(entities, PolicyWindowed, 360)
	assert.NoError(t, err)
	assert.Len(t, segments, 6)

	expectedClasses := []string{"A", "A", "B", "C", "C", "C"}
	for i, seg := range segments {
		assert.Equal(t, expectedClasses[i], seg.Class, "entity %s", seg.EntityID)
		assert.Equal(t, i+1, seg.Rank)
		assert.NotNil(t, seg.CumulativePercentage)
	}
	assert.InDelta(t, 50.0, *segments[0].CumulativePercentage, 1e-9)
	assert.InDelta(t, 90.0, *segments[2].CumulativePercentage, 1e-9)
	assert.InDelta(t, 100.0, *segments[5].CumulativePercentage, 1e-9)
}

func TestClassifyWindowedExcludesLapsed(t *testing.T) {
	service := NewABCService()

	entities := []models.ABCEntity{
		{ID: "active-1", Metric: 100, Activity: 30},
		{ID: "active-2", Metric: 50, Activity: 200},
		{ID: "lapsed", Metric: 500, Activity: 400},
	}

	segments, err := service.Classify(entities, PolicyWindowed, 360)
	assert.NoError(t, err)
	assert.Len(t, segments, 3)

	lapsed := segments[2]
	assert.Equal(t, "lapsed", lapsed.EntityID)
	assert.Equal(t, "D", lapsed.Class)
	assert.Equal(t, 3, lapsed.Rank, "out-of-window entities share rank len(in)+1")
	assert.Nil(t, lapsed.CumulativePercentage)

	// The lapsed entity's large revenue never enters the cumulative total.
	assert.InDelta(t, 100.0/150.0*100, *segments[0].CumulativePercentage, 1e-9)
}

func TestClassifyForceNoZero(t *testing.T) {
	service := NewABCService()

	entities := []models.ABCEntity{
		{ID: "best-seller", Metric: 70, Activity: 5},
		{ID: "slow-mover", Metric: 30, Activity: 1},
		{ID: "unsold", Metric: 0, Activity: 0},
	}

	segments, err := service.Classify(entities, PolicyForceNoZero, 0)
	assert.NoError(t, err)
	assert.Equal(t, "A", segments[0].Class)
	assert.Equal(t, "C", segments[1].Class)
	assert.Equal(t, "D", segments[2].Class)
}

func TestClassifyErrors(t *testing.T) {
	service := NewABCService()

	_, err := service.Classify(nil, PolicyWindowed, 360)
	assert.Error(t, err)

	_, err = service.Classify([]models.ABCEntity{
		{ID: "lapsed", Metric: 100, Activity: 999},
	}, PolicyWindowed, 360)
	assert.Error(t, err, "no entities inside the window")

	_, err = service.Classify([]models.ABCEntity{
		{ID: "a", Metric: 0, Activity: 1},
	}, PolicyWindowed, 360)
	assert.Error(t, err, "zero total metric")
}

func TestGetABCSegments(t *testing.T) {
	service := NewABCService()

	customers := []models.Customer{
		{CustomerID: "C1", Revenue: 100, Recency: 30},
		{CustomerID: "C2", Revenue: 60, Recency: 90},
		{CustomerID: "C3", Revenue: 50, Recency: 500},
	}

	segments, err := service.GetABCSegments(customers, 12)
	assert.NoError(t, err)
	assert.Equal(t, "C1", segments[0].EntityID)
	assert.Equal(t, "A", segments[0].Class)
	assert.Equal(t, "D", segments[2].Class, "recency beyond months*30 days is lapsed")

	_, err = service.GetABCSegments(customers, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetProductABCSegments(t *testing.T) {
	service := NewABCService()

	products := []models.Product{
		{SKU: "SKU-A", Revenue: 700, Orders: 10},
		{SKU: "SKU-B", Revenue: 300, Orders: 2},
		{SKU: "SKU-C", Revenue: 0, Orders: 0},
	}

	segments, err := service.GetProductABCSegments(products)
	assert.NoError(t, err)
	assert.Equal(t, "A", segments[0].Class)
	assert.Equal(t, "C", segments[1].Class)
	assert.Equal(t, "D", segments[2].Class)
}
