package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"shop-analytics-api/pkg/models"
)

// PurchaseModel predicts future purchase counts from (frequency, recency, T)
// summaries. Implementations must be fit before prediction.
type PurchaseModel interface {
	Fit(frequency, recency, T []float64) error
	ConditionalExpectedPurchases(days, frequency, recency, T float64) float64
}

// ValueModel predicts the expected average order value of a returning
// customer from (frequency, monetary_value) summaries.
type ValueModel interface {
	Fit(frequency, monetary []float64) error
	ConditionalExpectedValue(frequency, monetary float64) float64
}

// LifetimesService prepares per-customer RFMT summaries for the probabilistic
// models and merges their predictions back onto customer IDs.
type LifetimesService struct {
	newPurchaseModel func() PurchaseModel
	newValueModel    func() ValueModel
}

// NewLifetimesService creates a LifetimesService backed by the BG/NBD and
// Gamma-Gamma models.
func NewLifetimesService() *LifetimesService {
	return &LifetimesService{
		newPurchaseModel: func() PurchaseModel { return NewBetaGeoModel() },
		newValueModel:    func() ValueModel { return NewGammaGammaModel() },
	}
}

// NewLifetimesServiceWithModels creates a LifetimesService with custom model
// constructors.
func NewLifetimesServiceWithModels(purchase func() PurchaseModel, value func() ValueModel) *LifetimesService {
	return &LifetimesService{newPurchaseModel: purchase, newValueModel: value}
}

// Summary builds the RFMT table handed to the lifetime models. Replacement
// orders are dropped, same-day orders collapse into one purchase, and
// transactions after the observation period end are ignored. Frequency counts
// repeat purchase days; recency and T are measured in days from the first
// purchase; monetary value is the mean revenue of repeat purchases.
func (s *LifetimesService) Summary(transactions []models.Transaction, observationEnd time.Time) []models.RFMTSummary {
	type day struct {
		date    time.Time
		revenue float64
	}
	daysByCustomer := make(map[string][]day)
	for _, tx := range transactions {
		if tx.Replacement != 0 || tx.OrderDate.After(observationEnd) {
			continue
		}
		date := tx.OrderDate.Truncate(24 * time.Hour)
		days := daysByCustomer[tx.CustomerID]
		merged := false
		for i := range days {
			if days[i].date.Equal(date) {
				days[i].revenue += tx.Revenue
				merged = true
				break
			}
		}
		if !merged {
			days = append(days, day{date: date, revenue: tx.Revenue})
		}
		daysByCustomer[tx.CustomerID] = days
	}

	ids := make([]string, 0, len(daysByCustomer))
	for id := range daysByCustomer {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	summaries := make([]models.RFMTSummary, 0, len(ids))
	for _, id := range ids {
		days := daysByCustomer[id]
		sort.Slice(days, func(i, j int) bool { return days[i].date.Before(days[j].date) })

		first := days[0].date
		last := days[len(days)-1].date
		frequency := float64(len(days) - 1)

		var monetary float64
		if frequency > 0 {
			var repeatRevenue float64
			for _, d := range days[1:] {
				repeatRevenue += d.revenue
			}
			monetary = repeatRevenue / frequency
		}

		summaries = append(summaries, models.RFMTSummary{
			CustomerID:    id,
			Frequency:     frequency,
			Recency:       float64(daysBetween(first, last)),
			T:             float64(daysBetween(first, observationEnd)),
			MonetaryValue: monetary,
		})
	}
	return summaries
}

// GetCustomerPredictions fits both models on the RFMT summaries and returns
// predicted purchases over the horizon plus AOV and CLV for the returning
// subset. Customers outside that subset keep nil AOV/CLV. Model fit failures
// propagate; there is no fallback.
func (s *LifetimesService) GetCustomerPredictions(transactions []models.Transaction, observationEnd time.Time, days, months int, discountRate float64) ([]models.CustomerPrediction, error) {
	summaries := s.Summary(transactions, observationEnd)
	if len(summaries) == 0 {
		return nil, fmt.Errorf("no revenue transactions inside the observation period")
	}

	frequency := make([]float64, len(summaries))
	recency := make([]float64, len(summaries))
	T := make([]float64, len(summaries))
	for i, row := range summaries {
		frequency[i] = row.Frequency
		recency[i] = row.Recency
		T[i] = row.T
	}

	purchaseModel := s.newPurchaseModel()
	if err := purchaseModel.Fit(frequency, recency, T); err != nil {
		return nil, fmt.Errorf("purchase model fit: %w", err)
	}

	var returning []models.RFMTSummary
	for _, row := range summaries {
		if row.Frequency > 0 && row.MonetaryValue > 0 {
			returning = append(returning, row)
		}
	}
	if len(returning) == 0 {
		return nil, fmt.Errorf("no returning customers with positive monetary value")
	}

	retFrequency := make([]float64, len(returning))
	retMonetary := make([]float64, len(returning))
	for i, row := range returning {
		retFrequency[i] = row.Frequency
		retMonetary[i] = row.MonetaryValue
	}

	valueModel := s.newValueModel()
	if err := valueModel.Fit(retFrequency, retMonetary); err != nil {
		return nil, fmt.Errorf("value model fit: %w", err)
	}

	aov := make(map[string]float64, len(returning))
	clv := make(map[string]float64, len(returning))
	for _, row := range returning {
		a := valueModel.ConditionalExpectedValue(row.Frequency, row.MonetaryValue)
		aov[row.CustomerID] = a
		clv[row.CustomerID] = lifetimeValue(purchaseModel, a, row, months, discountRate)
	}

	predictions := make([]models.CustomerPrediction, len(summaries))
	for i, row := range summaries {
		p := models.CustomerPrediction{
			CustomerID:         row.CustomerID,
			PredictedPurchases: purchaseModel.ConditionalExpectedPurchases(float64(days), row.Frequency, row.Recency, row.T),
		}
		if a, ok := aov[row.CustomerID]; ok {
			av := a
			p.AOV = &av
		}
		if c, ok := clv[row.CustomerID]; ok {
			cv := c
			p.CLV = &cv
		}
		predictions[i] = p
	}
	return predictions, nil
}

// lifetimeValue discounts the expected monthly purchases over the horizon at
// the supplied monthly discount rate.
func lifetimeValue(pm PurchaseModel, expectedValue float64, row models.RFMTSummary, months int, discountRate float64) float64 {
	var clv float64
	prev := 0.0
	for i := 1; i <= months; i++ {
		horizon := float64(30 * i)
		cumulative := pm.ConditionalExpectedPurchases(horizon, row.Frequency, row.Recency, row.T)
		monthly := cumulative - prev
		prev = cumulative
		clv += expectedValue * monthly / math.Pow(1+discountRate, float64(i))
	}
	return clv
}
