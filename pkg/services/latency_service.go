package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"shop-analytics-api/pkg/models"
)

// Latency labels describing where a customer sits relative to their usual
// inter-purchase interval.
const (
	LabelOrderNotDue  = "Order not due"
	LabelOrderDueSoon = "Order due soon"
	LabelOrderOverdue = "Order overdue"
	LabelNotSure      = "Not sure"
)

// LatencyService computes per-customer inter-purchase-interval statistics.
type LatencyService struct{}

// NewLatencyService creates a new LatencyService.
func NewLatencyService() *LatencyService {
	return &LatencyService{}
}

// GetLatency aggregates revenue-positive transactions into one latency record
// per customer. Replacement and zero-revenue orders are excluded entirely.
// Interval statistics beyond the average require at least one predecessor
// order; customers without them keep nil stats and the "Not sure" label.
func (s *LatencyService) GetLatency(transactions []models.Transaction, now time.Time) ([]models.LatencyRecord, error) {
	if len(transactions) == 0 {
		return nil, fmt.Errorf("transactions are empty")
	}

	ordersByCustomer := make(map[string][]time.Time)
	for _, tx := range transactions {
		if tx.Revenue <= 0 {
			continue
		}
		ordersByCustomer[tx.CustomerID] = append(ordersByCustomer[tx.CustomerID], tx.OrderDate)
	}

	customerIDs := make([]string, 0, len(ordersByCustomer))
	for id := range ordersByCustomer {
		customerIDs = append(customerIDs, id)
	}
	sort.Strings(customerIDs)

	records := make([]models.LatencyRecord, 0, len(customerIDs))
	for _, id := range customerIDs {
		dates := ordersByCustomer[id]
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

		gaps := make([]float64, 0, len(dates)-1)
		for i := 1; i < len(dates); i++ {
			gaps = append(gaps, float64(roundedDays(dates[i-1], dates[i])))
		}

		record := models.LatencyRecord{
			CustomerID:  id,
			Frequency:   len(dates),
			RecencyDate: dates[len(dates)-1],
			Recency:     roundedDays(dates[len(dates)-1], now),
		}

		// The first order has no predecessor and contributes a zero gap,
		// so the average divides by the order count, not the gap count.
		var gapSum float64
		for _, g := range gaps {
			gapSum += g
		}
		record.AvgLatency = int(gapSum / float64(len(dates)))

		if len(gaps) > 0 {
			minGap := int(gaps[0])
			maxGap := int(gaps[0])
			for _, g := range gaps[1:] {
				if int(g) < minGap {
					minGap = int(g)
				}
				if int(g) > maxGap {
					maxGap = int(g)
				}
			}
			record.MinLatency = &minGap
			record.MaxLatency = &maxGap
		}

		// Sample standard deviation needs at least two gaps.
		if len(gaps) >= 2 {
			std := sampleStdDev(gaps)
			record.StdLatency = &std
			if record.AvgLatency != 0 {
				cv := std / float64(record.AvgLatency)
				record.CV = &cv
			}
			next := math.Round(float64(record.AvgLatency) - (float64(record.Recency) - std))
			record.DaysToNextOrder = &next
		}

		record.Label = latencyLabel(float64(record.AvgLatency), record.StdLatency, float64(record.Recency))
		records = append(records, record)
	}
	return records, nil
}

// latencyLabel classifies recency against the expected-order window
// [avg - (recency + std), avg - (recency - std)]. Without a defined std the
// window does not exist and the label falls through to "Not sure".
func latencyLabel(avgLatency float64, stdLatency *float64, recency float64) string {
	if stdLatency == nil {
		return LabelNotSure
	}
	std := *stdLatency
	upper := avgLatency - (recency - std)
	lower := avgLatency - (recency + std)

	switch {
	case recency < lower:
		return LabelOrderNotDue
	case recency <= lower || recency <= upper:
		return LabelOrderDueSoon
	case recency > upper:
		return LabelOrderOverdue
	default:
		return LabelNotSure
	}
}

// sampleStdDev returns the n-1 denominator standard deviation.
func sampleStdDev(values []float64) float64 {
	n := float64(len(values))
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= n

	var sumSquaredDiff float64
	for _, v := range values {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}
	return math.Sqrt(sumSquaredDiff / (n - 1))
}
