package services

import (
	"sort"
	"time"

	"shop-analytics-api/pkg/models"
)

// ReportService produces period-level business overview reports.
type ReportService struct{}

// NewReportService creates a new ReportService.
func NewReportService() *ReportService {
	return &ReportService{}
}

// PeriodOverview sums customers, orders, units and revenue per period and
// derives the average ratios. Every row is bucketed by the period its
// customer was acquired in (the customer's first order date), not by the
// row's own order date, so a period reports the full activity of the
// customers it acquired. Rows come back newest period first.
func (s *ReportService) PeriodOverview(items []models.TransactionItem, period CohortPeriod) ([]models.PeriodOverview, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}

	firstOrder := make(map[string]time.Time)
	for _, item := range items {
		date, err := parseOrderDate(item.OrderDate)
		if err != nil {
			return nil, err
		}
		if first, ok := firstOrder[item.CustomerID]; !ok || date.Before(first) {
			firstOrder[item.CustomerID] = date
		}
	}

	type periodAgg struct {
		customers map[string]struct{}
		orders    map[string]struct{}
		units     int
		revenue   float64
	}
	byPeriod := make(map[string]*periodAgg)
	for _, item := range items {
		label := periodLabel(firstOrder[item.CustomerID], period)
		agg, ok := byPeriod[label]
		if !ok {
			agg = &periodAgg{
				customers: make(map[string]struct{}),
				orders:    make(map[string]struct{}),
			}
			byPeriod[label] = agg
		}
		agg.customers[item.CustomerID] = struct{}{}
		agg.orders[item.OrderID] = struct{}{}
		agg.units += item.Quantity
		agg.revenue += linePrice(item)
	}

	labels := make([]string, 0, len(byPeriod))
	for label := range byPeriod {
		labels = append(labels, label)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(labels)))

	rows := make([]models.PeriodOverview, 0, len(labels))
	for _, label := range labels {
		agg := byPeriod[label]
		customers := len(agg.customers)
		orders := len(agg.orders)
		rows = append(rows, models.PeriodOverview{
			Period:                label,
			Customers:             customers,
			Orders:                orders,
			Units:                 agg.units,
			Revenue:               round2(agg.revenue),
			AvgOrderValue:         round2(agg.revenue / float64(orders)),
			AvgUnitsPerOrder:      round2(float64(agg.units) / float64(orders)),
			AvgOrdersPerCustomer:  round2(float64(orders) / float64(customers)),
			AvgRevenuePerCustomer: round2(agg.revenue / float64(customers)),
		})
	}
	return rows, nil
}
