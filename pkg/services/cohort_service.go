package services

import (
	"fmt"
	"sort"
	"time"

	"shop-analytics-api/pkg/models"
)

// CohortPeriod is the granularity used for cohort bucketing.
type CohortPeriod string

const (
	PeriodMonth   CohortPeriod = "M"
	PeriodQuarter CohortPeriod = "Q"
	PeriodYear    CohortPeriod = "Y"
)

// ParseCohortPeriod validates a period string from the API boundary.
func ParseCohortPeriod(value string) (CohortPeriod, error) {
	switch CohortPeriod(value) {
	case PeriodMonth, PeriodQuarter, PeriodYear:
		return CohortPeriod(value), nil
	case "":
		return PeriodMonth, nil
	}
	return "", fmt.Errorf("%w: invalid period %q, expected M, Q or Y", ErrInvalidInput, value)
}

// CohortService buckets customers by acquisition period and computes
// retention matrices.
type CohortService struct{}

// NewCohortService creates a new CohortService.
func NewCohortService() *CohortService {
	return &CohortService{}
}

// periodIndex maps a date to a monotonically increasing integer per
// granularity unit, so period differences are simple subtractions.
func periodIndex(t time.Time, period CohortPeriod) int {
	switch period {
	case PeriodQuarter:
		return t.Year()*4 + quarterOf(t) - 1
	case PeriodYear:
		return t.Year()
	default:
		return t.Year()*12 + int(t.Month()) - 1
	}
}

// periodLabel renders the bucket a date falls into, e.g. "2024-01",
// "2024Q1" or "2024".
func periodLabel(t time.Time, period CohortPeriod) string {
	switch period {
	case PeriodQuarter:
		return fmt.Sprintf("%dQ%d", t.Year(), quarterOf(t))
	case PeriodYear:
		return fmt.Sprintf("%d", t.Year())
	default:
		return t.Format("2006-01")
	}
}

// GetCohorts deduplicates items to (customer, order, date) and labels each
// order with the customer's acquisition cohort and its own order cohort.
func (s *CohortService) GetCohorts(items []models.TransactionItem, period CohortPeriod) ([]models.CohortRecord, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}

	type orderKey struct {
		customerID string
		orderID    string
		date       time.Time
	}
	seen := make(map[orderKey]struct{})
	var records []models.CohortRecord
	firstOrder := make(map[string]time.Time)

	for _, item := range items {
		date, err := parseOrderDate(item.OrderDate)
		if err != nil {
			return nil, err
		}
		key := orderKey{customerID: item.CustomerID, orderID: item.OrderID, date: date}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		records = append(records, models.CohortRecord{
			CustomerID: item.CustomerID,
			OrderID:    item.OrderID,
			OrderDate:  date,
		})
		if first, ok := firstOrder[item.CustomerID]; !ok || date.Before(first) {
			firstOrder[item.CustomerID] = date
		}
	}

	for i := range records {
		records[i].AcquisitionCohort = periodLabel(firstOrder[records[i].CustomerID], period)
		records[i].OrderCohort = periodLabel(records[i].OrderDate, period)
	}
	return records, nil
}

// GetRetention counts distinct customers per (acquisition cohort, order
// cohort) pair. Periods is the number of granularity units between the two
// cohorts; 0 is the acquisition period itself.
func (s *CohortService) GetRetention(items []models.TransactionItem, period CohortPeriod) ([]models.RetentionRecord, error) {
	cohorts, err := s.GetCohorts(items, period)
	if err != nil {
		return nil, err
	}

	type pair struct {
		acquisition string
		order       string
	}
	customers := make(map[pair]map[string]struct{})
	periods := make(map[pair]int)
	// Period differences come from the record dates; labels alone cannot be
	// subtracted.
	acquisitionIdx := make(map[string]int)
	for _, rec := range cohorts {
		idx := periodIndex(rec.OrderDate, period)
		if cur, ok := acquisitionIdx[rec.CustomerID]; !ok || idx < cur {
			acquisitionIdx[rec.CustomerID] = idx
		}
	}
	for _, rec := range cohorts {
		p := pair{acquisition: rec.AcquisitionCohort, order: rec.OrderCohort}
		if customers[p] == nil {
			customers[p] = make(map[string]struct{})
		}
		customers[p][rec.CustomerID] = struct{}{}
		periods[p] = periodIndex(rec.OrderDate, period) - acquisitionIdx[rec.CustomerID]
	}

	records := make([]models.RetentionRecord, 0, len(customers))
	for p, set := range customers {
		records = append(records, models.RetentionRecord{
			AcquisitionCohort: p.acquisition,
			OrderCohort:       p.order,
			Customers:         len(set),
			Periods:           periods[p],
		})
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].AcquisitionCohort != records[j].AcquisitionCohort {
			return records[i].AcquisitionCohort < records[j].AcquisitionCohort
		}
		return records[i].Periods < records[j].Periods
	})
	return records, nil
}

// GetCohortMatrix pivots retention rows into a matrix of distinct customer
// counts. In percentage mode every row is divided by its own period-0 value,
// so column 0 is always 1.0.
func (s *CohortService) GetCohortMatrix(items []models.TransactionItem, period CohortPeriod, percentage bool) (*models.CohortMatrix, error) {
	retention, err := s.GetRetention(items, period)
	if err != nil {
		return nil, err
	}

	cohortSet := make(map[string]struct{})
	periodSet := make(map[int]struct{})
	for _, rec := range retention {
		cohortSet[rec.AcquisitionCohort] = struct{}{}
		periodSet[rec.Periods] = struct{}{}
	}

	cohorts := make([]string, 0, len(cohortSet))
	for c := range cohortSet {
		cohorts = append(cohorts, c)
	}
	sort.Strings(cohorts)

	periodCols := make([]int, 0, len(periodSet))
	for p := range periodSet {
		periodCols = append(periodCols, p)
	}
	sort.Ints(periodCols)

	rowOf := make(map[string]int, len(cohorts))
	for i, c := range cohorts {
		rowOf[c] = i
	}
	colOf := make(map[int]int, len(periodCols))
	for i, p := range periodCols {
		colOf[p] = i
	}

	values := make([][]*float64, len(cohorts))
	for i := range values {
		values[i] = make([]*float64, len(periodCols))
	}
	for _, rec := range retention {
		v := float64(rec.Customers)
		values[rowOf[rec.AcquisitionCohort]][colOf[rec.Periods]] = &v
	}

	if percentage {
		zeroCol, ok := colOf[0]
		if !ok {
			return nil, fmt.Errorf("retention has no period-0 column")
		}
		for i := range values {
			base := values[i][zeroCol]
			for j, cell := range values[i] {
				if cell == nil || base == nil {
					continue
				}
				ratio := *cell / *base
				values[i][j] = &ratio
			}
		}
	}

	return &models.CohortMatrix{Cohorts: cohorts, Periods: periodCols, Values: values}, nil
}
