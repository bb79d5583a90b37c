package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"shop-analytics-api/pkg/models"
)

// ErrInvalidInput marks errors caused by malformed request data, as opposed
// to data that is well-formed but statistically degenerate. Handlers map the
// former to 400 and the latter to 422.
var ErrInvalidInput = errors.New("invalid input")

// TransactionService collapses transaction items into order-level rows.
type TransactionService struct{}

// NewTransactionService creates a new TransactionService.
func NewTransactionService() *TransactionService {
	return &TransactionService{}
}

const dateLayout = "2006-01-02"

// parseOrderDate accepts YYYY-MM-DD dates or full RFC3339 timestamps.
func parseOrderDate(value string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid order_date %q, expected YYYY-MM-DD", ErrInvalidInput, value)
}

// validateItems rejects batches with missing required fields before any
// aggregation runs, so bad input never produces silently empty output.
func validateItems(items []models.TransactionItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: transaction items are empty", ErrInvalidInput)
	}
	for i, item := range items {
		if item.OrderID == "" || item.SKU == "" || item.CustomerID == "" || item.OrderDate == "" {
			return fmt.Errorf("%w: item %d: order_id, sku, customer_id and order_date are required", ErrInvalidInput, i)
		}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// linePrice derives the item line price the same way the import layer does.
func linePrice(item models.TransactionItem) float64 {
	return round2(float64(item.Quantity) * item.UnitPrice)
}

// GetTransactions returns one row per order_id. The order date and customer
// ID take the maximum per group; an order spanning two customer IDs silently
// keeps the larger one. Orders with revenue <= 0 are flagged as replacements.
func (s *TransactionService) GetTransactions(items []models.TransactionItem) ([]models.Transaction, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}

	byOrder := make(map[string]*models.Transaction)
	skuSets := make(map[string]map[string]struct{})
	for _, item := range items {
		date, err := parseOrderDate(item.OrderDate)
		if err != nil {
			return nil, err
		}
		tx, ok := byOrder[item.OrderID]
		if !ok {
			tx = &models.Transaction{
				OrderID:    item.OrderID,
				OrderDate:  date,
				CustomerID: item.CustomerID,
			}
			byOrder[item.OrderID] = tx
			skuSets[item.OrderID] = make(map[string]struct{})
		}
		if date.After(tx.OrderDate) {
			tx.OrderDate = date
		}
		if item.CustomerID > tx.CustomerID {
			tx.CustomerID = item.CustomerID
		}
		skuSets[item.OrderID][item.SKU] = struct{}{}
		tx.Items += item.Quantity
		tx.Revenue += linePrice(item)
	}

	transactions := make([]models.Transaction, 0, len(byOrder))
	for id, tx := range byOrder {
		tx.SKUs = len(skuSets[id])
		tx.Revenue = round2(tx.Revenue)
		if tx.Revenue <= 0 {
			tx.Replacement = 1
		}
		transactions = append(transactions, *tx)
	}
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].OrderID < transactions[j].OrderID
	})

	assignOrderNumbers(transactions)
	return transactions, nil
}

// assignOrderNumbers numbers each customer's orders 1..n in chronological
// order. Same-date orders keep their existing (order ID) order, so numbering
// is deterministic for a given batch.
func assignOrderNumbers(transactions []models.Transaction) {
	idx := make([]int, len(transactions))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return transactions[idx[a]].OrderDate.Before(transactions[idx[b]].OrderDate)
	})

	counts := make(map[string]int)
	for _, i := range idx {
		counts[transactions[i].CustomerID]++
		transactions[i].OrderNumber = counts[transactions[i].CustomerID]
	}
}

// daysBetween returns the whole number of days from earlier to later,
// truncated the way the original date arithmetic behaves.
func daysBetween(earlier, later time.Time) int {
	return int(later.Sub(earlier).Hours() / 24)
}

// roundedDays returns the day difference rounded to the nearest whole day.
func roundedDays(earlier, later time.Time) int {
	return int(math.Round(later.Sub(earlier).Hours() / 24))
}
