package services

import (
	"fmt"
	"sort"
	"time"

	"shop-analytics-api/pkg/models"
)

// CustomerService collapses transaction items into customer-level rows with
// tenure and recency metrics.
type CustomerService struct {
	transactionService *TransactionService
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(transactionService *TransactionService) *CustomerService {
	return &CustomerService{transactionService: transactionService}
}

// GetCustomers aggregates items into one row per customer. Tenure and recency
// are measured against the supplied observation time; callers wanting live
// values pass time.Now() at the boundary, never inside the pipeline.
func (s *CustomerService) GetCustomers(items []models.TransactionItem, now time.Time) ([]models.Customer, error) {
	transactions, err := s.transactionService.GetTransactions(items)
	if err != nil {
		return nil, err
	}

	byCustomer := make(map[string]*models.Customer)
	for _, tx := range transactions {
		c, ok := byCustomer[tx.CustomerID]
		if !ok {
			c = &models.Customer{
				CustomerID:     tx.CustomerID,
				FirstOrderDate: tx.OrderDate,
				LastOrderDate:  tx.OrderDate,
			}
			byCustomer[tx.CustomerID] = c
		}
		c.Revenue += tx.Revenue
		c.Orders++
		c.Items += tx.Items
		if tx.OrderDate.Before(c.FirstOrderDate) {
			c.FirstOrderDate = tx.OrderDate
		}
		if tx.OrderDate.After(c.LastOrderDate) {
			c.LastOrderDate = tx.OrderDate
		}
	}

	// Distinct SKUs come from the item rows; the order-level aggregate only
	// carries per-order counts.
	skuSets := make(map[string]map[string]struct{})
	orderOwner := make(map[string]string)
	for _, tx := range transactions {
		orderOwner[tx.OrderID] = tx.CustomerID
	}
	for _, item := range items {
		owner := orderOwner[item.OrderID]
		if skuSets[owner] == nil {
			skuSets[owner] = make(map[string]struct{})
		}
		skuSets[owner][item.SKU] = struct{}{}
	}

	customers := make([]models.Customer, 0, len(byCustomer))
	for id, c := range byCustomer {
		c.SKUs = len(skuSets[id])
		c.Revenue = round2(c.Revenue)
		c.AvgItems = round2(float64(c.Items) / float64(c.Orders))
		c.AvgOrderValue = round2(c.Revenue / float64(c.Orders))
		c.Tenure = daysBetween(c.FirstOrderDate, now)
		c.Recency = daysBetween(c.LastOrderDate, now)
		c.Cohort = fmt.Sprintf("%d%d", c.FirstOrderDate.Year(), quarterOf(c.FirstOrderDate))
		customers = append(customers, *c)
	}
	sort.Slice(customers, func(i, j int) bool {
		return customers[i].CustomerID < customers[j].CustomerID
	})
	return customers, nil
}

// quarterOf returns the calendar quarter (1-4) of a date.
func quarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}
