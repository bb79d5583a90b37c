package services

import (
	"testing"
	"time"

	"shop-analytics-api/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestGetCustomersAggregates(t *testing.T) {
	service := NewCustomerService(NewTransactionService())
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	items := []models.TransactionItem{
		item("O1", "SKU-A", 2, 10, "C1", "2024-01-10"),
		item("O1", "SKU-B", 1, 5, "C1", "2024-01-10"),
		item("O2", "SKU-A", 1, -10, "C1", "2024-02-01"),
		item("O3", "SKU-C", 1, 7, "C2", "2024-01-05"),
	}

	customers, err := service.GetCustomers(items, now)
	assert.NoError(t, err)
	assert.Len(t, customers, 2)

	c1 := customers[0]
	assert.Equal(t, "C1", c1.CustomerID)
	assert.Equal(t, 15.0, c1.Revenue)
	assert.Equal(t, 2, c1.Orders)
	assert.Equal(t, 2, c1.SKUs, "distinct SKUs across all orders")
	assert.Equal(t, 4, c1.Items)
	assert.Equal(t, 2.0, c1.AvgItems)
	assert.Equal(t, 7.5, c1.AvgOrderValue)
	assert.Equal(t, 51, c1.Tenure)
	assert.Equal(t, 29, c1.Recency)
	assert.Equal(t, "20241", c1.Cohort)

	c2 := customers[1]
	assert.Equal(t, "C2", c2.CustomerID)
	assert.Equal(t, 1, c2.Orders)
	assert.Equal(t, 7.0, c2.Revenue)
}

func TestGetCustomersCohortQuarters(t *testing.T) {
	service := NewCustomerService(NewTransactionService())
	now := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	items := []models.TransactionItem{
		item("O1", "SKU-A", 1, 10, "C1", "2024-05-10"),
		item("O2", "SKU-A", 1, 10, "C2", "2024-10-01"),
	}

	customers, err := service.GetCustomers(items, now)
	assert.NoError(t, err)
	assert.Equal(t, "20242", customers[0].Cohort)
	assert.Equal(t, "20244", customers[1].Cohort)
}
