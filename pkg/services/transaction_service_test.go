package services

import (
	"testing"
	"time"

	"shop-analytics-api/pkg/models"

	"github.com/stretchr/testify/assert"
)

func item(orderID, sku string, qty int, price float64, customerID, date string) models.TransactionItem {
	return models.TransactionItem{
		OrderID:    orderID,
		SKU:        sku,
		Quantity:   qty,
		UnitPrice:  price,
		CustomerID: customerID,
		OrderDate:  date,
	}
}

func TestGetTransactionsGroupsByOrder(t *testing.T) {
	service := NewTransactionService()

	items := []models.TransactionItem{
		item("O1", "SKU-A", 2, 10, "C1", "2024-01-10"),
		item("O1", "SKU-B", 1, 5, "C1", "2024-01-10"),
		item("O2", "SKU-A", 1, -10, "C1", "2024-02-01"),
		item("O3", "SKU-C", 1, 7, "C2", "2024-01-05"),
	}

	transactions, err := service.GetTransactions(items)
	assert.NoError(t, err)
	assert.Len(t, transactions, 3)

	o1 := transactions[0]
	assert.Equal(t, "O1", o1.OrderID)
	assert.Equal(t, 2, o1.SKUs)
	assert.Equal(t, 3, o1.Items)
	assert.Equal(t, 25.0, o1.Revenue)
	assert.Equal(t, 0, o1.Replacement)

	o2 := transactions[1]
	assert.Equal(t, -10.0, o2.Revenue)
	assert.Equal(t, 1, o2.Replacement, "non-positive revenue flags a replacement")
}

func TestGetTransactionsOrderNumbers(t *testing.T) {
	service := NewTransactionService()

	items := []models.TransactionItem{
		item("O2", "SKU-A", 1, 10, "C1", "2024-02-01"),
		item("O1", "SKU-A", 1, 10, "C1", "2024-01-10"),
		item("O3", "SKU-C", 1, 7, "C2", "2024-01-05"),
	}

	transactions, err := service.GetTransactions(items)
	assert.NoError(t, err)

	numbers := make(map[string]int)
	for _, tx := range transactions {
		numbers[tx.OrderID] = tx.OrderNumber
	}
	assert.Equal(t, 1, numbers["O1"], "earliest order per customer is number 1")
	assert.Equal(t, 2, numbers["O2"])
	assert.Equal(t, 1, numbers["O3"])
}

func TestGetTransactionsMaxDateAndCustomer(t *testing.T) {
	service := NewTransactionService()

	// One order spanning two dates and two customer IDs keeps the maximum
	// of each.
	items := []models.TransactionItem{
		item("O1", "SKU-A", 1, 10, "C1", "2024-01-01"),
		item("O1", "SKU-B", 1, 10, "C2", "2024-01-03"),
	}

	transactions, err := service.GetTransactions(items)
	assert.NoError(t, err)
	assert.Len(t, transactions, 1)
	assert.Equal(t, "C2", transactions[0].CustomerID)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), transactions[0].OrderDate)
}

func TestGetTransactionsValidation(t *testing.T) {
	service := NewTransactionService()

	_, err := service.GetTransactions(nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = service.GetTransactions([]models.TransactionItem{
		item("O1", "", 1, 10, "C1", "2024-01-01"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = service.GetTransactions([]models.TransactionItem{
		item("O1", "SKU-A", 1, 10, "C1", "01/02/2024"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
