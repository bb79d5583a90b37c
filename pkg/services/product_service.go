package services

import (
	"fmt"
	"sort"
	"time"

	"shop-analytics-api/pkg/models"
)

// ProductService aggregates transaction items into SKU-level rows and
// repurchase behaviour metrics.
type ProductService struct{}

// NewProductService creates a new ProductService.
func NewProductService() *ProductService {
	return &ProductService{}
}

// GetProducts returns one row per SKU. A positive days value restricts the
// input to items ordered within the last `days` days of the observation time.
func (s *ProductService) GetProducts(items []models.TransactionItem, now time.Time, days int) ([]models.Product, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}

	type productAgg struct {
		product      models.Product
		customers    map[string]struct{}
		orders       map[string]struct{}
		unitPriceSum float64
		quantitySum  int
		linePriceSum float64
		lineCount    int
	}

	cutoff := now.AddDate(0, 0, -days)
	bySKU := make(map[string]*productAgg)
	for _, item := range items {
		date, err := parseOrderDate(item.OrderDate)
		if err != nil {
			return nil, err
		}
		if days > 0 && date.Before(cutoff) {
			continue
		}
		agg, ok := bySKU[item.SKU]
		if !ok {
			agg = &productAgg{
				product: models.Product{
					SKU:            item.SKU,
					FirstOrderDate: date,
					LastOrderDate:  date,
				},
				customers: make(map[string]struct{}),
				orders:    make(map[string]struct{}),
			}
			bySKU[item.SKU] = agg
		}
		if date.Before(agg.product.FirstOrderDate) {
			agg.product.FirstOrderDate = date
		}
		if date.After(agg.product.LastOrderDate) {
			agg.product.LastOrderDate = date
		}
		agg.customers[item.CustomerID] = struct{}{}
		agg.orders[item.OrderID] = struct{}{}
		agg.product.Items += item.Quantity
		agg.product.Revenue += linePrice(item)
		agg.unitPriceSum += item.UnitPrice
		agg.quantitySum += item.Quantity
		agg.linePriceSum += linePrice(item)
		agg.lineCount++
	}
	if len(bySKU) == 0 {
		return nil, fmt.Errorf("no items inside the last %d days", days)
	}

	skus := make([]string, 0, len(bySKU))
	for sku := range bySKU {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	products := make([]models.Product, 0, len(skus))
	for _, sku := range skus {
		agg := bySKU[sku]
		p := agg.product
		p.Customers = len(agg.customers)
		p.Orders = len(agg.orders)
		p.Revenue = round2(p.Revenue)
		p.AvgUnitPrice = round2(agg.unitPriceSum / float64(agg.lineCount))
		p.AvgQuantity = round2(float64(agg.quantitySum) / float64(agg.lineCount))
		p.AvgRevenue = round2(agg.linePriceSum / float64(agg.lineCount))
		p.AvgOrders = round2(float64(p.Orders) / float64(p.Customers))
		p.Tenure = daysBetween(p.FirstOrderDate, now)
		p.Recency = daysBetween(p.LastOrderDate, now)
		products = append(products, p)
	}
	return products, nil
}

// GetRepurchaseRates computes per-SKU bulk-purchase and repurchase rates and
// buckets both into five equal-width labels.
func (s *ProductService) GetRepurchaseRates(items []models.TransactionItem) ([]models.RepurchaseRate, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}

	type skuAgg struct {
		revenue               float64
		items                 int
		orders                map[string]struct{}
		customerOrders        map[string]map[string]struct{}
		unitPriceSum          float64
		linePriceSum          float64
		lineCount             int
		purchasedIndividually int
	}

	bySKU := make(map[string]*skuAgg)
	for _, item := range items {
		if _, err := parseOrderDate(item.OrderDate); err != nil {
			return nil, err
		}
		agg, ok := bySKU[item.SKU]
		if !ok {
			agg = &skuAgg{
				orders:         make(map[string]struct{}),
				customerOrders: make(map[string]map[string]struct{}),
			}
			bySKU[item.SKU] = agg
		}
		agg.revenue += linePrice(item)
		agg.items += item.Quantity
		agg.orders[item.OrderID] = struct{}{}
		if agg.customerOrders[item.CustomerID] == nil {
			agg.customerOrders[item.CustomerID] = make(map[string]struct{})
		}
		agg.customerOrders[item.CustomerID][item.OrderID] = struct{}{}
		agg.unitPriceSum += item.UnitPrice
		agg.linePriceSum += linePrice(item)
		agg.lineCount++
		if item.Quantity == 1 {
			agg.purchasedIndividually++
		}
	}

	skus := make([]string, 0, len(bySKU))
	for sku := range bySKU {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	rates := make([]models.RepurchaseRate, 0, len(skus))
	for _, sku := range skus {
		agg := bySKU[sku]
		orders := len(agg.orders)
		customers := len(agg.customerOrders)

		// Customers whose only order for this SKU is their first.
		purchasedOnce := 0
		for _, set := range agg.customerOrders {
			if len(set) == 1 {
				purchasedOnce++
			}
		}

		bulk := orders - agg.purchasedIndividually
		repurchases := orders - purchasedOnce
		rates = append(rates, models.RepurchaseRate{
			SKU:                   sku,
			Revenue:               round2(agg.revenue),
			Items:                 agg.items,
			Orders:                orders,
			Customers:             customers,
			AvgUnitPrice:          round2(agg.unitPriceSum / float64(agg.lineCount)),
			AvgLinePrice:          round2(agg.linePriceSum / float64(agg.lineCount)),
			AvgItemsPerOrder:      round2(float64(agg.items) / float64(orders)),
			AvgItemsPerCustomer:   round2(float64(agg.items) / float64(customers)),
			PurchasedIndividually: agg.purchasedIndividually,
			PurchasedOnce:         purchasedOnce,
			BulkPurchases:         bulk,
			BulkPurchaseRate:      round2(float64(bulk) / float64(orders)),
			Repurchases:           repurchases,
			RepurchaseRate:        round2(float64(repurchases) / float64(orders)),
		})
	}

	bulkValues := make([]float64, len(rates))
	repurchaseValues := make([]float64, len(rates))
	for i, r := range rates {
		bulkValues[i] = r.BulkPurchaseRate
		repurchaseValues[i] = r.RepurchaseRate
	}
	bulkLabels := binLabels(bulkValues, "bulk")
	repurchaseLabels := binLabels(repurchaseValues, "repurchase")
	for i := range rates {
		rates[i].BulkPurchaseRateLabel = bulkLabels[i]
		rates[i].RepurchaseRateLabel = repurchaseLabels[i]
		rates[i].BulkAndRepurchaseLabel = bulkLabels[i] + "_" + repurchaseLabels[i]
	}
	return rates, nil
}

var binPrefixes = [5]string{"Very low", "Low", "Moderate", "High", "Very high"}

// binLabels cuts values into five equal-width bins over their range. A
// constant column has no range; everything falls into the middle bin.
func binLabels(values []float64, suffix string) []string {
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	labels := make([]string, len(values))
	width := (max - min) / 5
	for i, v := range values {
		bin := 2
		if width > 0 {
			bin = int((v - min) / width)
			if bin > 4 {
				bin = 4
			}
		}
		labels[i] = binPrefixes[bin] + " " + suffix
	}
	return labels
}
