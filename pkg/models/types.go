package models

import "time"

// TransactionItem represents a single order line as loaded from the source
// system. Dates use the YYYY-MM-DD format.
type TransactionItem struct {
	OrderID    string  `json:"order_id" binding:"required"`
	SKU        string  `json:"sku" binding:"required"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CustomerID string  `json:"customer_id" binding:"required"`
	OrderDate  string  `json:"order_date" binding:"required"`
}

// Transaction is the order-level aggregate: one row per order_id.
type Transaction struct {
	OrderID     string    `json:"order_id"`
	OrderDate   time.Time `json:"order_date"`
	CustomerID  string    `json:"customer_id"`
	SKUs        int       `json:"skus"`  // distinct SKUs in the order
	Items       int       `json:"items"` // total units (negative for returns)
	Revenue     float64   `json:"revenue"`
	Replacement int       `json:"replacement"`  // 1 when revenue <= 0
	OrderNumber int       `json:"order_number"` // 1-based per customer, chronological
}

// Customer is the customer-level aggregate.
type Customer struct {
	CustomerID     string    `json:"customer_id"`
	Revenue        float64   `json:"revenue"`
	Orders         int       `json:"orders"`
	SKUs           int       `json:"skus"` // distinct SKUs across all orders
	Items          int       `json:"items"`
	AvgItems       float64   `json:"avg_items"`
	AvgOrderValue  float64   `json:"avg_order_value"`
	FirstOrderDate time.Time `json:"first_order_date"`
	LastOrderDate  time.Time `json:"last_order_date"`
	Tenure         int       `json:"tenure"`  // days since first order
	Recency        int       `json:"recency"` // days since last order
	Cohort         string    `json:"cohort"`  // year+quarter of acquisition, e.g. "20241"
}

// RFMSegment holds the raw RFMH metrics, the four ordinal scores and the
// composite segment assignment for one customer.
type RFMSegment struct {
	CustomerID      string    `json:"customer_id"`
	AcquisitionDate time.Time `json:"acquisition_date"`
	RecencyDate     time.Time `json:"recency_date"`
	Recency         int       `json:"recency"`
	Frequency       int       `json:"frequency"`
	Monetary        float64   `json:"monetary"`
	Heterogeneity   int       `json:"heterogeneity"`
	Tenure          int       `json:"tenure"`
	R               int       `json:"r"`
	F               int       `json:"f"`
	M               int       `json:"m"`
	H               int       `json:"h"`
	RFM             string    `json:"rfm"` // digit concatenation, e.g. "523"
	RFMScore        int       `json:"rfm_score"`
	SegmentName     string    `json:"rfm_segment_name"`
}

// ABCSegment is the Pareto class assignment for one entity (customer or SKU).
type ABCSegment struct {
	EntityID             string   `json:"entity_id"`
	Revenue              float64  `json:"revenue"`
	CumulativePercentage *float64 `json:"cumulative_percentage,omitempty"` // nil for out-of-window (class D) entities
	Class                string   `json:"class"`
	Rank                 int      `json:"rank"`
}

// ABCEntity is the generalised classifier input: a keyed metric with an
// optional activity value used by the window / zero-activity policies.
type ABCEntity struct {
	ID       string  `json:"id"`
	Metric   float64 `json:"metric"`
	Activity float64 `json:"activity"`
}

// CohortRecord maps one deduplicated order to its acquisition and order cohorts.
type CohortRecord struct {
	CustomerID        string    `json:"customer_id"`
	OrderID           string    `json:"order_id"`
	OrderDate         time.Time `json:"order_date"`
	AcquisitionCohort string    `json:"acquisition_cohort"`
	OrderCohort       string    `json:"order_cohort"`
}

// RetentionRecord counts distinct active customers for one
// (acquisition cohort, order cohort) pair.
type RetentionRecord struct {
	AcquisitionCohort string `json:"acquisition_cohort"`
	OrderCohort       string `json:"order_cohort"`
	Customers         int    `json:"customers"`
	Periods           int    `json:"periods"`
}

// CohortMatrix is the pivoted retention table. Rows follow Cohorts, columns
// follow Periods; cells without observations are nil. In percentage mode
// every row is divided by its own period-0 value.
type CohortMatrix struct {
	Cohorts []string     `json:"cohorts"`
	Periods []int        `json:"periods"`
	Values  [][]*float64 `json:"values"`
}

// LatencyRecord holds inter-purchase interval statistics for one customer.
// Min/max/std (and everything derived from std) are nil for customers with a
// single revenue-positive order, since those intervals do not exist.
type LatencyRecord struct {
	CustomerID      string    `json:"customer_id"`
	Frequency       int       `json:"frequency"`
	RecencyDate     time.Time `json:"recency_date"`
	Recency         int       `json:"recency"`
	AvgLatency      int       `json:"avg_latency"`
	MinLatency      *int      `json:"min_latency,omitempty"`
	MaxLatency      *int      `json:"max_latency,omitempty"`
	StdLatency      *float64  `json:"std_latency,omitempty"`
	CV              *float64  `json:"cv,omitempty"`
	DaysToNextOrder *float64  `json:"days_to_next_order,omitempty"`
	Label           string    `json:"label"`
}

// RFMTSummary is the per-customer input row handed to the probabilistic
// lifetime models. Frequency counts repeat purchase days; recency and T are
// measured in days relative to the customer's first purchase and the
// observation period end; monetary value is the mean repeat order revenue.
type RFMTSummary struct {
	CustomerID    string  `json:"customer_id"`
	Frequency     float64 `json:"frequency"`
	Recency       float64 `json:"recency"`
	T             float64 `json:"T"`
	MonetaryValue float64 `json:"monetary_value"`
}

// CustomerPrediction merges the outputs of the purchase-count and value
// models. AOV and CLV are nil for customers outside the returning subset.
type CustomerPrediction struct {
	CustomerID         string   `json:"customer_id"`
	PredictedPurchases float64  `json:"predicted_purchases"`
	AOV                *float64 `json:"aov,omitempty"`
	CLV                *float64 `json:"clv,omitempty"`
}

// Product is the SKU-level aggregate.
type Product struct {
	SKU            string    `json:"sku"`
	FirstOrderDate time.Time `json:"first_order_date"`
	LastOrderDate  time.Time `json:"last_order_date"`
	Customers      int       `json:"customers"`
	Orders         int       `json:"orders"`
	Items          int       `json:"items"`
	Revenue        float64   `json:"revenue"`
	AvgUnitPrice   float64   `json:"avg_unit_price"`
	AvgQuantity    float64   `json:"avg_quantity"`
	AvgRevenue     float64   `json:"avg_revenue"`
	AvgOrders      float64   `json:"avg_orders"`
	Tenure         int       `json:"product_tenure"`
	Recency        int       `json:"product_recency"`
}

// RepurchaseRate describes purchase and repurchase behaviour for one SKU.
type RepurchaseRate struct {
	SKU                    string  `json:"sku"`
	Revenue                float64 `json:"revenue"`
	Items                  int     `json:"items"`
	Orders                 int     `json:"orders"`
	Customers              int     `json:"customers"`
	AvgUnitPrice           float64 `json:"avg_unit_price"`
	AvgLinePrice           float64 `json:"avg_line_price"`
	AvgItemsPerOrder       float64 `json:"avg_items_per_order"`
	AvgItemsPerCustomer    float64 `json:"avg_items_per_customer"`
	PurchasedIndividually  int     `json:"purchased_individually"`
	PurchasedOnce          int     `json:"purchased_once"`
	BulkPurchases          int     `json:"bulk_purchases"`
	BulkPurchaseRate       float64 `json:"bulk_purchase_rate"`
	Repurchases            int     `json:"repurchases"`
	RepurchaseRate         float64 `json:"repurchase_rate"`
	RepurchaseRateLabel    string  `json:"repurchase_rate_label"`
	BulkPurchaseRateLabel  string  `json:"bulk_purchase_rate_label"`
	BulkAndRepurchaseLabel string  `json:"bulk_and_repurchase_label"`
}

// PeriodOverview is one row of the periodic business report.
type PeriodOverview struct {
	Period                string  `json:"period"`
	Customers             int     `json:"customers"`
	Orders                int     `json:"orders"`
	Units                 int     `json:"units"`
	Revenue               float64 `json:"revenue"`
	AvgOrderValue         float64 `json:"avg_order_value"`
	AvgUnitsPerOrder      float64 `json:"avg_units_per_order"`
	AvgOrdersPerCustomer  float64 `json:"avg_orders_per_customer"`
	AvgRevenuePerCustomer float64 `json:"avg_revenue_per_customer"`
}

// ItemsRequest is the common POST body: a batch of transaction items.
type ItemsRequest struct {
	Items []TransactionItem `json:"items" binding:"required"`
}

// ImportResult reports the outcome of a CSV/XLSX import.
type ImportResult struct {
	ImportID string            `json:"import_id"`
	FileName string            `json:"file_name"`
	Rows     int               `json:"rows"`
	Skipped  int               `json:"skipped"`
	Items    []TransactionItem `json:"items"`
}
