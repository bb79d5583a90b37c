package handlers

import (
	"github.com/gin-gonic/gin"

	config "shop-analytics-api/configs"
	"shop-analytics-api/pkg/services"
)

// AnalyticsHandler exposes the transaction analytics pipeline over HTTP. Each
// endpoint takes a batch of transaction items and runs one stage of the
// pipeline; defaults for seeds, windows and horizons come from configuration
// and can be overridden per request via query parameters.
type AnalyticsHandler struct {
	transactionService  *services.TransactionService
	customerService     *services.CustomerService
	segmentationService *services.SegmentationService
	abcService          *services.ABCService
	cohortService       *services.CohortService
	latencyService      *services.LatencyService
	lifetimesService    *services.LifetimesService
	productService      *services.ProductService
	reportService       *services.ReportService
	cfg                 *config.Config
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(
	transactionService *services.TransactionService,
	customerService *services.CustomerService,
	segmentationService *services.SegmentationService,
	abcService *services.ABCService,
	cohortService *services.CohortService,
	latencyService *services.LatencyService,
	lifetimesService *services.LifetimesService,
	productService *services.ProductService,
	reportService *services.ReportService,
	cfg *config.Config,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		transactionService:  transactionService,
		customerService:     customerService,
		segmentationService: segmentationService,
		abcService:          abcService,
		cohortService:       cohortService,
		latencyService:      latencyService,
		lifetimesService:    lifetimesService,
		productService:      productService,
		reportService:       reportService,
		cfg:                 cfg,
	}
}

// GetTransactions returns order-level aggregates.
func (h *AnalyticsHandler) GetTransactions(c *gin.Context) {
	items, ok := bindItems(c)
	if !ok {
		return
	}
	transactions, err := h.transactionService.GetTransactions(items)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, transactions)
}

// GetCustomers returns customer-level aggregates.
func (h *AnalyticsHandler) GetCustomers(c *gin.Context) {
	items, ok := bindItems(c)
	if !ok {
		return
	}
	now, err := observationTime(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	customers, err := h.customerService.GetCustomers(items, now)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, customers)
}

// GetRFMSegments returns RFMH scores and segment labels per customer.
func (h *AnalyticsHandler) GetRFMSegments(c *gin.Context) {
	items, ok := bindItems(c)
	if !ok {
		return
	}
	now, err := observationTime(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	seed, err := int64Query(c, "seed", h.cfg.ClusterSeed)
	if err != nil {
		badRequest(c, err)
		return
	}
	customers, err := h.customerService.GetCustomers(items, now)
	if err != nil {
		respondError(c, err)
		return
	}
	segments, err := h.segmentationService.GetRFMSegments(customers, seed)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, segments)
}

// GetABCSegments returns Pareto classes for customers active inside the
// configured window.
func (h *AnalyticsHandler) GetABCSegments(c *gin.Context) {
	items, ok := bindItems(c)
	if !ok {
		return
	}
	now, err := observationTime(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	months, err := intQuery(c, "months", h.cfg.ABCWindowMonths)
	if err != nil {
		badRequest(c, err)
		return
	}
	customers, err := h.customerService.GetCustomers(items, now)
	if err != nil {
		respondError(c, err)
		return
	}
	segments, err := h.abcService.GetABCSegments(customers, months)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, segments)
}

// GetCohorts labels every deduplicated order with its acquisition cohort.
func (h *AnalyticsHandler) GetCohorts(c *gin.Context) {
	items, ok := bindItems(c)
	if !ok {
		return
	}
	period, err := services.ParseCohortPeriod(c.Query("period"))
	if err != nil {
		badRequest(c, err)
		return
	}
	cohorts, err := h.cohortService.GetCohorts(items, period)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, cohorts)
}

// GetRetention returns distinct-customer counts per cohort pair.
func (h *AnalyticsHandler) GetRetention(c *gin.Context) {
	items, ok := bindItems(c)
	if !ok {
		return
	}
	period, err := services.ParseCohortPeriod(c.Query("period"))
	if err != nil {
		badRequest(c, err)
		return
	}
	retention, err := h.cohortService.GetRetention(items, period)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, retention)
}

// GetCohortMatrix returns the pivoted retention matrix, optionally as
// percentages of each cohort's period-0 size.
func (h *AnalyticsHandler) GetCohortMatrix(c *gin.Context) {
	items, ok := bindItems(c)
	if !ok {
		return
	}
	period, err := services.ParseCohortPeriod(c.Query("period"))
	if err != nil {
		badRequest(c, err)
		return
	}
	percentage, err := boolQuery(c, "percentage", false)
	if err != nil {
		badRequest(c, err)
		return
	}
	matrix, err := h.cohortService.GetCohortMatrix(items, period, percentage)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, matrix)
}

// GetLatency returns inter-purchase-interval statistics per customer.
func (h *AnalyticsHandler) GetLatency(c *gin.Context) {
	items, ok := bindItems(c)
	if !ok {
		return
	}
	now, err := observationTime(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	transactions, err := h.transactionService.GetTransactions(items)
	if err != nil {
		respondError(c, err)
		return
	}
	latency, err := h.latencyService.GetLatency(transactions, now)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, latency)
}

// GetPredictions fits the lifetime models and returns predicted purchases,
// AOV and CLV per customer.
func (h *AnalyticsHandler) GetPredictions(c *gin.Context) {
	items, ok := bindItems(c)
	if !ok {
		return
	}
	end, err := observationTime(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	days, err := intQuery(c, "days", h.cfg.PredictionDays)
	if err != nil {
		badRequest(c, err)
		return
	}
	months, err := intQuery(c, "months", h.cfg.CLVMonths)
	if err != nil {
		badRequest(c, err)
		return
	}
	discountRate, err := floatQuery(c, "discount_rate", h.cfg.CLVDiscountRate)
	if err != nil {
		badRequest(c, err)
		return
	}
	transactions, err := h.transactionService.GetTransactions(items)
	if err != nil {
		respondError(c, err)
		return
	}
	predictions, err := h.lifetimesService.GetCustomerPredictions(transactions, end, days, months, discountRate)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, predictions)
}

// GetProducts returns SKU-level aggregates, optionally restricted to the
// last `days` days.
func (h *AnalyticsHandler) GetProducts(c *gin.Context) {
	items, ok := bindItems(c)
	if !ok {
		return
	}
	now, err := observationTime(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	days, err := intQuery(c, "days", 0)
	if err != nil {
		badRequest(c, err)
		return
	}
	products, err := h.productService.GetProducts(items, now, days)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, products)
}

// GetProductABCSegments returns Pareto classes for products by revenue.
func (h *AnalyticsHandler) GetProductABCSegments(c *gin.Context) {
	items, ok := bindItems(c)
	if !ok {
		return
	}
	now, err := observationTime(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	products, err := h.productService.GetProducts(items, now, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	segments, err := h.abcService.GetProductABCSegments(products)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, segments)
}

// GetRepurchaseRates returns bulk-purchase and repurchase behaviour per SKU.
func (h *AnalyticsHandler) GetRepurchaseRates(c *gin.Context) {
	items, ok := bindItems(c)
	if !ok {
		return
	}
	rates, err := h.productService.GetRepurchaseRates(items)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, rates)
}

// GetPeriodOverview returns the acquisition-period business report.
func (h *AnalyticsHandler) GetPeriodOverview(c *gin.Context) {
	items, ok := bindItems(c)
	if !ok {
		return
	}
	period, err := services.ParseCohortPeriod(c.Query("period"))
	if err != nil {
		badRequest(c, err)
		return
	}
	rows, err := h.reportService.PeriodOverview(items, period)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, rows)
}
