package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shop-analytics-api/pkg/models"
	"shop-analytics-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// findIndex finds the index of the first candidate in a slice
func findIndex(slice []string, candidates ...string) int {
	for _, candidate := range candidates {
		for i, item := range slice {
			if strings.EqualFold(strings.TrimSpace(item), candidate) {
				return i
			}
		}
	}
	return -1
}

// HealthCheck reports server liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondData wraps successful payloads in the standard envelope.
func respondData(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// respondError maps input-shape errors to 400 and degenerate-data errors
// to 422.
func respondError(c *gin.Context, err error) {
	status := http.StatusUnprocessableEntity
	if errors.Is(err, services.ErrInvalidInput) {
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

// bindItems decodes the common {"items": [...]} POST body.
func bindItems(c *gin.Context) ([]models.TransactionItem, bool) {
	var req models.ItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body: " + err.Error()})
		return nil, false
	}
	return req.Items, true
}

// observationTime reads the optional observation_date query parameter,
// defaulting to the current UTC time.
func observationTime(c *gin.Context) (time.Time, error) {
	value := c.Query("observation_date")
	if value == "" {
		return time.Now().UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid observation_date %q: expected YYYY-MM-DD", value)
}

func intQuery(c *gin.Context, key string, defaultValue int) (int, error) {
	value := c.Query(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: expected an integer", key, value)
	}
	return parsed, nil
}

func int64Query(c *gin.Context, key string, defaultValue int64) (int64, error) {
	value := c.Query(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: expected an integer", key, value)
	}
	return parsed, nil
}

func floatQuery(c *gin.Context, key string, defaultValue float64) (float64, error) {
	value := c.Query(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: expected a number", key, value)
	}
	return parsed, nil
}

func boolQuery(c *gin.Context, key string, defaultValue bool) (bool, error) {
	value := c.Query(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: expected true or false", key, value)
	}
	return parsed, nil
}

// badRequest reports a query-parameter error.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
}
