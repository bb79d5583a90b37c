package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"shop-analytics-api/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ImportHandler loads transaction items from uploaded CSV or XLSX files and
// maps source columns onto the canonical item schema.
type ImportHandler struct{}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler() *ImportHandler {
	return &ImportHandler{}
}

// ImportFile parses a multipart CSV/XLSX upload into transaction items.
// Source column names can be overridden with the *_col form fields; without
// overrides common header spellings are detected case-insensitively. Rows
// with unparseable numbers are skipped and counted, never silently mangled.
func (h *ImportHandler) ImportFile(c *gin.Context) {
	c.Request.ParseMultipartForm(10 << 20) // 10MB limit

	file, fileHeader, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "failed to read the uploaded file"})
		return
	}
	defer file.Close()

	var rows [][]string
	fileName := fileHeader.Filename

	if strings.HasSuffix(strings.ToLower(fileName), ".xlsx") {
		f, err := excelize.OpenReader(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "failed to open the Excel file"})
			return
		}
		defer f.Close()
		rows, err = f.GetRows(f.GetSheetName(0))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "failed to read the Excel sheet"})
			return
		}
	} else if strings.HasSuffix(strings.ToLower(fileName), ".csv") {
		r := csv.NewReader(file)
		r.FieldsPerRecord = -1
		rows, err = r.ReadAll()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "failed to parse the CSV file"})
			return
		}
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "unsupported file format: upload .xlsx or .csv"})
		return
	}

	if len(rows) < 2 { // header + at least one data row
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "the file needs a header row and at least one data row"})
		return
	}

	header := rows[0]
	dataRows := rows[1:]

	columnIdx := func(override string, candidates ...string) int {
		if override != "" {
			return findIndex(header, override)
		}
		return findIndex(header, candidates...)
	}

	orderIDIdx := columnIdx(c.PostForm("order_id_col"), "order_id", "order", "invoice", "invoiceno")
	skuIdx := columnIdx(c.PostForm("sku_col"), "sku", "stockcode", "product_id", "product_code")
	quantityIdx := columnIdx(c.PostForm("quantity_col"), "quantity", "qty", "units")
	unitPriceIdx := columnIdx(c.PostForm("unit_price_col"), "unit_price", "unitprice", "price")
	customerIDIdx := columnIdx(c.PostForm("customer_id_col"), "customer_id", "customerid", "customer")
	orderDateIdx := columnIdx(c.PostForm("order_date_col"), "order_date", "date", "invoicedate")

	var missingCols []string
	for _, col := range []struct {
		name string
		idx  int
	}{
		{"order_id", orderIDIdx},
		{"sku", skuIdx},
		{"quantity", quantityIdx},
		{"unit_price", unitPriceIdx},
		{"customer_id", customerIDIdx},
		{"order_date", orderDateIdx},
	} {
		if col.idx == -1 {
			missingCols = append(missingCols, col.name)
		}
	}
	if len(missingCols) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   fmt.Sprintf("required columns not found: %s (header: %v)", strings.Join(missingCols, ", "), header),
		})
		return
	}

	items := make([]models.TransactionItem, 0, len(dataRows))
	skipped := 0
	for _, row := range dataRows {
		maxIdx := orderIDIdx
		for _, idx := range []int{skuIdx, quantityIdx, unitPriceIdx, customerIDIdx, orderDateIdx} {
			if idx > maxIdx {
				maxIdx = idx
			}
		}
		if len(row) <= maxIdx {
			skipped++
			continue
		}

		quantity, qErr := strconv.Atoi(strings.TrimSpace(row[quantityIdx]))
		unitPrice, pErr := strconv.ParseFloat(strings.TrimSpace(row[unitPriceIdx]), 64)
		if qErr != nil || pErr != nil {
			skipped++
			continue
		}
		items = append(items, models.TransactionItem{
			OrderID:    strings.TrimSpace(row[orderIDIdx]),
			SKU:        strings.TrimSpace(row[skuIdx]),
			Quantity:   quantity,
			UnitPrice:  unitPrice,
			CustomerID: strings.TrimSpace(row[customerIDIdx]),
			OrderDate:  strings.TrimSpace(row[orderDateIdx]),
		})
	}

	respondData(c, models.ImportResult{
		ImportID: uuid.NewString(),
		FileName: fileName,
		Rows:     len(items),
		Skipped:  skipped,
		Items:    items,
	})
}
