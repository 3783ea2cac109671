package controllers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/momandme/tailorshop-api/config"
	"github.com/momandme/tailorshop-api/models"
	"github.com/momandme/tailorshop-api/services"
	"github.com/momandme/tailorshop-api/utils"
)

// Dashboard handles GET /api/reports/dashboard. Without parameters it
// returns today/this-month/all-time partitions; startDate/endDate add a
// custom block computed over the same snapshot.
func Dashboard(c *gin.Context) {
	orders, expenses, ok := loadReportSnapshot(c)
	if !ok {
		return
	}

	data := services.DashboardSnapshot(orders, expenses, time.Now())

	start, hasStart := parseDateParam(c.Query("startDate"))
	end, hasEnd := parseDateParam(c.Query("endDate"))
	if hasStart || hasEnd {
		var startPtr, endPtr *time.Time
		if hasStart {
			startPtr = &start
		}
		if hasEnd {
			// Make the end bound inclusive of the whole day.
			endOfDay := end.AddDate(0, 0, 1).Add(-time.Nanosecond)
			endPtr = &endOfDay
		}
		custom := services.CustomRangeSnapshot(orders, expenses, startPtr, endPtr)
		data.Custom = &custom
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// ExportReport handles GET /api/reports/export - a CSV download of
// orders (and optionally expenses) for the requested range.
func ExportReport(c *gin.Context) {
	db := config.GetDB()

	orderQuery := db.Model(&models.Order{})
	expenseQuery := db.Model(&models.Expense{})
	if start, ok := parseDateParam(c.Query("startDate")); ok {
		orderQuery = orderQuery.Where("order_date >= ?", start)
		expenseQuery = expenseQuery.Where("date >= ?", start)
	}
	if end, ok := parseDateParam(c.Query("endDate")); ok {
		endOfDay := end.AddDate(0, 0, 1)
		orderQuery = orderQuery.Where("order_date < ?", endOfDay)
		expenseQuery = expenseQuery.Where("date < ?", endOfDay)
	}
	if status := c.Query("status"); status != "" {
		orderQuery = orderQuery.Where("status = ?", status)
	}
	if category := c.Query("category"); category != "" {
		orderQuery = orderQuery.Where("category = ?", category)
	}

	var orders []models.Order
	if err := orderQuery.Order("order_date ASC").Find(&orders).Error; err != nil {
		respondServiceError(c, err, "Report")
		return
	}

	includeExpenses := c.DefaultQuery("includeExpenses", "true") != "false"
	var expenses []models.Expense
	if includeExpenses {
		if err := expenseQuery.Order("date ASC").Find(&expenses).Error; err != nil {
			respondServiceError(c, err, "Report")
			return
		}
	}

	var buf bytes.Buffer
	if err := utils.WriteReportCSV(&buf, orders, expenses, includeExpenses); err != nil {
		respondServiceError(c, err, "Report")
		return
	}

	filename := utils.ReportFilename(config.GetConfig().ShopName, time.Now())
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// CustomReport handles GET /api/reports/custom?groupBy=date|category|status
func CustomReport(c *gin.Context) {
	db := config.GetDB()

	query := db.Model(&models.Order{})
	if start, ok := parseDateParam(c.Query("startDate")); ok {
		query = query.Where("order_date >= ?", start)
	}
	if end, ok := parseDateParam(c.Query("endDate")); ok {
		query = query.Where("order_date < ?", end.AddDate(0, 0, 1))
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		respondServiceError(c, err, "Report")
		return
	}

	groupBy := c.DefaultQuery("groupBy", "date")
	var groups []services.GroupStats
	switch groupBy {
	case "date":
		groups = services.GroupByDay(orders)
	case "category":
		groups = services.GroupByCategory(orders)
	case "status":
		groups = services.GroupByStatus(orders)
	default:
		respondBadRequest(c, "groupBy must be one of: date, category, status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"groupBy": groupBy,
		"count":   len(groups),
		"data":    groups,
	})
}

// loadReportSnapshot fetches all orders and expenses in one pass so every
// dashboard figure comes from the same point-in-time read.
func loadReportSnapshot(c *gin.Context) ([]models.Order, []models.Expense, bool) {
	db := config.GetDB()

	var orders []models.Order
	if err := db.Find(&orders).Error; err != nil {
		respondServiceError(c, err, "Report")
		return nil, nil, false
	}

	var expenses []models.Expense
	if err := db.Find(&expenses).Error; err != nil {
		respondServiceError(c, err, "Report")
		return nil, nil, false
	}

	return orders, expenses, true
}
