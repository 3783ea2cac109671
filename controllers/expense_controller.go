package controllers

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/momandme/tailorshop-api/config"
	"github.com/momandme/tailorshop-api/middleware"
	"github.com/momandme/tailorshop-api/models"
)

var expenseSortFields = map[string]string{
	"date":      "date",
	"amount":    "amount",
	"category":  "category",
	"createdAt": "created_at",
}

// ExpenseRequest represents the request body for creating or updating an
// expense.
type ExpenseRequest struct {
	Amount      *float64   `json:"amount"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Date        *time.Time `json:"date"`
}

func (r *ExpenseRequest) validate() []string {
	var problems []string
	if r.Amount == nil {
		problems = append(problems, "amount is required")
	} else if *r.Amount < 0 {
		problems = append(problems, "amount cannot be negative")
	}
	if strings.TrimSpace(r.Description) == "" {
		problems = append(problems, "description is required")
	}
	if r.Date == nil {
		problems = append(problems, "date is required")
	}
	return problems
}

// ListExpenses handles GET /api/expenses with date/category filters,
// pagination and sorting.
func ListExpenses(c *gin.Context) {
	db := config.GetDB()

	query := db.Model(&models.Expense{})

	if startDate, ok := parseDateParam(c.Query("startDate")); ok {
		query = query.Where("date >= ?", startDate)
	}
	if endDate, ok := parseDateParam(c.Query("endDate")); ok {
		query = query.Where("date <= ?", endDate)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondServiceError(c, err, "Expense")
		return
	}

	page, limit := parsePagination(c)

	sortBy := c.DefaultQuery("sortBy", "-date")
	direction := "ASC"
	if strings.HasPrefix(sortBy, "-") {
		direction = "DESC"
		sortBy = strings.TrimPrefix(sortBy, "-")
	}
	column, ok := expenseSortFields[sortBy]
	if !ok {
		column, direction = "date", "DESC"
	}

	var expenses []models.Expense
	err := query.
		Preload("CreatedBy").
		Order(column + " " + direction).
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&expenses).Error
	if err != nil {
		respondServiceError(c, err, "Expense")
		return
	}

	pages := int((total + int64(limit) - 1) / int64(limit))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(expenses),
		"total":   total,
		"page":    page,
		"pages":   pages,
		"data":    expenses,
	})
}

// GetExpense handles GET /api/expenses/:id
func GetExpense(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var expense models.Expense
	if err := db.Preload("CreatedBy").First(&expense, id).Error; err != nil {
		respondServiceError(c, err, "Expense")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    expense,
	})
}

// CreateExpense handles POST /api/expenses
func CreateExpense(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondUnauthorized(c, "UNAUTHORIZED", "Could not resolve user")
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data")
		return
	}

	if problems := req.validate(); len(problems) > 0 {
		respondBadRequest(c, strings.Join(problems, "; "))
		return
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = "General"
	}

	expense := models.Expense{
		Amount:      *req.Amount,
		Description: strings.TrimSpace(req.Description),
		Category:    category,
		Date:        *req.Date,
		CreatedByID: user.ID,
	}

	db := config.GetDB()
	if err := db.Create(&expense).Error; err != nil {
		respondServiceError(c, err, "Expense")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    expense,
	})
}

// UpdateExpense handles PUT /api/expenses/:id
func UpdateExpense(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var expense models.Expense
	if err := db.First(&expense, id).Error; err != nil {
		respondServiceError(c, err, "Expense")
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data")
		return
	}

	if req.Amount != nil {
		if *req.Amount < 0 {
			respondBadRequest(c, "amount cannot be negative")
			return
		}
		expense.Amount = *req.Amount
	}
	if strings.TrimSpace(req.Description) != "" {
		expense.Description = strings.TrimSpace(req.Description)
	}
	if strings.TrimSpace(req.Category) != "" {
		expense.Category = strings.TrimSpace(req.Category)
	}
	if req.Date != nil {
		expense.Date = *req.Date
	}

	if err := db.Save(&expense).Error; err != nil {
		respondServiceError(c, err, "Expense")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    expense,
	})
}

// DeleteExpense handles DELETE /api/expenses/:id
func DeleteExpense(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var expense models.Expense
	if err := db.First(&expense, id).Error; err != nil {
		respondServiceError(c, err, "Expense")
		return
	}

	if err := db.Delete(&expense).Error; err != nil {
		respondServiceError(c, err, "Expense")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Expense deleted successfully",
	})
}

// ExpenseStats handles GET /api/expenses/stats - overall figures plus a
// per-category breakdown sorted by total spent.
func ExpenseStats(c *gin.Context) {
	db := config.GetDB()

	query := db.Model(&models.Expense{})
	if startDate, ok := parseDateParam(c.Query("startDate")); ok {
		query = query.Where("date >= ?", startDate)
	}
	if endDate, ok := parseDateParam(c.Query("endDate")); ok {
		query = query.Where("date <= ?", endDate)
	}

	var expenses []models.Expense
	if err := query.Find(&expenses).Error; err != nil {
		respondServiceError(c, err, "Expense")
		return
	}

	var total float64
	byCategory := make(map[string]*struct {
		Total float64
		Count int
	})
	for _, e := range expenses {
		total += e.Amount
		g, ok := byCategory[e.Category]
		if !ok {
			g = &struct {
				Total float64
				Count int
			}{}
			byCategory[e.Category] = g
		}
		g.Total += e.Amount
		g.Count++
	}

	avg := 0.0
	if len(expenses) > 0 {
		avg = total / float64(len(expenses))
	}

	type categoryStats struct {
		Category string  `json:"category"`
		Total    float64 `json:"total"`
		Count    int     `json:"count"`
	}
	categories := make([]categoryStats, 0, len(byCategory))
	for name, g := range byCategory {
		categories = append(categories, categoryStats{Category: name, Total: g.Total, Count: g.Count})
	}
	// Highest-spend categories first
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Total > categories[j].Total
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"overall": gin.H{
				"totalExpenses": total,
				"count":         len(expenses),
				"avgExpense":    avg,
			},
			"byCategory": categories,
		},
	})
}

// MonthlyExpenses handles GET /api/expenses/monthly?year= - per-month
// totals for one year.
func MonthlyExpenses(c *gin.Context) {
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(time.Now().Year())))
	if err != nil {
		respondBadRequest(c, "Invalid year")
		return
	}

	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	yearEnd := yearStart.AddDate(1, 0, 0)

	db := config.GetDB()
	var expenses []models.Expense
	if err := db.Where("date >= ? AND date < ?", yearStart, yearEnd).Find(&expenses).Error; err != nil {
		respondServiceError(c, err, "Expense")
		return
	}

	type monthStats struct {
		Month       string  `json:"month"`
		MonthNumber int     `json:"monthNumber"`
		Total       float64 `json:"total"`
		Count       int     `json:"count"`
	}

	totals := make([]monthStats, 12)
	for i := range totals {
		totals[i].MonthNumber = i + 1
		totals[i].Month = time.Month(i + 1).String()
	}
	for _, e := range expenses {
		m := int(e.Date.Month()) - 1
		totals[m].Total += e.Amount
		totals[m].Count++
	}

	months := make([]monthStats, 0, 12)
	for _, m := range totals {
		if m.Count > 0 {
			months = append(months, m)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"year":    year,
		"data":    months,
	})
}
