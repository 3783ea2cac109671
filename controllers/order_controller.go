package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/momandme/tailorshop-api/config"
	"github.com/momandme/tailorshop-api/middleware"
	"github.com/momandme/tailorshop-api/models"
	"github.com/momandme/tailorshop-api/services"
)

// orderSortFields whitelists the sortBy values the list endpoint accepts.
var orderSortFields = map[string]string{
	"createdAt":    "created_at",
	"orderDate":    "order_date",
	"trialDate":    "trial_date",
	"deliveryDate": "delivery_date",
	"totalAmount":  "total_amount",
	"customerName": "customer_name",
	"orderNo":      "order_no",
}

// newOrderService builds the lifecycle service on the active DB and photo
// storage backend.
func newOrderService() *services.OrderService {
	return services.NewOrderService(config.GetDB(), services.GetImageService())
}

// ListOrders handles GET /api/orders with search, filters, pagination and
// sorting.
func ListOrders(c *gin.Context) {
	db := config.GetDB()

	query := db.Model(&models.Order{})

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(customer_name) LIKE ? OR LOWER(phone_number) LIKE ? OR LOWER(order_no) LIKE ? OR LOWER(order_no_from_book) LIKE ?",
			like, like, like, like,
		)
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	if startDate, ok := parseDateParam(c.Query("startDate")); ok {
		query = query.Where("order_date >= ?", startDate)
	}
	if endDate, ok := parseDateParam(c.Query("endDate")); ok {
		query = query.Where("order_date <= ?", endDate)
	}

	// Payment buckets are conditions on the amount fields, mirroring the
	// derivation in models.Order.ComputePaymentStatus.
	switch c.Query("paymentStatus") {
	case models.PaymentPaid:
		query = query.Where("balance = 0")
	case models.PaymentUnpaid:
		query = query.Where("advance_amount_paid = 0 AND balance_amount_received = 0")
	case models.PaymentPartial:
		query = query.Where("(advance_amount_paid > 0 OR balance_amount_received > 0) AND balance > 0")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondServiceError(c, err, "Order")
		return
	}

	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	var orders []models.Order
	err := query.
		Preload("CreatedBy").
		Order(parseSort(c.DefaultQuery("sortBy", "-createdAt"))).
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		respondServiceError(c, err, "Order")
		return
	}

	pages := int((total + int64(limit) - 1) / int64(limit))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(orders),
		"total":   total,
		"page":    page,
		"pages":   pages,
		"data":    orders,
	})
}

// GetOrder handles GET /api/orders/:id
func GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	order, err := newOrderService().FindByID(id)
	if err != nil {
		respondServiceError(c, err, "Order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// CreateOrder handles POST /api/orders
func CreateOrder(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondUnauthorized(c, "UNAUTHORIZED", "Could not resolve user")
		return
	}

	var input services.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	order, err := newOrderService().Create(input, user)
	if err != nil {
		respondServiceError(c, err, "Order")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdateOrder handles PUT /api/orders/:id
func UpdateOrder(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondUnauthorized(c, "UNAUTHORIZED", "Could not resolve user")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var input services.UpdateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	order, err := newOrderService().Update(id, input, user)
	if err != nil {
		respondServiceError(c, err, "Order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// DeleteOrder handles DELETE /api/orders/:id
func DeleteOrder(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := newOrderService().Delete(id); err != nil {
		respondServiceError(c, err, "Order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order deleted successfully",
	})
}

// UploadOrderPhotos handles POST /api/orders/:id/photos (multipart form,
// field "photos")
func UploadOrderPhotos(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondBadRequest(c, "Expected multipart form upload")
		return
	}

	files := form.File["photos"]
	order, err := newOrderService().AttachPhotos(id, files)
	if err != nil {
		respondServiceError(c, err, "Order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// DeleteOrderPhoto handles DELETE /api/orders/:id/photos/:index
func DeleteOrderPhoto(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondBadRequest(c, "Invalid photo index")
		return
	}

	order, err := newOrderService().RemovePhoto(id, index)
	if err != nil {
		respondServiceError(c, err, "Order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpcomingTrials handles GET /api/orders/upcoming/trials - non-completed
// orders with a trial date in the next 7 days, soonest first.
func UpcomingTrials(c *gin.Context) {
	upcomingOrders(c, "trial_date")
}

// UpcomingDeliveries handles GET /api/orders/upcoming/deliveries
func UpcomingDeliveries(c *gin.Context) {
	upcomingOrders(c, "delivery_date")
}

func upcomingOrders(c *gin.Context, dateColumn string) {
	db := config.GetDB()

	today := time.Now()
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	nextWeek := today.AddDate(0, 0, 7)

	var orders []models.Order
	err := db.
		Where(dateColumn+" >= ? AND "+dateColumn+" <= ?", today, nextWeek).
		Where("status <> ?", models.StatusCompleted).
		Preload("CreatedBy").
		Order(dateColumn + " ASC").
		Find(&orders).Error
	if err != nil {
		respondServiceError(c, err, "Order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(orders),
		"data":    orders,
	})
}

// OrderStats handles GET /api/orders/stats - overall totals plus a
// per-status breakdown, computed over the full order snapshot.
func OrderStats(c *gin.Context) {
	db := config.GetDB()

	var orders []models.Order
	if err := db.Find(&orders).Error; err != nil {
		respondServiceError(c, err, "Order")
		return
	}

	var totalRevenue, totalAdvance, totalBalanceReceived, totalPending float64
	for _, o := range orders {
		totalRevenue += o.TotalAmount
		totalAdvance += o.AdvanceAmountPaid
		totalBalanceReceived += o.BalanceAmountReceived
		totalPending += o.Balance
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"overall": gin.H{
				"totalOrders":          len(orders),
				"totalRevenue":         totalRevenue,
				"totalAdvance":         totalAdvance,
				"totalBalanceReceived": totalBalanceReceived,
				"totalPending":         totalPending,
			},
			"byStatus": services.GroupByStatus(orders),
		},
	})
}

// parseIDParam reads the :id path parameter as an unsigned integer.
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Invalid id",
			},
		})
		return 0, false
	}
	return uint(id), true
}

// parsePagination reads page/limit with the defaults the SPA expects.
func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

// parseSort maps a sortBy parameter ("-createdAt", "orderDate", ...) to a
// safe ORDER BY clause. Unknown fields fall back to newest first.
func parseSort(sortBy string) string {
	direction := "ASC"
	if strings.HasPrefix(sortBy, "-") {
		direction = "DESC"
		sortBy = strings.TrimPrefix(sortBy, "-")
	}

	column, ok := orderSortFields[sortBy]
	if !ok {
		return "created_at DESC"
	}
	return column + " " + direction
}

// parseDateParam accepts YYYY-MM-DD or RFC3339 timestamps.
func parseDateParam(value string) (time.Time, bool) {
	if value == "" || value == "undefined" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	return time.Time{}, false
}
