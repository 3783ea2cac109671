package controllers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/momandme/tailorshop-api/models"
	"github.com/momandme/tailorshop-api/services"
)

func orderTestRouter(db *gorm.DB, user *models.User) *gin.Engine {
	services.NewMockImageService().SetAsMockForTesting()

	router := setupTestRouter()
	authed := router.Group("", asUser(user))
	authed.GET("/orders", ListOrders)
	authed.POST("/orders", CreateOrder)
	authed.GET("/orders/stats", OrderStats)
	authed.GET("/orders/upcoming/trials", UpcomingTrials)
	authed.GET("/orders/upcoming/deliveries", UpcomingDeliveries)
	authed.GET("/orders/:id", GetOrder)
	authed.PUT("/orders/:id", UpdateOrder)
	authed.DELETE("/orders/:id", DeleteOrder)
	authed.POST("/orders/:id/photos", UploadOrderPhotos)
	authed.DELETE("/orders/:id/photos/:index", DeleteOrderPhoto)
	return router
}

func seedControllerOrder(t *testing.T, db *gorm.DB, user *models.User, mutate func(*models.Order)) models.Order {
	t.Helper()

	order := models.Order{
		OrderNo:      fmt.Sprintf("ORD-2026-8%03d", time.Now().UnixNano()%1000),
		CustomerName: "Lakshmi",
		PhoneNumber:  "9876543210",
		Category:     "Blouse",
		OrderDate:    time.Now(),
		TotalAmount:  1000,
		Status:       models.StatusPending,
		CreatedByID:  user.ID,
	}
	if mutate != nil {
		mutate(&order)
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("Failed to seed order: %v", err)
	}
	return order
}

func TestCreateOrderEndpoint(t *testing.T) {
	db := setupControllerTestDB(t)
	user := createStaffUser(t, db, "owner")
	router := orderTestRouter(db, user)

	tests := []struct {
		name           string
		body           map[string]interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name: "Successfully create order",
			body: map[string]interface{}{
				"customerName":      "Lakshmi",
				"phoneNumber":       "9876543210",
				"category":          "Blouse",
				"orderDate":         time.Now().Format(time.RFC3339),
				"totalAmount":       1500,
				"advanceAmountPaid": 500,
				"measurements":      map[string]interface{}{"bust": "36", "waist": "30"},
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, float64(1000), data["balance"])
				assert.Equal(t, models.StatusPending, data["status"])
				assert.Equal(t, "Partial", data["paymentStatus"])
				assert.Contains(t, data["orderNo"], "ORD-")

				measurements := data["measurements"].(map[string]interface{})
				assert.Equal(t, "36", measurements["bust"])

				history := data["statusHistory"].([]interface{})
				assert.Len(t, history, 1)
			},
		},
		{
			name: "All validation problems reported together",
			body: map[string]interface{}{
				"category": "Lehenga",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				message := response["error"].(map[string]interface{})["message"].(string)
				assert.Contains(t, message, "customerName is required")
				assert.Contains(t, message, "phoneNumber is required")
				assert.Contains(t, message, "not a valid category")
				assert.Contains(t, message, "totalAmount is required")
			},
		},
		{
			name: "Client cannot set the balance",
			body: map[string]interface{}{
				"customerName": "Meena",
				"phoneNumber":  "9000000001",
				"category":     "Others",
				"orderDate":    time.Now().Format(time.RFC3339),
				"totalAmount":  500,
				"balance":      1,
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, float64(500), data["balance"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(router, http.MethodPost, "/orders", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)

			response := parseResponse(t, w)
			if tt.expectedError != "" {
				assert.False(t, response["success"].(bool))
				assert.Equal(t, tt.expectedError, response["error"].(map[string]interface{})["code"])
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, response)
			}
		})
	}
}

func TestListOrdersFilters(t *testing.T) {
	db := setupControllerTestDB(t)
	user := createStaffUser(t, db, "owner")
	router := orderTestRouter(db, user)

	seedControllerOrder(t, db, user, func(o *models.Order) {
		o.OrderNo = "ORD-2026-0001"
		o.CustomerName = "Lakshmi Devi"
		o.AdvanceAmountPaid = 1000 // fully paid
	})
	seedControllerOrder(t, db, user, func(o *models.Order) {
		o.OrderNo = "ORD-2026-0002"
		o.CustomerName = "Meena Kumari"
		o.Category = "Salwar/Chudi"
		o.Status = models.StatusCompleted
		o.AdvanceAmountPaid = 400 // partial
	})
	seedControllerOrder(t, db, user, func(o *models.Order) {
		o.OrderNo = "ORD-2026-0003"
		o.CustomerName = "Radha"
		// unpaid
	})

	tests := []struct {
		name          string
		query         string
		expectedCount int
	}{
		{"No filter", "", 3},
		{"Search by name fragment", "?search=meena", 1},
		{"Search by order number", "?search=ORD-2026-0001", 1},
		{"Filter by status", "?status=Completed", 1},
		{"Filter by category", "?category=Salwar%2FChudi", 1},
		{"Paid bucket", "?paymentStatus=Paid", 1},
		{"Partial bucket", "?paymentStatus=Partial", 1},
		{"Unpaid bucket", "?paymentStatus=Unpaid", 1},
		{"Pagination caps the page", "?limit=2", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(router, http.MethodGet, "/orders"+tt.query, nil)
			assert.Equal(t, http.StatusOK, w.Code)

			response := parseResponse(t, w)
			assert.True(t, response["success"].(bool))
			assert.Equal(t, float64(tt.expectedCount), response["count"])
		})
	}

	// Pagination metadata
	w := performJSON(router, http.MethodGet, "/orders?limit=2&page=2", nil)
	response := parseResponse(t, w)
	assert.Equal(t, float64(3), response["total"])
	assert.Equal(t, float64(2), response["page"])
	assert.Equal(t, float64(2), response["pages"])
	assert.Equal(t, float64(1), response["count"])
}

func TestListOrdersSorting(t *testing.T) {
	db := setupControllerTestDB(t)
	user := createStaffUser(t, db, "owner")
	router := orderTestRouter(db, user)

	seedControllerOrder(t, db, user, func(o *models.Order) {
		o.OrderNo = "ORD-2026-0001"
		o.TotalAmount = 300
	})
	seedControllerOrder(t, db, user, func(o *models.Order) {
		o.OrderNo = "ORD-2026-0002"
		o.TotalAmount = 900
	})

	w := performJSON(router, http.MethodGet, "/orders?sortBy=-totalAmount", nil)
	response := parseResponse(t, w)
	data := response["data"].([]interface{})
	first := data[0].(map[string]interface{})
	assert.Equal(t, float64(900), first["totalAmount"])

	// Unknown sort fields fall back instead of failing
	w = performJSON(router, http.MethodGet, "/orders?sortBy=evil;DROP", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetOrderEndpoint(t *testing.T) {
	db := setupControllerTestDB(t)
	user := createStaffUser(t, db, "owner")
	router := orderTestRouter(db, user)

	order := seedControllerOrder(t, db, user, nil)

	w := performJSON(router, http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	response := parseResponse(t, w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, order.OrderNo, data["orderNo"])

	createdBy := data["createdBy"].(map[string]interface{})
	assert.Equal(t, "owner", createdBy["username"])

	// Missing and malformed ids are both 404
	w = performJSON(router, http.MethodGet, "/orders/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))

	w = performJSON(router, http.MethodGet, "/orders/not-a-number", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateOrderEndpoint(t *testing.T) {
	db := setupControllerTestDB(t)
	user := createStaffUser(t, db, "owner")
	router := orderTestRouter(db, user)

	order := seedControllerOrder(t, db, user, nil)

	w := performJSON(router, http.MethodPut, fmt.Sprintf("/orders/%d", order.ID), map[string]interface{}{
		"status":            models.StatusInProgress,
		"advanceAmountPaid": 250,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	response := parseResponse(t, w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, models.StatusInProgress, data["status"])
	assert.Equal(t, float64(750), data["balance"])

	history := data["statusHistory"].([]interface{})
	assert.Len(t, history, 1) // seeded directly, so only the change entry

	// Invalid status
	w = performJSON(router, http.MethodPut, fmt.Sprintf("/orders/%d", order.ID), map[string]interface{}{
		"status": "Delivered",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))

	// Missing order
	w = performJSON(router, http.MethodPut, "/orders/9999", map[string]interface{}{
		"notes": "x",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteOrderEndpoint(t *testing.T) {
	db := setupControllerTestDB(t)
	user := createStaffUser(t, db, "owner")
	router := orderTestRouter(db, user)

	order := seedControllerOrder(t, db, user, nil)

	w := performJSON(router, http.MethodDelete, fmt.Sprintf("/orders/%d", order.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)

	w = performJSON(router, http.MethodDelete, fmt.Sprintf("/orders/%d", order.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadOrderPhotosEndpoint(t *testing.T) {
	db := setupControllerTestDB(t)
	user := createStaffUser(t, db, "owner")
	router := orderTestRouter(db, user)

	order := seedControllerOrder(t, db, user, nil)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("photos", "design.jpg")
	assert.NoError(t, err)
	part.Write([]byte("fake image bytes"))
	assert.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/orders/%d/photos", order.ID), body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	response := parseResponse(t, w)
	data := response["data"].(map[string]interface{})
	photos := data["customerPhotos"].([]interface{})
	assert.Len(t, photos, 1)

	// Empty multipart form is rejected
	empty := &bytes.Buffer{}
	emptyWriter := multipart.NewWriter(empty)
	emptyWriter.WriteField("note", "no files here")
	assert.NoError(t, emptyWriter.Close())

	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/orders/%d/photos", order.ID), empty)
	req.Header.Set("Content-Type", emptyWriter.FormDataContentType())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
}

func TestDeleteOrderPhotoEndpoint(t *testing.T) {
	db := setupControllerTestDB(t)
	user := createStaffUser(t, db, "owner")
	router := orderTestRouter(db, user)

	order := seedControllerOrder(t, db, user, func(o *models.Order) {
		o.CustomerPhotos = []string{"https://mock-storage.local/photos/1_a.jpg", "https://mock-storage.local/photos/2_b.jpg"}
	})

	w := performJSON(router, http.MethodDelete, fmt.Sprintf("/orders/%d/photos/0", order.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	response := parseResponse(t, w)
	data := response["data"].(map[string]interface{})
	photos := data["customerPhotos"].([]interface{})
	assert.Len(t, photos, 1)

	// Out-of-bounds index
	w = performJSON(router, http.MethodDelete, fmt.Sprintf("/orders/%d/photos/5", order.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
}

func TestUpcomingEndpoints(t *testing.T) {
	db := setupControllerTestDB(t)
	user := createStaffUser(t, db, "owner")
	router := orderTestRouter(db, user)

	inTwoDays := time.Now().AddDate(0, 0, 2)
	nextMonth := time.Now().AddDate(0, 1, 0)

	seedControllerOrder(t, db, user, func(o *models.Order) {
		o.OrderNo = "ORD-2026-0001"
		o.TrialDate = &inTwoDays
	})
	seedControllerOrder(t, db, user, func(o *models.Order) {
		o.OrderNo = "ORD-2026-0002"
		o.TrialDate = &inTwoDays
		o.Status = models.StatusCompleted
	})
	seedControllerOrder(t, db, user, func(o *models.Order) {
		o.OrderNo = "ORD-2026-0003"
		o.DeliveryDate = &nextMonth
	})

	w := performJSON(router, http.MethodGet, "/orders/upcoming/trials", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	response := parseResponse(t, w)
	assert.Equal(t, float64(1), response["count"])

	// Delivery next month is outside the 7-day window
	w = performJSON(router, http.MethodGet, "/orders/upcoming/deliveries", nil)
	response = parseResponse(t, w)
	assert.Equal(t, float64(0), response["count"])
}

func TestOrderStatsEndpoint(t *testing.T) {
	db := setupControllerTestDB(t)
	user := createStaffUser(t, db, "owner")
	router := orderTestRouter(db, user)

	seedControllerOrder(t, db, user, func(o *models.Order) {
		o.OrderNo = "ORD-2026-0001"
		o.TotalAmount = 1000
		o.AdvanceAmountPaid = 400
	})
	seedControllerOrder(t, db, user, func(o *models.Order) {
		o.OrderNo = "ORD-2026-0002"
		o.TotalAmount = 2000
		o.Status = models.StatusCompleted
	})

	w := performJSON(router, http.MethodGet, "/orders/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	response := parseResponse(t, w)
	data := response["data"].(map[string]interface{})
	overall := data["overall"].(map[string]interface{})
	assert.Equal(t, float64(2), overall["totalOrders"])
	assert.Equal(t, float64(3000), overall["totalRevenue"])
	assert.Equal(t, float64(400), overall["totalAdvance"])
	assert.Equal(t, float64(2600), overall["totalPending"])

	byStatus := data["byStatus"].([]interface{})
	assert.Len(t, byStatus, 2)
}
