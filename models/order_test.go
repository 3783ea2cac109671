package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupModelTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&User{}, &Order{}, &StatusHistoryEntry{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB) User {
	user := User{
		Username: "owner",
		Password: "secret123",
		FullName: "Shop Owner",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func TestOrderBalanceDerivedOnSave(t *testing.T) {
	db := setupModelTestDB(t)
	user := createTestUser(t, db)

	order := Order{
		OrderNo:               "ORD-2026-0001",
		CustomerName:          "Lakshmi",
		PhoneNumber:           "9876543210",
		Category:              "Blouse",
		OrderDate:             time.Now(),
		TotalAmount:           1500,
		AdvanceAmountPaid:     500,
		BalanceAmountReceived: 200,
		// Client-supplied balance must be overwritten by the hook
		Balance:     9999,
		CreatedByID: user.ID,
	}

	err := db.Create(&order).Error
	assert.NoError(t, err)
	assert.Equal(t, float64(800), order.Balance)

	// Updating an amount recomputes the balance on save
	order.BalanceAmountReceived = 1000
	err = db.Save(&order).Error
	assert.NoError(t, err)
	assert.Equal(t, float64(0), order.Balance)

	var reloaded Order
	err = db.First(&reloaded, order.ID).Error
	assert.NoError(t, err)
	assert.Equal(t, float64(0), reloaded.Balance)
	assert.Equal(t, PaymentPaid, reloaded.PaymentStatus)
}

func TestComputePaymentStatus(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		advance  float64
		received float64
		expected string
	}{
		{"Fully paid", 1000, 600, 400, PaymentPaid},
		{"Zero-value order is paid", 0, 0, 0, PaymentPaid},
		{"Nothing received", 1000, 0, 0, PaymentUnpaid},
		{"Advance only", 1000, 300, 0, PaymentPartial},
		{"Balance payment only", 1000, 0, 300, PaymentPartial},
		{"Overpaid advance leaves negative balance", 1000, 1200, 0, PaymentPartial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := Order{
				TotalAmount:           tt.total,
				AdvanceAmountPaid:     tt.advance,
				BalanceAmountReceived: tt.received,
			}
			order.Balance = order.TotalAmount - order.AdvanceAmountPaid - order.BalanceAmountReceived

			assert.Equal(t, tt.expected, order.ComputePaymentStatus())
		})
	}
}

func TestPaymentStatusFilledAfterFind(t *testing.T) {
	db := setupModelTestDB(t)
	user := createTestUser(t, db)

	order := Order{
		OrderNo:           "ORD-2026-0002",
		CustomerName:      "Meena",
		PhoneNumber:       "9000000001",
		Category:          "Salwar/Chudi",
		OrderDate:         time.Now(),
		TotalAmount:       2000,
		AdvanceAmountPaid: 500,
		CreatedByID:       user.ID,
	}
	assert.NoError(t, db.Create(&order).Error)

	var loaded Order
	assert.NoError(t, db.First(&loaded, order.ID).Error)
	assert.Equal(t, PaymentPartial, loaded.PaymentStatus)
}

func TestIsValidStatus(t *testing.T) {
	for _, status := range OrderStatuses {
		assert.True(t, IsValidStatus(status), status)
	}
	assert.False(t, IsValidStatus("Delivered"))
	assert.False(t, IsValidStatus("pending"))
	assert.False(t, IsValidStatus(""))
}

func TestIsValidCategory(t *testing.T) {
	for _, category := range OrderCategories {
		assert.True(t, IsValidCategory(category), category)
	}
	assert.False(t, IsValidCategory("Lehenga"))
	assert.False(t, IsValidCategory("blouse"))
	assert.False(t, IsValidCategory(""))
}

func TestCustomerPhotosRoundTrip(t *testing.T) {
	db := setupModelTestDB(t)
	user := createTestUser(t, db)

	order := Order{
		OrderNo:        "ORD-2026-0003",
		CustomerName:   "Devi",
		PhoneNumber:    "9000000002",
		Category:       "Others",
		OrderDate:      time.Now(),
		TotalAmount:    750,
		CreatedByID:    user.ID,
		CustomerPhotos: []string{"https://bucket.s3.amazonaws.com/customer-photos/a.jpg", "/api/uploads/b.png"},
	}
	assert.NoError(t, db.Create(&order).Error)

	var loaded Order
	assert.NoError(t, db.First(&loaded, order.ID).Error)
	assert.Equal(t, order.CustomerPhotos, loaded.CustomerPhotos)
}
