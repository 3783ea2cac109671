package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/momandme/tailorshop-api/models"
)

// paymentReminderWindow is how long a payment nag suppresses the next one.
// Deliberately wider than the one-day trial/delivery windows: staff get at
// most one overdue-payment reminder per order per rolling week.
const paymentReminderWindow = 7 * 24 * time.Hour

// SweepResult reports how many notifications a reminder sweep created.
type SweepResult struct {
	TrialReminders    int `json:"trialReminders"`
	DeliveryReminders int `json:"deliveryReminders"`
	PaymentReminders  int `json:"paymentReminders"`
}

// ReminderService scans orders and creates reminder notifications. It is a
// stateless batch pass: the interval scheduler and the check-reminders
// endpoint both call RunReminderSweep and rely on its dedup windows.
type ReminderService struct {
	db       *gorm.DB
	shopName string
}

// NewReminderService creates a ReminderService. shopName is the branding
// used in reminder messages.
func NewReminderService(db *gorm.DB, shopName string) *ReminderService {
	return &ReminderService{db: db, shopName: shopName}
}

// RunReminderSweep creates the reminders due at now:
//   - trial/delivery reminders for non-completed orders whose date falls
//     within tomorrow (the local calendar day), at most one per order per day
//   - payment reminders for completed orders with an outstanding balance and
//     a delivery date before today, at most one per order per rolling week
//
// The dedup is an existence check against prior notifications, which makes
// the sweep idempotent within each window. A failure on one order is logged
// and skipped; it never aborts the sweep for the others.
func (s *ReminderService) RunReminderSweep(now time.Time) (SweepResult, error) {
	var result SweepResult

	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	dayAfterTomorrow := tomorrow.AddDate(0, 0, 1)

	// Trial reminders
	var trialOrders []models.Order
	err := s.db.
		Where("trial_date >= ? AND trial_date < ?", tomorrow, dayAfterTomorrow).
		Where("status <> ?", models.StatusCompleted).
		Find(&trialOrders).Error
	if err != nil {
		return result, fmt.Errorf("failed to scan upcoming trials: %w", err)
	}

	for _, order := range trialOrders {
		created, err := s.createIfAbsent(models.NotificationTrialReminder, order, today,
			fmt.Sprintf("%s: trial scheduled tomorrow for %s (Order: %s)", s.shopName, order.CustomerName, order.OrderNo))
		if err != nil {
			log.Printf("trial reminder for order %s skipped: %v", order.OrderNo, err)
			continue
		}
		if created {
			result.TrialReminders++
		}
	}

	// Delivery reminders
	var deliveryOrders []models.Order
	err = s.db.
		Where("delivery_date >= ? AND delivery_date < ?", tomorrow, dayAfterTomorrow).
		Where("status <> ?", models.StatusCompleted).
		Find(&deliveryOrders).Error
	if err != nil {
		return result, fmt.Errorf("failed to scan upcoming deliveries: %w", err)
	}

	for _, order := range deliveryOrders {
		created, err := s.createIfAbsent(models.NotificationDeliveryReminder, order, today,
			fmt.Sprintf("%s: delivery scheduled tomorrow for %s (Order: %s)", s.shopName, order.CustomerName, order.OrderNo))
		if err != nil {
			log.Printf("delivery reminder for order %s skipped: %v", order.OrderNo, err)
			continue
		}
		if created {
			result.DeliveryReminders++
		}
	}

	// Payment reminders: completed, delivered in the past, money still owed
	var overdueOrders []models.Order
	err = s.db.
		Where("balance > 0").
		Where("delivery_date < ?", today).
		Where("status = ?", models.StatusCompleted).
		Find(&overdueOrders).Error
	if err != nil {
		return result, fmt.Errorf("failed to scan overdue payments: %w", err)
	}

	weekAgo := today.Add(-paymentReminderWindow)
	for _, order := range overdueOrders {
		created, err := s.createIfAbsent(models.NotificationPaymentReminder, order, weekAgo,
			fmt.Sprintf("%s: payment pending ₹%.0f for %s (Order: %s)", s.shopName, order.Balance, order.CustomerName, order.OrderNo))
		if err != nil {
			log.Printf("payment reminder for order %s skipped: %v", order.OrderNo, err)
			continue
		}
		if created {
			result.PaymentReminders++
		}
	}

	return result, nil
}

// createIfAbsent creates a notification unless one of the same type already
// exists for the order created at or after windowStart.
func (s *ReminderService) createIfAbsent(notifType string, order models.Order, windowStart time.Time, message string) (bool, error) {
	var existing models.Notification
	err := s.db.
		Where("type = ? AND order_id = ? AND created_at >= ?", notifType, order.ID, windowStart).
		First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to check existing notifications: %w", err)
	}

	orderID := order.ID
	notification := models.Notification{
		Type:    notifType,
		OrderID: &orderID,
		Message: message,
	}
	if err := s.db.Create(&notification).Error; err != nil {
		return false, fmt.Errorf("failed to create notification: %w", err)
	}
	return true, nil
}

// startOfDay truncates t to its local calendar-day boundary.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
