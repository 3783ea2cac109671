package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/momandme/tailorshop-api/config"
	"github.com/momandme/tailorshop-api/models"
	"github.com/momandme/tailorshop-api/services"
)

// ListNotifications handles GET /api/notifications with an optional
// isRead filter and limit. The response always carries the unread count
// so clients can badge without a second request.
func ListNotifications(c *gin.Context) {
	db := config.GetDB()

	query := db.Model(&models.Notification{})
	if isRead := c.Query("isRead"); isRead != "" {
		query = query.Where("is_read = ?", isRead == "true")
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	var notifications []models.Notification
	err := query.Preload("Order").Order("created_at DESC").Limit(limit).Find(&notifications).Error
	if err != nil {
		respondServiceError(c, err, "Notification")
		return
	}

	var unread int64
	if err := db.Model(&models.Notification{}).Where("is_read = ?", false).Count(&unread).Error; err != nil {
		respondServiceError(c, err, "Notification")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"count":       len(notifications),
		"unreadCount": unread,
		"data":        notifications,
	})
}

// MarkNotificationRead handles PUT /api/notifications/:id/read
func MarkNotificationRead(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var notification models.Notification
	if err := db.First(&notification, id).Error; err != nil {
		respondServiceError(c, err, "Notification")
		return
	}

	notification.IsRead = true
	if err := db.Save(&notification).Error; err != nil {
		respondServiceError(c, err, "Notification")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notification,
	})
}

// MarkAllNotificationsRead handles PUT /api/notifications/read-all
func MarkAllNotificationsRead(c *gin.Context) {
	db := config.GetDB()
	result := db.Model(&models.Notification{}).
		Where("is_read = ?", false).
		Update("is_read", true)
	if result.Error != nil {
		respondServiceError(c, result.Error, "Notification")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "All notifications marked as read",
		"updated": result.RowsAffected,
	})
}

// DeleteNotification handles DELETE /api/notifications/:id
func DeleteNotification(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var notification models.Notification
	if err := db.First(&notification, id).Error; err != nil {
		respondServiceError(c, err, "Notification")
		return
	}

	if err := db.Delete(&notification).Error; err != nil {
		respondServiceError(c, err, "Notification")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notification deleted successfully",
	})
}

// CheckReminders handles POST /api/notifications/check-reminders. It
// runs the reminder sweep on demand; the scheduler calls the same
// service on its own interval.
func CheckReminders(c *gin.Context) {
	cfg := config.GetConfig()
	reminders := services.NewReminderService(config.GetDB(), cfg.ShopName)

	result, err := reminders.RunReminderSweep(time.Now())
	if err != nil {
		respondServiceError(c, err, "Notification")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Reminder check completed",
		"data": gin.H{
			"trialReminders":    result.TrialReminders,
			"deliveryReminders": result.DeliveryReminders,
			"paymentReminders":  result.PaymentReminders,
		},
	})
}
