package models

import "time"

// Notification types surfaced to shop staff.
const (
	NotificationTrialReminder    = "trial_reminder"
	NotificationDeliveryReminder = "delivery_reminder"
	NotificationPaymentReminder  = "payment_reminder"
	NotificationGeneral          = "general"
)

// Notification is a reminder surfaced to shop staff, normally created by the
// reminder sweep. OrderID is a reference only: deleting the order does not
// cascade to its notifications.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Type      string    `gorm:"not null" json:"type"`
	OrderID   *uint     `gorm:"index" json:"orderId,omitempty"`
	Order     *Order    `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Message   string    `gorm:"not null" json:"message"`
	IsRead    bool      `gorm:"not null;default:false;index" json:"isRead"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
