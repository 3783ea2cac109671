package models

import (
	"time"

	"gorm.io/gorm"
)

// Order statuses, in the usual progression of a tailoring job.
const (
	StatusPending       = "Pending"
	StatusInProgress    = "In Progress"
	StatusReadyForTrial = "Ready for Trial"
	StatusCompleted     = "Completed"
)

// OrderStatuses lists every valid order status.
var OrderStatuses = []string{
	StatusPending,
	StatusInProgress,
	StatusReadyForTrial,
	StatusCompleted,
}

// OrderCategories lists the garment types the shop takes orders for.
var OrderCategories = []string{
	"Blouse",
	"Blouse (1+1)",
	"Salwar/Chudi",
	"Salwar/Chudi(1+1)",
	"Skirt & Top",
	"Saree (Falls and Side Stitch)",
	"Others",
}

// Payment status buckets derived from the amount fields.
const (
	PaymentPaid    = "Paid"
	PaymentUnpaid  = "Unpaid"
	PaymentPartial = "Partial"
)

// Measurements is the fixed set of measurements taken for a garment.
// All values are free text because the shop records fractions and
// annotations ("34 1/2 loose") rather than clean numbers.
type Measurements struct {
	Bust         string `json:"bust,omitempty"`
	Waist        string `json:"waist,omitempty"`
	Hip          string `json:"hip,omitempty"`
	Length       string `json:"length,omitempty"`
	Shoulder     string `json:"shoulder,omitempty"`
	SleeveLength string `json:"sleeveLength,omitempty"`
	ArmHole      string `json:"armHole,omitempty"`
	Neck         string `json:"neck,omitempty"`
	BlouseLength string `json:"blouseLength,omitempty"`
	SalwarLength string `json:"salwarLength,omitempty"`
	Bottom       string `json:"bottom,omitempty"`
	Slit         string `json:"slit,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// Order represents one tailoring job for one customer.
type Order struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	OrderNo         string     `gorm:"uniqueIndex;not null" json:"orderNo"`
	OrderNoFromBook string     `json:"orderNoFromBook,omitempty"` // reference number in the physical order book
	CustomerName    string     `gorm:"not null;index" json:"customerName"`
	Address         string     `json:"address,omitempty"`
	PhoneNumber     string     `gorm:"not null;index" json:"phoneNumber"`
	Category        string     `gorm:"not null" json:"category"`
	OrderDate       time.Time  `gorm:"not null;index" json:"orderDate"`
	TrialDate       *time.Time `gorm:"index" json:"trialDate,omitempty"`
	DeliveryDate    *time.Time `gorm:"index" json:"deliveryDate,omitempty"`

	TotalAmount           float64 `gorm:"not null" json:"totalAmount"`
	AdvanceAmountPaid     float64 `gorm:"not null;default:0" json:"advanceAmountPaid"`
	BalanceAmountReceived float64 `gorm:"not null;default:0" json:"balanceAmountReceived"`
	// Balance is derived from the three amount fields in BeforeSave and is
	// never accepted from a client.
	Balance float64 `gorm:"not null;default:0" json:"balance"`

	Status         string   `gorm:"not null;default:'Pending';index" json:"status"`
	CustomerPhotos []string `gorm:"serializer:json" json:"customerPhotos"`

	Measurements Measurements `gorm:"embedded;embeddedPrefix:measurement_" json:"measurements"`
	Notes        string       `json:"notes,omitempty"`

	CreatedByID uint  `gorm:"not null;index" json:"createdById"`
	CreatedBy   *User `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`

	StatusHistory []StatusHistoryEntry `gorm:"foreignKey:OrderID" json:"statusHistory,omitempty"`

	// PaymentStatus is computed from the amount fields after load.
	PaymentStatus string `gorm:"-" json:"paymentStatus"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// BeforeSave keeps the derived balance consistent with the amount fields on
// every full-model write.
func (o *Order) BeforeSave(tx *gorm.DB) error {
	o.Balance = o.TotalAmount - o.AdvanceAmountPaid - o.BalanceAmountReceived
	return nil
}

// AfterFind fills the derived payment status.
func (o *Order) AfterFind(tx *gorm.DB) error {
	o.PaymentStatus = o.ComputePaymentStatus()
	return nil
}

// ComputePaymentStatus buckets the order by how much of its total has been
// received: Paid (nothing owed), Unpaid (nothing received), Partial otherwise.
func (o *Order) ComputePaymentStatus() string {
	if o.Balance == 0 {
		return PaymentPaid
	}
	if o.AdvanceAmountPaid == 0 && o.BalanceAmountReceived == 0 {
		return PaymentUnpaid
	}
	return PaymentPartial
}

// IsValidStatus reports whether s is one of the defined order statuses.
func IsValidStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsValidCategory reports whether c is one of the defined garment categories.
func IsValidCategory(c string) bool {
	for _, v := range OrderCategories {
		if v == c {
			return true
		}
	}
	return false
}

// StatusHistoryEntry is one row of an order's append-only status audit
// trail. Entries are only ever added, never updated or rewritten.
type StatusHistoryEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     uint      `gorm:"not null;index" json:"orderId"`
	Status      string    `gorm:"not null" json:"status"`
	ChangedAt   time.Time `gorm:"not null" json:"changedAt"`
	ChangedByID uint      `gorm:"index" json:"changedById"`
	ChangedBy   *User     `gorm:"foreignKey:ChangedByID" json:"changedBy,omitempty"`
}

// TableName specifies the table name for status history entries
func (StatusHistoryEntry) TableName() string {
	return "order_status_history"
}
