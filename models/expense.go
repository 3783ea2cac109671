package models

import "time"

// Expense is a dated financial outflow (thread, lining cloth, electricity,
// rent, ...). Expenses have no derived fields and no history.
type Expense struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Description string    `gorm:"not null" json:"description"`
	Category    string    `gorm:"not null;default:'General'" json:"category"`
	Date        time.Time `gorm:"not null;index" json:"date"`
	CreatedByID uint      `gorm:"not null;index" json:"createdById"`
	CreatedBy   *User     `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the Expense model
func (Expense) TableName() string {
	return "expenses"
}
