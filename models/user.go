package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User represents a shop staff account. The shop is run by a small admin
// team, so every account carries the admin role; deactivation is a soft
// flag rather than a delete so orders keep a resolvable creator.
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Username  string     `gorm:"uniqueIndex;not null" json:"username"`
	Password  string     `gorm:"not null" json:"-"` // bcrypt hash, never serialized
	FullName  string     `gorm:"not null" json:"fullName"`
	Role      string     `gorm:"not null;default:'admin'" json:"role"`
	IsActive  bool       `gorm:"not null;default:true" json:"isActive"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// BeforeCreate normalizes the username and hashes the plaintext password.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	return u.hashPassword()
}

func (u *User) hashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// SetPassword hashes and stores a new password on the model. The caller is
// responsible for persisting the change.
func (u *User) SetPassword(plaintext string) error {
	u.Password = plaintext
	return u.hashPassword()
}

// CheckPassword compares a candidate password against the stored hash.
func (u *User) CheckPassword(candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate)) == nil
}

// PublicProfile is the identity summary returned by auth endpoints.
type PublicProfile struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// Profile returns the serializable identity summary for a user.
func (u *User) Profile() PublicProfile {
	return PublicProfile{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Role:     u.Role,
	}
}
