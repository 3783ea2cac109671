package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserPasswordHashedOnCreate(t *testing.T) {
	db := setupModelTestDB(t)

	user := User{
		Username: "Priya",
		Password: "plaintext123",
		FullName: "Priya S",
	}

	err := db.Create(&user).Error
	assert.NoError(t, err)

	// Username is normalized and the stored password is a hash
	assert.Equal(t, "priya", user.Username)
	assert.NotEqual(t, "plaintext123", user.Password)
	assert.True(t, user.CheckPassword("plaintext123"))
	assert.False(t, user.CheckPassword("wrongpassword"))
}

func TestUsernameUnique(t *testing.T) {
	db := setupModelTestDB(t)

	first := User{Username: "shop", Password: "secret123", FullName: "First"}
	assert.NoError(t, db.Create(&first).Error)

	// Same username after normalization
	second := User{Username: "  SHOP ", Password: "secret456", FullName: "Second"}
	err := db.Create(&second).Error
	assert.Error(t, err)
}

func TestSetPassword(t *testing.T) {
	user := User{Username: "owner", FullName: "Owner"}

	err := user.SetPassword("newsecret")
	assert.NoError(t, err)
	assert.NotEqual(t, "newsecret", user.Password)
	assert.True(t, user.CheckPassword("newsecret"))
	assert.False(t, user.CheckPassword("oldsecret"))
}

func TestProfileOmitsPassword(t *testing.T) {
	user := User{
		ID:       7,
		Username: "owner",
		Password: "$2a$10$hash",
		FullName: "Shop Owner",
		Role:     "admin",
	}

	profile := user.Profile()
	assert.Equal(t, uint(7), profile.ID)
	assert.Equal(t, "owner", profile.Username)
	assert.Equal(t, "Shop Owner", profile.FullName)
	assert.Equal(t, "admin", profile.Role)
}
