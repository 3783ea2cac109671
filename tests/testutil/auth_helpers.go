package testutil

import (
	"net/http"
	"testing"

	"gorm.io/gorm"

	"github.com/momandme/tailorshop-api/models"
	"github.com/momandme/tailorshop-api/services"
)

// SeedUser creates an active staff account with the given credentials. The
// model hook hashes the password, so the plaintext stays usable for login
// requests in the test.
func SeedUser(t *testing.T, db *gorm.DB, username, password string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Password: password,
		FullName: "Test Staff",
		Role:     "admin",
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user %q: %v", username, err)
	}
	return user
}

// BearerToken signs a token for the user and returns it ready for an
// Authorization header.
func BearerToken(t *testing.T, tokens *services.TokenService, user *models.User) string {
	t.Helper()

	token, err := tokens.Generate(user.ID)
	if err != nil {
		t.Fatalf("failed to generate token for user %d: %v", user.ID, err)
	}
	return "Bearer " + token
}

// Authorize sets the Authorization header on req for the given user.
func Authorize(t *testing.T, req *http.Request, tokens *services.TokenService, user *models.User) {
	t.Helper()
	req.Header.Set("Authorization", BearerToken(t, tokens, user))
}
