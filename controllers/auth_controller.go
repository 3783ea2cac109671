package controllers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/momandme/tailorshop-api/config"
	"github.com/momandme/tailorshop-api/middleware"
	"github.com/momandme/tailorshop-api/models"
	"github.com/momandme/tailorshop-api/services"
)

// RegisterRequest represents the request body for creating a staff account
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullName" binding:"required"`
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /api/auth/register. The very first account can
// self-register (bootstrap); after that only an authenticated staff member
// can create accounts.
func Register(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := config.GetDB()

		var userCount int64
		if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
			respondServiceError(c, err, "User")
			return
		}

		if userCount > 0 {
			if _, err := middleware.ResolveUser(c, tokens); err != nil {
				respondUnauthorized(c, "UNAUTHORIZED", "Only existing staff can create new accounts")
				return
			}
		}

		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "Please provide username (3-30 chars), password (min 6 chars), and full name")
			return
		}

		user := models.User{
			Username: req.Username,
			Password: req.Password,
			FullName: strings.TrimSpace(req.FullName),
			Role:     "admin",
			IsActive: true,
		}

		if err := db.Create(&user).Error; err != nil {
			errMsg := strings.ToLower(err.Error())
			if strings.Contains(errMsg, "unique") || strings.Contains(errMsg, "duplicate") {
				c.JSON(http.StatusConflict, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "USER_EXISTS",
						"message": "A user with this username already exists",
					},
				})
				return
			}
			respondServiceError(c, err, "User")
			return
		}

		sendTokenResponse(c, tokens, &user, http.StatusCreated)
	}
}

// Login handles POST /api/auth/login. Unknown username, wrong password and
// deactivated accounts all fail with 401; the first two share one message
// so the response does not reveal which usernames exist.
func Login(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "Please provide username and password")
			return
		}

		db := config.GetDB()
		var user models.User
		err := db.Where("username = ?", strings.ToLower(strings.TrimSpace(req.Username))).First(&user).Error
		if err != nil || !user.CheckPassword(req.Password) {
			respondUnauthorized(c, "INVALID_CREDENTIALS", "Invalid credentials")
			return
		}

		if !user.IsActive {
			respondUnauthorized(c, "ACCOUNT_DISABLED", "Your account has been deactivated. Please contact administrator.")
			return
		}

		now := time.Now()
		user.LastLogin = &now
		if err := db.Model(&user).Update("last_login", now).Error; err != nil {
			// Login still succeeds; the timestamp is informational
			log.Printf("failed to update last login for %s: %v", user.Username, err)
		}

		sendTokenResponse(c, tokens, &user, http.StatusOK)
	}
}

// GetMe handles GET /api/auth/me - returns the authenticated user's profile
func GetMe(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondUnauthorized(c, "UNAUTHORIZED", "Could not resolve user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// UpdateDetailsRequest represents the request body for updating a profile
type UpdateDetailsRequest struct {
	FullName string `json:"fullName" binding:"omitempty"`
	Username string `json:"username" binding:"omitempty,min=3,max=30"`
}

// UpdateDetails handles PUT /api/auth/updatedetails
func UpdateDetails(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondUnauthorized(c, "UNAUTHORIZED", "Could not resolve user")
		return
	}

	var req UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data")
		return
	}

	changed := false
	if strings.TrimSpace(req.FullName) != "" {
		user.FullName = strings.TrimSpace(req.FullName)
		changed = true
	}
	if strings.TrimSpace(req.Username) != "" {
		user.Username = strings.ToLower(strings.TrimSpace(req.Username))
		changed = true
	}
	if !changed {
		respondBadRequest(c, "Nothing to update")
		return
	}

	db := config.GetDB()
	if err := db.Save(user).Error; err != nil {
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "unique") || strings.Contains(errMsg, "duplicate") {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "USER_EXISTS",
					"message": "A user with this username already exists",
				},
			})
			return
		}
		respondServiceError(c, err, "User")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// UpdatePasswordRequest represents the request body for changing a password
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

// UpdatePassword handles PUT /api/auth/updatepassword
func UpdatePassword(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := middleware.GetCurrentUser(c)
		if err != nil {
			respondUnauthorized(c, "UNAUTHORIZED", "Could not resolve user")
			return
		}

		var req UpdatePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "New password must be at least 6 characters long")
			return
		}

		if !user.CheckPassword(req.CurrentPassword) {
			respondUnauthorized(c, "INVALID_CREDENTIALS", "Current password is incorrect")
			return
		}

		if err := user.SetPassword(req.NewPassword); err != nil {
			respondServiceError(c, err, "User")
			return
		}

		db := config.GetDB()
		if err := db.Model(user).Update("password", user.Password).Error; err != nil {
			respondServiceError(c, err, "User")
			return
		}

		sendTokenResponse(c, tokens, user, http.StatusOK)
	}
}

// ListUsers handles GET /api/auth/users
func ListUsers(c *gin.Context) {
	db := config.GetDB()

	var users []models.User
	if err := db.Order("created_at ASC").Find(&users).Error; err != nil {
		respondServiceError(c, err, "User")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(users),
		"data":    users,
	})
}

// SetUserActive returns a handler for PUT /api/auth/users/:id/activate and
// /deactivate. Deactivation is a soft flag: the account stops
// authenticating but its orders keep their creator reference.
func SetUserActive(active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := config.GetDB()

		var user models.User
		if err := db.First(&user, c.Param("id")).Error; err != nil {
			respondServiceError(c, err, "User")
			return
		}

		if err := db.Model(&user).Update("is_active", active).Error; err != nil {
			respondServiceError(c, err, "User")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    user,
		})
	}
}

// sendTokenResponse issues a bearer token and returns it with the identity
// summary.
func sendTokenResponse(c *gin.Context, tokens *services.TokenService, user *models.User, status int) {
	token, err := tokens.Generate(user.ID)
	if err != nil {
		log.Printf("failed to issue token for %s: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TOKEN_ERROR",
				"message": "Failed to issue token",
			},
		})
		return
	}

	c.JSON(status, gin.H{
		"success": true,
		"token":   token,
		"user":    user.Profile(),
	})
}
