package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/momandme/tailorshop-api/config"
	"github.com/momandme/tailorshop-api/models"
	"github.com/momandme/tailorshop-api/services"
)

// currentUserKey is the gin context key the authenticated user is stored
// under.
const currentUserKey = "current_user"

// RequireAuth is the bearer-token gate for protected routes. The token is
// read from the Authorization header, or from a "token" query parameter so
// the SPA can build plain download links for CSV exports. The resolved user
// is stored in the gin context for handlers to attribute createdBy/changedBy.
func RequireAuth(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			abortUnauthorized(c, "UNAUTHORIZED", "Not authorized to access this route. Please login.")
			return
		}

		userID, err := tokens.Verify(tokenString)
		if err != nil {
			if errors.Is(err, services.ErrTokenExpired) {
				abortUnauthorized(c, "TOKEN_EXPIRED", "Your session has expired. Please login again.")
				return
			}
			abortUnauthorized(c, "INVALID_TOKEN", "Invalid token. Please login again.")
			return
		}

		var user models.User
		if err := config.GetDB().First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				abortUnauthorized(c, "USER_NOT_FOUND", "User not found. Please login again.")
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to load user",
				},
			})
			return
		}

		if !user.IsActive {
			abortUnauthorized(c, "ACCOUNT_DISABLED", "Your account has been deactivated. Please contact administrator.")
			return
		}

		c.Set(currentUserKey, &user)
		c.Next()
	}
}

// ResolveUser authenticates the request outside the middleware chain. The
// register endpoint uses it: registration is public only until the first
// account exists, so the route cannot sit behind RequireAuth.
func ResolveUser(c *gin.Context, tokens *services.TokenService) (*models.User, error) {
	tokenString := extractToken(c)
	if tokenString == "" {
		return nil, &AuthError{Code: "UNAUTHORIZED", Message: "No token provided"}
	}

	userID, err := tokens.Verify(tokenString)
	if err != nil {
		return nil, &AuthError{Code: "INVALID_TOKEN", Message: "Invalid token"}
	}

	var user models.User
	if err := config.GetDB().First(&user, userID).Error; err != nil {
		return nil, &AuthError{Code: "USER_NOT_FOUND", Message: "User not found"}
	}
	if !user.IsActive {
		return nil, &AuthError{Code: "ACCOUNT_DISABLED", Message: "Account is deactivated"}
	}

	return &user, nil
}

// extractToken pulls the bearer token from the Authorization header or the
// token query parameter.
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// GetCurrentUser extracts the authenticated user from the gin context.
func GetCurrentUser(c *gin.Context) (*models.User, error) {
	value, exists := c.Get(currentUserKey)
	if !exists {
		return nil, &AuthError{Code: "MISSING_USER", Message: "User not found in context"}
	}

	user, ok := value.(*models.User)
	if !ok {
		return nil, &AuthError{Code: "INVALID_USER", Message: "User in context has unexpected type"}
	}

	return user, nil
}

// SetCurrentUser stores the authenticated user in the gin context
// (primarily for testing handlers without the full middleware).
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(currentUserKey, user)
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
