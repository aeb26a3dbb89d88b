package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OussamaHaimour/chatbot-HCP/internal/config"
	"github.com/OussamaHaimour/chatbot-HCP/utils"
)

type AuthMiddleware struct {
	config *config.Config
}

func NewAuthMiddleware(cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{config: cfg}
}

// RequireAuth validates the bearer token and stores the caller's identity in
// the request context.
func (a *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := utils.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error_code": "unauthorized",
				"message":    "Authentication token is required",
			})
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(tokenString, a.config.JWTSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error_code": "invalid_token",
				"message":    "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// GetUserID retrieves the authenticated user's ID from the request context.
func GetUserID(c *gin.Context) int64 {
	if id, exists := c.Get("user_id"); exists {
		if v, ok := id.(int64); ok {
			return v
		}
	}
	return 0
}

// GetRole retrieves the authenticated user's role from the request context.
func GetRole(c *gin.Context) string {
	if role, exists := c.Get("role"); exists {
		if v, ok := role.(string); ok {
			return v
		}
	}
	return ""
}
