package middleware

import (
	"net/http"
	"strings"

	"kaban/web/service"

	"github.com/gin-gonic/gin"
)

// TokenAuth is the authentication stage of the access gate. While no user
// exists authentication is bypassed entirely and no identity is attached
// (the bootstrap escape hatch); otherwise a valid bearer token is required
// and its userId is placed in the request context.
func TokenAuth() gin.HandlerFunc {
	userService := service.UserService{}
	authService := service.AuthService{}
	return func(c *gin.Context) {
		count, err := userService.CountUsers()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		if count == 0 {
			c.Next()
			return
		}

		token := BearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		claims, err := authService.ParseToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("userId", claims.UserId)
		c.Set("claims", claims)
		c.Next()
	}
}

// BearerToken extracts the token from the Authorization header, or "".
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return ""
	}
	return token
}
