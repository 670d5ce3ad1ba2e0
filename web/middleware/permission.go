package middleware

import (
	"net/http"

	"kaban/web/service"

	"github.com/gin-gonic/gin"
)

// RequirePermission is the authorization stage of the access gate. It allows
// everything while no user exists, and otherwise re-fetches the caller's
// live record: token claims are a stale snapshot and only establish
// identity, never capabilities.
func RequirePermission(permission string) gin.HandlerFunc {
	userService := service.UserService{}
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

		userId, exists := c.Get("userId")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		user, err := userService.GetUser(userId.(int))
		if err != nil {
			// A valid token whose user has since been deleted.
			if service.IsStatus(err, http.StatusNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			c.Abort()
			return
		}

		if user.HasFullAccess() {
			c.Next()
			return
		}

		var allowed bool
		switch permission {
		case "isAdmin":
			allowed = user.IsAdmin
		case "canManageUsers":
			allowed = user.CanManageUsers
		case "canManageBoards":
			allowed = user.CanManageBoards
		case "canManageTasks":
			allowed = user.CanManageTasks
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied: " + permission + " required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
