package controller

import (
	"net/http"

	"kaban/database/model"
	"kaban/logger"
	"kaban/web/service"

	"github.com/gin-gonic/gin"
)

// jsonError maps a service error onto the response: typed errors carry their
// status, anything else is a 500.
func jsonError(c *gin.Context, err error) {
	code := service.StatusOf(err)
	if code == http.StatusInternalServerError {
		logger.Warning("request failed:", err)
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

// actorId returns the authenticated caller's user id. ok is false for the
// anonymous caller of the auth-disabled bootstrap state.
func actorId(c *gin.Context) (int, bool) {
	v, exists := c.Get("userId")
	if !exists {
		return 0, false
	}
	id, ok := v.(int)
	return id, ok
}

// liveUser re-fetches the caller's user record, the source of truth for
// capability and allow-list decisions. A nil user with nil error means the
// request is anonymous (auth disabled).
func liveUser(c *gin.Context, userService *service.UserService) (*model.User, error) {
	id, ok := actorId(c)
	if !ok {
		return nil, nil
	}
	return userService.GetUser(id)
}
