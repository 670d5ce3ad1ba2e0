package controller

import (
	"net/http"

	"kaban/web/middleware"
	"kaban/web/service"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(g *gin.RouterGroup) *AuthController {
	a := &AuthController{}

	auth := g.Group("/auth")
	{
		auth.GET("/status", a.status)
		auth.POST("/enable", a.enable)
		auth.POST("/disable", middleware.TokenAuth(), middleware.RequirePermission("isAdmin"), a.disable)
		auth.POST("/login", middleware.RateLimit(middleware.DefaultRateLimitConfig()), a.login)
		auth.GET("/me", a.me)
	}
	NewUserController(auth)

	return a
}

func (a *AuthController) status(c *gin.Context) {
	status, err := a.authService.GetStatus()
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *AuthController) enable(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	user, err := a.authService.Enable(req.Username, req.Password)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Authentication enabled",
		"username": user.Username,
	})
}

func (a *AuthController) disable(c *gin.Context) {
	if err := a.authService.Disable(); err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Authentication disabled"})
}

func (a *AuthController) login(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	token, user, err := a.authService.Login(req.Username, req.Password)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

func (a *AuthController) me(c *gin.Context) {
	token := middleware.BearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	user, err := a.authService.Me(token)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"username": user.Username,
		"role":     user.Role,
	})
}
