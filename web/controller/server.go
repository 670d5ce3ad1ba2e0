package controller

import (
	"net/http"
	"strconv"

	"kaban/web/middleware"
	"kaban/web/service"

	"github.com/gin-gonic/gin"
)

type ServerController struct {
	serverService service.ServerService
}

func NewServerController(g *gin.RouterGroup) *ServerController {
	s := &ServerController{}

	server := g.Group("/server")
	server.Use(middleware.TokenAuth(), middleware.RequirePermission("isAdmin"))
	{
		server.GET("/status", s.status)
		server.GET("/logs", s.logs)
	}

	return s
}

func (s *ServerController) status(c *gin.Context) {
	c.JSON(http.StatusOK, s.serverService.GetStatus())
}

func (s *ServerController) logs(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "50"))
	if err != nil || count <= 0 {
		count = 50
	}
	level := c.DefaultQuery("level", "INFO")
	c.JSON(http.StatusOK, s.serverService.GetLogs(count, level))
}
