package controller

import (
	"net/http"
	"strconv"

	"kaban/database/model"
	"kaban/web/middleware"
	"kaban/web/service"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	userService service.UserService
}

func NewUserController(auth *gin.RouterGroup) *UserController {
	u := &UserController{}

	users := auth.Group("/users")
	users.Use(middleware.TokenAuth(), middleware.RequirePermission("canManageUsers"))
	{
		users.GET("", u.list)
		users.POST("", u.create)
		users.PUT("/:id", u.update)
		users.DELETE("/:id", u.delete)
	}

	return u
}

func (u *UserController) list(c *gin.Context) {
	users, err := u.userService.GetUsers()
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

type createUserReq struct {
	Username        string   `json:"username"`
	Password        string   `json:"password"`
	Role            string   `json:"role"`
	IsAdmin         bool     `json:"isAdmin"`
	CanManageUsers  bool     `json:"canManageUsers"`
	CanManageBoards bool     `json:"canManageBoards"`
	CanManageTasks  bool     `json:"canManageTasks"`
	AllowedBoards   []string `json:"allowedBoards"`
}

func (u *UserController) create(c *gin.Context) {
	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	user := &model.User{
		Username:        req.Username,
		Role:            req.Role,
		IsAdmin:         req.IsAdmin,
		CanManageUsers:  req.CanManageUsers,
		CanManageBoards: req.CanManageBoards,
		CanManageTasks:  req.CanManageTasks,
		AllowedBoards:   req.AllowedBoards,
	}
	if err := u.userService.CreateUser(user, req.Password); err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (u *UserController) update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	var upd service.UserUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	actor, _ := actorId(c)
	user, err := u.userService.UpdateUser(actor, id, upd)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (u *UserController) delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if err := u.userService.DeleteUser(id); err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
