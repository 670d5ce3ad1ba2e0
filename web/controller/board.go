package controller

import (
	"net/http"

	"kaban/logger"
	"kaban/web/middleware"
	"kaban/web/service"

	"github.com/gin-gonic/gin"
)

type BoardController struct {
	boardService service.BoardService
	scopeService service.ScopeService
	userService  service.UserService
}

func NewBoardController(g *gin.RouterGroup) *BoardController {
	b := &BoardController{}

	boards := g.Group("/boards")
	boards.Use(middleware.TokenAuth())
	{
		boards.GET("", b.list)
		boards.POST("", middleware.RequirePermission("canManageBoards"), b.create)
		boards.GET("/:id", b.get)
		boards.PUT("/:id", middleware.RequirePermission("canManageBoards"), b.update)
		boards.DELETE("/:id", middleware.RequirePermission("canManageBoards"), b.delete)
	}

	return b
}

// checkBoardScope rejects callers whose allow-list does not cover the board.
// Anonymous callers (auth disabled) are never rejected.
func (b *BoardController) checkBoardScope(c *gin.Context, boardId string) bool {
	user, err := liveUser(c, &b.userService)
	if err != nil {
		jsonError(c, err)
		return false
	}
	if user != nil && !b.scopeService.CanAccessBoard(user, boardId) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to this board"})
		return false
	}
	return true
}

func (b *BoardController) list(c *gin.Context) {
	user, err := liveUser(c, &b.userService)
	if err != nil {
		jsonError(c, err)
		return
	}
	boards, err := b.boardService.GetBoardsFor(user)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, boards)
}

type createBoardReq struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

func (b *BoardController) create(c *gin.Context) {
	var req createBoardReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	board, err := b.boardService.CreateBoard(req.Name, req.Columns)
	if err != nil {
		jsonError(c, err)
		return
	}

	// A non-admin creator keeps access to their own board. Board creation is
	// the primary outcome; a failed grant is surfaced but never rolls back.
	warning := ""
	if user, err := liveUser(c, &b.userService); err == nil && user != nil && !user.HasFullAccess() {
		if err := b.scopeService.GrantBoard(user.Id, board.Id); err != nil {
			logger.Warningf("grant board %s to user %d failed: %v", board.Id, user.Id, err)
			warning = "Board created but could not be added to your allowed boards"
		}
	}

	if warning != "" {
		c.JSON(http.StatusCreated, gin.H{
			"id":        board.Id,
			"name":      board.Name,
			"createdAt": board.CreatedAt,
			"updatedAt": board.UpdatedAt,
			"warning":   warning,
		})
		return
	}
	c.JSON(http.StatusCreated, board)
}

func (b *BoardController) get(c *gin.Context) {
	id := c.Param("id")
	if !b.checkBoardScope(c, id) {
		return
	}
	detail, err := b.boardService.GetBoardDetail(id)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

type updateBoardReq struct {
	Name string `json:"name"`
}

func (b *BoardController) update(c *gin.Context) {
	id := c.Param("id")
	if !b.checkBoardScope(c, id) {
		return
	}
	var req updateBoardReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	board, err := b.boardService.UpdateBoard(id, req.Name)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (b *BoardController) delete(c *gin.Context) {
	id := c.Param("id")
	if !b.checkBoardScope(c, id) {
		return
	}
	if err := b.boardService.DeleteBoard(id); err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Board deleted"})
}
