package controller

import (
	"net/http"

	"kaban/database/model"
	"kaban/web/entity"
	"kaban/web/middleware"
	"kaban/web/service"

	"github.com/gin-gonic/gin"
)

type ColumnController struct {
	columnService service.ColumnService
	scopeService  service.ScopeService
	userService   service.UserService
}

func NewColumnController(g *gin.RouterGroup) *ColumnController {
	col := &ColumnController{}

	columns := g.Group("/columns")
	columns.Use(middleware.TokenAuth(), middleware.RequirePermission("canManageBoards"))
	{
		columns.POST("", col.create)
		columns.PUT("/:id", col.update)
		columns.DELETE("/:id", col.delete)
		columns.PUT("/:id/reorder", col.reorder)
	}

	return col
}

// checkColumnScope resolves the column's board and rejects callers outside
// its scope. Anonymous callers (auth disabled) are never rejected.
func (col *ColumnController) checkColumnScope(c *gin.Context, columnId string) bool {
	userId, ok := actorId(c)
	if !ok {
		return true
	}
	allowed, err := col.scopeService.CanAccessBoardByColumn(userId, columnId)
	if err != nil {
		jsonError(c, err)
		return false
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to this board"})
		return false
	}
	return true
}

type createColumnReq struct {
	Title   string `json:"title"`
	BoardId string `json:"boardId"`
}

func (col *ColumnController) create(c *gin.Context) {
	var req createColumnReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if user, err := liveUser(c, &col.userService); err != nil {
		jsonError(c, err)
		return
	} else if user != nil && !col.scopeService.CanAccessBoard(user, req.BoardId) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to this board"})
		return
	}
	column, err := col.columnService.CreateColumn(req.Title, req.BoardId)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entity.ColumnWithCards{
		Column: *column,
		Cards:  []model.Card{},
	})
}

type updateColumnReq struct {
	Title string `json:"title"`
}

func (col *ColumnController) update(c *gin.Context) {
	id := c.Param("id")
	if !col.checkColumnScope(c, id) {
		return
	}
	var req updateColumnReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	column, err := col.columnService.UpdateColumn(id, req.Title)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, column)
}

func (col *ColumnController) delete(c *gin.Context) {
	id := c.Param("id")
	if !col.checkColumnScope(c, id) {
		return
	}
	if err := col.columnService.DeleteColumn(id); err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Column deleted"})
}

type reorderColumnReq struct {
	Order int `json:"order"`
}

func (col *ColumnController) reorder(c *gin.Context) {
	id := c.Param("id")
	if !col.checkColumnScope(c, id) {
		return
	}
	var req reorderColumnReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	column, err := col.columnService.ReorderColumn(id, req.Order)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, column)
}
