package controller

import (
	"net/http"

	"kaban/web/middleware"
	"kaban/web/service"

	"github.com/gin-gonic/gin"
)

type CardController struct {
	cardService  service.CardService
	scopeService service.ScopeService
}

func NewCardController(g *gin.RouterGroup) *CardController {
	card := &CardController{}

	cards := g.Group("/cards")
	cards.Use(middleware.TokenAuth(), middleware.RequirePermission("canManageTasks"))
	{
		cards.POST("", card.create)
		cards.PUT("/:id", card.update)
		cards.DELETE("/:id", card.delete)
		cards.PUT("/:id/move", card.move)
		cards.PUT("/batch/reorder", card.batchReorder)
	}

	return card
}

// checkColumnsScope verifies the caller's board scope for every given
// column before any write is issued. Anonymous callers pass.
func (cc *CardController) checkColumnsScope(c *gin.Context, columnIds ...string) bool {
	userId, ok := actorId(c)
	if !ok {
		return true
	}
	allowed, err := cc.scopeService.CanAccessColumns(userId, columnIds)
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

type createCardReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ColumnId    string `json:"columnId"`
	Color       string `json:"color"`
}

func (cc *CardController) create(c *gin.Context) {
	var req createCardReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if !cc.checkColumnsScope(c, req.ColumnId) {
		return
	}
	card, err := cc.cardService.CreateCard(req.Title, req.Description, req.ColumnId, req.Color)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusCreated, card)
}

func (cc *CardController) update(c *gin.Context) {
	id := c.Param("id")
	card, err := cc.cardService.GetCard(id)
	if err != nil {
		jsonError(c, err)
		return
	}
	if !cc.checkColumnsScope(c, card.ColumnId) {
		return
	}
	var upd service.CardUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	updated, err := cc.cardService.UpdateCard(id, upd)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (cc *CardController) delete(c *gin.Context) {
	id := c.Param("id")
	card, err := cc.cardService.GetCard(id)
	if err != nil {
		jsonError(c, err)
		return
	}
	if !cc.checkColumnsScope(c, card.ColumnId) {
		return
	}
	if err := cc.cardService.DeleteCard(id); err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Card deleted"})
}

type moveCardReq struct {
	ColumnId string `json:"columnId"`
	Order    int    `json:"order"`
}

// move is a transfer of custody between two board scopes, so both the source
// and the destination column must pass the scope check.
func (cc *CardController) move(c *gin.Context) {
	id := c.Param("id")
	var req moveCardReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	card, err := cc.cardService.GetCard(id)
	if err != nil {
		jsonError(c, err)
		return
	}
	target := req.ColumnId
	if target == "" {
		target = card.ColumnId
	}
	if !cc.checkColumnsScope(c, card.ColumnId, target) {
		return
	}
	moved, err := cc.cardService.MoveCard(id, req.ColumnId, req.Order)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, moved)
}

type batchReorderReq struct {
	Cards []service.CardReorder `json:"cards"`
}

// batchReorder scope-checks every entry's destination column up front; the
// whole batch is rejected before any write when one check fails.
func (cc *CardController) batchReorder(c *gin.Context) {
	var req batchReorderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	columnIds := make([]string, 0, len(req.Cards))
	for _, entry := range req.Cards {
		columnIds = append(columnIds, entry.ColumnId)
	}
	if !cc.checkColumnsScope(c, columnIds...) {
		return
	}
	if err := cc.cardService.BatchReorder(req.Cards); err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cards reordered"})
}
