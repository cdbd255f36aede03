package meal

import (
	"net/http"

	"mealmind/internal/api/middleware"
	mealService "mealmind/internal/core/meal"
	"mealmind/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// HandleListLibrary 列出菜單庫，q 篩選菜名
func (h *Handler) HandleListLibrary(c *gin.Context) {
	entries, err := h.engine.Library.List(c.Request.Context(), middleware.UserID(c), c.Query("q"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewListResponse(entries))
}

// HandleAddDish 新增菜色到菜單庫
func (h *Handler) HandleAddDish(c *gin.Context) {
	var req mealService.DishInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	dish, err := h.engine.Library.AddDish(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dish)
}

// HandleRemoveDish 從菜單庫移除
func (h *Handler) HandleRemoveDish(c *gin.Context) {
	dishID, err := common.ParseID(c.Param("dish_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.engine.Library.Remove(c.Request.Context(), middleware.UserID(c), dishID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleHistory 最近的每日紀錄
func (h *Handler) HandleHistory(c *gin.Context) {
	plans, err := h.engine.Library.History(c.Request.Context(), middleware.UserID(c), h.engine.HistoryLimit())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewListResponse(plans))
}
