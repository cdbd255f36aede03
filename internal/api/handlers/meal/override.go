package meal

import (
	"errors"
	"net/http"

	"mealmind/internal/api/middleware"
	mealService "mealmind/internal/core/meal"
	"mealmind/internal/models"

	"github.com/gin-gonic/gin"
)

// OverrideSearchRequest 食材自由輸入
type OverrideSearchRequest struct {
	Ingredients string `json:"ingredients"`
}

// OverrideSearchResponse 解析後的 token 與合併排序結果
type OverrideSearchResponse struct {
	Raw      string                  `json:"raw"`
	Query    mealService.ParsedQuery `json:"query"`
	Resolved map[string]uint         `json:"resolved"`
	Results  []CandidateView         `json:"results"`
}

// OverrideConfirmRequest dish_id 與 external 擇一
type OverrideConfirmRequest struct {
	DishID   uint                   `json:"dish_id"`
	External *models.ExternalRecipe `json:"external"`
}

// HandleOverrideSearch 依食材搜尋菜單庫與外部來源
func (h *Handler) HandleOverrideSearch(c *gin.Context) {
	var req OverrideSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	profile, ok := h.profile(c)
	if !ok {
		return
	}

	res, err := h.engine.OverrideSearch(c.Request.Context(), profile, req.Ingredients)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, OverrideSearchResponse{
		Raw:      req.Ingredients,
		Query:    res.Query,
		Resolved: res.Resolved,
		Results:  candidateViews(res.Results),
	})
}

// HandleOverrideConfirm 以選定的菜色或外部食譜覆寫今天的紀錄
func (h *Handler) HandleOverrideConfirm(c *gin.Context) {
	var req OverrideConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	var (
		plan *models.DayPlanEntry
		err  error
	)
	switch {
	case req.DishID != 0:
		plan, err = h.engine.Library.MarkCooked(ctx, userID, req.DishID, true)
	case req.External != nil:
		plan, err = h.engine.ConfirmExternal(ctx, userID, *req.External)
	default:
		h.badRequest(c, errors.New("dish_id or external is required"))
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}
