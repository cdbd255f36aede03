package meal

import (
	"net/http"

	"mealmind/internal/api/middleware"
	mealService "mealmind/internal/core/meal"
	"mealmind/internal/models"
	"mealmind/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TodayResponse 今日推薦頁面
type TodayResponse struct {
	Pick         *mealService.DailyPick `json:"pick"`
	Alternatives []CandidateView        `json:"alternatives"`
	Recent       []models.DayPlanEntry  `json:"recent"`
	CooldownDays int                    `json:"cooldown_days"`
}

// DishRequest 只帶菜色 ID 的請求
type DishRequest struct {
	DishID uint `json:"dish_id" binding:"required"`
}

// HandleToday 今日推薦、替代選項與最近紀錄
func (h *Handler) HandleToday(c *gin.Context) {
	ctx := c.Request.Context()
	profile, ok := h.profile(c)
	if !ok {
		return
	}

	pick, err := h.engine.Selection.SelectDaily(ctx, profile)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var exclude uint
	if pick != nil && pick.Dish != nil {
		exclude = pick.Dish.ID
	}
	alts, err := h.engine.Selection.AltPicks(ctx, profile, exclude, h.engine.AltLimit())
	if err != nil {
		h.respondError(c, err)
		return
	}

	recent, err := h.engine.Library.History(ctx, profile.UserID, recentLimit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if recent == nil {
		recent = []models.DayPlanEntry{}
	}

	c.JSON(http.StatusOK, TodayResponse{
		Pick:         pick,
		Alternatives: candidateViews(alts),
		Recent:       recent,
		CooldownDays: profile.CooldownDays,
	})
}

// HandleCook 把菜色記為今天已烹調
func (h *Handler) HandleCook(c *gin.Context) {
	var req DishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	plan, err := h.engine.Library.MarkCooked(c.Request.Context(), middleware.UserID(c), req.DishID, false)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// HandleSwap 排除指定菜色後重新給替代選項
func (h *Handler) HandleSwap(c *gin.Context) {
	var req DishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	profile, ok := h.profile(c)
	if !ok {
		return
	}

	alts, err := h.engine.Selection.AltPicks(c.Request.Context(), profile, req.DishID, h.engine.AltLimit())
	if err != nil {
		h.respondError(c, err)
		return
	}

	common.LogDebug("換一批替代選項",
		zap.Uint("user_id", profile.UserID),
		zap.Uint("exclude", req.DishID),
		zap.Int("count", len(alts)),
	)
	c.JSON(http.StatusOK, common.NewListResponse(candidateViews(alts)))
}
