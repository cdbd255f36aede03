package meal

import (
	"errors"

	"mealmind/internal/api/middleware"
	mealService "mealmind/internal/core/meal"
	"mealmind/internal/models"
	"mealmind/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// recentLimit 今日頁面顯示的最近紀錄數
const recentLimit = 6

// Handler 菜色推薦相關 API
type Handler struct {
	engine *mealService.Engine
	debug  bool
}

// NewHandler 創建處理器
func NewHandler(engine *mealService.Engine, debug bool) *Handler {
	return &Handler{engine: engine, debug: debug}
}

// RegisterRoutes 註冊 /api/v1 底下的路由
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	today := rg.Group("/today")
	{
		today.GET("", h.HandleToday)
		today.POST("/cook", h.HandleCook)
		today.POST("/swap", h.HandleSwap)
	}

	override := rg.Group("/override")
	{
		override.POST("/search", h.HandleOverrideSearch)
		override.POST("/confirm", h.HandleOverrideConfirm)
	}

	library := rg.Group("/library")
	{
		library.GET("", h.HandleListLibrary)
		library.POST("", h.HandleAddDish)
		library.DELETE("/:dish_id", h.HandleRemoveDish)
	}

	rg.GET("/history", h.HandleHistory)

	discover := rg.Group("/discover")
	{
		discover.GET("", h.HandleDiscover)
		discover.POST("/materialize", h.HandleMaterializeWeek)
		discover.POST("/:id/materialize", h.HandleMaterialize)
	}

	settings := rg.Group("/settings")
	{
		settings.GET("", h.HandleGetSettings)
		settings.PUT("", h.HandleSaveSettings)
	}
}

// profile 讀取本次請求的使用者設定，失敗時已寫出錯誤響應
func (h *Handler) profile(c *gin.Context) (*mealService.Profile, bool) {
	profile, err := h.engine.Preferences.Profile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	return profile, true
}

// respondError 把引擎錯誤轉成 API 錯誤
func (h *Handler) respondError(c *gin.Context, err error) {
	ce := mapError(err)
	fields := []zap.Field{
		zap.Error(err),
		zap.String("code", ce.Code),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestid.Get(c)),
	}
	if ce.Status >= 500 {
		common.LogError("處理請求失敗", fields...)
	} else {
		common.LogDebug("請求被拒絕", fields...)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(ce.Status, ce.ToResponse(h.debug))
}

func mapError(err error) *common.CustomError {
	var ce *common.CustomError
	switch {
	case errors.As(err, &ce):
		return ce
	case errors.Is(err, mealService.ErrDishNotFound):
		return common.ErrDishNotFound.Wrap(err)
	case errors.Is(err, mealService.ErrFeedItemNotFound):
		return common.ErrFeedItemNotFound.Wrap(err)
	case errors.Is(err, mealService.ErrEmptyDishName), common.IsValidationError(err):
		return common.ErrInvalidRequest.Wrap(err)
	default:
		return common.ErrInternalError.Wrap(err)
	}
}

// badRequest 請求格式錯誤
func (h *Handler) badRequest(c *gin.Context, err error) {
	h.respondError(c, common.ErrInvalidRequest.Wrap(err))
}

// CandidateView 本地菜色與外部食譜共用的輸出格式
type CandidateView struct {
	Source     string `json:"source"`
	Name       string `json:"name"`
	Score      int    `json:"score"`
	TimeMin    int    `json:"time_min"`
	Cuisine    string `json:"cuisine"`
	Difficulty string `json:"difficulty"`
	Veg        bool   `json:"veg"`
	SpiceLevel string `json:"spice_level,omitempty"`
	ImageURL   string `json:"image_url"`
	DishID     uint   `json:"dish_id,omitempty"`
	FeedItemID uint   `json:"feed_item_id,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
	SourceURL  string `json:"source_url,omitempty"`
}

func candidateView(cand mealService.Candidate) CandidateView {
	view := CandidateView{
		Source:  cand.Source(),
		Name:    cand.Name(),
		Score:   cand.Score(),
		TimeMin: cand.CookTime(),
	}
	switch v := cand.(type) {
	case mealService.LocalCandidate:
		view.DishID = v.Dish.ID
		view.Cuisine = v.Dish.Cuisine
		view.Difficulty = v.Dish.Difficulty
		view.Veg = v.Dish.Veg
		view.SpiceLevel = v.Dish.SpiceLevel
		view.ImageURL = imageOrPlaceholder(v.Dish.ImageURL)
	case mealService.ExternalCandidate:
		view.FeedItemID = v.FeedItemID
		view.ExternalID = v.Recipe.ExternalID
		view.Cuisine = v.Recipe.Cuisine
		view.Difficulty = v.Recipe.Difficulty
		view.Veg = v.Recipe.Veg
		view.SpiceLevel = v.Recipe.SpiceLevel
		view.ImageURL = imageOrPlaceholder(v.Recipe.ImageURL)
		view.SourceURL = v.Recipe.SourceURL
	}
	return view
}

func candidateViews(cands []mealService.Candidate) []CandidateView {
	views := make([]CandidateView, 0, len(cands))
	for _, cand := range cands {
		views = append(views, candidateView(cand))
	}
	return views
}

func imageOrPlaceholder(url string) string {
	if url == "" {
		return models.PlaceholderImage
	}
	return url
}
