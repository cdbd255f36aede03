package meal

import (
	"net/http"
	"time"

	"mealmind/internal/api/middleware"
	"mealmind/internal/models"
	"mealmind/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DiscoverResponse 本週探索清單
type DiscoverResponse struct {
	WeekStart time.Time                 `json:"week_start"`
	Items     []models.DiscoverFeedItem `json:"items"`
}

// MaterializeResponse 轉換後的菜色
type MaterializeResponse struct {
	DishIDs []uint `json:"dish_ids"`
}

// HandleDiscover 確保本週清單後回傳
func (h *Handler) HandleDiscover(c *gin.Context) {
	profile, ok := h.profile(c)
	if !ok {
		return
	}

	items, err := h.engine.Discovery.Feed(c.Request.Context(), profile)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if items == nil {
		items = []models.DiscoverFeedItem{}
	}
	c.JSON(http.StatusOK, DiscoverResponse{
		WeekStart: h.engine.Discovery.CurrentWeek(),
		Items:     items,
	})
}

// HandleMaterialize 把單一外部探索項目加入菜單庫
func (h *Handler) HandleMaterialize(c *gin.Context) {
	itemID, err := common.ParseID(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	dishID, err := h.engine.Discovery.Materialize(c.Request.Context(), middleware.UserID(c), itemID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MaterializeResponse{DishIDs: []uint{dishID}})
}

// HandleMaterializeWeek 本週所有外部項目一次加入菜單庫
func (h *Handler) HandleMaterializeWeek(c *gin.Context) {
	userID := middleware.UserID(c)
	ids, err := h.engine.Discovery.MaterializeWeek(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	common.LogInfo("本週探索項目已加入菜單庫",
		zap.Uint("user_id", userID),
		zap.Int("count", len(ids)),
	)
	if ids == nil {
		ids = []uint{}
	}
	c.JSON(http.StatusOK, MaterializeResponse{DishIDs: ids})
}
