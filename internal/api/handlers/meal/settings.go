package meal

import (
	"net/http"

	"mealmind/internal/api/middleware"
	"mealmind/internal/models"

	"github.com/gin-gonic/gin"
)

// HandleGetSettings 讀取偏好，沒有時建立預設值
func (h *Handler) HandleGetSettings(c *gin.Context) {
	prefs, err := h.engine.Preferences.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// HandleSaveSettings 整筆覆寫偏好，未帶的欄位回到零值
func (h *Handler) HandleSaveSettings(c *gin.Context) {
	var prefs models.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		h.badRequest(c, err)
		return
	}
	prefs.UserID = middleware.UserID(c)

	if err := h.engine.Preferences.Save(c.Request.Context(), &prefs); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, &prefs)
}
