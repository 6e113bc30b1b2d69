package handlers

import (
	"net/http"

	"dealercrm_backend/internal/middleware"
	"dealercrm_backend/internal/prefs"
	"dealercrm_backend/internal/services"
	"dealercrm_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type PreferenceHandler struct {
	*BaseHandler
	preferenceService services.PreferenceService
}

func NewPreferenceHandler(base *BaseHandler, preferenceService services.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{BaseHandler: base, preferenceService: preferenceService}
}

func (h *PreferenceHandler) RegisterRoutes(r *gin.RouterGroup) {
	preferences := r.Group("/notifications/preferences")
	preferences.Use(middleware.AuthMiddleware())
	{
		preferences.GET("", h.Get)
		preferences.PATCH("", h.Update)
		preferences.POST("/reset", h.Reset)
	}
}

func (h *PreferenceHandler) Get(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	doc, err := h.preferenceService.Get(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Update applies a partial patch; absent fields keep their stored values.
func (h *PreferenceHandler) Update(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var patch prefs.DocumentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("invalid preference patch: "+err.Error()))
		return
	}

	doc, err := h.preferenceService.Update(userID, patch, h.OriginSessionID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *PreferenceHandler) Reset(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	doc, err := h.preferenceService.Reset(userID, h.OriginSessionID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}
