package handlers

import (
	"net/http"

	"dealercrm_backend/internal/middleware"
	"dealercrm_backend/internal/services"
	"dealercrm_backend/internal/services/dto"
	"dealercrm_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type PushHandler struct {
	*BaseHandler
	pushService services.PushSubscriptionService
}

func NewPushHandler(base *BaseHandler, pushService services.PushSubscriptionService) *PushHandler {
	return &PushHandler{BaseHandler: base, pushService: pushService}
}

func (h *PushHandler) RegisterRoutes(r *gin.RouterGroup) {
	push := r.Group("/push/subscriptions")
	push.Use(middleware.AuthMiddleware())
	{
		push.POST("", h.Register)
		push.GET("", h.List)
		push.DELETE("", h.Remove)
	}
}

func (h *PushHandler) Register(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.RegisterPushSubscriptionRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	sub, err := h.pushService.Register(userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *PushHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	subs, err := h.pushService.List(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

// Remove deletes the subscription identified by the endpoint query param.
func (h *PushHandler) Remove(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	endpoint := c.Query("endpoint")
	if endpoint == "" {
		apperrors.HandleError(c, apperrors.NewBadRequestError("endpoint query parameter is required"))
		return
	}

	if err := h.pushService.Remove(userID, endpoint); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
