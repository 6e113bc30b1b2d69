package handlers

import (
	"net/http"

	"dealercrm_backend/internal/middleware"
	"dealercrm_backend/internal/models"
	"dealercrm_backend/internal/repositories"
	"dealercrm_backend/internal/services"
	"dealercrm_backend/internal/services/dto"
	"dealercrm_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	*BaseHandler
	notificationService services.NotificationService
}

func NewNotificationHandler(base *BaseHandler, notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{BaseHandler: base, notificationService: notificationService}
}

func (h *NotificationHandler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware())
	{
		notifications.GET("", h.List)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.PUT("/:id/read", h.MarkRead)
		notifications.PUT("/read-all", h.MarkAllRead)
		notifications.DELETE("/:id", h.Delete)
		notifications.DELETE("", h.DeleteAll)
	}

	admin := r.Group("/admin/notifications")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.POST("", h.Send)
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var criteria repositories.NotificationCriteria
	if !h.BindAndValidateQuery(c, &criteria) {
		return
	}

	resp, err := h.notificationService.List(userID, criteria)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	count, err := h.notificationService.UnreadCount(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UnreadCountResponse{Count: count})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	err := h.notificationService.MarkRead(userID, c.Param("id"), h.OriginSessionID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	err := h.notificationService.MarkAllRead(userID, h.OriginSessionID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	err := h.notificationService.Delete(userID, c.Param("id"), h.OriginSessionID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) DeleteAll(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	err := h.notificationService.DeleteAll(userID, h.OriginSessionID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Send lets an admin deliver a notification to one user or a list of users.
func (h *NotificationHandler) Send(c *gin.Context) {
	var req dto.CreateNotificationInput
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	if len(req.UserIDs) > 0 {
		created := h.notificationService.CreateAndDeliverMany(req.UserIDs, req)
		c.JSON(http.StatusCreated, gin.H{"created": len(created)})
		return
	}

	if req.UserID == "" {
		apperrors.HandleError(c, apperrors.NewBadRequestError("user_id or user_ids is required"))
		return
	}
	record, err := h.notificationService.CreateAndDeliver(req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}
