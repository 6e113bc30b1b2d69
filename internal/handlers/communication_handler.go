package handlers

import (
	"net/http"

	"dealercrm_backend/internal/middleware"
	"dealercrm_backend/internal/models"
	"dealercrm_backend/internal/services"
	"dealercrm_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type CommunicationHandler struct {
	*BaseHandler
	communicationService services.CommunicationService
}

func NewCommunicationHandler(base *BaseHandler, communicationService services.CommunicationService) *CommunicationHandler {
	return &CommunicationHandler{BaseHandler: base, communicationService: communicationService}
}

func (h *CommunicationHandler) RegisterRoutes(r *gin.RouterGroup) {
	communications := r.Group("/communications")
	communications.Use(middleware.AuthMiddleware())
	{
		communications.POST("/outreach", h.SendOutreach)
	}

	templates := r.Group("/communications/templates")
	templates.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin, models.UserRoleManager))
	{
		templates.POST("", h.CreateTemplate)
		templates.GET("", h.ListTemplates)
		templates.DELETE("/:id", h.DeleteTemplate)
	}
}

func (h *CommunicationHandler) SendOutreach(c *gin.Context) {
	var req dto.SendOutreachRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	if err := h.communicationService.SendOutreach(req); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (h *CommunicationHandler) CreateTemplate(c *gin.Context) {
	var req dto.CreateTemplateRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	tpl, err := h.communicationService.CreateTemplate(req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

func (h *CommunicationHandler) ListTemplates(c *gin.Context) {
	templates, err := h.communicationService.ListTemplates()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *CommunicationHandler) DeleteTemplate(c *gin.Context) {
	if err := h.communicationService.DeleteTemplate(c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
