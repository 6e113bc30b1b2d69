package handlers

import (
	"net/http"

	"dealercrm_backend/internal/middleware"
	"dealercrm_backend/internal/models"
	"dealercrm_backend/internal/repositories"
	"dealercrm_backend/internal/services"
	"dealercrm_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type LeadHandler struct {
	*BaseHandler
	leadService services.LeadService
}

func NewLeadHandler(base *BaseHandler, leadService services.LeadService) *LeadHandler {
	return &LeadHandler{BaseHandler: base, leadService: leadService}
}

func (h *LeadHandler) RegisterRoutes(r *gin.RouterGroup) {
	leads := r.Group("/leads")
	leads.Use(middleware.AuthMiddleware())
	{
		leads.POST("", h.Create)
		leads.GET("", h.List)
		leads.GET("/:id", h.Get)
		leads.PATCH("/:id", h.Update)
		leads.DELETE("/:id", middleware.RequireRoles(models.UserRoleAdmin, models.UserRoleManager), h.Delete)
		leads.POST("/:id/assign", middleware.RequireRoles(models.UserRoleAdmin, models.UserRoleManager), h.Assign)
	}
}

func (h *LeadHandler) Create(c *gin.Context) {
	var req dto.CreateLeadRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	lead, err := h.leadService.Create(req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lead)
}

func (h *LeadHandler) List(c *gin.Context) {
	var criteria repositories.LeadCriteria
	if !h.BindAndValidateQuery(c, &criteria) {
		return
	}

	resp, err := h.leadService.List(criteria)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LeadHandler) Get(c *gin.Context) {
	lead, err := h.leadService.Get(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (h *LeadHandler) Update(c *gin.Context) {
	var req dto.UpdateLeadRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	lead, err := h.leadService.Update(c.Param("id"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (h *LeadHandler) Assign(c *gin.Context) {
	var req dto.AssignLeadRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	lead, err := h.leadService.Assign(c.Param("id"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (h *LeadHandler) Delete(c *gin.Context) {
	if err := h.leadService.Delete(c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
