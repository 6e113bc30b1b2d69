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

type VehicleHandler struct {
	*BaseHandler
	vehicleService services.VehicleService
}

func NewVehicleHandler(base *BaseHandler, vehicleService services.VehicleService) *VehicleHandler {
	return &VehicleHandler{BaseHandler: base, vehicleService: vehicleService}
}

func (h *VehicleHandler) RegisterRoutes(r *gin.RouterGroup) {
	vehicles := r.Group("/vehicles")
	vehicles.Use(middleware.AuthMiddleware())
	{
		vehicles.GET("", h.List)
		vehicles.GET("/:id", h.Get)
		vehicles.POST("", middleware.RequireRoles(models.UserRoleAdmin, models.UserRoleManager), h.Create)
		vehicles.PUT("/:id/status", h.UpdateStatus)
		vehicles.DELETE("/:id", middleware.RequireRoles(models.UserRoleAdmin), h.Delete)
	}
}

func (h *VehicleHandler) Create(c *gin.Context) {
	var req dto.CreateVehicleRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	vehicle, err := h.vehicleService.Create(req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vehicle)
}

func (h *VehicleHandler) List(c *gin.Context) {
	var criteria repositories.VehicleCriteria
	if !h.BindAndValidateQuery(c, &criteria) {
		return
	}

	resp, err := h.vehicleService.List(criteria)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VehicleHandler) Get(c *gin.Context) {
	vehicle, err := h.vehicleService.Get(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

func (h *VehicleHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateVehicleStatusRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	vehicle, err := h.vehicleService.UpdateStatus(c.Param("id"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

func (h *VehicleHandler) Delete(c *gin.Context) {
	if err := h.vehicleService.Delete(c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
