package handlers

import (
	"net/http"

	"dealercrm_backend/internal/middleware"
	"dealercrm_backend/internal/services"
	"dealercrm_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AppointmentHandler struct {
	*BaseHandler
	appointmentService services.AppointmentService
}

func NewAppointmentHandler(base *BaseHandler, appointmentService services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{BaseHandler: base, appointmentService: appointmentService}
}

func (h *AppointmentHandler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	appointments.Use(middleware.AuthMiddleware())
	{
		appointments.POST("", h.Create)
		appointments.GET("", h.ListMine)
		appointments.GET("/:id", h.Get)
		appointments.PATCH("/:id", h.Update)
		appointments.DELETE("/:id", h.Delete)
	}
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req dto.CreateAppointmentRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	a, err := h.appointmentService.Create(req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// ListMine returns the caller's appointments inside the from/to window.
func (h *AppointmentHandler) ListMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	from, to, err := ParseQueryTimeRange(c)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	appointments, err := h.appointmentService.ListForAgent(userID, from, to)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	a, err := h.appointmentService.Get(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	var req dto.UpdateAppointmentRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	a, err := h.appointmentService.Update(c.Param("id"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	if err := h.appointmentService.Delete(c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
