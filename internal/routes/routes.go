package routes

import (
	"net/http"

	"dealercrm_backend/internal/handlers"
	"dealercrm_backend/ws"

	"github.com/gin-gonic/gin"
)

// AppHandlers groups every HTTP handler for route registration.
type AppHandlers struct {
	Auth          *handlers.AuthHandler
	Notification  *handlers.NotificationHandler
	Preference    *handlers.PreferenceHandler
	Push          *handlers.PushHandler
	Lead          *handlers.LeadHandler
	Vehicle       *handlers.VehicleHandler
	Appointment   *handlers.AppointmentHandler
	Communication *handlers.CommunicationHandler
}

func RegisterRoutes(router *gin.Engine, h *AppHandlers, wsHandler *ws.Handler) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		h.Auth.RegisterRoutes(api)
		h.Notification.RegisterRoutes(api)
		h.Preference.RegisterRoutes(api)
		h.Push.RegisterRoutes(api)
		h.Lead.RegisterRoutes(api)
		h.Vehicle.RegisterRoutes(api)
		h.Appointment.RegisterRoutes(api)
		h.Communication.RegisterRoutes(api)
	}

	// The websocket endpoint authenticates via query token inside Serve;
	// browsers cannot set an Authorization header on the dial.
	router.GET("/ws", wsHandler.Serve)
}
