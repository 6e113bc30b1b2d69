package dto

import "dealercrm_backend/internal/models"

// CreateNotificationInput is the dispatcher's entry point, used by domain
// services and the admin broadcast route.
type CreateNotificationInput struct {
	UserID   string                `json:"user_id" validate:"omitempty,uuid"`
	UserIDs  []string              `json:"user_ids" validate:"omitempty,dive,uuid"`
	Type     string                `json:"type" validate:"required,oneof=lead appointment communication vehicle system other"`
	Title    string                `json:"title" validate:"required,max=200"`
	Message  string                `json:"message" validate:"max=2000"`
	Priority string                `json:"priority" validate:"omitempty,oneof=low normal high"`
	Link     string                `json:"link" validate:"omitempty,max=500"`
	Related  *models.RelatedEntity `json:"related_entity"`
}

type NotificationListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	UnreadCount   int64                 `json:"unread_count"`
	Page          int                   `json:"page"`
	PageSize      int                   `json:"page_size"`
}

type UnreadCountResponse struct {
	Count int64 `json:"unread_count"`
}

type RegisterPushSubscriptionRequest struct {
	Endpoint   string `json:"endpoint" validate:"required,url"`
	P256dh     string `json:"p256dh" validate:"required"`
	Auth       string `json:"auth" validate:"required"`
	DeviceName string `json:"device_name" validate:"max=100"`
}
