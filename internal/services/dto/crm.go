package dto

import (
	"time"

	"dealercrm_backend/internal/models"
)

// --- Leads ---

type CreateLeadRequest struct {
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"max=30"`
	Source      string `json:"source" validate:"max=50"`
	Temperature string `json:"temperature" validate:"omitempty,oneof=cold warm hot"`
	Notes       string `json:"notes"`
	VehicleID   string `json:"vehicle_id" validate:"omitempty,uuid"`
}

type UpdateLeadRequest struct {
	Status      *string `json:"status" validate:"omitempty,oneof=new contacted qualified negotiation won lost"`
	Temperature *string `json:"temperature" validate:"omitempty,oneof=cold warm hot"`
	Notes       *string `json:"notes"`
	VehicleID   *string `json:"vehicle_id" validate:"omitempty,uuid"`
}

type AssignLeadRequest struct {
	AgentID string `json:"agent_id" validate:"required,uuid"`
}

type LeadListResponse struct {
	Leads    []models.Lead `json:"leads"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// --- Vehicles ---

type CreateVehicleRequest struct {
	VIN       string  `json:"vin" validate:"required,len=17"`
	Make      string  `json:"make" validate:"required,max=50"`
	Model     string  `json:"model" validate:"required,max=50"`
	Year      int     `json:"year" validate:"required,gte=1900,lte=2100"`
	Trim      string  `json:"trim" validate:"max=50"`
	Color     string  `json:"color" validate:"max=30"`
	Mileage   int     `json:"mileage" validate:"gte=0"`
	Price     float64 `json:"price" validate:"required,gt=0"`
	StockCode string  `json:"stock_code" validate:"max=30"`
}

type UpdateVehicleStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available on_hold sold"`
}

type VehicleListResponse struct {
	Vehicles []models.Vehicle `json:"vehicles"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// --- Appointments ---

type CreateAppointmentRequest struct {
	LeadID      string    `json:"lead_id" validate:"required,uuid"`
	AgentID     string    `json:"agent_id" validate:"required,uuid"`
	VehicleID   string    `json:"vehicle_id" validate:"omitempty,uuid"`
	Kind        string    `json:"kind" validate:"required,oneof=test_drive consultation delivery service"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Notes       string    `json:"notes"`
}

type UpdateAppointmentRequest struct {
	Status      *string    `json:"status" validate:"omitempty,oneof=scheduled completed cancelled no_show"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Notes       *string    `json:"notes"`
}
