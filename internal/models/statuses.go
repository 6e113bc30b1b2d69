package models

type UserRole string
type UserStatus string
type LeadStatus string
type LeadTemperature string
type VehicleStatus string
type AppointmentStatus string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleManager UserRole = "manager"
	UserRoleAgent   UserRole = "agent"

	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"

	LeadStatusNew         LeadStatus = "new"
	LeadStatusContacted   LeadStatus = "contacted"
	LeadStatusQualified   LeadStatus = "qualified"
	LeadStatusNegotiation LeadStatus = "negotiation"
	LeadStatusWon         LeadStatus = "won"
	LeadStatusLost        LeadStatus = "lost"

	LeadTemperatureCold LeadTemperature = "cold"
	LeadTemperatureWarm LeadTemperature = "warm"
	LeadTemperatureHot  LeadTemperature = "hot"

	VehicleStatusAvailable VehicleStatus = "available"
	VehicleStatusOnHold    VehicleStatus = "on_hold"
	VehicleStatusSold      VehicleStatus = "sold"

	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)
