package dto

import "dealercrm_backend/internal/models"

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"max=30"`
	Role     string `json:"role" validate:"required,oneof=admin manager agent"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}
