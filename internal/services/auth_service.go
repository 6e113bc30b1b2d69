package services

import (
	"dealercrm_backend/internal/auth"
	"dealercrm_backend/internal/models"
	"dealercrm_backend/internal/repositories"
	"dealercrm_backend/internal/services/dto"
	"dealercrm_backend/pkg/apperrors"
)

type AuthService interface {
	Register(req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(req dto.LoginRequest) (*dto.AuthResponse, error)
	GetProfile(userID string) (*models.User, error)
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func (s *authService) Register(req dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Phone:        req.Phone,
		Role:         models.UserRole(req.Role),
	}
	if err := s.userRepo.Create(user); err != nil {
		if err == repositories.ErrUserAlreadyExists {
			return nil, apperrors.NewConflictError("auth", "a user with this email already exists")
		}
		return nil, apperrors.InternalError(err)
	}

	token, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.AuthResponse{Token: token, User: user}, nil
}

func (s *authService) Login(req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		// Same response for unknown email and bad password.
		return nil, apperrors.NewUnauthorizedError("invalid email or password")
	}
	if user.Status == models.UserStatusSuspended {
		return nil, apperrors.NewForbiddenError("account is suspended")
	}
	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.NewUnauthorizedError("invalid email or password")
	}

	token, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.AuthResponse{Token: token, User: user}, nil
}

func (s *authService) GetProfile(userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperrors.NewNotFoundError("auth", "user not found")
	}
	return user, nil
}
