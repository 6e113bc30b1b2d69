package services

import (
	"dealercrm_backend/internal/models"
	"dealercrm_backend/internal/repositories"
	"dealercrm_backend/internal/services/dto"
	"dealercrm_backend/pkg/apperrors"
)

// PushSubscriptionService registers browser push endpoints. Registration is
// an upsert keyed on the endpoint so a refreshed service worker replaces its
// old keys instead of stacking duplicates.
type PushSubscriptionService interface {
	Register(userID string, req dto.RegisterPushSubscriptionRequest) (*models.PushSubscription, error)
	List(userID string) ([]models.PushSubscription, error)
	Remove(userID, endpoint string) error
}

type pushSubscriptionService struct {
	pushRepo repositories.PushSubscriptionRepository
}

func NewPushSubscriptionService(pushRepo repositories.PushSubscriptionRepository) PushSubscriptionService {
	return &pushSubscriptionService{pushRepo: pushRepo}
}

func (s *pushSubscriptionService) Register(userID string, req dto.RegisterPushSubscriptionRequest) (*models.PushSubscription, error) {
	sub := &models.PushSubscription{
		UserID:     userID,
		Endpoint:   req.Endpoint,
		P256dh:     req.P256dh,
		Auth:       req.Auth,
		DeviceName: req.DeviceName,
	}
	if err := s.pushRepo.Upsert(sub); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return sub, nil
}

func (s *pushSubscriptionService) List(userID string) ([]models.PushSubscription, error) {
	subs, err := s.pushRepo.FindByUser(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return subs, nil
}

func (s *pushSubscriptionService) Remove(userID, endpoint string) error {
	if err := s.pushRepo.DeleteByEndpoint(userID, endpoint); err != nil {
		if err == repositories.ErrSubscriptionNotFound {
			return apperrors.NewNotFoundError("push", "subscription not found")
		}
		return apperrors.InternalError(err)
	}
	return nil
}
