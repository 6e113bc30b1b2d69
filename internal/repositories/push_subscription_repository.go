package repositories

import (
	"errors"

	"dealercrm_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrSubscriptionNotFound = errors.New("push subscription not found")

type PushSubscriptionRepository interface {
	Upsert(sub *models.PushSubscription) error
	FindByUser(userID string) ([]models.PushSubscription, error)
	DeleteByEndpoint(userID, endpoint string) error
	PurgeEndpoint(endpoint string) error
	DeleteForUser(userID string) error
}

type pushSubscriptionRepository struct {
	db *gorm.DB
}

func NewPushSubscriptionRepository(db *gorm.DB) PushSubscriptionRepository {
	return &pushSubscriptionRepository{db: db}
}

// Upsert keys on the endpoint so re-registering a device refreshes its keys
// instead of duplicating the row.
func (r *pushSubscriptionRepository) Upsert(sub *models.PushSubscription) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth", "device_name", "updated_at"}),
	}).Create(sub).Error
}

func (r *pushSubscriptionRepository) FindByUser(userID string) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	err := r.db.Find(&subs, "user_id = ?", userID).Error
	return subs, err
}

// DeleteByEndpoint is scoped to the owner so one user cannot unregister
// another user's device by knowing its endpoint URL.
func (r *pushSubscriptionRepository) DeleteByEndpoint(userID, endpoint string) error {
	result := r.db.Delete(&models.PushSubscription{}, "endpoint = ? AND user_id = ?", endpoint, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// PurgeEndpoint removes an endpoint regardless of owner. Used when the push
// provider reports the subscription gone, which is authoritative on its own.
func (r *pushSubscriptionRepository) PurgeEndpoint(endpoint string) error {
	return r.db.Delete(&models.PushSubscription{}, "endpoint = ?", endpoint).Error
}

func (r *pushSubscriptionRepository) DeleteForUser(userID string) error {
	return r.db.Delete(&models.PushSubscription{}, "user_id = ?", userID).Error
}
