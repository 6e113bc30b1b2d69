package repositories

import (
	"errors"

	"dealercrm_backend/internal/models"
	"dealercrm_backend/internal/prefs"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PreferenceRepository stores one preference document per user.
// FindOrCreate resolves a missing row to the fail-open defaults.
type PreferenceRepository interface {
	FindOrCreate(userID string) (*models.NotificationPreference, error)
	Save(p *models.NotificationPreference) error
	DeleteForUser(userID string) error
}

type preferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) FindOrCreate(userID string) (*models.NotificationPreference, error) {
	var p models.NotificationPreference
	err := r.db.First(&p, "user_id = ?", userID).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	p = models.NotificationPreference{
		UserID: userID,
		Doc:    datatypes.NewJSONType(prefs.Defaults()),
	}
	if err := r.db.Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *preferenceRepository) Save(p *models.NotificationPreference) error {
	return r.db.Save(p).Error
}

func (r *preferenceRepository) DeleteForUser(userID string) error {
	return r.db.Delete(&models.NotificationPreference{}, "user_id = ?", userID).Error
}
