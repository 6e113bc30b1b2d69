package repositories

import (
	"errors"

	"dealercrm_backend/internal/models"

	"gorm.io/gorm"
)

var ErrTemplateNotFound = errors.New("message template not found")

type TemplateRepository interface {
	Create(t *models.MessageTemplate) error
	FindByName(name string) (*models.MessageTemplate, error)
	FindAll() ([]models.MessageTemplate, error)
	Update(t *models.MessageTemplate) error
	Delete(id string) error
}

type templateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(t *models.MessageTemplate) error {
	return r.db.Create(t).Error
}

func (r *templateRepository) FindByName(name string) (*models.MessageTemplate, error) {
	var t models.MessageTemplate
	if err := r.db.First(&t, "name = ? AND is_active = true", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *templateRepository) FindAll() ([]models.MessageTemplate, error) {
	var templates []models.MessageTemplate
	err := r.db.Order("name ASC").Find(&templates).Error
	return templates, err
}

func (r *templateRepository) Update(t *models.MessageTemplate) error {
	return r.db.Save(t).Error
}

func (r *templateRepository) Delete(id string) error {
	result := r.db.Delete(&models.MessageTemplate{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTemplateNotFound
	}
	return nil
}
