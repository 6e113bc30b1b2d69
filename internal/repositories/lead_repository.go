package repositories

import (
	"errors"
	"time"

	"dealercrm_backend/internal/models"

	"gorm.io/gorm"
)

var ErrLeadNotFound = errors.New("lead not found")

type LeadCriteria struct {
	Status     string `form:"status"`
	AssignedTo string `form:"assigned_to"`
	Page       int    `form:"page" binding:"min=0"`
	PageSize   int    `form:"page_size" binding:"min=0,max=100"`
}

type LeadRepository interface {
	Create(lead *models.Lead) error
	FindByID(id string) (*models.Lead, error)
	Find(criteria LeadCriteria) ([]models.Lead, int64, error)
	Update(lead *models.Lead) error
	Assign(id, agentID string) (*models.Lead, error)
	Delete(id string) error
}

type leadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepository{db: db}
}

func (r *leadRepository) Create(lead *models.Lead) error {
	return r.db.Create(lead).Error
}

func (r *leadRepository) FindByID(id string) (*models.Lead, error) {
	var lead models.Lead
	if err := r.db.First(&lead, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepository) Find(criteria LeadCriteria) ([]models.Lead, int64, error) {
	query := r.db.Model(&models.Lead{})

	if criteria.Status != "" {
		query = query.Where("status = ?", criteria.Status)
	}
	if criteria.AssignedTo != "" {
		query = query.Where("assigned_to = ?", criteria.AssignedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := criteria.Page
	if page < 1 {
		page = 1
	}
	pageSize := criteria.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var leads []models.Lead
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&leads).Error
	return leads, total, err
}

func (r *leadRepository) Update(lead *models.Lead) error {
	return r.db.Save(lead).Error
}

func (r *leadRepository) Assign(id, agentID string) (*models.Lead, error) {
	lead, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	lead.AssignedTo = &agentID
	lead.AssignedAt = &now
	if err := r.db.Model(lead).
		Select("assigned_to", "assigned_at").
		Updates(map[string]interface{}{"assigned_to": agentID, "assigned_at": now}).Error; err != nil {
		return nil, err
	}
	return lead, nil
}

func (r *leadRepository) Delete(id string) error {
	result := r.db.Delete(&models.Lead{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLeadNotFound
	}
	return nil
}
