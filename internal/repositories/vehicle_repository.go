package repositories

import (
	"errors"

	"dealercrm_backend/internal/models"

	"gorm.io/gorm"
)

var ErrVehicleNotFound = errors.New("vehicle not found")

type VehicleCriteria struct {
	Status   string `form:"status"`
	Make     string `form:"make"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
}

type VehicleRepository interface {
	Create(vehicle *models.Vehicle) error
	FindByID(id string) (*models.Vehicle, error)
	Find(criteria VehicleCriteria) ([]models.Vehicle, int64, error)
	Update(vehicle *models.Vehicle) error
	UpdateStatus(id string, status models.VehicleStatus) (*models.Vehicle, error)
	Delete(id string) error

	// FindInterestedAgents returns agents assigned to leads interested in
	// the vehicle; used to fan out status-change notifications.
	FindInterestedAgents(vehicleID string) ([]string, error)
}

type vehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) Create(vehicle *models.Vehicle) error {
	return r.db.Create(vehicle).Error
}

func (r *vehicleRepository) FindByID(id string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.First(&vehicle, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

func (r *vehicleRepository) Find(criteria VehicleCriteria) ([]models.Vehicle, int64, error) {
	query := r.db.Model(&models.Vehicle{})

	if criteria.Status != "" {
		query = query.Where("status = ?", criteria.Status)
	}
	if criteria.Make != "" {
		query = query.Where("make = ?", criteria.Make)
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

	var vehicles []models.Vehicle
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&vehicles).Error
	return vehicles, total, err
}

func (r *vehicleRepository) Update(vehicle *models.Vehicle) error {
	return r.db.Save(vehicle).Error
}

func (r *vehicleRepository) UpdateStatus(id string, status models.VehicleStatus) (*models.Vehicle, error) {
	vehicle, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	if err := r.db.Model(vehicle).Update("status", status).Error; err != nil {
		return nil, err
	}
	vehicle.Status = status
	return vehicle, nil
}

func (r *vehicleRepository) Delete(id string) error {
	result := r.db.Delete(&models.Vehicle{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVehicleNotFound
	}
	return nil
}

func (r *vehicleRepository) FindInterestedAgents(vehicleID string) ([]string, error) {
	var agentIDs []string
	err := r.db.Model(&models.Lead{}).
		Distinct("assigned_to").
		Where("vehicle_id = ? AND assigned_to IS NOT NULL", vehicleID).
		Pluck("assigned_to", &agentIDs).Error
	return agentIDs, err
}
