package services

import (
	"dealercrm_backend/internal/logger"
	"dealercrm_backend/internal/models"
	"dealercrm_backend/internal/repositories"
	"dealercrm_backend/internal/services/dto"
	"dealercrm_backend/pkg/apperrors"
	"dealercrm_backend/ws"
)

type VehicleService interface {
	Create(req dto.CreateVehicleRequest) (*models.Vehicle, error)
	Get(id string) (*models.Vehicle, error)
	List(criteria repositories.VehicleCriteria) (*dto.VehicleListResponse, error)
	UpdateStatus(id string, req dto.UpdateVehicleStatusRequest) (*models.Vehicle, error)
	Delete(id string) error
}

type vehicleService struct {
	vehicleRepo   repositories.VehicleRepository
	notifications NotificationService
	hub           Broadcaster
}

func NewVehicleService(
	vehicleRepo repositories.VehicleRepository,
	notifications NotificationService,
	hub Broadcaster,
) VehicleService {
	return &vehicleService{
		vehicleRepo:   vehicleRepo,
		notifications: notifications,
		hub:           hub,
	}
}

func (s *vehicleService) Create(req dto.CreateVehicleRequest) (*models.Vehicle, error) {
	vehicle := &models.Vehicle{
		VIN:       req.VIN,
		Make:      req.Make,
		Model:     req.Model,
		Year:      req.Year,
		Trim:      req.Trim,
		Color:     req.Color,
		Mileage:   req.Mileage,
		Price:     req.Price,
		Status:    models.VehicleStatusAvailable,
		StockCode: req.StockCode,
	}
	if err := s.vehicleRepo.Create(vehicle); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return vehicle, nil
}

func (s *vehicleService) Get(id string) (*models.Vehicle, error) {
	vehicle, err := s.vehicleRepo.FindByID(id)
	if err != nil {
		if err == repositories.ErrVehicleNotFound {
			return nil, apperrors.NewNotFoundError("inventory", "vehicle not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return vehicle, nil
}

func (s *vehicleService) List(criteria repositories.VehicleCriteria) (*dto.VehicleListResponse, error) {
	vehicles, total, err := s.vehicleRepo.Find(criteria)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	page := criteria.Page
	if page < 1 {
		page = 1
	}
	pageSize := criteria.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	return &dto.VehicleListResponse{Vehicles: vehicles, Total: total, Page: page, PageSize: pageSize}, nil
}

// UpdateStatus transitions the vehicle and notifies every agent with a lead
// interested in it, so a sale surfaces immediately on their dashboards.
func (s *vehicleService) UpdateStatus(id string, req dto.UpdateVehicleStatusRequest) (*models.Vehicle, error) {
	vehicle, err := s.vehicleRepo.UpdateStatus(id, models.VehicleStatus(req.Status))
	if err != nil {
		if err == repositories.ErrVehicleNotFound {
			return nil, apperrors.NewNotFoundError("inventory", "vehicle not found")
		}
		return nil, apperrors.InternalError(err)
	}

	s.hub.Broadcast(ws.VehicleRoom(vehicle.ID), ws.Event{
		Type:    ws.EventVehicleUpdated,
		Payload: vehicle,
	})

	agentIDs, err := s.vehicleRepo.FindInterestedAgents(vehicle.ID)
	if err != nil {
		logger.Error("interested agent lookup failed", "vehicle", vehicle.ID, "error", err)
		return vehicle, nil
	}
	if len(agentIDs) > 0 {
		go s.notifications.NotifyVehicleStatus(agentIDs, vehicle)
	}
	return vehicle, nil
}

func (s *vehicleService) Delete(id string) error {
	if err := s.vehicleRepo.Delete(id); err != nil {
		if err == repositories.ErrVehicleNotFound {
			return apperrors.NewNotFoundError("inventory", "vehicle not found")
		}
		return apperrors.InternalError(err)
	}
	return nil
}
