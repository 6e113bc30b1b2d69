package services

import (
	"time"

	"dealercrm_backend/internal/logger"
	"dealercrm_backend/internal/models"
	"dealercrm_backend/internal/repositories"
	"dealercrm_backend/internal/services/dto"
	"dealercrm_backend/pkg/apperrors"
	"dealercrm_backend/ws"
)

type LeadService interface {
	Create(req dto.CreateLeadRequest) (*models.Lead, error)
	Get(id string) (*models.Lead, error)
	List(criteria repositories.LeadCriteria) (*dto.LeadListResponse, error)
	Update(id string, req dto.UpdateLeadRequest) (*models.Lead, error)
	Assign(id string, req dto.AssignLeadRequest) (*models.Lead, error)
	Delete(id string) error
}

type leadService struct {
	leadRepo      repositories.LeadRepository
	userRepo      repositories.UserRepository
	notifications NotificationService
	hub           Broadcaster
}

func NewLeadService(
	leadRepo repositories.LeadRepository,
	userRepo repositories.UserRepository,
	notifications NotificationService,
	hub Broadcaster,
) LeadService {
	return &leadService{
		leadRepo:      leadRepo,
		userRepo:      userRepo,
		notifications: notifications,
		hub:           hub,
	}
}

func (s *leadService) Create(req dto.CreateLeadRequest) (*models.Lead, error) {
	lead := &models.Lead{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Source:      req.Source,
		Status:      models.LeadStatusNew,
		Temperature: models.LeadTemperatureWarm,
		Notes:       req.Notes,
	}
	if req.Temperature != "" {
		lead.Temperature = models.LeadTemperature(req.Temperature)
	}
	if req.VehicleID != "" {
		lead.VehicleID = &req.VehicleID
	}

	if err := s.leadRepo.Create(lead); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return lead, nil
}

func (s *leadService) Get(id string) (*models.Lead, error) {
	lead, err := s.leadRepo.FindByID(id)
	if err != nil {
		if err == repositories.ErrLeadNotFound {
			return nil, apperrors.NewNotFoundError("leads", "lead not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return lead, nil
}

func (s *leadService) List(criteria repositories.LeadCriteria) (*dto.LeadListResponse, error) {
	leads, total, err := s.leadRepo.Find(criteria)
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
	return &dto.LeadListResponse{Leads: leads, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *leadService) Update(id string, req dto.UpdateLeadRequest) (*models.Lead, error) {
	lead, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		lead.Status = models.LeadStatus(*req.Status)
	}
	if req.Temperature != nil {
		lead.Temperature = models.LeadTemperature(*req.Temperature)
	}
	if req.Notes != nil {
		lead.Notes = *req.Notes
	}
	if req.VehicleID != nil {
		lead.VehicleID = req.VehicleID
	}
	now := time.Now().UTC()
	lead.LastContact = &now

	if err := s.leadRepo.Update(lead); err != nil {
		return nil, apperrors.InternalError(err)
	}

	// Sessions watching this lead's room get the updated record.
	s.hub.Broadcast(ws.LeadRoom(lead.ID), ws.Event{
		Type:    ws.EventLeadUpdated,
		Payload: lead,
	})
	return lead, nil
}

func (s *leadService) Assign(id string, req dto.AssignLeadRequest) (*models.Lead, error) {
	agent, err := s.userRepo.FindByID(req.AgentID)
	if err != nil {
		return nil, apperrors.NewNotFoundError("leads", "agent not found")
	}
	if agent.Role != models.UserRoleAgent && agent.Role != models.UserRoleManager {
		return nil, apperrors.NewBadRequestError("leads can only be assigned to agents or managers")
	}

	lead, err := s.leadRepo.Assign(id, req.AgentID)
	if err != nil {
		if err == repositories.ErrLeadNotFound {
			return nil, apperrors.NewNotFoundError("leads", "lead not found")
		}
		return nil, apperrors.InternalError(err)
	}

	if err := s.notifications.NotifyLeadAssigned(req.AgentID, lead); err != nil {
		logger.Error("lead assignment notification failed", "lead", lead.ID, "agent", req.AgentID, "error", err)
	}
	return lead, nil
}

func (s *leadService) Delete(id string) error {
	if err := s.leadRepo.Delete(id); err != nil {
		if err == repositories.ErrLeadNotFound {
			return apperrors.NewNotFoundError("leads", "lead not found")
		}
		return apperrors.InternalError(err)
	}
	return nil
}
