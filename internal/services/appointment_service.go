package services

import (
	"time"

	"dealercrm_backend/internal/models"
	"dealercrm_backend/internal/repositories"
	"dealercrm_backend/internal/services/dto"
	"dealercrm_backend/pkg/apperrors"
)

type AppointmentService interface {
	Create(req dto.CreateAppointmentRequest) (*models.Appointment, error)
	Get(id string) (*models.Appointment, error)
	ListForAgent(agentID string, from, to time.Time) ([]models.Appointment, error)
	Update(id string, req dto.UpdateAppointmentRequest) (*models.Appointment, error)
	Delete(id string) error
}

type appointmentService struct {
	appointmentRepo repositories.AppointmentRepository
	leadRepo        repositories.LeadRepository
}

func NewAppointmentService(
	appointmentRepo repositories.AppointmentRepository,
	leadRepo repositories.LeadRepository,
) AppointmentService {
	return &appointmentService{
		appointmentRepo: appointmentRepo,
		leadRepo:        leadRepo,
	}
}

func (s *appointmentService) Create(req dto.CreateAppointmentRequest) (*models.Appointment, error) {
	if _, err := s.leadRepo.FindByID(req.LeadID); err != nil {
		return nil, apperrors.NewNotFoundError("appointments", "lead not found")
	}
	if req.ScheduledAt.Before(time.Now()) {
		return nil, apperrors.NewBadRequestError("appointment cannot be scheduled in the past")
	}

	a := &models.Appointment{
		LeadID:      req.LeadID,
		AgentID:     req.AgentID,
		Kind:        req.Kind,
		ScheduledAt: req.ScheduledAt.UTC(),
		Status:      models.AppointmentStatusScheduled,
		Notes:       req.Notes,
	}
	if req.VehicleID != "" {
		a.VehicleID = &req.VehicleID
	}

	if err := s.appointmentRepo.Create(a); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return a, nil
}

func (s *appointmentService) Get(id string) (*models.Appointment, error) {
	a, err := s.appointmentRepo.FindByID(id)
	if err != nil {
		if err == repositories.ErrAppointmentNotFound {
			return nil, apperrors.NewNotFoundError("appointments", "appointment not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return a, nil
}

func (s *appointmentService) ListForAgent(agentID string, from, to time.Time) ([]models.Appointment, error) {
	appointments, err := s.appointmentRepo.FindByAgent(agentID, from, to)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return appointments, nil
}

func (s *appointmentService) Update(id string, req dto.UpdateAppointmentRequest) (*models.Appointment, error) {
	a, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		a.Status = models.AppointmentStatus(*req.Status)
	}
	if req.ScheduledAt != nil {
		a.ScheduledAt = req.ScheduledAt.UTC()
		// Rescheduling re-arms the reminder.
		a.ReminderSentAt = nil
	}
	if req.Notes != nil {
		a.Notes = *req.Notes
	}

	if err := s.appointmentRepo.Update(a); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return a, nil
}

func (s *appointmentService) Delete(id string) error {
	if err := s.appointmentRepo.Delete(id); err != nil {
		if err == repositories.ErrAppointmentNotFound {
			return apperrors.NewNotFoundError("appointments", "appointment not found")
		}
		return apperrors.InternalError(err)
	}
	return nil
}
