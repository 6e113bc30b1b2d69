package repositories

import (
	"errors"
	"time"

	"dealercrm_backend/internal/models"

	"gorm.io/gorm"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

type AppointmentRepository interface {
	Create(a *models.Appointment) error
	FindByID(id string) (*models.Appointment, error)
	FindByAgent(agentID string, from, to time.Time) ([]models.Appointment, error)
	Update(a *models.Appointment) error
	Delete(id string) error

	// FindDueForReminder returns scheduled appointments starting within the
	// window that have not had their reminder sent yet.
	FindDueForReminder(within time.Duration) ([]models.Appointment, error)
	MarkReminderSent(id string) error
}

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(a *models.Appointment) error {
	return r.db.Create(a).Error
}

func (r *appointmentRepository) FindByID(id string) (*models.Appointment, error) {
	var a models.Appointment
	if err := r.db.First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *appointmentRepository) FindByAgent(agentID string, from, to time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.db.
		Where("agent_id = ? AND scheduled_at BETWEEN ? AND ?", agentID, from, to).
		Order("scheduled_at ASC").
		Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepository) Update(a *models.Appointment) error {
	return r.db.Save(a).Error
}

func (r *appointmentRepository) Delete(id string) error {
	result := r.db.Delete(&models.Appointment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *appointmentRepository) FindDueForReminder(within time.Duration) ([]models.Appointment, error) {
	now := time.Now().UTC()
	var appointments []models.Appointment
	err := r.db.
		Where("status = ? AND reminder_sent_at IS NULL AND scheduled_at BETWEEN ? AND ?",
			models.AppointmentStatusScheduled, now, now.Add(within)).
		Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepository) MarkReminderSent(id string) error {
	return r.db.Model(&models.Appointment{}).
		Where("id = ?", id).
		Update("reminder_sent_at", time.Now().UTC()).Error
}
