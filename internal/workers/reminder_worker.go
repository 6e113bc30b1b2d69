package workers

import (
	"context"
	"time"

	"dealercrm_backend/internal/logger"
	"dealercrm_backend/internal/models"
	"dealercrm_backend/internal/repositories"
	"dealercrm_backend/internal/services"
)

// ReminderWorker scans for appointments starting soon and notifies the
// agent once per appointment; the sent marker stops repeats across scans
// and across instances.
type ReminderWorker struct {
	appointmentRepo repositories.AppointmentRepository
	leadRepo        repositories.LeadRepository
	notifications   services.NotificationService

	window   time.Duration // how far ahead to look
	interval time.Duration // scan cadence
}

func NewReminderWorker(
	appointmentRepo repositories.AppointmentRepository,
	leadRepo repositories.LeadRepository,
	notifications services.NotificationService,
) *ReminderWorker {
	return &ReminderWorker{
		appointmentRepo: appointmentRepo,
		leadRepo:        leadRepo,
		notifications:   notifications,
		window:          time.Hour,
		interval:        5 * time.Minute,
	}
}

func (w *ReminderWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *ReminderWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("reminder worker stopped")
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

func (w *ReminderWorker) scan() {
	due, err := w.appointmentRepo.FindDueForReminder(w.window)
	if err != nil {
		logger.Error("reminder scan failed", "error", err)
		return
	}

	for i := range due {
		w.remind(&due[i])
	}
}

func (w *ReminderWorker) remind(a *models.Appointment) {
	// Mark first: a duplicate reminder is worse than a missed one here,
	// since the appointment is still visible on the agent's calendar.
	if err := w.appointmentRepo.MarkReminderSent(a.ID); err != nil {
		logger.Error("reminder marker update failed", "appointment", a.ID, "error", err)
		return
	}

	lead, err := w.leadRepo.FindByID(a.LeadID)
	if err != nil {
		lead = nil
	}

	if err := w.notifications.NotifyAppointmentReminder(a.AgentID, a, lead); err != nil {
		logger.Error("appointment reminder notification failed", "appointment", a.ID, "error", err)
	}
}
