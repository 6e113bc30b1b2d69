package services

import (
	"encoding/json"
	"fmt"
	"time"

	"dealercrm_backend/internal/email"
	"dealercrm_backend/internal/logger"
	"dealercrm_backend/internal/models"
	"dealercrm_backend/internal/prefs"
	"dealercrm_backend/internal/push"
	"dealercrm_backend/internal/repositories"
	"dealercrm_backend/internal/services/dto"
	"dealercrm_backend/internal/sms"
	"dealercrm_backend/ws"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

// Broadcaster is the slice of the hub the dispatcher needs. *ws.Hub
// satisfies it; tests substitute a recorder.
type Broadcaster interface {
	Broadcast(room string, ev ws.Event)
	BroadcastExcept(room, exceptSessionID string, ev ws.Event)
}

// NotificationService is the delivery dispatcher: it creates the durable
// record, evaluates per-channel preferences and fans the event out to the
// user's live sessions plus the enabled provider channels.
//
// Record creation failing is an error to the caller; every channel failure
// after that is logged and swallowed, so from the triggering collaborator's
// point of view creation always succeeds even if zero channels deliver.
type NotificationService interface {
	CreateAndDeliver(input dto.CreateNotificationInput) (*models.Notification, error)
	CreateAndDeliverMany(userIDs []string, input dto.CreateNotificationInput) []*models.Notification

	List(userID string, criteria repositories.NotificationCriteria) (*dto.NotificationListResponse, error)
	UnreadCount(userID string) (int64, error)

	// Control operations: the storage mutation happens here, then the
	// resulting control event is fanned out to the user's other sessions,
	// excluding the one that originated the action.
	MarkRead(userID, recordID, originSessionID string) error
	MarkAllRead(userID, originSessionID string) error
	Delete(userID, recordID, originSessionID string) error
	DeleteAll(userID, originSessionID string) error

	PurgeOld(retentionDays int) (int64, error)

	// Factory helpers for domain events.
	NotifyLeadAssigned(agentID string, lead *models.Lead) error
	NotifyAppointmentReminder(agentID string, a *models.Appointment, lead *models.Lead) error
	NotifyVehicleStatus(agentIDs []string, v *models.Vehicle)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	preferenceRepo   repositories.PreferenceRepository
	pushRepo         repositories.PushSubscriptionRepository
	userRepo         repositories.UserRepository

	hub         Broadcaster
	emailSender email.Sender
	smsSender   sms.Sender
	pushSender  push.Sender
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	preferenceRepo repositories.PreferenceRepository,
	pushRepo repositories.PushSubscriptionRepository,
	userRepo repositories.UserRepository,
	hub Broadcaster,
	emailSender email.Sender,
	smsSender sms.Sender,
	pushSender push.Sender,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		preferenceRepo:   preferenceRepo,
		pushRepo:         pushRepo,
		userRepo:         userRepo,
		hub:              hub,
		emailSender:      emailSender,
		smsSender:        smsSender,
		pushSender:       pushSender,
	}
}

func (s *notificationService) CreateAndDeliver(input dto.CreateNotificationInput) (*models.Notification, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("notification target user id is required")
	}

	priority := input.Priority
	if priority == "" {
		priority = string(prefs.PriorityNormal)
	}

	record := &models.Notification{
		UserID:   input.UserID,
		Type:     input.Type,
		Title:    input.Title,
		Message:  input.Message,
		Priority: priority,
		Link:     input.Link,
	}
	if input.Related != nil {
		record.Related = datatypes.NewJSONType(*input.Related)
	}

	if err := s.notificationRepo.Create(record); err != nil {
		return nil, err
	}

	s.deliver(record)
	return record, nil
}

// CreateAndDeliverMany delivers record-per-user; a failure for one recipient
// never blocks the rest, so partial results are returned and failures only
// logged.
func (s *notificationService) CreateAndDeliverMany(userIDs []string, input dto.CreateNotificationInput) []*models.Notification {
	results := make([]*models.Notification, len(userIDs))

	var g errgroup.Group
	g.SetLimit(8)
	for i, userID := range userIDs {
		g.Go(func() error {
			perUser := input
			perUser.UserID = userID
			record, err := s.CreateAndDeliver(perUser)
			if err != nil {
				logger.Error("bulk delivery failed for recipient", "user", userID, "error", err)
				return nil
			}
			results[i] = record
			return nil
		})
	}
	g.Wait()

	out := results[:0]
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// deliver evaluates preferences and pushes to each enabled channel. The
// browser and sound channels are presentation-layer concerns evaluated
// client-side; the server only handles in-app, email, SMS and push.
func (s *notificationService) deliver(record *models.Notification) {
	doc := s.preferenceDoc(record.UserID)
	priority := prefs.Priority(record.Priority)

	if prefs.ShouldDeliver(prefs.ChannelInApp, record.Type, priority, doc) {
		s.hub.Broadcast(ws.UserRoom(record.UserID), ws.Event{
			Type:    ws.EventNotificationNew,
			Payload: record,
		})
	}

	if s.emailSender != nil && prefs.ShouldDeliver(prefs.ChannelEmail, record.Type, priority, doc) {
		go s.sendEmail(record)
	}
	if s.smsSender != nil && prefs.ShouldDeliver(prefs.ChannelSMS, record.Type, priority, doc) {
		go s.sendSMS(record)
	}
	if s.pushSender != nil && prefs.ShouldDeliver(prefs.ChannelPush, record.Type, priority, doc) {
		go s.sendPush(record)
	}
}

// preferenceDoc resolves the user's stored preferences. Absence or a lookup
// failure resolves to nil, which the evaluator treats as the defaults.
func (s *notificationService) preferenceDoc(userID string) *prefs.Document {
	pref, err := s.preferenceRepo.FindOrCreate(userID)
	if err != nil {
		logger.Warn("preference lookup failed, using defaults", "user", userID, "error", err)
		return nil
	}
	doc := pref.Document()
	return &doc
}

func (s *notificationService) sendEmail(record *models.Notification) {
	user, err := s.userRepo.FindByID(record.UserID)
	if err != nil || user.Email == "" {
		return
	}
	msg := &email.Message{
		To:       []string{user.Email},
		Subject:  record.Title,
		TextBody: record.Message,
	}
	if err := s.emailSender.Send(msg); err != nil {
		logger.Error("email channel delivery failed", "user", record.UserID, "record", record.ID, "error", err)
	}
}

func (s *notificationService) sendSMS(record *models.Notification) {
	user, err := s.userRepo.FindByID(record.UserID)
	if err != nil || user.Phone == "" {
		return
	}
	body := record.Title
	if record.Message != "" {
		body += ": " + record.Message
	}
	if err := s.smsSender.Send(user.Phone, body); err != nil {
		logger.Error("sms channel delivery failed", "user", record.UserID, "record", record.ID, "error", err)
	}
}

// sendPush delivers to every registered device. Expired subscriptions are
// deleted on the provider's say-so instead of being retried forever.
func (s *notificationService) sendPush(record *models.Notification) {
	subs, err := s.pushRepo.FindByUser(record.UserID)
	if err != nil || len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(record)
	if err != nil {
		logger.Error("push payload encode failed", "record", record.ID, "error", err)
		return
	}

	for i := range subs {
		sub := subs[i]
		if err := s.pushSender.Send(&sub, payload); err != nil {
			if err == push.ErrSubscriptionGone {
				logger.Info("removing expired push subscription", "user", record.UserID, "endpoint", sub.Endpoint)
				s.pushRepo.PurgeEndpoint(sub.Endpoint)
				continue
			}
			logger.Error("push channel delivery failed", "user", record.UserID, "record", record.ID, "error", err)
		}
	}
}

func (s *notificationService) List(userID string, criteria repositories.NotificationCriteria) (*dto.NotificationListResponse, error) {
	notifications, total, err := s.notificationRepo.FindUserNotifications(userID, criteria)
	if err != nil {
		return nil, err
	}
	unread, err := s.notificationRepo.UnreadCount(userID)
	if err != nil {
		return nil, err
	}

	page := criteria.Page
	if page < 1 {
		page = 1
	}
	pageSize := criteria.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	return &dto.NotificationListResponse{
		Notifications: notifications,
		Total:         total,
		UnreadCount:   unread,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

func (s *notificationService) UnreadCount(userID string) (int64, error) {
	return s.notificationRepo.UnreadCount(userID)
}

func (s *notificationService) MarkRead(userID, recordID, originSessionID string) error {
	_, err := s.notificationRepo.MarkRead(userID, recordID)
	if err != nil {
		// A read for an unknown (e.g. already deleted) record is a no-op.
		if err == repositories.ErrNotificationNotFound {
			return nil
		}
		return err
	}

	s.hub.BroadcastExcept(ws.UserRoom(userID), originSessionID, ws.Event{
		Type:    ws.EventNotificationRead,
		Payload: ws.ReadPayload{ID: recordID},
	})
	return nil
}

func (s *notificationService) MarkAllRead(userID, originSessionID string) error {
	if _, err := s.notificationRepo.MarkAllRead(userID); err != nil {
		return err
	}
	s.hub.BroadcastExcept(ws.UserRoom(userID), originSessionID, ws.Event{
		Type: ws.EventMarkAllRead,
	})
	return nil
}

func (s *notificationService) Delete(userID, recordID, originSessionID string) error {
	if err := s.notificationRepo.Delete(userID, recordID); err != nil {
		if err == repositories.ErrNotificationNotFound {
			return nil
		}
		return err
	}
	return nil
}

func (s *notificationService) DeleteAll(userID, originSessionID string) error {
	_, err := s.notificationRepo.DeleteAll(userID)
	return err
}

func (s *notificationService) PurgeOld(retentionDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	return s.notificationRepo.PurgeReadOlderThan(cutoff)
}

// --- Factory helpers ---

func (s *notificationService) NotifyLeadAssigned(agentID string, lead *models.Lead) error {
	priority := string(prefs.PriorityNormal)
	if lead.Temperature == models.LeadTemperatureHot {
		priority = string(prefs.PriorityHigh)
	}

	_, err := s.CreateAndDeliver(dto.CreateNotificationInput{
		UserID:   agentID,
		Type:     prefs.TypeLead,
		Title:    "New Lead Assigned",
		Message:  fmt.Sprintf("%s %s has been assigned to you", lead.FirstName, lead.LastName),
		Priority: priority,
		Link:     "/leads/" + lead.ID,
		Related:  &models.RelatedEntity{Kind: "lead", ID: lead.ID},
	})
	return err
}

func (s *notificationService) NotifyAppointmentReminder(agentID string, a *models.Appointment, lead *models.Lead) error {
	leadName := "a customer"
	if lead != nil {
		leadName = lead.FirstName + " " + lead.LastName
	}

	_, err := s.CreateAndDeliver(dto.CreateNotificationInput{
		UserID:   agentID,
		Type:     prefs.TypeAppointment,
		Title:    "Upcoming Appointment",
		Message:  fmt.Sprintf("%s appointment with %s at %s", a.Kind, leadName, a.ScheduledAt.Format("15:04")),
		Priority: string(prefs.PriorityHigh),
		Link:     "/appointments/" + a.ID,
		Related:  &models.RelatedEntity{Kind: "appointment", ID: a.ID},
	})
	return err
}

func (s *notificationService) NotifyVehicleStatus(agentIDs []string, v *models.Vehicle) {
	s.CreateAndDeliverMany(agentIDs, dto.CreateNotificationInput{
		Type:    prefs.TypeVehicle,
		Title:   "Vehicle Status Changed",
		Message: fmt.Sprintf("%d %s %s is now %s", v.Year, v.Make, v.Model, v.Status),
		Link:    "/inventory/" + v.ID,
		Related: &models.RelatedEntity{Kind: "vehicle", ID: v.ID},
	})
}
