package services

import (
	"bytes"
	"fmt"
	"text/template"

	"dealercrm_backend/internal/email"
	"dealercrm_backend/internal/logger"
	"dealercrm_backend/internal/models"
	"dealercrm_backend/internal/prefs"
	"dealercrm_backend/internal/repositories"
	"dealercrm_backend/internal/services/dto"
	"dealercrm_backend/internal/sms"
	"dealercrm_backend/pkg/apperrors"
)

// CommunicationService sends templated outreach to leads. Rendering uses
// text/template; the variable map is merged over the lead's own fields so
// {{.FirstName}} always resolves.
type CommunicationService interface {
	SendOutreach(req dto.SendOutreachRequest) error

	CreateTemplate(req dto.CreateTemplateRequest) (*models.MessageTemplate, error)
	ListTemplates() ([]models.MessageTemplate, error)
	DeleteTemplate(id string) error
}

type communicationService struct {
	templateRepo  repositories.TemplateRepository
	leadRepo      repositories.LeadRepository
	notifications NotificationService
	emailSender   email.Sender
	smsSender     sms.Sender
}

func NewCommunicationService(
	templateRepo repositories.TemplateRepository,
	leadRepo repositories.LeadRepository,
	notifications NotificationService,
	emailSender email.Sender,
	smsSender sms.Sender,
) CommunicationService {
	return &communicationService{
		templateRepo:  templateRepo,
		leadRepo:      leadRepo,
		notifications: notifications,
		emailSender:   emailSender,
		smsSender:     smsSender,
	}
}

func (s *communicationService) SendOutreach(req dto.SendOutreachRequest) error {
	lead, err := s.leadRepo.FindByID(req.LeadID)
	if err != nil {
		return apperrors.NewNotFoundError("communications", "lead not found")
	}

	tpl, err := s.templateRepo.FindByName(req.TemplateName)
	if err != nil {
		return apperrors.NewNotFoundError("communications", "template not found")
	}

	data := map[string]string{
		"FirstName": lead.FirstName,
		"LastName":  lead.LastName,
		"Email":     lead.Email,
		"Phone":     lead.Phone,
	}
	for k, v := range req.Variables {
		data[k] = v
	}

	body, err := render(tpl.Body, data)
	if err != nil {
		return apperrors.NewBadRequestError(fmt.Sprintf("template render failed: %v", err))
	}

	switch tpl.Channel {
	case "email":
		if s.emailSender == nil {
			return apperrors.NewBadRequestError("email channel is not configured")
		}
		if lead.Email == "" {
			return apperrors.NewBadRequestError("lead has no email address")
		}
		subject, err := render(tpl.Subject, data)
		if err != nil {
			return apperrors.NewBadRequestError(fmt.Sprintf("subject render failed: %v", err))
		}
		if err := s.emailSender.Send(&email.Message{
			To:       []string{lead.Email},
			Subject:  subject,
			HTMLBody: body,
		}); err != nil {
			return apperrors.InternalError(err)
		}
	case "sms":
		if s.smsSender == nil {
			return apperrors.NewBadRequestError("sms channel is not configured")
		}
		if lead.Phone == "" {
			return apperrors.NewBadRequestError("lead has no phone number")
		}
		if err := s.smsSender.Send(lead.Phone, body); err != nil {
			return apperrors.InternalError(err)
		}
	default:
		return apperrors.NewBadRequestError("unknown template channel: " + tpl.Channel)
	}

	s.notifyAgent(lead, tpl)
	return nil
}

// notifyAgent records the outreach on the assigned agent's feed.
func (s *communicationService) notifyAgent(lead *models.Lead, tpl *models.MessageTemplate) {
	if lead.AssignedTo == nil {
		return
	}
	_, err := s.notifications.CreateAndDeliver(dto.CreateNotificationInput{
		UserID:  *lead.AssignedTo,
		Type:    prefs.TypeCommunication,
		Title:   "Outreach Sent",
		Message: fmt.Sprintf("%s sent to %s %s via %s", tpl.Name, lead.FirstName, lead.LastName, tpl.Channel),
		Link:    "/leads/" + lead.ID,
		Related: &models.RelatedEntity{Kind: "lead", ID: lead.ID},
	})
	if err != nil {
		logger.Error("outreach notification failed", "lead", lead.ID, "error", err)
	}
}

func render(text string, data map[string]string) (string, error) {
	t, err := template.New("outreach").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *communicationService) CreateTemplate(req dto.CreateTemplateRequest) (*models.MessageTemplate, error) {
	if _, err := template.New("check").Parse(req.Body); err != nil {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("invalid template body: %v", err))
	}

	tpl := &models.MessageTemplate{
		Name:     req.Name,
		Channel:  req.Channel,
		Subject:  req.Subject,
		Body:     req.Body,
		IsActive: true,
	}
	if err := s.templateRepo.Create(tpl); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return tpl, nil
}

func (s *communicationService) ListTemplates() ([]models.MessageTemplate, error) {
	templates, err := s.templateRepo.FindAll()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return templates, nil
}

func (s *communicationService) DeleteTemplate(id string) error {
	if err := s.templateRepo.Delete(id); err != nil {
		if err == repositories.ErrTemplateNotFound {
			return apperrors.NewNotFoundError("communications", "template not found")
		}
		return apperrors.InternalError(err)
	}
	return nil
}
