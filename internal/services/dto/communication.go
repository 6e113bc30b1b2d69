package dto

type SendOutreachRequest struct {
	LeadID       string            `json:"lead_id" validate:"required,uuid"`
	TemplateName string            `json:"template_name" validate:"required"`
	Variables    map[string]string `json:"variables"`
}

type CreateTemplateRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Channel string `json:"channel" validate:"required,oneof=email sms"`
	Subject string `json:"subject" validate:"max=200"`
	Body    string `json:"body" validate:"required"`
}
