// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/giftlist-backend/internal/config"
)

const invitationTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.SiteName}}</title>
</head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
    <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
        <h1 style="color: #333;">{{.SiteName}}</h1>
        <p>Hello {{.UserEmail}},</p>
        <p>You have been invited to collaborate on a wishlist as <strong>{{.Role}}</strong>.</p>
        <p><a href="{{.AcceptURL}}">Open the invitation</a> before {{.ExpiresAt.Format "Jan 2, 2006"}}.</p>
        <hr>
        <p style="font-size: 12px; color: #666;">&copy; {{.Year}} {{.SiteName}}</p>
    </div>
</body>
</html>`

// EmailService sends transactional email through the configured provider
type EmailService struct {
	config    config.EmailConfig
	siteName  string
	logger    *logrus.Logger
	templates map[EmailType]*template.Template
	client    *http.Client
	resendURL string
}

// NewEmailService creates a new email service. Templates found in the
// configured directory override the built-in ones.
func NewEmailService(cfg config.EmailConfig, siteName string, logger *logrus.Logger) *EmailService {
	service := &EmailService{
		config:   cfg,
		siteName: siteName,
		logger:   logger,
		templates: map[EmailType]*template.Template{
			EmailTypeInvitation: template.Must(template.New(string(EmailTypeInvitation)).Parse(invitationTemplate)),
		},
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		resendURL: "https://api.resend.com/emails",
	}
	service.loadTemplates()

	return service
}

// SendEmail sends an email using the configured provider
func (s *EmailService) SendEmail(ctx context.Context, email *Email) error {
	switch s.config.Provider {
	case "smtp":
		return s.sendSMTPEmail(email)
	case "resend":
		return s.sendResendEmail(ctx, email)
	default:
		return fmt.Errorf("unsupported email provider: %s", s.config.Provider)
	}
}

// SendInvitationEmail tells an invitee how to join a wishlist
func (s *EmailService) SendInvitationEmail(ctx context.Context, data InvitationEmailData) error {
	if data.SiteName == "" {
		data.SiteName = s.siteName
	}

	htmlContent, err := s.renderTemplate(EmailTypeInvitation, data)
	if err != nil {
		return err
	}

	return s.SendEmail(ctx, &Email{
		To:          []string{data.UserEmail},
		Subject:     fmt.Sprintf("You're invited to a wishlist on %s", data.SiteName),
		HTMLContent: htmlContent,
		Type:        EmailTypeInvitation,
	})
}

// loadTemplates replaces built-in templates with files from the template dir
func (s *EmailService) loadTemplates() {
	if s.config.TemplateDir == "" {
		return
	}

	for name := range s.templates {
		templatePath := filepath.Join(s.config.TemplateDir, string(name)+".html")
		tmpl, err := template.ParseFiles(templatePath)
		if err != nil {
			s.logger.WithError(err).WithField("template", name).Warn("Could not load email template, using built-in")
			continue
		}
		s.templates[name] = tmpl
	}
}

// renderTemplate renders an email template with data
func (s *EmailService) renderTemplate(name EmailType, data interface{}) (string, error) {
	tmpl, exists := s.templates[name]
	if !exists {
		return "", fmt.Errorf("template %s not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}

func (s *EmailService) fromAddress() string {
	if s.config.FromName != "" {
		return fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	}
	return s.config.FromEmail
}
