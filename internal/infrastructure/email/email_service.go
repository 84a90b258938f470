package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"

	"github.com/ironforge/gym-membership/internal/core/domain/notification"
	"github.com/ironforge/gym-membership/internal/core/ports"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

// EmailConfig holds email service configuration
type EmailConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	CompanyName    string
	BaseURL        string
}

// Sender is the subset of the SendGrid client the service uses.
type Sender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

const reminderTemplate = `<!DOCTYPE html>
<html>
<body>
<h2>{{.Title}}</h2>
<p>Hi {{.UserName}},</p>
<p>{{.Message}}</p>
{{if .ActionURL}}<p><a href="{{.ActionURL}}">Manage your membership</a></p>{{end}}
<p>{{.CompanyName}}</p>
</body>
</html>`

// ReminderEmailData holds data for the plan reminder template
type ReminderEmailData struct {
	CompanyName string
	UserName    string
	Title       string
	Message     string
	ActionURL   string
}

// EmailService implements ports.Mailer on SendGrid
type EmailService struct {
	config   *EmailConfig
	logger   *logrus.Logger
	client   Sender
	reminder *template.Template
}

// NewEmailService creates a new email service instance
func NewEmailService(config *EmailConfig, logger *logrus.Logger) (*EmailService, error) {
	return NewEmailServiceWithSender(config, sendgrid.NewSendClient(config.SendGridAPIKey), logger)
}

// NewEmailServiceWithSender creates an email service delivering through client
func NewEmailServiceWithSender(config *EmailConfig, client Sender, logger *logrus.Logger) (*EmailService, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	tmpl, err := template.New("reminder").Parse(reminderTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reminder template: %w", err)
	}
	return &EmailService{
		config:   config,
		logger:   logger,
		client:   client,
		reminder: tmpl,
	}, nil
}

// sendEmail sends an email using SendGrid
func (e *EmailService) sendEmail(to, toName, subject, htmlContent string) error {
	from := mail.NewEmail(e.config.FromName, e.config.FromEmail)
	recipient := mail.NewEmail(toName, to)

	message := mail.NewSingleEmail(from, subject, recipient, "", htmlContent)

	response, err := e.client.Send(message)
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
			"error":   err,
		}).Error("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		e.logger.WithFields(logrus.Fields{
			"to":          to,
			"subject":     subject,
			"status_code": response.StatusCode,
		}).Error("Email rejected by provider")
		return fmt.Errorf("email rejected with status %d", response.StatusCode)
	}

	e.logger.WithFields(logrus.Fields{
		"to":          to,
		"subject":     subject,
		"status_code": response.StatusCode,
	}).Info("Email sent successfully")

	return nil
}

// SendPlanReminder emails a plan notification to a member
func (e *EmailService) SendPlanReminder(ctx context.Context, toEmail, toName string, n notification.PlanNotification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data := ReminderEmailData{
		CompanyName: e.config.CompanyName,
		UserName:    toName,
		Title:       n.Title,
		Message:     n.Message,
	}
	if n.ActionURL != "" && e.config.BaseURL != "" {
		data.ActionURL = e.config.BaseURL + n.ActionURL
	}

	var buf bytes.Buffer
	if err := e.reminder.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render reminder email template: %w", err)
	}

	subject := fmt.Sprintf("%s - %s", n.Title, e.config.CompanyName)

	return e.sendEmail(toEmail, toName, subject, buf.String())
}

var _ ports.Mailer = (*EmailService)(nil)
