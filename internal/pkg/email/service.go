// internal/pkg/email/service.go
package email

import (
	"fmt"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-backend/internal/config"
)

// Service sends transactional email. When email is disabled in the
// configuration, sends are logged instead of delivered so the rest of
// the system never has to care.
type Service struct {
	config *config.Config
	logger *logrus.Logger
}

// NewService creates a new email service
func NewService(cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		config: cfg,
		logger: logger,
	}
}

// SendOrderStatusUpdate notifies a customer about an order status
// change. Delivery failures are logged, never returned: a broken mail
// relay must not fail an order operation.
func (s *Service) SendOrderStatusUpdate(toEmail, toName, orderNumber, status string) {
	subject := fmt.Sprintf("Order %s is now %s", orderNumber, status)
	body := fmt.Sprintf("Hi %s,\r\n\r\nYour order %s has been updated to: %s.\r\n\r\nThank you for shopping with %s.\r\n",
		toName, orderNumber, status, s.config.Email.FromName)

	s.send(toEmail, subject, body)
}

// SendOrderConfirmation notifies a customer that their order was
// placed.
func (s *Service) SendOrderConfirmation(toEmail, toName, orderNumber string, total int64) {
	subject := fmt.Sprintf("Order confirmation %s", orderNumber)
	body := fmt.Sprintf("Hi %s,\r\n\r\nWe received your order %s for a total of %.2f.\r\n\r\nThank you for shopping with %s.\r\n",
		toName, orderNumber, float64(total)/100, s.config.Email.FromName)

	s.send(toEmail, subject, body)
}

func (s *Service) send(toEmail, subject, body string) {
	log := s.logger.WithFields(logrus.Fields{
		"to":      toEmail,
		"subject": subject,
	})

	if !s.config.Email.Enabled || s.config.Email.SMTPHost == "" {
		log.Debug("Email disabled, skipping send")
		return
	}

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.config.Email.FromName, s.config.Email.FromEmail, toEmail, subject, body)

	addr := fmt.Sprintf("%s:%d", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	var auth smtp.Auth
	if s.config.Email.SMTPUser != "" {
		auth = smtp.PlainAuth("", s.config.Email.SMTPUser, s.config.Email.SMTPPass, s.config.Email.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{toEmail}, []byte(msg)); err != nil {
		log.WithError(err).Error("Failed to send email")
		return
	}
	log.Info("Email sent")
}
