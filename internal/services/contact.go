package services

import (
	"context"
	"fmt"

	"github.com/yopdevs/platform/backend/internal/models"
	"github.com/yopdevs/platform/backend/pkg/email"
)

// Mailer delivers email and returns the provider's receipt.
type Mailer interface {
	Send(msg email.Message) (string, error)
}

// ContactService forwards contact form submissions to the team inbox.
type ContactService struct {
	mailer Mailer
	inbox  string
}

// NewContactService creates a ContactService
func NewContactService(mailer Mailer, inbox string) *ContactService {
	return &ContactService{mailer: mailer, inbox: inbox}
}

// Submit forwards req and returns the provider receipt.
func (s *ContactService) Submit(_ context.Context, req *models.ContactRequest) (string, error) {
	body := fmt.Sprintf("From: %s <%s>\n\n%s", req.Name, req.Email, req.Message)
	receipt, err := s.mailer.Send(email.Message{
		To:      s.inbox,
		ReplyTo: req.Email,
		Subject: "[YOP Devs] " + req.Subject,
		Body:    body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to forward contact message: %w", err)
	}
	return receipt, nil
}
