package contact

import (
	"context"
	"fmt"

	"github.com/labease/labease-platform/internal/catalog"
	"github.com/labease/labease-platform/internal/notify"
	"github.com/labease/labease-platform/pkg/logging"
)

// Service stores contact messages and relays them to the recipient's
// inbox. Relaying is best-effort; the stored message is the source of
// truth.
type Service struct {
	repo       Repository
	catalog    catalog.Repository
	sender     notify.EmailSender
	adminEmail string
	logger     *logging.Logger
}

// NewService creates a contact service. sender may be nil to skip
// relay emails.
func NewService(repo Repository, cat catalog.Repository, sender notify.EmailSender, adminEmail string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:       repo,
		catalog:    cat,
		sender:     sender,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// Submit validates the recipient, stores the message and relays it.
// A message without a lab goes to the platform admins.
func (s *Service) Submit(ctx context.Context, m *Message) error {
	var lab *catalog.Lab
	if m.LabID != nil {
		var err error
		lab, err = s.catalog.GetLab(ctx, *m.LabID)
		if err != nil {
			return err
		}
		m.RecipientAdmin = false
	} else {
		m.RecipientAdmin = true
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return err
	}
	s.relay(ctx, m, lab)
	return nil
}

// MessagesForLab returns a lab's inbox, newest first.
func (s *Service) MessagesForLab(ctx context.Context, labID int64) ([]Message, error) {
	return s.repo.ListForLab(ctx, labID)
}

// DeleteForLab removes one of the lab's messages.
func (s *Service) DeleteForLab(ctx context.Context, id, labID int64) error {
	return s.repo.DeleteForLab(ctx, id, labID)
}

func (s *Service) relay(ctx context.Context, m *Message, lab *catalog.Lab) {
	if s.sender == nil {
		return
	}
	to, toName := s.adminEmail, "LabEase Admin"
	if lab != nil {
		to, toName = lab.ContactEmail, lab.Name
	}
	if to == "" {
		return
	}

	body := fmt.Sprintf("New message from %s <%s>", m.Name, m.Email)
	if m.Phone != "" {
		body += fmt.Sprintf(" (phone %s)", m.Phone)
	}
	body += "\n\n" + m.Body
	err := s.sender.Send(ctx, notify.EmailMessage{
		To:      to,
		ToName:  toName,
		Subject: fmt.Sprintf("New Contact Message from %s", m.Name),
		Body:    body,
	})
	if err != nil {
		s.logger.Error("contact relay email failed", "message_id", m.ID, "error", err)
	}
}
