package mail

import (
	"context"

	"github.com/groupcollect/groupcollect-backend/pkg/logger"
)

// ConsoleSender writes mails to the structured log instead of delivering them.
type ConsoleSender struct {
	logg *logger.Logger
}

func NewConsoleSender(logg *logger.Logger) *ConsoleSender {
	return &ConsoleSender{logg: logg}
}

func (s *ConsoleSender) Name() string { return "console" }

func (s *ConsoleSender) Send(ctx context.Context, msg Message) error {
	to := msg.Recipients()
	if len(to) == 0 {
		return ErrNoRecipients
	}
	if s.logg == nil {
		return nil
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"mail_from":    msg.From,
		"mail_to":      to,
		"mail_subject": msg.Subject,
		"mail_body":    msg.Body,
	})
	s.logg.Info(ctx, "mail sent to console")
	return nil
}
