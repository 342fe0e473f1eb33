// Package mail delivers plain-text notification messages through a
// configurable transport.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/groupcollect/groupcollect-backend/pkg/config"
	"github.com/groupcollect/groupcollect-backend/pkg/logger"
	"github.com/groupcollect/groupcollect-backend/pkg/pubsub"
)

// ErrNoRecipients is returned when a message has nobody to go to.
var ErrNoRecipients = errors.New("mail has no recipients")

// Message is a single plain-text mail.
type Message struct {
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	From    string   `json:"from"`
	To      []string `json:"to"`
}

// Recipients returns the trimmed, de-duplicated, non-empty addresses.
func (m Message) Recipients() []string {
	seen := make(map[string]struct{}, len(m.To))
	out := make([]string, 0, len(m.To))
	for _, addr := range m.To {
		a := strings.TrimSpace(addr)
		if a == "" {
			continue
		}
		key := strings.ToLower(a)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}

// Sender delivers a message in a single attempt.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

// NewSender builds the transport selected by cfg. The pubsub client is only
// required for the pubsub transport.
func NewSender(cfg config.MailConfig, ps *pubsub.Client, logg *logger.Logger) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Transport)) {
	case config.MailTransportConsole, "":
		return NewConsoleSender(logg), nil
	case config.MailTransportSMTP:
		return NewSMTPSender(cfg)
	case config.MailTransportPubSub:
		if ps == nil {
			return nil, fmt.Errorf("pubsub client is required for the pubsub mail transport")
		}
		pub := ps.MailPublisher()
		if pub == nil {
			return nil, fmt.Errorf("pubsub mail publisher not configured")
		}
		return NewPubSubSender(newGCPPublisher(pub)), nil
	default:
		return nil, fmt.Errorf("unsupported mail transport %q", cfg.Transport)
	}
}
