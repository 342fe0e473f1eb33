package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/groupcollect/groupcollect-backend/pkg/db/models"
)

// CreatePaymentInput records a pledge to a collect. The payer is always the
// authenticated caller.
type CreatePaymentInput struct {
	CollectID uuid.UUID       `json:"collect_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
}

// PaymentDTO is the transport shape of a payment.
type PaymentDTO struct {
	ID        uuid.UUID       `json:"id"`
	CollectID uuid.UUID       `json:"collect_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// FromModel converts a payment into its transport shape.
func FromModel(p *models.Payment) *PaymentDTO {
	if p == nil {
		return nil
	}
	return &PaymentDTO{
		ID:        p.ID,
		CollectID: p.CollectID,
		UserID:    p.UserID,
		Amount:    p.Amount,
		CreatedAt: p.CreatedAt,
	}
}

// ListParams filters the payment listing.
type ListParams struct {
	CollectID *uuid.UUID
	UserID    *uuid.UUID
	Limit     int
	Cursor    string
}

// ListResult is one cursor page of payments.
type ListResult struct {
	Items      []PaymentDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}
