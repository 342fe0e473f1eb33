package collects

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/groupcollect/groupcollect-backend/pkg/db/models"
	"github.com/groupcollect/groupcollect-backend/pkg/enums"
)

// CreateCollectInput is the payload for a new collect. The author always
// comes from the authenticated caller.
type CreateCollectInput struct {
	Title             string           `json:"title" validate:"required,max=200"`
	Occasion          string           `json:"occasion" validate:"required"`
	OccasionOtherText *string          `json:"occasion_other_text,omitempty" validate:"omitempty,max=255"`
	Description       string           `json:"description" validate:"required"`
	GoalAmount        *decimal.Decimal `json:"goal_amount,omitempty"`
	CoverImage        *string          `json:"cover_image,omitempty" validate:"omitempty,max=512"`
	EndAt             *time.Time       `json:"end_at,omitempty"`
	Requisites
}

// Requisites are the payment details shown to donors.
type Requisites struct {
	PaymentType       string  `json:"payment_type"`
	RecipientName     string  `json:"recipient_name" validate:"max=255"`
	CardNumber        *string `json:"card_number,omitempty"`
	BankAccountNumber *string `json:"bank_account_number,omitempty"`
	BankName          *string `json:"bank_name,omitempty" validate:"omitempty,max=255"`
	BankBIK           *string `json:"bank_bik,omitempty"`
	BankINN           *string `json:"bank_inn,omitempty"`
}

// UpdateCollectInput is a partial update. Nil fields are left unchanged.
// The moderation fields are only accepted from administrators.
type UpdateCollectInput struct {
	Title             *string          `json:"title,omitempty" validate:"omitempty,max=200"`
	Occasion          *string          `json:"occasion,omitempty"`
	OccasionOtherText *string          `json:"occasion_other_text,omitempty" validate:"omitempty,max=255"`
	Description       *string          `json:"description,omitempty"`
	GoalAmount        *decimal.Decimal `json:"goal_amount,omitempty"`
	CoverImage        *string          `json:"cover_image,omitempty" validate:"omitempty,max=512"`
	EndAt             *time.Time       `json:"end_at,omitempty"`

	PaymentType       *string `json:"payment_type,omitempty"`
	RecipientName     *string `json:"recipient_name,omitempty" validate:"omitempty,max=255"`
	CardNumber        *string `json:"card_number,omitempty"`
	BankAccountNumber *string `json:"bank_account_number,omitempty"`
	BankName          *string `json:"bank_name,omitempty" validate:"omitempty,max=255"`
	BankBIK           *string `json:"bank_bik,omitempty"`
	BankINN           *string `json:"bank_inn,omitempty"`

	IsActive         *bool   `json:"is_active,omitempty"`
	ClosureRequested *bool   `json:"closure_requested,omitempty"`
	CloseReason      *string `json:"close_reason,omitempty"`
}

func (in UpdateCollectInput) touchesModeration() bool {
	return in.IsActive != nil || in.ClosureRequested != nil || in.CloseReason != nil || in.EndAt != nil
}

// AuthorDTO is the public author summary embedded in collect responses.
type AuthorDTO struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// CollectDTO is the transport shape of a collect with its derived fields.
type CollectDTO struct {
	ID                uuid.UUID           `json:"id"`
	Author            AuthorDTO           `json:"author"`
	Title             string              `json:"title"`
	Occasion          enums.Occasion      `json:"occasion"`
	OccasionOtherText *string             `json:"occasion_other_text,omitempty"`
	OccasionDisplay   string              `json:"occasion_display"`
	Description       string              `json:"description"`
	GoalAmount        *decimal.Decimal    `json:"goal_amount"`
	RaisedAmount      decimal.Decimal     `json:"raised_amount"`
	RaisedPercentage  int                 `json:"raised_percentage"`
	CoverImage        *string             `json:"cover_image,omitempty"`
	EndAt             *time.Time          `json:"end_at"`
	Status            enums.CollectStatus `json:"status"`
	IsActive          bool                `json:"is_active"`
	ActivatedAt       *time.Time          `json:"activated_at,omitempty"`
	ClosureRequested  bool                `json:"closure_requested"`
	CloseReason       *string             `json:"close_reason,omitempty"`
	PaymentType       enums.PaymentType   `json:"payment_type"`
	PaymentPurpose    string              `json:"payment_purpose"`
	RecipientName     string              `json:"recipient_name"`
	CardNumber        *string             `json:"card_number,omitempty"`
	BankAccountNumber *string             `json:"bank_account_number,omitempty"`
	BankName          *string             `json:"bank_name,omitempty"`
	BankBIK           *string             `json:"bank_bik,omitempty"`
	BankINN           *string             `json:"bank_inn,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// FromModel converts a collect into its transport shape.
func FromModel(c *models.Collect) *CollectDTO {
	if c == nil {
		return nil
	}
	dto := &CollectDTO{
		ID:                c.ID,
		Author:            AuthorDTO{ID: c.AuthorID},
		Title:             c.Title,
		Occasion:          c.Occasion,
		OccasionOtherText: c.OccasionOtherText,
		OccasionDisplay:   c.OccasionDisplay(),
		Description:       c.Description,
		GoalAmount:        c.GoalAmount,
		RaisedAmount:      c.RaisedAmount,
		RaisedPercentage:  c.RaisedPercentage(),
		CoverImage:        c.CoverImage,
		EndAt:             c.EndAt,
		Status:            c.Status(),
		IsActive:          c.IsActive,
		ActivatedAt:       c.ActivatedAt,
		ClosureRequested:  c.ClosureRequested,
		CloseReason:       c.CloseReason,
		PaymentType:       c.PaymentType,
		PaymentPurpose:    c.PaymentPurpose(),
		RecipientName:     c.RecipientName,
		CardNumber:        c.CardNumber,
		BankAccountNumber: c.BankAccountNumber,
		BankName:          c.BankName,
		BankBIK:           c.BankBIK,
		BankINN:           c.BankINN,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
	if c.Author != nil {
		dto.Author.Username = c.Author.Username
	}
	return dto
}

func fromModels(rows []models.Collect) []CollectDTO {
	out := make([]CollectDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

// AdminFilters narrows the moderation listing.
type AdminFilters struct {
	IsActive         *bool
	Status           string
	AuthorID         *uuid.UUID
	ClosureRequested *bool
	Query            string
}

// PageResult is one numbered page of the public listing.
type PageResult struct {
	Items      []CollectDTO `json:"items"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalItems int64        `json:"total_items"`
	TotalPages int          `json:"total_pages"`
}

// ListResult is one cursor page of collects.
type ListResult struct {
	Items      []CollectDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// ActivateResult reports which collects a bulk approval changed.
type ActivateResult struct {
	Activated []uuid.UUID `json:"activated"`
	Skipped   []uuid.UUID `json:"skipped"`
}
