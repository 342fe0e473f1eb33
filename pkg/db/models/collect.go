package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/groupcollect/groupcollect-backend/pkg/enums"
)

// MaxCollectAmount bounds goal_amount and raised_amount.
var MaxCollectAmount = decimal.RequireFromString("9999999999.99")

// Collect is a fundraising campaign. ActivatedAt separates a collect that was
// never approved from one that was approved and later closed.
type Collect struct {
	ID                uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AuthorID          uuid.UUID        `gorm:"type:uuid;not null;index"`
	Title             string           `gorm:"type:varchar(200);not null"`
	Occasion          enums.Occasion   `gorm:"type:text;not null"`
	OccasionOtherText *string          `gorm:"type:varchar(255)"`
	Description       string           `gorm:"type:text;not null"`
	GoalAmount        *decimal.Decimal `gorm:"type:numeric(12,2)"`
	RaisedAmount      decimal.Decimal  `gorm:"type:numeric(12,2);not null;default:0"`
	CoverImage        *string          `gorm:"type:text"`
	EndAt             *time.Time       `gorm:"column:end_at"`
	IsActive          bool             `gorm:"column:is_active;not null;default:false"`
	ActivatedAt       *time.Time       `gorm:"column:activated_at"`
	ClosureRequested  bool             `gorm:"column:closure_requested;not null;default:false"`
	CloseReason       *string          `gorm:"type:text"`

	PaymentType       enums.PaymentType `gorm:"type:text;not null;default:'card'"`
	RecipientName     string            `gorm:"type:varchar(255);not null"`
	CardNumber        *string           `gorm:"type:varchar(16)"`
	BankAccountNumber *string           `gorm:"type:varchar(20)"`
	BankName          *string           `gorm:"type:varchar(255)"`
	BankBIK           *string           `gorm:"column:bank_bik;type:varchar(9)"`
	BankINN           *string           `gorm:"column:bank_inn;type:varchar(10)"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Author *User `gorm:"foreignKey:AuthorID"`
}

// Status derives the moderation state from the stored flags.
func (c Collect) Status() enums.CollectStatus {
	switch {
	case c.IsActive:
		return enums.CollectStatusActive
	case c.ActivatedAt != nil:
		return enums.CollectStatusClosed
	default:
		return enums.CollectStatusPending
	}
}

// RaisedPercentage is raised/goal as a whole percent capped at 100.
func (c Collect) RaisedPercentage() int {
	if c.GoalAmount == nil || !c.GoalAmount.IsPositive() {
		return 0
	}
	pct := c.RaisedAmount.Div(*c.GoalAmount).Mul(decimal.NewFromInt(100)).Floor().IntPart()
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return int(pct)
}

// OccasionDisplay prefers the custom text for the "other" occasion.
func (c Collect) OccasionDisplay() string {
	if c.Occasion == enums.OccasionOther && c.OccasionOtherText != nil && *c.OccasionOtherText != "" {
		return *c.OccasionOtherText
	}
	return c.Occasion.Label()
}

// PaymentPurpose is the transfer memo shown next to the requisites.
func (c Collect) PaymentPurpose() string {
	return "Group collect: " + c.Title
}

// GoalReached reports whether a goal is set and has been met.
func (c Collect) GoalReached() bool {
	return c.GoalAmount != nil && c.RaisedAmount.GreaterThanOrEqual(*c.GoalAmount)
}
