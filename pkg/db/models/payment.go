package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxPaymentAmount is the largest amount the payments.amount column holds.
var MaxPaymentAmount = decimal.RequireFromString("99999999.99")

// Payment is a single immutable contribution to a collect.
type Payment struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CollectID uuid.UUID       `gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
