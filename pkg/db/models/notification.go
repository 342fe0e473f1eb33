package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/groupcollect/groupcollect-backend/pkg/enums"
)

// Notification is the dispatch log of one outbound mail. Rows are written in
// the same transaction as the change that triggered them.
type Notification struct {
	ID          uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Kind        enums.NotificationKind   `gorm:"type:text;not null"`
	Subject     string                   `gorm:"type:text;not null"`
	Body        string                   `gorm:"type:text;not null"`
	Sender      string                   `gorm:"type:text;not null"`
	Recipients  pq.StringArray           `gorm:"type:text[];not null"`
	CollectID   *uuid.UUID               `gorm:"type:uuid;index"`
	Status      enums.NotificationStatus `gorm:"type:text;not null;default:'pending'"`
	Error       *string                  `gorm:"type:text"`
	AttemptedAt *time.Time               `gorm:"column:attempted_at"`
	CreatedAt   time.Time                `gorm:"column:created_at;autoCreateTime"`
}
