package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a sanitized remark left on a collect page.
type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CollectID uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`

	Author *User `gorm:"foreignKey:AuthorID"`
}
